// Package models defines domain entities and persistence interfaces for the vtx transcription client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): payloads exchanged with the transcription service
//   - [SelectedFile] : The local media file chosen for upload
//   - [Transcript] : Text and detected language returned by /transcribe
//   - [SessionUser] : The authenticated account, always refreshed from the server
//   - [Profile] : Account details returned by /api/profile
//   - [HistoryItem] : One past transcription returned by /api/history
//
// 2. Persistent Entities: local client state stored in SQLite
//   - [Preference] : Key-value preferences (the theme)
//   - [StoredCookie] : Session cookies kept between CLI invocations
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
package models
