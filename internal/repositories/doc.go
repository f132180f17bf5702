// Package repositories implements SQLite persistence for the client's local state.
//
// Key Implementations:
//   - [PreferenceRepository] : Key-value preferences; holds the theme
//   - [CookieRepository] : Session cookies keyed by host, name and path
//   - [PersistentJar] : An [http.CookieJar] that mirrors the in-memory jar into [CookieRepository]
//     so a login from one CLI invocation carries over to the next
//
// IDs are v4 UUIDs generated by [shared.GenerateID].
package repositories
