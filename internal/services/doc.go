// Package services implements the client for the remote transcription service.
//
// # Raw Layer
//
// [APIService] wraps an [http.Client] with Get, Post, PostJSON and PostFile helpers that return an [APIResponse]
// carrying the status, headers, raw body and, when the body is JSON, the decoded value.
//
// # Typed Operations
//
// [APIService] implements [Client] over the service's HTTP surface:
//
//	GET  /api/check-auth  → {authenticated, user?}
//	POST /api/login       → {user} | {error}
//	POST /api/signup      → {user} | {error}
//	POST /api/logout      → 2xx
//	GET  /api/profile     → {username, email, member_since, total_transcriptions}
//	GET  /api/history     → {history: [...]}
//	POST /transcribe      → {text, language} | {error}   (multipart field "file")
//
// The session is a server-issued cookie; give the [http.Client] a jar (repositories.PersistentJar) to carry it.
//
// # Error Handling
//
// Failures are classified into two types:
//   - [ServerError] : a non-2xx response; Message is the server's "error" string verbatim
//   - [NetworkError] : the request never completed or the body could not be decoded
//
// ServerError unwraps to [shared.ErrAPIRequest] and NetworkError to [shared.ErrServiceUnavailable].
// Nothing is retried.
package services
