// Package session implements the transcription session controller.
//
// [Controller] owns every piece of client state: the selected file, the request lifecycle, the current transcript,
// the session user, the auth form mode, the open modal and the theme. It changes only in response to an [Event]
// passed to [Controller.Handle]. Network work is never done inside Handle; instead Handle returns a [Cmd] which the
// caller runs wherever it likes and whose result is handed back as another event.
//
// # Request Lifecycle
//
//	Idle --SubmitRequested--> Requesting --TranscribeFinished--> Succeeded | Failed --> Idle
//
// Submitting without a file never leaves Idle and issues no request. Submitting while Requesting is rejected.
// Leaving Requesting always clears the busy flag, whichever way the request ended.
//
// # Drivers
//
// [Dispatcher] is a single goroutine that feeds events to the controller, runs Cmds concurrently and publishes
// [Update] values to subscribers. The CLI uses it; the TUI maps Cmds onto bubbletea commands instead.
package session
