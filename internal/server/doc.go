// Package server serves local media to the system browser for preview.
//
// # Router Infrastructure
//
// The [Router] interface registers read-only routes behind a [Middleware] stack. The first middleware added runs
// outermost.
//
// [BasicRouter] uses method patterns on [http.ServeMux], so only GET and HEAD reach a handler. A health route at
// [HealthPath] lets callers check the listener is up.
//
// # Preview Handler
//
// [PreviewHandler] maps random tokens to local files:
//
//	url, _ := h.Register("/home/me/talk.mp4", "video/mp4") // http://127.0.0.1:41234/preview/<uuid>
//	h.Revoke(url)                                           // now 404
//
// Files are streamed with [http.ServeContent], so players can seek with Range requests.
//
// # Preview Server
//
// [PreviewServer] binds the handler to the configured [preview] address (port 0 picks a free port) and shuts down
// when its context is cancelled.
package server
