package server

import (
	"net/http"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows the path patterns it serves.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router registers read-only routes behind a middleware stack.
type Router interface {
	http.Handler
	Use(middleware ...Middleware)
	Get(path string, handler http.Handler)
	Mount(handler Handler)
}

// HealthPath answers 204 while the preview server is up.
const HealthPath = "/healthz"

func health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

var _ Router = (*BasicRouter)(nil)
