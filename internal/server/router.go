package server

import (
	"net/http"
)

// BasicRouter is a read-only [Router] over [http.ServeMux].
//
// Routes are registered with GET method patterns, so HEAD is served too and any other method gets a 405 with an
// Allow header from the mux itself.
type BasicRouter struct {
	mux   *http.ServeMux
	stack []Middleware
}

// NewBasicRouter creates an empty [BasicRouter].
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware. Only routes registered afterwards are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.stack = append(r.stack, middleware...)
}

// Get registers handler for GET and HEAD requests on path.
func (r *BasicRouter) Get(path string, handler http.Handler) {
	r.mux.Handle(http.MethodGet+" "+path, r.Apply(handler))
}

// Mount registers handler under every path from [Handler.Routes].
func (r *BasicRouter) Mount(handler Handler) {
	wrapped := r.Apply(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(http.MethodGet+" "+route, wrapped)
	}
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler so the first middleware passed to Use runs outermost.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for i := len(r.stack) - 1; i >= 0; i-- {
		handler = r.stack[i](handler)
	}
	return handler
}
