package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	ListAttributes  http.HandlerFunc
	GetAttribute    http.HandlerFunc
	SetAttribute    http.HandlerFunc
	RemoveAttribute http.HandlerFunc
	Health          http.HandlerFunc
}

// NewRouter registers endpoints. Session-scoped routes pass through auth when
// one is given; health stays open.
func NewRouter(routes Routes, auth func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	guard := func(h http.Handler) http.Handler {
		if auth != nil {
			return auth(h)
		}
		return h
	}

	if routes.ListAttributes != nil {
		mux.Handle("GET /sessions/{sessionID}/attributes", guard(routes.ListAttributes))
	}
	if routes.GetAttribute != nil {
		mux.Handle("GET /sessions/{sessionID}/attributes/{name}", guard(routes.GetAttribute))
	}
	if routes.SetAttribute != nil {
		mux.Handle("PUT /sessions/{sessionID}/attributes/{name}", guard(routes.SetAttribute))
	}
	if routes.RemoveAttribute != nil {
		mux.Handle("DELETE /sessions/{sessionID}/attributes/{name}", guard(routes.RemoveAttribute))
	}
	if routes.Health != nil {
		mux.Handle("GET /health", routes.Health)
	}
	return mux
}
