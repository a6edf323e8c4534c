package api

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// NewRouter registers the REST routes of s. ws, if non-nil, is mounted at
// /ws.
func NewRouter(s *Server, ws http.Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods("GET")

	r.HandleFunc("/api/simulate", s.simulate).Methods("POST")
	r.HandleFunc("/api/compare", s.compare).Methods("POST")
	r.HandleFunc("/api/montecarlo", s.monteCarlo).Methods("POST")
	r.HandleFunc("/api/runs/{id}", s.getRun).Methods("GET")
	r.HandleFunc("/api/runs/{id}/trace", s.getTrace).Methods("GET")
	r.HandleFunc("/api/runs/{id}/daily", s.getDaily).Methods("GET")

	if ws != nil {
		r.Handle("/ws", ws)
	}
	return r
}

// Wrap adds access logging to w, CORS and panic recovery.
func Wrap(h http.Handler, accessLog io.Writer) http.Handler {
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	return handlers.LoggingHandler(accessLog, h)
}
