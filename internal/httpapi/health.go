package httpapi

import (
	"net/http"
)

// Health is the liveness probe: the process is up, nothing more (§6).
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready is the readiness probe: the store must accept a ping (§6,
// supplemented — distinct from Health, which says nothing about the
// database).
func (s *Server) Ready(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Ping(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "store unreachable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
