package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/dtammam/tasksync/internal/apperr"
	"github.com/dtammam/tasksync/internal/authn"
	"github.com/dtammam/tasksync/internal/service"
	"github.com/dtammam/tasksync/internal/store"
)

// Server holds every dependency the HTTP handlers need. It is
// constructed once at startup in cmd/server/main.go, which sets
// CORSOrigins before calling Routes; it is not changed after that.
type Server struct {
	DB     *pgxpool.Pool
	Issuer *authn.Issuer
	Store  *store.Store

	Identity service.Identity
	Lists    service.Lists
	Tasks    service.Tasks
	Members  service.Members
	Grants   service.Grants
	Sync     service.Sync
	Backup   service.Backup

	LoginLimiter *LoginRateLimiter
	CORSOrigins  []string
}

// NewServer wires every service from a single pool + config, the same
// one-shot construction pattern as the teacher's cmd/server/main.go.
func NewServer(pool *pgxpool.Pool, issuer *authn.Issuer, devLoginPassword string, loginRatePerMin int) *Server {
	st := store.New(pool)
	lists := service.Lists{DB: pool}
	tasks := service.Tasks{DB: pool}
	return &Server{
		DB:       pool,
		Issuer:   issuer,
		Store:    st,
		Identity: service.Identity{DB: pool, Issuer: issuer, DevLoginPassword: devLoginPassword},
		Lists:    lists,
		Tasks:    tasks,
		Members:  service.Members{DB: pool},
		Grants:   service.Grants{DB: pool},
		Sync:     service.Sync{DB: pool, Lists: lists, Tasks: tasks},
		Backup:   service.Backup{Store: st},

		LoginLimiter: NewLoginRateLimiter(loginRatePerMin),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode json response")
	}
}

type errorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id"`
}

func writeError(w http.ResponseWriter, r *http.Request, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:         message,
		CorrelationID: GetCorrelationID(r.Context()),
	})
}

// writeAppErr maps an *apperr.Error to its HTTP status (§7) at the
// transport edge; every other error is treated as internal.
func writeAppErr(w http.ResponseWriter, r *http.Request, err error) {
	ae, ok := apperr.As(err)
	if !ok {
		log.Error().Err(err).Msg("unmapped error")
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	code := http.StatusInternalServerError
	switch ae.Kind {
	case apperr.KindBadRequest:
		code = http.StatusBadRequest
	case apperr.KindUnauthorized:
		code = http.StatusUnauthorized
	case apperr.KindForbidden:
		code = http.StatusForbidden
	case apperr.KindNotFound:
		code = http.StatusNotFound
	case apperr.KindConflict:
		code = http.StatusConflict
	case apperr.KindInternal:
		log.Error().Err(ae.Err).Msg(ae.Message)
	}
	writeError(w, r, code, ae.Message)
}
