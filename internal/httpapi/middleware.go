package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dtammam/tasksync/internal/reqctx"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlationId"
	reqCtxKey        contextKey = "reqCtx"
)

// CorrelationMiddleware reads X-Correlation-ID and adds it to context and
// the response, generating one if the client didn't send it, so every
// log line for a request can be tied back to a single trace.
func CorrelationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		w.Header().Set("X-Correlation-ID", correlationID)

		ctx := context.WithValue(r.Context(), correlationIDKey, correlationID)
		logger := log.With().Str("correlation_id", correlationID).Logger()
		ctx = logger.WithContext(ctx)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetCorrelationID(ctx context.Context) string {
	if v, ok := ctx.Value(correlationIDKey).(string); ok {
		return v
	}
	return ""
}

// AuthMiddleware resolves the caller's (space, user, role) per §4.1 and
// stashes it in context, rejecting the request with 401 when credentials
// or membership are missing or invalid (500 if the membership lookup fails).
// It runs on every route except /health, /readyz, and /auth/login.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bearer := bearerToken(r.Header.Get("Authorization"))
		c, err := reqctx.Resolve(r.Context(), s.DB, s.Issuer, bearer,
			r.Header.Get("x-space-id"), r.Header.Get("x-user-id"))
		if err != nil {
			writeAppErr(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), reqCtxKey, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

// ctxFrom retrieves the resolved request context attached by AuthMiddleware.
func ctxFrom(r *http.Request) *reqctx.Ctx {
	c, _ := r.Context().Value(reqCtxKey).(*reqctx.Ctx)
	return c
}
