package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// Routes builds the full HTTP surface (§6) on a chi router, grouping
// routes by auth requirement the same way the teacher's router.go
// layers groups by tier.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CorrelationMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if len(s.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   s.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "x-space-id", "x-user-id", "X-Correlation-ID"},
			AllowCredentials: true,
		}).Handler)
	}

	r.Get("/health", s.Health)
	r.Get("/readyz", s.Ready)

	r.With(s.LoginLimiter.Middleware).Post("/auth/login", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Get("/auth/me", s.GetMe)
		r.Patch("/auth/me", s.PatchMe)
		r.Patch("/auth/password", s.PatchPassword)

		r.Get("/auth/sound", s.GetSound)
		r.Patch("/auth/sound", s.PatchSound)

		r.Get("/auth/backup", s.GetBackup)
		r.Post("/auth/backup", s.PostBackup)

		r.Get("/auth/members", s.ListMembers)
		r.Post("/auth/members", s.CreateMember)
		r.Delete("/auth/members/{id}", s.DeleteMember)
		r.Patch("/auth/members/{id}/password", s.ResetMemberPassword)

		r.Get("/auth/grants", s.ListGrants)
		r.Put("/auth/grants", s.PutGrant)

		r.Get("/lists", s.ListLists)
		r.Post("/lists", s.CreateList)
		r.Patch("/lists/{id}", s.PatchList)
		r.Delete("/lists/{id}", s.DeleteList)

		r.Get("/tasks", s.ListTasks)
		r.Post("/tasks", s.CreateTask)
		r.Patch("/tasks/{id}", s.PatchTask)
		r.Post("/tasks/{id}/status", s.PostTaskStatus)
		r.Delete("/tasks/{id}", s.DeleteTask)

		r.Post("/sync/pull", s.SyncPull)
		r.Post("/sync/push", s.SyncPush)
	})

	log.Info().Msg("HTTP routes registered")
	return r
}
