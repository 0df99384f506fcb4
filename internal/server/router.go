package server

import (
	"net/http"

	"github.com/doctrove/doctrove/internal/api"
	"github.com/doctrove/doctrove/internal/api/handlers"
	"github.com/doctrove/doctrove/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	SearchHandler   *handlers.SearchHandler
	QueueHandler    *handlers.QueueHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Uploads dominate request sizes; responses stay small
	const maxBodyBytes int64 = 50 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID", "X-Request-ID"},
		AllowCredentials: false,
	}))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.UserIdentity)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", cfg.DocumentHandler.Upload)
			r.Get("/", cfg.DocumentHandler.List)
			r.Delete("/failed", cfg.DocumentHandler.DeleteFailed)
			r.Get("/{id}", cfg.DocumentHandler.Get)
			r.Get("/{id}/content", cfg.DocumentHandler.GetContent)
			r.Delete("/{id}", cfg.DocumentHandler.Delete)
		})

		r.Post("/search", cfg.SearchHandler.Search)
		r.Post("/queue/flush", cfg.QueueHandler.Flush)
	})

	return r
}
