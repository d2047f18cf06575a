package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/horusauth/horus/internal/store"
	"github.com/horusauth/horus/internal/verify"
	"github.com/horusauth/horus/internal/web/handlers"
)

func (s *Server) setupRoutes(st store.Store, pipeline *verify.Pipeline) {
	userHandler := handlers.NewUserHandler(st, pipeline)
	uploadHandler := handlers.NewUploadHandler(s.config.Upload.Dir)

	// Health check
	s.router.Get("/health", handlers.HealthCheck)

	// Account routes
	s.router.Route("/user", func(r chi.Router) {
		r.Post("/exists", userHandler.Exists)
		r.Post("/hasLock", userHandler.HasLock)
		r.Post("/create", userHandler.Create)
		r.Post("/auth", userHandler.Auth)
		r.Post("/face", userHandler.Face)
		r.Post("/edit", userHandler.Edit)
		r.Post("/delete", userHandler.Delete)
	})

	// Upload routes: images go up first, verification requests reference the
	// returned paths
	s.router.Route("/upload", func(r chi.Router) {
		r.Post("/", uploadHandler.Upload)
		r.Post("/encoded", uploadHandler.UploadEncoded)
	})
}
