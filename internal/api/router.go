package api

import (
	"net/http"

	"github.com/finn/cloud-drive-backend/internal/api/handlers"
	"github.com/finn/cloud-drive-backend/internal/api/middleware"
	"github.com/finn/cloud-drive-backend/internal/config"
	"github.com/finn/cloud-drive-backend/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(services *service.Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, cfg.Environment == "production")
	folderHandler := handlers.NewFolderHandler(services.Folder)
	fileHandler := handlers.NewFileHandler(services.File, cfg.MaxUploadBytes)

	// Public auth routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Protected auth routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))
			r.Get("/me", authHandler.Me)
			r.Post("/logout", authHandler.Logout)
		})
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(services.Auth))

		r.Route("/files", func(r chi.Router) {
			r.Get("/", fileHandler.ListRoot)
			r.Post("/upload", fileHandler.Upload)
			r.Get("/{id}/download", fileHandler.Download)
			r.Patch("/{id}", fileHandler.Move)
			r.Delete("/{id}", fileHandler.Delete)
		})

		r.Route("/folders", func(r chi.Router) {
			r.Get("/", folderHandler.ListRoot)
			r.Post("/", folderHandler.Create)
			r.Get("/{id}", folderHandler.Get)
			r.Get("/{id}/contents", folderHandler.Contents)
			r.Get("/{id}/path", folderHandler.Path)
			r.Patch("/{id}", folderHandler.Update)
			r.Delete("/{id}", folderHandler.Delete)
		})
	})

	return r
}
