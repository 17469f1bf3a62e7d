package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/N1etZsch3/Novi-sub000/internal/api"
	apiMiddleware "github.com/N1etZsch3/Novi-sub000/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.authService)
	paperHandler := api.NewPaperHandler(app.paperService, app.logger)
	categoryHandler := api.NewCategoryHandler(app.categoryStore)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/papers/generate", paperHandler.Generate)
			r.Get("/papers", paperHandler.List)
			r.Get("/papers/{id}", paperHandler.Get)
			r.Delete("/papers/{id}", paperHandler.Delete)

			r.Get("/categories/subjects", categoryHandler.ListSubjects)
			r.Get("/categories/subjects/{id}/types", categoryHandler.ListTypes)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
