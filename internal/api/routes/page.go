package routes

import (
	"github.com/go-chi/chi/v5"

	pagehandlers "Commentary/internal/api/handlers/pages"
	"Commentary/internal/api/middleware"
	"Commentary/internal/core/pages"
)

// RegisterPageRoutes registers the page catalog endpoints on the router.
// Registration is reserved for the host CMS and therefore authenticated.
func RegisterPageRoutes(r chi.Router, service pages.Service, auth *middleware.AuthMiddleware) {
	handler := pagehandlers.NewGetPagesHandler(service)

	r.Get("/api/pages/{hash}", handler.HandleResolve)
	r.With(auth.RequireAuth).Get("/api/pages", handler.HandleList)
	r.With(auth.RequireAuth).Post("/api/pages", handler.HandleRegister)
}
