package routes

import (
	"github.com/go-chi/chi/v5"

	commenthandlers "Commentary/internal/api/handlers/comments"
	"Commentary/internal/api/middleware"
	"Commentary/internal/core/comments"
	"Commentary/internal/core/pages"
)

// RegisterCommentRoutes registers the comment endpoints on the router.
// Reads and submissions accept anonymous visitors (the service enforces the
// configured capabilities); moderation actions always require a token.
func RegisterCommentRoutes(
	r chi.Router,
	service comments.Service,
	pageService pages.Service,
	auth *middleware.AuthMiddleware,
	flash *middleware.FlashStore,
) {
	createHandler := commenthandlers.NewCreateCommentHandler(service, pageService)
	formHandler := commenthandlers.NewFormCommentHandler(service, pageService, flash)
	getHandler := commenthandlers.NewGetCommentsHandler(service, pageService)
	updateHandler := commenthandlers.NewUpdateCommentHandler(service)
	deleteHandler := commenthandlers.NewDeleteCommentHandler(service)
	moderateHandler := commenthandlers.NewModerateCommentHandler(service)

	// Thread access, addressed by the page's public hash
	r.With(auth.OptionalAuth).Get("/api/pages/{hash}/comments", getHandler.HandleList)
	r.With(auth.OptionalAuth).Post("/api/pages/{hash}/comments", createHandler.HandleCreate)

	// No-script form fallback: form-encoded body, redirect response
	r.With(auth.OptionalAuth).Post("/pages/{hash}/comments", formHandler.HandleCreateForm)
	r.With(auth.RequireAuth).Post("/comments/{commentID}/delete", formHandler.HandleDeleteForm)

	// Single comment operations
	r.With(auth.OptionalAuth).Get("/api/comments/{commentID}", getHandler.HandleGet)
	r.With(auth.RequireAuth).Put("/api/comments/{commentID}", updateHandler.HandleUpdate)
	r.With(auth.RequireAuth).Delete("/api/comments/{commentID}", deleteHandler.HandleDelete)

	// Moderation actions
	r.With(auth.RequireAuth).Post("/api/comments/{commentID}/approve", moderateHandler.HandleApprove)
	r.With(auth.RequireAuth).Post("/api/comments/{commentID}/spam", moderateHandler.HandleMarkSpam)
	r.With(auth.RequireAuth).Post("/api/comments/{commentID}/ban", moderateHandler.HandleBan)
}
