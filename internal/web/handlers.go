package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"Commentary/internal/api/middleware"
	"Commentary/internal/config"
	"Commentary/internal/core/comments"
	"Commentary/internal/core/pages"
)

// Handlers provides the HTTP handlers for the thread pages.
type Handlers struct {
	templates *Templates
	comments  comments.Service
	pages     pages.Service
	flash     *middleware.FlashStore
	cfg       config.CommentsConfig
	logger    *slog.Logger
}

// NewHandlers creates a Handlers instance with the provided dependencies.
func NewHandlers(templates *Templates, commentService comments.Service, pageService pages.Service, flash *middleware.FlashStore, cfg config.CommentsConfig, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		templates: templates,
		comments:  commentService,
		pages:     pageService,
		flash:     flash,
		cfg:       cfg,
		logger:    logger,
	}
}

// ThreadPageData holds data for the thread page template.
type ThreadPageData struct {
	// Title is the page title, falling back to the uri when the catalog
	// has none
	Title string
	// Hash addresses the thread in the form action
	Hash string
	// Thread is the nested comment listing
	Thread *comments.ThreadResponse
	// Notices and Errors carry flash messages from the last form submission
	Notices []string
	Errors  []string
	// HoneypotField is the trap field name the form must include
	HoneypotField string
	// RenderedAt feeds the reading-time trap
	RenderedAt int64
}

// ThreadPageHandler renders a page's comment thread with the submission form.
// GET /pages/{hash}
func (h *Handlers) ThreadPageHandler(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.Resolve(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		if pages.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		h.logger.Error("thread page: failed to resolve page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	thread, err := h.comments.List(r.Context(), middleware.GetActor(r), comments.ListCommentsRequest{
		PageURI: page.URI,
	})
	if err != nil {
		h.logger.Error("thread page: failed to list comments", "uri", page.URI, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := ThreadPageData{
		Title:         page.Title,
		Hash:          page.Hash,
		Thread:        thread,
		Notices:       h.flash.Consume(w, r, "comment_success"),
		Errors:        h.flash.Consume(w, r, "comment_error"),
		HoneypotField: h.cfg.HoneypotField(),
		RenderedAt:    time.Now().Unix(),
	}
	if data.Title == "" {
		data.Title = page.URI
	}

	if err := h.templates.Render(w, "thread.html", data); err != nil {
		h.logger.Error("failed to render thread page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
