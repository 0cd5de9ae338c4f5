package comments

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Commentary/internal/api/middleware"
	"Commentary/internal/core/comments"
)

// ModerateCommentHandler handles the moderation state transitions: approving
// pending or flagged comments and flagging published ones as spam.
type ModerateCommentHandler struct {
	service comments.Service
}

// NewModerateCommentHandler creates a new handler for moderation actions
func NewModerateCommentHandler(service comments.Service) *ModerateCommentHandler {
	return &ModerateCommentHandler{service: service}
}

// HandleApprove publishes a comment
// POST /api/comments/{commentID}/approve
func (h *ModerateCommentHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := commentID(w, r)
	if !ok {
		return
	}

	view, err := h.service.Approve(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleMarkSpam flags a comment as spam
// POST /api/comments/{commentID}/spam
func (h *ModerateCommentHandler) HandleMarkSpam(w http.ResponseWriter, r *http.Request) {
	id, ok := commentID(w, r)
	if !ok {
		return
	}

	view, err := h.service.MarkSpam(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// HandleBan reports a comment as spam and deletes it
// POST /api/comments/{commentID}/ban
func (h *ModerateCommentHandler) HandleBan(w http.ResponseWriter, r *http.Request) {
	id, ok := commentID(w, r)
	if !ok {
		return
	}

	if err := h.service.Ban(r.Context(), middleware.GetActor(r), id); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func commentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "commentID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid comment id")
		return 0, false
	}
	return id, true
}
