package comments

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Commentary/internal/api/middleware"
	"Commentary/internal/core/comments"
)

// UpdateCommentHandler handles comment edit requests
type UpdateCommentHandler struct {
	service comments.Service
}

// NewUpdateCommentHandler creates a new handler for editing comments
func NewUpdateCommentHandler(service comments.Service) *UpdateCommentHandler {
	return &UpdateCommentHandler{service: service}
}

// UpdateCommentInput is the JSON input for a comment edit
type UpdateCommentInput struct {
	Text    string `json:"text"`
	Author  string `json:"author"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

// HandleUpdate handles comment edit requests
// PUT /api/comments/{commentID}
func (h *UpdateCommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "commentID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid comment id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var input UpdateCommentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	req := comments.UpdateCommentRequest{
		ID:          id,
		Text:        input.Text,
		Author:      input.Author,
		AuthorEmail: input.Email,
		AuthorURL:   input.Website,
	}

	view, err := h.service.Update(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
