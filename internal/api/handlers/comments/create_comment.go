package comments

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"Commentary/internal/api/middleware"
	"Commentary/internal/core/comments"
	"Commentary/internal/core/pages"
)

// CreateCommentHandler handles comment submission requests
type CreateCommentHandler struct {
	service comments.Service
	pages   pages.Service
}

// NewCreateCommentHandler creates a new handler for submitting comments
func NewCreateCommentHandler(service comments.Service, pageService pages.Service) *CreateCommentHandler {
	return &CreateCommentHandler{
		service: service,
		pages:   pageService,
	}
}

// CreateCommentInput is the JSON input for a comment submission. Fields
// carries the raw form fields the embedding page collected; the bot traps
// read their tokens from there.
type CreateCommentInput struct {
	Fields   map[string]string `json:"fields,omitempty"`
	Text     string            `json:"text"`
	Author   string            `json:"author"`
	Email    string            `json:"email"`
	Website  string            `json:"website"`
	ParentID int64             `json:"parentId,omitempty"`
}

// HandleCreate handles comment submission requests
// POST /api/pages/{hash}/comments
func (h *CreateCommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	// Limit request body size (64KB is plenty for a comment)
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var input CreateCommentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	page, err := h.pages.Resolve(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		if pages.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "NotFound", "Unknown page")
			return
		}
		handleServiceError(w, err)
		return
	}

	form := url.Values{}
	for key, value := range input.Fields {
		form.Set(key, value)
	}

	req := comments.CreateCommentRequest{
		Form:        form,
		PageURI:     page.URI,
		Text:        input.Text,
		Author:      input.Author,
		AuthorEmail: input.Email,
		AuthorURL:   input.Website,
		ClientIP:    middleware.ClientIP(r),
		UserAgent:   r.UserAgent(),
		Referrer:    r.Referer(),
		ParentID:    input.ParentID,
	}

	response, err := h.service.Create(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}
