package comments

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Commentary/internal/api/middleware"
	"Commentary/internal/core/comments"
	"Commentary/internal/core/pages"
)

// GetCommentsHandler handles thread retrieval requests
type GetCommentsHandler struct {
	service comments.Service
	pages   pages.Service
}

// NewGetCommentsHandler creates a new handler for reading comment threads
func NewGetCommentsHandler(service comments.Service, pageService pages.Service) *GetCommentsHandler {
	return &GetCommentsHandler{
		service: service,
		pages:   pageService,
	}
}

// HandleList returns a page's comment thread, nested and paginated
// GET /api/pages/{hash}/comments?page=1&per_page=30&include=all
func (h *GetCommentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.Resolve(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		if pages.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "NotFound", "Unknown page")
			return
		}
		handleServiceError(w, err)
		return
	}

	pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	req := comments.ListCommentsRequest{
		PageURI:       page.URI,
		Page:          pageNum,
		PerPage:       perPage,
		IncludeHidden: r.URL.Query().Get("include") == "all",
	}

	response, err := h.service.List(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleGet returns a single comment
// GET /api/comments/{commentID}
func (h *GetCommentsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "commentID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid comment id")
		return
	}

	view, err := h.service.Get(r.Context(), middleware.GetActor(r), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
