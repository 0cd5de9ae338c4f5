// Package pages exposes the page catalog endpoints: resolving the public
// hash a comment form posts to, and listing the pages that have threads.
package pages

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Commentary/internal/core/pages"
)

// GetPagesHandler handles page catalog requests
type GetPagesHandler struct {
	service pages.Service
}

// NewGetPagesHandler creates a new handler for page lookups
func NewGetPagesHandler(service pages.Service) *GetPagesHandler {
	return &GetPagesHandler{service: service}
}

// HandleResolve resolves a public hash to its page
// GET /api/pages/{hash}
func (h *GetPagesHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.Resolve(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		if pages.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "NotFound", "Unknown page")
			return
		}
		log.Printf("Unexpected error in pages handler: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleList returns the full page catalog
// GET /api/pages
func (h *GetPagesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		log.Printf("Unexpected error in pages handler: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"pages": list})
}

// RegisterPageInput is the JSON input for registering a page
type RegisterPageInput struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// HandleRegister registers a page so it can accept comments
// POST /api/pages
func (h *GetPagesHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 16*1024)

	var input RegisterPageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	page, err := h.service.ResolveURI(r.Context(), input.URI, input.Title)
	if err != nil {
		if pages.IsNotFound(err) {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "A page uri is required")
			return
		}
		log.Printf("Unexpected error in pages handler: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusCreated, page)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	writeJSON(w, statusCode, errorResponse{Error: errorType, Message: message})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
