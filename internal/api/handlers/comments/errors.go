package comments

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Commentary/internal/core/comments"
)

// errorResponse represents a standardized JSON error response. Errors
// carries per-field validation messages and is omitted otherwise.
type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// writeError writes a JSON error response with the given status code
func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	writeErrorResponse(w, statusCode, errorResponse{Error: errorType, Message: message})
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// handleServiceError maps service-layer errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	var fieldErrs comments.FieldErrors

	switch {
	case errors.As(err, &fieldErrs):
		writeErrorResponse(w, http.StatusBadRequest, errorResponse{
			Error:   "InvalidComment",
			Message: "The comment did not pass validation",
			Errors:  fieldErrs,
		})

	case errors.Is(err, comments.ErrThrottled):
		writeError(w, http.StatusTooManyRequests, "Throttled", err.Error())

	case errors.Is(err, comments.ErrDuplicate):
		writeError(w, http.StatusConflict, "Duplicate", err.Error())

	case errors.Is(err, comments.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "Forbidden", "You are not allowed to perform this action")

	case comments.IsNotFound(err):
		writeError(w, http.StatusNotFound, "NotFound", err.Error())

	default:
		// Don't leak internal error details to clients
		log.Printf("Unexpected error in comments handler: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
