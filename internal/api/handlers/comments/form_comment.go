package comments

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Commentary/internal/api/middleware"
	"Commentary/internal/core/comments"
	"Commentary/internal/core/pages"
)

// FormCommentHandler accepts plain HTML form submissions and answers with a
// redirect, so comment forms keep working without any client-side script.
// Outcomes travel back to the form via flash messages.
type FormCommentHandler struct {
	service comments.Service
	pages   pages.Service
	flash   *middleware.FlashStore
}

// NewFormCommentHandler creates a handler for no-script form submissions
func NewFormCommentHandler(service comments.Service, pageService pages.Service, flash *middleware.FlashStore) *FormCommentHandler {
	return &FormCommentHandler{
		service: service,
		pages:   pageService,
		flash:   flash,
	}
}

// HandleCreateForm handles form-encoded comment submissions
// POST /pages/{hash}/comments
func (h *FormCommentHandler) HandleCreateForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	returnTo := r.PostForm.Get("return_to")
	if returnTo == "" || returnTo[0] != '/' {
		returnTo = r.Referer()
	}
	if returnTo == "" {
		returnTo = "/"
	}

	page, err := h.pages.Resolve(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		h.flash.Add(w, r, "comment_error", "This page does not accept comments.")
		http.Redirect(w, r, returnTo, http.StatusSeeOther)
		return
	}

	parentID, _ := strconv.ParseInt(r.PostForm.Get("parent"), 10, 64)

	req := comments.CreateCommentRequest{
		Form:        r.PostForm,
		PageURI:     page.URI,
		Text:        r.PostForm.Get("text"),
		Author:      r.PostForm.Get("author"),
		AuthorEmail: r.PostForm.Get("email"),
		AuthorURL:   r.PostForm.Get("website"),
		ClientIP:    middleware.ClientIP(r),
		UserAgent:   r.UserAgent(),
		Referrer:    r.Referer(),
		ParentID:    parentID,
	}

	response, err := h.service.Create(r.Context(), middleware.GetActor(r), req)
	if err != nil {
		for _, message := range formMessages(err) {
			h.flash.Add(w, r, "comment_error", message)
		}
		http.Redirect(w, r, returnTo, http.StatusSeeOther)
		return
	}

	if response.Pending {
		h.flash.Add(w, r, "comment_success", "Thank you! Your comment is awaiting moderation.")
	} else {
		h.flash.Add(w, r, "comment_success", "Thank you for your comment!")
	}
	http.Redirect(w, r, returnTo+"#comments", http.StatusSeeOther)
}

// HandleDeleteForm handles form-encoded delete requests from the thread page
// POST /comments/{commentID}/delete
func (h *FormCommentHandler) HandleDeleteForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	returnTo := r.PostForm.Get("return_to")
	if returnTo == "" || returnTo[0] != '/' {
		returnTo = r.Referer()
	}
	if returnTo == "" {
		returnTo = "/"
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "commentID"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetActor(r), id); err != nil {
		switch {
		case errors.Is(err, comments.ErrNotAuthorized):
			h.flash.Add(w, r, "comment_error", "You are not allowed to delete this comment.")
		case comments.IsNotFound(err):
			h.flash.Add(w, r, "comment_error", "This comment no longer exists.")
		default:
			h.flash.Add(w, r, "comment_error", "The comment could not be deleted. Please try again later.")
		}
		http.Redirect(w, r, returnTo, http.StatusSeeOther)
		return
	}

	h.flash.Add(w, r, "comment_success", "The comment was deleted.")
	http.Redirect(w, r, returnTo+"#comments", http.StatusSeeOther)
}

// formMessages flattens a service error into human-readable lines for the
// form.
func formMessages(err error) []string {
	if fieldErrs := comments.AsFieldErrors(err); fieldErrs != nil {
		messages := make([]string, 0, len(fieldErrs))
		for field, message := range fieldErrs {
			messages = append(messages, fmt.Sprintf("%s: %s", field, message))
		}
		return messages
	}
	if comments.IsPolicyRejection(err) {
		return []string{err.Error()}
	}
	return []string{"Your comment could not be saved. Please try again later."}
}
