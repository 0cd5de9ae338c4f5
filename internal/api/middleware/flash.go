package middleware

import (
	"log"
	"net/http"

	"github.com/gorilla/sessions"
)

const flashSessionName = "commentary_flash"

// FlashStore carries one-shot messages across the redirect of a plain form
// submission, so the comment form can report validation errors without
// JavaScript.
type FlashStore struct {
	store *sessions.CookieStore
}

// NewFlashStore creates a cookie-backed flash store signed with secret
func NewFlashStore(secret string) *FlashStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &FlashStore{store: store}
}

// Add queues a message under the given key for the next request.
func (f *FlashStore) Add(w http.ResponseWriter, r *http.Request, key, message string) {
	session, _ := f.store.Get(r, flashSessionName)
	session.AddFlash(message, key)
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save flash session: %v", err)
	}
}

// Consume returns and clears the messages queued under key.
func (f *FlashStore) Consume(w http.ResponseWriter, r *http.Request, key string) []string {
	session, _ := f.store.Get(r, flashSessionName)
	raw := session.Flashes(key)
	if err := session.Save(r, w); err != nil {
		log.Printf("Failed to save flash session: %v", err)
	}

	messages := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			messages = append(messages, s)
		}
	}
	return messages
}
