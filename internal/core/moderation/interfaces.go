package moderation

import (
	"context"
	"time"

	"Commentary/internal/core/comments"
)

// Clock abstracts time for the throttle and time-trap checks so tests can
// pin the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Repository is the narrow slice of comment storage the pipeline reads.
// The full comments.Repository satisfies it.
type Repository interface {
	// FindRecentByIPOrEmail returns the most recent comment from the given
	// ip or email, or comments.ErrCommentNotFound when none exists.
	FindRecentByIPOrEmail(ctx context.Context, ip, email string) (*comments.Comment, error)

	// ExistsByTextAndAuthor reports whether a comment with the same text
	// and author name or email is already stored.
	ExistsByTextAndAuthor(ctx context.Context, text, author, email string) (bool, error)
}

// Payload is a comment normalized into the field names a remote spam
// classifier expects.
type Payload struct {
	Type        string
	Content     string
	Author      string
	AuthorEmail string
	AuthorURL   string
	IP          string
	UserAgent   string
	Permalink   string
	Referrer    string
}

// Result is the binary spam verdict of a remote classifier. Discard is the
// additional "blatant spam, safe to drop without review" signal.
type Result struct {
	Spam    bool
	Discard bool
}

// Classifier is the remote spam classification collaborator (Akismet or
// compatible). Implementations own their transport and timeout; the
// pipeline treats any returned error as "not spam" (fail open).
type Classifier interface {
	Check(ctx context.Context, p Payload, strictness string) (Result, error)

	// SubmitSpam reports a comment that slipped through as ham
	SubmitSpam(ctx context.Context, p Payload) error

	// SubmitHam reports a false positive to improve future classification
	SubmitHam(ctx context.Context, p Payload) error
}

// Renderer converts raw comment text to the HTML representation that is
// shown to readers. The classifier receives the rendered form, matching
// what would actually be published.
type Renderer interface {
	Render(text string) string
}
