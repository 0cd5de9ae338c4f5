package comments

import "context"

// Repository defines the data access interface for comments.
//
// The store is a plain SQL table keyed by an auto-increment id. On create,
// zero timestamps are replaced with the current time; non-zero ones (from
// archive imports) are kept.
type Repository interface {
	// Create inserts a new comment and fills in ID and CreatedAt/UpdatedAt
	Create(ctx context.Context, comment *Comment) error

	// Update persists changes to text, author fields, rating and status
	Update(ctx context.Context, comment *Comment) error

	// Delete removes a comment row entirely
	Delete(ctx context.Context, id int64) error

	// GetByID retrieves a single comment
	GetByID(ctx context.Context, id int64) (*Comment, error)

	// ListByPage retrieves all comments for a page in insertion order.
	// limit <= 0 returns the full set.
	ListByPage(ctx context.Context, pageURI string, limit, offset int) ([]*Comment, error)

	// CountByPage counts all comments for a page
	CountByPage(ctx context.Context, pageURI string) (int, error)

	// FindRecentByIPOrEmail returns the most recent comment submitted from
	// the given ip OR email, by created_at. Returns ErrCommentNotFound when
	// no such comment exists. Used by flood control.
	FindRecentByIPOrEmail(ctx context.Context, ip, email string) (*Comment, error)

	// ExistsByTextAndAuthor reports whether a comment with the same text
	// and the same author name or email already exists. Used by duplicate
	// detection.
	ExistsByTextAndAuthor(ctx context.Context, text, author, email string) (bool, error)

	// UpdateStatus changes only the moderation status of a comment
	UpdateStatus(ctx context.Context, id int64, status Status) error
}
