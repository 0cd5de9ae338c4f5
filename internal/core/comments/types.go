package comments

import "net/url"

// Actor identifies the authenticated user performing an operation.
// A nil *Actor means the request is anonymous.
type Actor struct {
	Username string
	Role     string
}

// SignedIn reports whether the actor carries an authenticated identity.
func (a *Actor) SignedIn() bool {
	return a != nil && a.Username != ""
}

// RoleName returns the actor's role, or the empty string for anonymous
// visitors.
func (a *Actor) RoleName() string {
	if a == nil {
		return ""
	}
	return a.Role
}

// CreateCommentRequest contains parameters for submitting a comment
type CreateCommentRequest struct {
	// Form is the raw submission; the bot traps read their tokens from
	// here rather than from named fields
	Form url.Values

	PageURI     string
	Text        string
	Author      string
	AuthorEmail string
	AuthorURL   string
	ClientIP    string
	UserAgent   string
	Referrer    string
	ParentID    int64
}

// CreateCommentResponse contains the result of submitting a comment.
// A silently dropped submission returns the same shape with ID 0 so
// automated submitters cannot tell they were detected.
type CreateCommentResponse struct {
	Status  string `json:"status"`
	ID      int64  `json:"id"`
	Pending bool   `json:"pending"`
}

// UpdateCommentRequest contains parameters for editing a comment
type UpdateCommentRequest struct {
	Text        string
	Author      string
	AuthorEmail string
	AuthorURL   string
	ID          int64
}

// ListCommentsRequest defines the parameters for fetching a page's thread
type ListCommentsRequest struct {
	PageURI string
	Page    int
	PerPage int

	// IncludeHidden also returns unapproved and spam comments; set for
	// actors with moderation rights
	IncludeHidden bool
}
