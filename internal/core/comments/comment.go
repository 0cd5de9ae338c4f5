package comments

import (
	"net"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

// Status describes the moderation state of a comment.
type Status int

// Comment status codes. The zero value is deliberately Unapproved: a freshly
// submitted comment always awaits moderation.
const (
	StatusUnapproved Status = 0
	StatusApproved   Status = 1
	StatusSpam       Status = 2
	StatusTrash      Status = 3
)

// Valid reports whether s is one of the defined status codes.
func (s Status) Valid() bool {
	return s >= StatusUnapproved && s <= StatusTrash
}

func (s Status) String() string {
	switch s {
	case StatusUnapproved:
		return "unapproved"
	case StatusApproved:
		return "approved"
	case StatusSpam:
		return "spam"
	case StatusTrash:
		return "trash"
	default:
		return "unknown"
	}
}

const (
	// maxTextGraphemes is the maximum length for comment text in graphemes
	maxTextGraphemes = 10000

	// minTextLength is the minimum number of characters of comment text
	minTextLength = 5

	// maxFieldLength bounds the author and agent fields
	maxFieldLength = 255
)

// Comment is a single comment row. A comment belongs to a page via PageURI
// and is attributed either to a registered user (Username) or to a guest
// (Author + AuthorEmail). ParentID of 0 marks a top-level comment; a
// non-zero ParentID referencing a row that is absent from a result set is a
// valid, handled state (orphan).
type Comment struct {
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
	PageURI     string    `json:"pageUri" db:"page_uri"`
	Text        string    `json:"text" db:"text"`
	Author      string    `json:"author" db:"author"`
	AuthorEmail string    `json:"authorEmail" db:"author_email"`
	AuthorURL   string    `json:"authorUrl,omitempty" db:"author_url"`
	AuthorIP    string    `json:"authorIp,omitempty" db:"author_ip"`
	AuthorAgent string    `json:"authorAgent,omitempty" db:"author_agent"`
	Username    string    `json:"username,omitempty" db:"username"`
	ID          int64     `json:"id" db:"id"`
	ParentID    int64     `json:"parentId" db:"parent_id"`
	Rating      int       `json:"rating" db:"rating"`
	Status      Status    `json:"status" db:"status"`
}

// IsApproved reports whether a moderator has approved the comment.
func (c *Comment) IsApproved() bool {
	return c.Status == StatusApproved
}

// IsWaiting reports whether the comment still awaits approval.
func (c *Comment) IsWaiting() bool {
	return !c.IsApproved()
}

// IsSpam reports whether the comment has been classified as spam.
func (c *Comment) IsSpam() bool {
	return c.Status == StatusSpam
}

// IsTopLevel reports whether the comment starts a thread of its own.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == 0
}

// FieldErrors maps a field name to a human readable validation message.
// It satisfies error so a validation failure can travel through ordinary
// error returns without losing the per-field detail.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

// Validate applies the structural field rules and returns nil when the
// comment is well formed. Exactly one of (Username) or (Author +
// AuthorEmail) must identify the submitter.
func (c *Comment) Validate() FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(c.PageURI) == "" {
		errs["pageUri"] = "A page is required"
	}

	text := strings.TrimSpace(c.Text)
	switch {
	case text == "":
		errs["text"] = "A comment text is required"
	case len(text) < minTextLength:
		errs["text"] = "The comment text is too short"
	case uniseg.GraphemeClusterCount(text) > maxTextGraphemes:
		errs["text"] = "The comment text is too long"
	}

	if c.Username == "" {
		if strings.TrimSpace(c.Author) == "" {
			errs["author"] = "An author name is required"
		}
		if strings.TrimSpace(c.AuthorEmail) == "" {
			errs["authorEmail"] = "An email address is required"
		} else if !validEmail(c.AuthorEmail) {
			errs["authorEmail"] = "The email address is invalid"
		}
	} else if c.AuthorEmail != "" && !validEmail(c.AuthorEmail) {
		errs["authorEmail"] = "The email address is invalid"
	}

	if len(c.Author) > maxFieldLength {
		errs["author"] = "The author name is too long"
	}
	if len(c.AuthorAgent) > maxFieldLength {
		errs["authorAgent"] = "The user agent is too long"
	}

	if c.AuthorURL != "" && !validURL(c.AuthorURL) {
		errs["authorUrl"] = "The website address is invalid"
	}
	if c.AuthorIP != "" && net.ParseIP(c.AuthorIP) == nil {
		errs["authorIp"] = "The ip address is invalid"
	}

	if !c.Status.Valid() {
		errs["status"] = "The status code is unknown"
	}
	if c.ParentID < 0 {
		errs["parentId"] = "The parent id is invalid"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
