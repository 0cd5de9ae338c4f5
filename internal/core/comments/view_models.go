package comments

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// CommentView is the read model of a single comment. Text is the stored
// source, HTML the rendered form clients should display. EmailMD5 supports
// avatar services without exposing the address itself.
type CommentView struct {
	CreatedAt string         `json:"createdAt"`
	Author    string         `json:"author"`
	AuthorURL string         `json:"authorUrl,omitempty"`
	Username  string         `json:"username,omitempty"`
	EmailMD5  string         `json:"emailMd5,omitempty"`
	Status    string         `json:"status"`
	Text      string         `json:"text"`
	HTML      string         `json:"html"`
	Children  []*CommentView `json:"children,omitempty"`
	ID        int64          `json:"id"`
	ParentID  int64          `json:"parentId,omitempty"`
	Rating    int            `json:"rating"`
}

// ThreadResponse is a page of top-level comments with their nested replies.
type ThreadResponse struct {
	Comments []*CommentView `json:"comments"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PerPage  int            `json:"perPage"`
}

// EmailHash returns the lowercase hex md5 of a normalized email address,
// the convention gravatar-style avatar services expect. Empty input yields
// an empty hash.
func EmailHash(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	sum := md5.Sum([]byte(email))
	return hex.EncodeToString(sum[:])
}

func statusLabel(s Status) string {
	switch s {
	case StatusApproved:
		return "approved"
	case StatusSpam:
		return "spam"
	case StatusTrash:
		return "trash"
	default:
		return "pending"
	}
}

// buildView converts one comment into its read model, without children.
func buildView(c *Comment, render Renderer) *CommentView {
	html := c.Text
	if render != nil {
		html = render.Render(c.Text)
	}
	return &CommentView{
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		Author:    c.Author,
		AuthorURL: c.AuthorURL,
		Username:  c.Username,
		EmailMD5:  EmailHash(c.AuthorEmail),
		Status:    statusLabel(c.Status),
		Text:      c.Text,
		HTML:      html,
		ID:        c.ID,
		ParentID:  c.ParentID,
		Rating:    c.Rating,
	}
}

// buildThread converts a subtree rooted at node into nested views.
func buildThread(node Node, render Renderer) *CommentView {
	view := buildView(node.Comment(), render)
	for _, child := range node.Children() {
		view.Children = append(view.Children, buildThread(child, render))
	}
	return view
}
