// Package markdown renders comment bodies to sanitized HTML. The output is
// restricted to the configured tag allowlist; everything else is stripped
// so commenters cannot smuggle markup past the form.
package markdown

import (
	"bytes"
	"html"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown text into HTML limited to an allowlist of
// tags. With an empty allowlist rendering is disabled and bodies come back
// as escaped plain text wrapped in a paragraph.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	logger *slog.Logger
}

// New builds a renderer allowing only the given HTML tags in the output.
func New(allowedTags []string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	if len(allowedTags) == 0 {
		return &Renderer{logger: logger}
	}

	policy := bluemonday.NewPolicy()
	for _, tag := range allowedTags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		policy.AllowElements(tag)
		if tag == "a" {
			policy.AllowAttrs("href").OnElements("a")
			policy.AllowURLSchemes("http", "https", "mailto")
			policy.RequireNoFollowOnLinks(true)
		}
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.Linkify),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			// Raw HTML passes through here and is cleaned by the
			// sanitizer afterwards.
			gmhtml.WithUnsafe(),
		),
	)

	return &Renderer{md: md, policy: policy, logger: logger}
}

// Render converts one comment body. It never fails: on a conversion error
// the escaped source text is returned instead.
func (r *Renderer) Render(text string) string {
	if r == nil || r.md == nil {
		return "<p>" + html.EscapeString(text) + "</p>"
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		r.logger.Warn("markdown conversion failed, falling back to plain text", "error", err)
		return "<p>" + html.EscapeString(text) + "</p>"
	}
	return strings.TrimSpace(r.policy.Sanitize(buf.String()))
}
