// Package akismet implements the Akismet REST protocol (comment-check,
// submit-spam, submit-ham, verify-key). Requests are form-encoded POSTs
// against <key>.rest.akismet.com; responses are bare "true"/"false"/"valid"
// bodies.
package akismet

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"Commentary/internal/core/moderation"
)

const (
	defaultHost    = "rest.akismet.com"
	apiVersion     = "1.1"
	defaultTimeout = 60 * time.Second

	// proTipHeader carries the "blatant spam" signal on comment-check
	// responses.
	proTipHeader = "X-Akismet-Pro-Tip"
)

// Client is an Akismet API client bound to one API key and one blog URL.
// It satisfies moderation.Classifier.
type Client struct {
	httpClient *http.Client
	key        string
	blog       string
	host       string
	baseURL    string
	userAgent  string
}

var _ moderation.Classifier = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http client (60s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points every call at a fixed base URL instead of the
// key-addressed production host, for tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(base, "/") }
}

// NewClient creates a client for the given API key and blog front page URL.
func NewClient(key, blog string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		key:        key,
		blog:       blog,
		host:       defaultHost,
		userAgent:  "Commentary/1.0 | Akismet/" + apiVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VerifyKey checks the API key against the service. Meant to run once at
// startup so a misconfigured key is caught before the first comment.
func (c *Client) VerifyKey(ctx context.Context) error {
	form := url.Values{}
	form.Set("key", c.key)
	form.Set("blog", c.blog)

	// verify-key is the one call addressed without the key subdomain.
	endpoint := fmt.Sprintf("https://%s/%s/verify-key", c.host, apiVersion)
	if c.baseURL != "" {
		endpoint = fmt.Sprintf("%s/%s/verify-key", c.baseURL, apiVersion)
	}
	body, _, err := c.post(ctx, endpoint, form)
	if err != nil {
		return err
	}
	if body != "valid" {
		return fmt.Errorf("akismet rejected api key: %q", body)
	}
	return nil
}

// Check classifies one comment. The strictness argument is accepted for
// interface compatibility; the discard signal always reflects the pro-tip
// header and callers decide whether to honor it.
func (c *Client) Check(ctx context.Context, p moderation.Payload, strictness string) (moderation.Result, error) {
	body, header, err := c.post(ctx, c.endpoint("comment-check"), c.form(p))
	if err != nil {
		return moderation.Result{}, err
	}

	switch body {
	case "true":
		discard := strings.EqualFold(header.Get(proTipHeader), "discard")
		return moderation.Result{Spam: true, Discard: discard}, nil
	case "false":
		return moderation.Result{}, nil
	default:
		return moderation.Result{}, fmt.Errorf("unexpected comment-check response: %q", body)
	}
}

// SubmitSpam reports a comment that should have been classified as spam.
func (c *Client) SubmitSpam(ctx context.Context, p moderation.Payload) error {
	_, _, err := c.post(ctx, c.endpoint("submit-spam"), c.form(p))
	return err
}

// SubmitHam reports a false positive.
func (c *Client) SubmitHam(ctx context.Context, p moderation.Payload) error {
	_, _, err := c.post(ctx, c.endpoint("submit-ham"), c.form(p))
	return err
}

func (c *Client) endpoint(call string) string {
	if c.baseURL != "" {
		return fmt.Sprintf("%s/%s/%s", c.baseURL, apiVersion, call)
	}
	return fmt.Sprintf("https://%s.%s/%s/%s", c.key, c.host, apiVersion, call)
}

func (c *Client) form(p moderation.Payload) url.Values {
	form := url.Values{}
	form.Set("blog", c.blog)
	form.Set("user_ip", p.IP)
	form.Set("user_agent", p.UserAgent)
	form.Set("referrer", p.Referrer)
	form.Set("permalink", p.Permalink)
	form.Set("comment_type", p.Type)
	form.Set("comment_author", p.Author)
	form.Set("comment_author_email", p.AuthorEmail)
	form.Set("comment_author_url", p.AuthorURL)
	form.Set("comment_content", p.Content)
	return form
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values) (string, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", nil, fmt.Errorf("building akismet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("calling akismet: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", nil, fmt.Errorf("reading akismet response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("akismet returned status %d", resp.StatusCode)
	}
	if debug := resp.Header.Get("X-Akismet-Debug-Help"); debug != "" {
		return "", nil, fmt.Errorf("akismet request invalid: %s", debug)
	}

	return strings.TrimSpace(string(raw)), resp.Header, nil
}
