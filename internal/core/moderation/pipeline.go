// Package moderation decides the fate of candidate comments before they are
// persisted. One evaluation runs an ordered sequence of policies: structural
// validation, honeypot/time-trap bot detection, flood control, duplicate
// detection, blacklist matching and remote spam classification.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"Commentary/internal/config"
	"Commentary/internal/core/comments"
)

// Pipeline evaluates candidate comments. It is stateless across requests;
// all collaborators are injected at construction.
type Pipeline struct {
	repo       Repository
	classifier Classifier
	clock      Clock
	render     Renderer
	logger     *slog.Logger
	cfg        config.CommentsConfig
	baseURL    string
}

// NewPipeline creates a moderation pipeline. classifier and render may be
// nil; a nil classifier behaves like a missing API key and a nil renderer
// submits raw text to the classifier.
func NewPipeline(
	repo Repository,
	classifier Classifier,
	clock Clock,
	render Renderer,
	cfg config.CommentsConfig,
	baseURL string,
	logger *slog.Logger,
) *Pipeline {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		repo:       repo,
		classifier: classifier,
		clock:      clock,
		render:     render,
		logger:     logger,
		cfg:        cfg,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

// Evaluate runs the policy sequence against one candidate and returns the
// verdict. form carries the raw submitted fields; the honeypot and
// time-trap tokens live there, not on the comment itself.
//
// Only repository failures return an error. Classifier failures are
// swallowed and treated as "not spam" so a third-party outage never blocks
// legitimate comments.
func (p *Pipeline) Evaluate(ctx context.Context, candidate *comments.Comment, form url.Values, referrer string) (comments.Verdict, error) {
	// 1. Structural validation always runs first, independent of spam policy.
	if errs := candidate.Validate(); errs != nil {
		return comments.RejectFields(errs), nil
	}

	// 2. Bot detection short-circuits everything else. The caller must
	// pretend the save succeeded.
	if p.isBot(form) {
		p.logger.Info("comment dropped by bot detection",
			"page", candidate.PageURI,
			"ip", candidate.AuthorIP)
		return comments.SilentlyDrop(), nil
	}

	// 3. Flood control.
	throttled, err := p.isPartOfFlood(ctx, candidate)
	if err != nil {
		return comments.Verdict{}, fmt.Errorf("flood check failed: %w", err)
	}
	if throttled {
		return comments.Reject(comments.ErrThrottled), nil
	}

	// 4. Duplicate detection.
	duplicate, err := p.isDuplicate(ctx, candidate)
	if err != nil {
		return comments.Verdict{}, fmt.Errorf("duplicate check failed: %w", err)
	}
	if duplicate {
		return comments.Reject(comments.ErrDuplicate), nil
	}

	// 5. Blacklist. A hit marks the comment as spam rather than refusing
	// it, so the final call is made together with the remote verdict.
	blocked := p.isBlocked(candidate)

	// 6. Remote classification.
	result := p.classify(ctx, candidate, referrer)

	// 7. Compose the final verdict.
	if result.Spam && result.Discard {
		p.logger.Info("comment discarded as blatant spam",
			"page", candidate.PageURI,
			"ip", candidate.AuthorIP)
		return comments.SilentlyDrop(), nil
	}
	if result.Spam || blocked {
		return comments.AcceptMarkedSpam(), nil
	}
	return comments.Accept(), nil
}

// isBot applies the configured honeypot strategy and, when enabled, the
// reading-time trap.
func (p *Pipeline) isBot(form url.Values) bool {
	switch p.cfg.Honeypot.Mode {
	case config.HoneypotCSS:
		// The hidden field must stay empty; humans never see it.
		if form.Get(p.cfg.HoneypotField()) != "" {
			return true
		}
	case config.HoneypotJS:
		// A script fills the field with the sentinel; bots without a
		// JavaScript engine leave it unset.
		if v, err := strconv.Atoi(form.Get(p.cfg.HoneypotField())); err != nil || v != 1 {
			return true
		}
	}

	// Time based detection: a human needs a moment to read the page.
	if threshold := p.cfg.RequiredReadingTime; threshold > 0 {
		rendered, err := strconv.ParseInt(form.Get("tictoc"), 10, 64)
		if err != nil {
			return true
		}
		if p.clock.Now().Unix()-rendered < int64(threshold) {
			return true
		}
	}

	return false
}

// isPartOfFlood checks whether the submitter posted another comment within
// the throttle window. A threshold of 0 disables the check.
func (p *Pipeline) isPartOfFlood(ctx context.Context, candidate *comments.Comment) (bool, error) {
	threshold := p.cfg.Throttle
	if threshold <= 0 {
		return false, nil
	}

	last, err := p.repo.FindRecentByIPOrEmail(ctx, candidate.AuthorIP, candidate.AuthorEmail)
	if err != nil {
		if errors.Is(err, comments.ErrCommentNotFound) {
			return false, nil
		}
		return false, err
	}

	elapsed := p.clock.Now().Unix() - last.CreatedAt.Unix()
	return elapsed < int64(threshold), nil
}

func (p *Pipeline) isDuplicate(ctx context.Context, candidate *comments.Comment) (bool, error) {
	return p.repo.ExistsByTextAndAuthor(ctx, candidate.Text, candidate.Author, candidate.AuthorEmail)
}

// isBlocked tests the candidate's attributes against the configured
// blacklist. Terms are matched as quoted (literal) patterns,
// case-sensitively, against author, ip, email, agent, url and text.
func (p *Pipeline) isBlocked(candidate *comments.Comment) bool {
	if len(p.cfg.Blacklist) == 0 {
		return false
	}

	attributes := []string{
		candidate.Author,
		candidate.AuthorIP,
		candidate.AuthorEmail,
		candidate.AuthorAgent,
		candidate.AuthorURL,
		candidate.Text,
	}

	for _, term := range p.cfg.Blacklist {
		pattern, err := regexp.Compile(regexp.QuoteMeta(term))
		if err != nil {
			continue
		}
		for _, value := range attributes {
			if value != "" && pattern.MatchString(value) {
				return true
			}
		}
	}

	return false
}

// classify submits the candidate to the remote classifier. Without a key
// the step is skipped; any failure is logged and treated as "not spam".
// The discard signal is only honored in discard strictness.
func (p *Pipeline) classify(ctx context.Context, candidate *comments.Comment, referrer string) Result {
	if p.classifier == nil || p.cfg.Akismet.Key == "" {
		return Result{}
	}

	result, err := p.classifier.Check(ctx, p.PayloadFor(candidate, referrer), p.cfg.Akismet.Strictness)
	if err != nil {
		// Fail open: a classifier outage must never block legitimate
		// comments.
		p.logger.Warn("spam classifier unavailable, treating comment as ham",
			"page", candidate.PageURI,
			"error", err)
		return Result{}
	}

	if p.cfg.Akismet.Strictness != config.StrictnessDiscard {
		result.Discard = false
	}
	return result
}

// PayloadFor maps a comment into the normalized classifier payload. The
// content is the rendered HTML, matching what readers would see.
func (p *Pipeline) PayloadFor(c *comments.Comment, referrer string) Payload {
	content := c.Text
	if p.render != nil {
		content = p.render.Render(c.Text)
	}

	return Payload{
		Type:        "comment",
		Content:     content,
		Author:      c.Author,
		AuthorEmail: c.AuthorEmail,
		AuthorURL:   c.AuthorURL,
		IP:          c.AuthorIP,
		UserAgent:   c.AuthorAgent,
		Permalink:   p.baseURL + "/" + strings.TrimPrefix(c.PageURI, "/"),
		Referrer:    referrer,
	}
}

// ReportSpam notifies the classifier about a comment that should have been
// flagged. No-op without a configured key.
func (p *Pipeline) ReportSpam(ctx context.Context, c *comments.Comment) error {
	if p.classifier == nil || p.cfg.Akismet.Key == "" {
		return nil
	}
	return p.classifier.SubmitSpam(ctx, p.PayloadFor(c, ""))
}

// ReportHam reports a false positive; called when a moderator approves a
// comment that was stored as spam. No-op without a configured key.
func (p *Pipeline) ReportHam(ctx context.Context, c *comments.Comment) error {
	if p.classifier == nil || p.cfg.Akismet.Key == "" {
		return nil
	}
	return p.classifier.SubmitHam(ctx, p.PayloadFor(c, ""))
}
