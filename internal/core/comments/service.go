package comments

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"Commentary/internal/config"
)

// Moderator decides the fate of a candidate comment before it is saved and
// forwards manual spam/ham corrections to the classifier.
type Moderator interface {
	Evaluate(ctx context.Context, candidate *Comment, form url.Values, referrer string) (Verdict, error)
	ReportSpam(ctx context.Context, c *Comment) error
	ReportHam(ctx context.Context, c *Comment) error
}

// Renderer turns stored comment text into safe HTML for display.
type Renderer interface {
	Render(text string) string
}

// Service defines the business logic interface for comment operations.
// Orchestrates moderation, repository calls and view model construction.
type Service interface {
	// List retrieves a page's comment thread, nested and paginated by
	// top-level comment
	List(ctx context.Context, actor *Actor, req ListCommentsRequest) (*ThreadResponse, error)

	// Get retrieves a single comment
	Get(ctx context.Context, actor *Actor, id int64) (*CommentView, error)

	// Create runs the moderation pipeline and stores the comment if it
	// survives
	Create(ctx context.Context, actor *Actor, req CreateCommentRequest) (*CreateCommentResponse, error)

	// Update edits an existing comment
	Update(ctx context.Context, actor *Actor, req UpdateCommentRequest) (*CommentView, error)

	// Delete removes a comment and its replies
	Delete(ctx context.Context, actor *Actor, id int64) error

	// Approve publishes a pending or spam-flagged comment, reporting the
	// false positive to the classifier when it was flagged
	Approve(ctx context.Context, actor *Actor, id int64) (*CommentView, error)

	// MarkSpam flags a published comment as spam and reports it to the
	// classifier
	MarkSpam(ctx context.Context, actor *Actor, id int64) (*CommentView, error)

	// Ban reports a comment as spam and removes it entirely
	Ban(ctx context.Context, actor *Actor, id int64) error
}

type commentService struct {
	repo      Repository
	moderator Moderator
	render    Renderer
	logger    *slog.Logger
	cfg       config.CommentsConfig
}

// NewCommentService creates a comment service instance. render may be nil,
// in which case views carry the raw text as HTML.
func NewCommentService(
	repo Repository,
	moderator Moderator,
	render Renderer,
	cfg config.CommentsConfig,
	logger *slog.Logger,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{
		repo:      repo,
		moderator: moderator,
		render:    render,
		logger:    logger,
		cfg:       cfg,
	}
}

func (s *commentService) List(ctx context.Context, actor *Actor, req ListCommentsRequest) (*ThreadResponse, error) {
	if !config.Allows(s.cfg.Capabilities.Read, actor.RoleName()) {
		return nil, ErrNotAuthorized
	}
	if req.IncludeHidden && !s.canModerate(actor) {
		req.IncludeHidden = false
	}

	all, err := s.repo.ListByPage(ctx, req.PageURI, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("listing comments for %q: %w", req.PageURI, err)
	}

	visible := all
	if !req.IncludeHidden {
		visible = make([]*Comment, 0, len(all))
		for _, c := range all {
			if c.IsApproved() {
				visible = append(visible, c)
			}
		}
	}

	forest := BuildForest(visible)
	roots := forest.Roots()
	total := len(roots)

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = s.cfg.PerPage
	}
	page := req.Page
	if page <= 0 {
		page = 1
	}
	if perPage > 0 {
		start := (page - 1) * perPage
		if start >= total {
			roots = nil
		} else {
			end := min(start+perPage, total)
			roots = roots[start:end]
		}
	}

	views := make([]*CommentView, 0, len(roots))
	for _, root := range roots {
		views = append(views, buildThread(root, s.render))
	}

	return &ThreadResponse{
		Comments: views,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
	}, nil
}

func (s *commentService) Get(ctx context.Context, actor *Actor, id int64) (*CommentView, error) {
	if !config.Allows(s.cfg.Capabilities.Read, actor.RoleName()) {
		return nil, ErrNotAuthorized
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Hidden comments only exist for moderators and their author.
	if !c.IsApproved() && !s.canModerate(actor) && !ownedBy(c, actor) {
		return nil, ErrCommentNotFound
	}

	return buildView(c, s.render), nil
}

func (s *commentService) Create(ctx context.Context, actor *Actor, req CreateCommentRequest) (*CreateCommentResponse, error) {
	if !config.Allows(s.cfg.Capabilities.Create, actor.RoleName()) {
		return nil, ErrNotAuthorized
	}

	candidate := &Comment{
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
		PageURI:     strings.Trim(strings.TrimSpace(req.PageURI), "/"),
		Text:        strings.TrimSpace(req.Text),
		Author:      strings.TrimSpace(req.Author),
		AuthorEmail: strings.TrimSpace(req.AuthorEmail),
		AuthorURL:   strings.TrimSpace(req.AuthorURL),
		AuthorIP:    req.ClientIP,
		AuthorAgent: req.UserAgent,
		ParentID:    req.ParentID,
		Status:      StatusUnapproved,
	}
	if actor.SignedIn() {
		candidate.Username = actor.Username
	}

	if candidate.ParentID != 0 {
		parent, err := s.repo.GetByID(ctx, candidate.ParentID)
		if err != nil {
			if IsNotFound(err) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("resolving parent %d: %w", candidate.ParentID, err)
		}
		if parent.PageURI != candidate.PageURI {
			return nil, ErrParentNotFound
		}
	}

	verdict, err := s.moderator.Evaluate(ctx, candidate, req.Form, req.Referrer)
	if err != nil {
		return nil, fmt.Errorf("moderating comment: %w", err)
	}

	switch verdict.Kind {
	case VerdictReject:
		if verdict.FieldErrors != nil {
			return nil, verdict.FieldErrors
		}
		return nil, verdict.Reason

	case VerdictSilentlyDrop:
		// Same success shape as a real save. ID 0 never resolves.
		return &CreateCommentResponse{
			Status:  statusLabel(StatusUnapproved),
			Pending: true,
		}, nil

	case VerdictAcceptMarkedSpam:
		candidate.Status = StatusSpam
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, fmt.Errorf("saving comment: %w", err)
	}

	s.logger.Info("comment created",
		"id", candidate.ID,
		"page", candidate.PageURI,
		"status", statusLabel(candidate.Status))

	return &CreateCommentResponse{
		Status:  statusLabel(candidate.Status),
		ID:      candidate.ID,
		Pending: candidate.IsWaiting(),
	}, nil
}

func (s *commentService) Update(ctx context.Context, actor *Actor, req UpdateCommentRequest) (*CommentView, error) {
	c, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	moderator := s.canModerate(actor)
	if !moderator && !ownedBy(c, actor) {
		return nil, ErrNotAuthorized
	}

	c.Text = strings.TrimSpace(req.Text)
	if moderator {
		// Only moderators rewrite identity fields.
		c.Author = strings.TrimSpace(req.Author)
		c.AuthorEmail = strings.TrimSpace(req.AuthorEmail)
		c.AuthorURL = strings.TrimSpace(req.AuthorURL)
	}
	c.UpdatedAt = time.Now().UTC()

	if errs := c.Validate(); errs != nil {
		return nil, errs
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("updating comment %d: %w", req.ID, err)
	}

	return buildView(c, s.render), nil
}

func (s *commentService) Delete(ctx context.Context, actor *Actor, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !config.Allows(s.cfg.Capabilities.Delete, actor.RoleName()) && !ownedBy(c, actor) {
		return ErrNotAuthorized
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting comment %d: %w", id, err)
	}

	s.logger.Info("comment deleted", "id", id, "page", c.PageURI)
	return nil
}

func (s *commentService) Approve(ctx context.Context, actor *Actor, id int64) (*CommentView, error) {
	if !s.canModerate(actor) {
		return nil, ErrNotAuthorized
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// A spam-flagged comment being approved is a false positive worth
	// teaching the classifier about.
	if c.IsSpam() {
		if err := s.moderator.ReportHam(ctx, c); err != nil {
			s.logger.Warn("ham report failed", "id", id, "error", err)
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusApproved); err != nil {
		return nil, fmt.Errorf("approving comment %d: %w", id, err)
	}
	c.Status = StatusApproved

	s.logger.Info("comment approved", "id", id, "page", c.PageURI)
	return buildView(c, s.render), nil
}

func (s *commentService) MarkSpam(ctx context.Context, actor *Actor, id int64) (*CommentView, error) {
	if !s.canModerate(actor) {
		return nil, ErrNotAuthorized
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsSpam() {
		return buildView(c, s.render), nil
	}

	if err := s.moderator.ReportSpam(ctx, c); err != nil {
		s.logger.Warn("spam report failed", "id", id, "error", err)
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusSpam); err != nil {
		return nil, fmt.Errorf("flagging comment %d: %w", id, err)
	}
	c.Status = StatusSpam

	s.logger.Info("comment flagged as spam", "id", id, "page", c.PageURI)
	return buildView(c, s.render), nil
}

func (s *commentService) Ban(ctx context.Context, actor *Actor, id int64) error {
	if !config.Allows(s.cfg.Capabilities.Delete, actor.RoleName()) {
		return ErrNotAuthorized
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// The report is best effort; the removal must happen either way.
	if err := s.moderator.ReportSpam(ctx, c); err != nil {
		s.logger.Warn("spam report failed", "id", id, "error", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("banning comment %d: %w", id, err)
	}

	s.logger.Info("comment banned", "id", id, "page", c.PageURI)
	return nil
}

func (s *commentService) canModerate(actor *Actor) bool {
	return config.Allows(s.cfg.Capabilities.Update, actor.RoleName())
}

func ownedBy(c *Comment, actor *Actor) bool {
	return actor.SignedIn() && c.Username == actor.Username
}
