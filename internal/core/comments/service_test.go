package comments

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"Commentary/internal/config"
)

// MockRepository is a mock implementation of Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, comment *Comment) error {
	args := m.Called(ctx, comment)
	if args.Error(0) == nil && comment.ID == 0 {
		comment.ID = 42
	}
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, comment *Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Comment), args.Error(1)
}

func (m *MockRepository) ListByPage(ctx context.Context, pageURI string, limit, offset int) ([]*Comment, error) {
	args := m.Called(ctx, pageURI, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Comment), args.Error(1)
}

func (m *MockRepository) CountByPage(ctx context.Context, pageURI string) (int, error) {
	args := m.Called(ctx, pageURI)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) FindRecentByIPOrEmail(ctx context.Context, ip, email string) (*Comment, error) {
	args := m.Called(ctx, ip, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Comment), args.Error(1)
}

func (m *MockRepository) ExistsByTextAndAuthor(ctx context.Context, text, author, email string) (bool, error) {
	args := m.Called(ctx, text, author, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockModerator is a mock implementation of Moderator
type MockModerator struct {
	mock.Mock
}

func (m *MockModerator) Evaluate(ctx context.Context, candidate *Comment, form url.Values, referrer string) (Verdict, error) {
	args := m.Called(ctx, candidate, form, referrer)
	return args.Get(0).(Verdict), args.Error(1)
}

func (m *MockModerator) ReportSpam(ctx context.Context, c *Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockModerator) ReportHam(ctx context.Context, c *Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

var (
	admin = &Actor{Username: "mod", Role: "admin"}
	jane  = &Actor{Username: "jane", Role: "member"}
)

func newTestService(repo Repository, moderator Moderator) Service {
	return NewCommentService(repo, moderator, nil, config.Default().Comments, nil)
}

func createRequest() CreateCommentRequest {
	return CreateCommentRequest{
		Form:        url.Values{},
		PageURI:     "blog/first-post",
		Text:        "What a lovely article, thanks for writing it.",
		Author:      "Jane Doe",
		AuthorEmail: "jane@example.com",
		ClientIP:    "203.0.113.7",
		UserAgent:   "Mozilla/5.0",
	}
}

func TestCreate_AcceptedCommentIsStoredPending(t *testing.T) {
	repo := new(MockRepository)
	moderator := new(MockModerator)

	moderator.On("Evaluate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(Accept(), nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *Comment) bool {
		return c.Status == StatusUnapproved && c.PageURI == "blog/first-post"
	})).Return(nil)

	resp, err := newTestService(repo, moderator).Create(context.Background(), nil, createRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
	assert.True(t, resp.Pending)
	assert.Equal(t, "pending", resp.Status)
	repo.AssertExpectations(t)
}

func TestCreate_MarkedSpamIsStoredAsSpam(t *testing.T) {
	repo := new(MockRepository)
	moderator := new(MockModerator)

	moderator.On("Evaluate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(AcceptMarkedSpam(), nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *Comment) bool {
		return c.Status == StatusSpam
	})).Return(nil)

	resp, err := newTestService(repo, moderator).Create(context.Background(), nil, createRequest())
	require.NoError(t, err)
	assert.Equal(t, "spam", resp.Status)
	repo.AssertExpectations(t)
}

func TestCreate_SilentDropPretendsSuccess(t *testing.T) {
	repo := new(MockRepository)
	moderator := new(MockModerator)

	moderator.On("Evaluate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(SilentlyDrop(), nil)

	resp, err := newTestService(repo, moderator).Create(context.Background(), nil, createRequest())
	require.NoError(t, err)

	// The response shape matches a real save, but nothing was stored.
	assert.Zero(t, resp.ID)
	assert.True(t, resp.Pending)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_RejectionsSurfaceAsErrors(t *testing.T) {
	t.Run("field errors", func(t *testing.T) {
		moderator := new(MockModerator)
		moderator.On("Evaluate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(RejectFields(FieldErrors{"text": "The comment text is too short"}), nil)

		_, err := newTestService(new(MockRepository), moderator).Create(context.Background(), nil, createRequest())
		require.Error(t, err)
		assert.Contains(t, AsFieldErrors(err), "text")
	})

	t.Run("throttled", func(t *testing.T) {
		moderator := new(MockModerator)
		moderator.On("Evaluate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(Reject(ErrThrottled), nil)

		_, err := newTestService(new(MockRepository), moderator).Create(context.Background(), nil, createRequest())
		assert.ErrorIs(t, err, ErrThrottled)
	})
}

func TestCreate_ParentChecks(t *testing.T) {
	t.Run("missing parent", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(7)).Return(nil, ErrCommentNotFound)

		req := createRequest()
		req.ParentID = 7
		_, err := newTestService(repo, new(MockModerator)).Create(context.Background(), nil, req)
		assert.ErrorIs(t, err, ErrParentNotFound)
	})

	t.Run("parent on another page", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(7)).
			Return(&Comment{ID: 7, PageURI: "blog/other-post"}, nil)

		req := createRequest()
		req.ParentID = 7
		_, err := newTestService(repo, new(MockModerator)).Create(context.Background(), nil, req)
		assert.ErrorIs(t, err, ErrParentNotFound)
	})
}

func TestCreate_CapabilityGate(t *testing.T) {
	cfg := config.Default().Comments
	cfg.Capabilities.Create = "admin"
	svc := NewCommentService(new(MockRepository), new(MockModerator), nil, cfg, nil)

	_, err := svc.Create(context.Background(), nil, createRequest())
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestCreate_SignedInActorGetsUsername(t *testing.T) {
	repo := new(MockRepository)
	moderator := new(MockModerator)

	moderator.On("Evaluate", mock.Anything, mock.MatchedBy(func(c *Comment) bool {
		return c.Username == "jane"
	}), mock.Anything, mock.Anything).Return(Accept(), nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := newTestService(repo, moderator).Create(context.Background(), jane, createRequest())
	require.NoError(t, err)
	moderator.AssertExpectations(t)
}

func TestList_AnonymousSeesOnlyApproved(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListByPage", mock.Anything, "blog/first-post", 0, 0).Return([]*Comment{
		{ID: 1, Status: StatusApproved, Text: "visible"},
		{ID: 2, Status: StatusUnapproved, Text: "pending"},
		{ID: 3, ParentID: 1, Status: StatusApproved, Text: "a reply"},
		{ID: 4, Status: StatusSpam, Text: "junk"},
	}, nil)

	resp, err := newTestService(repo, new(MockModerator)).List(context.Background(), nil, ListCommentsRequest{
		PageURI: "blog/first-post",
	})
	require.NoError(t, err)

	require.Len(t, resp.Comments, 1)
	assert.Equal(t, int64(1), resp.Comments[0].ID)
	require.Len(t, resp.Comments[0].Children, 1)
	assert.Equal(t, int64(3), resp.Comments[0].Children[0].ID)
	assert.Equal(t, 1, resp.Total)
}

func TestList_ModeratorMayIncludeHidden(t *testing.T) {
	repo := new(MockRepository)
	repo.On("ListByPage", mock.Anything, "blog/first-post", 0, 0).Return([]*Comment{
		{ID: 1, Status: StatusApproved},
		{ID: 2, Status: StatusUnapproved},
	}, nil)
	svc := newTestService(repo, new(MockModerator))

	resp, err := svc.List(context.Background(), admin, ListCommentsRequest{
		PageURI:       "blog/first-post",
		IncludeHidden: true,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Comments, 2)

	// The same flag is stripped for non-moderators.
	resp, err = svc.List(context.Background(), jane, ListCommentsRequest{
		PageURI:       "blog/first-post",
		IncludeHidden: true,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Comments, 1)
}

func TestList_PaginatesTopLevelThreads(t *testing.T) {
	all := make([]*Comment, 0, 5)
	for id := int64(1); id <= 5; id++ {
		all = append(all, &Comment{ID: id, Status: StatusApproved})
	}
	repo := new(MockRepository)
	repo.On("ListByPage", mock.Anything, mock.Anything, 0, 0).Return(all, nil)

	svc := newTestService(repo, new(MockModerator))

	resp, err := svc.List(context.Background(), nil, ListCommentsRequest{
		PageURI: "blog/first-post",
		Page:    2,
		PerPage: 2,
	})
	require.NoError(t, err)
	require.Len(t, resp.Comments, 2)
	assert.Equal(t, int64(3), resp.Comments[0].ID)
	assert.Equal(t, 5, resp.Total)
	assert.Equal(t, 2, resp.Page)

	// Past the end yields an empty page, not an error.
	resp, err = svc.List(context.Background(), nil, ListCommentsRequest{
		PageURI: "blog/first-post",
		Page:    9,
		PerPage: 2,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Comments)
}

func TestGet_HiddenCommentVisibility(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, int64(2)).
		Return(&Comment{ID: 2, Status: StatusUnapproved, Username: "jane", Text: "mine"}, nil)
	svc := newTestService(repo, new(MockModerator))

	_, err := svc.Get(context.Background(), nil, 2)
	assert.ErrorIs(t, err, ErrCommentNotFound)

	view, err := svc.Get(context.Background(), admin, 2)
	require.NoError(t, err)
	assert.Equal(t, "pending", view.Status)

	// The author still sees their own pending comment.
	view, err = svc.Get(context.Background(), jane, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.ID)
}

func TestUpdate_Authorization(t *testing.T) {
	stored := func() *Comment {
		return &Comment{
			ID: 5, PageURI: "blog/first-post", Username: "jane",
			Text: "original text here", Status: StatusApproved,
		}
	}

	t.Run("author edits own text", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(5)).Return(stored(), nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(c *Comment) bool {
			return c.Text == "corrected text here"
		})).Return(nil)

		view, err := newTestService(repo, new(MockModerator)).Update(context.Background(), jane, UpdateCommentRequest{
			ID:   5,
			Text: "corrected text here",
		})
		require.NoError(t, err)
		assert.Equal(t, "corrected text here", view.Text)
	})

	t.Run("strangers may not edit", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(5)).Return(stored(), nil)

		other := &Actor{Username: "sam", Role: "member"}
		_, err := newTestService(repo, new(MockModerator)).Update(context.Background(), other, UpdateCommentRequest{
			ID:   5,
			Text: "hijacked",
		})
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("invalid edit is refused", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(5)).Return(stored(), nil)

		_, err := newTestService(repo, new(MockModerator)).Update(context.Background(), jane, UpdateCommentRequest{
			ID:   5,
			Text: "x",
		})
		require.Error(t, err)
		assert.Contains(t, AsFieldErrors(err), "text")
	})
}

func TestDelete_Authorization(t *testing.T) {
	stored := &Comment{ID: 5, Username: "jane", Status: StatusApproved}

	t.Run("admin deletes", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(5)).Return(stored, nil)
		repo.On("Delete", mock.Anything, int64(5)).Return(nil)

		err := newTestService(repo, new(MockModerator)).Delete(context.Background(), admin, 5)
		assert.NoError(t, err)
	})

	t.Run("owner deletes", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(5)).Return(stored, nil)
		repo.On("Delete", mock.Anything, int64(5)).Return(nil)

		err := newTestService(repo, new(MockModerator)).Delete(context.Background(), jane, 5)
		assert.NoError(t, err)
	})

	t.Run("anonymous may not delete", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetByID", mock.Anything, int64(5)).Return(stored, nil)

		err := newTestService(repo, new(MockModerator)).Delete(context.Background(), nil, 5)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})
}

func TestApprove_ReportsFalsePositives(t *testing.T) {
	repo := new(MockRepository)
	moderator := new(MockModerator)

	repo.On("GetByID", mock.Anything, int64(9)).
		Return(&Comment{ID: 9, Status: StatusSpam, Text: "not actually spam"}, nil)
	moderator.On("ReportHam", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateStatus", mock.Anything, int64(9), StatusApproved).Return(nil)

	view, err := newTestService(repo, moderator).Approve(context.Background(), admin, 9)
	require.NoError(t, err)
	assert.Equal(t, "approved", view.Status)
	moderator.AssertExpectations(t)
}

func TestApprove_PendingCommentSkipsHamReport(t *testing.T) {
	repo := new(MockRepository)
	moderator := new(MockModerator)

	repo.On("GetByID", mock.Anything, int64(9)).
		Return(&Comment{ID: 9, Status: StatusUnapproved}, nil)
	repo.On("UpdateStatus", mock.Anything, int64(9), StatusApproved).Return(nil)

	_, err := newTestService(repo, moderator).Approve(context.Background(), admin, 9)
	require.NoError(t, err)
	moderator.AssertNotCalled(t, "ReportHam", mock.Anything, mock.Anything)
}

func TestApprove_RequiresModerationRights(t *testing.T) {
	_, err := newTestService(new(MockRepository), new(MockModerator)).Approve(context.Background(), jane, 9)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestMarkSpam_ReportsAndFlags(t *testing.T) {
	repo := new(MockRepository)
	moderator := new(MockModerator)

	repo.On("GetByID", mock.Anything, int64(3)).
		Return(&Comment{ID: 3, Status: StatusApproved, Text: "buy stuff"}, nil)
	moderator.On("ReportSpam", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateStatus", mock.Anything, int64(3), StatusSpam).Return(nil)

	view, err := newTestService(repo, moderator).MarkSpam(context.Background(), admin, 3)
	require.NoError(t, err)
	assert.Equal(t, "spam", view.Status)
	moderator.AssertExpectations(t)
}

func TestMarkSpam_AlreadyFlaggedIsIdempotent(t *testing.T) {
	repo := new(MockRepository)
	moderator := new(MockModerator)

	repo.On("GetByID", mock.Anything, int64(3)).
		Return(&Comment{ID: 3, Status: StatusSpam}, nil)

	_, err := newTestService(repo, moderator).MarkSpam(context.Background(), admin, 3)
	require.NoError(t, err)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	moderator.AssertNotCalled(t, "ReportSpam", mock.Anything, mock.Anything)
}

func TestBan_ReportsSpamAndDeletes(t *testing.T) {
	repo := new(MockRepository)
	moderator := new(MockModerator)

	repo.On("GetByID", mock.Anything, int64(4)).
		Return(&Comment{ID: 4, Status: StatusApproved, Text: "cheap pills"}, nil)
	moderator.On("ReportSpam", mock.Anything, mock.Anything).Return(nil)
	repo.On("Delete", mock.Anything, int64(4)).Return(nil)

	err := newTestService(repo, moderator).Ban(context.Background(), admin, 4)
	require.NoError(t, err)
	repo.AssertExpectations(t)
	moderator.AssertExpectations(t)
}

func TestBan_DeletesEvenWhenReportFails(t *testing.T) {
	repo := new(MockRepository)
	moderator := new(MockModerator)

	repo.On("GetByID", mock.Anything, int64(4)).
		Return(&Comment{ID: 4, Status: StatusApproved}, nil)
	moderator.On("ReportSpam", mock.Anything, mock.Anything).Return(errors.New("akismet down"))
	repo.On("Delete", mock.Anything, int64(4)).Return(nil)

	err := newTestService(repo, moderator).Ban(context.Background(), admin, 4)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestBan_RequiresDeleteCapability(t *testing.T) {
	err := newTestService(new(MockRepository), new(MockModerator)).Ban(context.Background(), jane, 4)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}
