package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"Commentary/internal/core/comments"
)

type postgresCommentRepo struct {
	db *sql.DB
}

// NewCommentRepository creates a new PostgreSQL comment repository
func NewCommentRepository(db *sql.DB) comments.Repository {
	return &postgresCommentRepo{db: db}
}

const commentColumns = `
	id, page_uri, parent_id, text, author, author_email, author_url,
	author_ip, author_agent, username, rating, status, created_at, updated_at
`

// Create inserts a new comment and fills in the generated id and the
// database-assigned timestamps.
func (r *postgresCommentRepo) Create(ctx context.Context, comment *comments.Comment) error {
	query := `
		INSERT INTO comments (
			page_uri, parent_id, text, author, author_email, author_url,
			author_ip, author_agent, username, rating, status,
			created_at, updated_at
		) VALUES (
			$1, NULLIF($2, 0), $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13
		)
		RETURNING id, created_at, updated_at
	`

	// Archive imports carry their original timestamps; everything else
	// is stamped now.
	createdAt := comment.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	updatedAt := comment.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	err := r.db.QueryRowContext(
		ctx, query,
		comment.PageURI, comment.ParentID, comment.Text,
		comment.Author, comment.AuthorEmail, comment.AuthorURL,
		comment.AuthorIP, comment.AuthorAgent, comment.Username,
		comment.Rating, int(comment.Status), createdAt, updatedAt,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// Update persists the mutable fields of a comment.
func (r *postgresCommentRepo) Update(ctx context.Context, comment *comments.Comment) error {
	query := `
		UPDATE comments
		SET
			text = $1,
			author = $2,
			author_email = $3,
			author_url = $4,
			rating = $5,
			status = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(
		ctx, query,
		comment.Text, comment.Author, comment.AuthorEmail, comment.AuthorURL,
		comment.Rating, int(comment.Status), comment.ID,
	).Scan(&comment.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return comments.ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update comment %d: %w", comment.ID, err)
	}
	return nil
}

// Delete removes a comment. Replies cascade via the parent_id foreign key.
func (r *postgresCommentRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion of comment %d: %w", id, err)
	}
	if affected == 0 {
		return comments.ErrCommentNotFound
	}
	return nil
}

func (r *postgresCommentRepo) GetByID(ctx context.Context, id int64) (*comments.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, comments.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment %d: %w", id, err)
	}
	return comment, nil
}

// ListByPage returns a page's comments in insertion order, the order thread
// assembly relies on. limit <= 0 returns everything.
func (r *postgresCommentRepo) ListByPage(ctx context.Context, pageURI string, limit, offset int) ([]*comments.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE page_uri = $1
		ORDER BY id ASC
	`
	args := []any{pageURI}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments for %q: %w", pageURI, err)
	}
	defer rows.Close()

	var result []*comments.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		result = append(result, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comment rows: %w", err)
	}
	return result, nil
}

func (r *postgresCommentRepo) CountByPage(ctx context.Context, pageURI string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE page_uri = $1`, pageURI,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count comments for %q: %w", pageURI, err)
	}
	return count, nil
}

// FindRecentByIPOrEmail returns the newest comment submitted from the given
// ip or email address. Empty values never match, so anonymous submitters
// are only throttled by ip.
func (r *postgresCommentRepo) FindRecentByIPOrEmail(ctx context.Context, ip, email string) (*comments.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE (author_ip = $1 AND $1 <> '')
		   OR (author_email = $2 AND $2 <> '')
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, ip, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, comments.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recent comment: %w", err)
	}
	return comment, nil
}

func (r *postgresCommentRepo) ExistsByTextAndAuthor(ctx context.Context, text, author, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM comments
			WHERE text = $1
			  AND ((author = $2 AND $2 <> '') OR (author_email = $3 AND $3 <> ''))
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, text, author, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for duplicate comment: %w", err)
	}
	return exists, nil
}

func (r *postgresCommentRepo) UpdateStatus(ctx context.Context, id int64, status comments.Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET status = $1, updated_at = NOW() WHERE id = $2`,
		int(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update status of comment %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check status update of comment %d: %w", id, err)
	}
	if affected == 0 {
		return comments.ErrCommentNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanComment(row scanner) (*comments.Comment, error) {
	var c comments.Comment
	var parentID sql.NullInt64
	var status int

	err := row.Scan(
		&c.ID, &c.PageURI, &parentID, &c.Text,
		&c.Author, &c.AuthorEmail, &c.AuthorURL,
		&c.AuthorIP, &c.AuthorAgent, &c.Username,
		&c.Rating, &status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		c.ParentID = parentID.Int64
	}
	c.Status = comments.Status(status)
	return &c, nil
}
