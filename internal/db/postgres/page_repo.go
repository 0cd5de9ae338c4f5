package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"Commentary/internal/core/pages"
)

type postgresPageRepo struct {
	db *sql.DB
}

// NewPageRepository creates a new PostgreSQL page catalog repository
func NewPageRepository(db *sql.DB) pages.Repository {
	return &postgresPageRepo{db: db}
}

func (r *postgresPageRepo) Create(ctx context.Context, page *pages.Page) (int64, error) {
	query := `
		INSERT INTO pages (uri, hash, title, visible, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(
		ctx, query,
		page.URI, page.Hash, page.Title, page.Visible,
	).Scan(&page.ID, &page.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		// 23505 = unique_violation
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return 0, pages.ErrPageExists
		}
		return 0, fmt.Errorf("failed to insert page %q: %w", page.URI, err)
	}
	return page.ID, nil
}

func (r *postgresPageRepo) GetByHash(ctx context.Context, hash string) (*pages.Page, error) {
	return r.getBy(ctx, "hash", hash)
}

func (r *postgresPageRepo) GetByURI(ctx context.Context, uri string) (*pages.Page, error) {
	return r.getBy(ctx, "uri", uri)
}

func (r *postgresPageRepo) getBy(ctx context.Context, column, value string) (*pages.Page, error) {
	query := fmt.Sprintf(`
		SELECT id, uri, hash, title, visible, created_at
		FROM pages
		WHERE %s = $1
	`, column)

	var p pages.Page
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&p.ID, &p.URI, &p.Hash, &p.Title, &p.Visible, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pages.ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page by %s %q: %w", column, value, err)
	}
	return &p, nil
}

func (r *postgresPageRepo) List(ctx context.Context) ([]*pages.Page, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, uri, hash, title, visible, created_at
		FROM pages
		ORDER BY uri ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var result []*pages.Page
	for rows.Next() {
		var p pages.Page
		if err := rows.Scan(&p.ID, &p.URI, &p.Hash, &p.Title, &p.Visible, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page row: %w", err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate page rows: %w", err)
	}
	return result, nil
}
