package pages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a page service backed by the given repository.
func NewService(repo Repository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{repo: repo, logger: logger}
}

func (s *service) Resolve(ctx context.Context, hash string) (*Page, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if len(hash) != 32 {
		return nil, ErrPageNotFound
	}
	return s.repo.GetByHash(ctx, hash)
}

func (s *service) ResolveURI(ctx context.Context, uri, title string) (*Page, error) {
	uri = strings.Trim(strings.TrimSpace(uri), "/")
	if uri == "" {
		return nil, ErrPageNotFound
	}

	page, err := s.repo.GetByURI(ctx, uri)
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, ErrPageNotFound) {
		return nil, fmt.Errorf("resolving page %q: %w", uri, err)
	}

	page = &Page{
		URI:     uri,
		Hash:    HashURI(uri),
		Title:   title,
		Visible: true,
	}
	id, err := s.repo.Create(ctx, page)
	if err != nil {
		// Lost a race with a concurrent register, re-read.
		if errors.Is(err, ErrPageExists) {
			return s.repo.GetByURI(ctx, uri)
		}
		return nil, fmt.Errorf("registering page %q: %w", uri, err)
	}
	page.ID = id

	s.logger.Info("registered page", "uri", uri, "hash", page.Hash)
	return page, nil
}

func (s *service) List(ctx context.Context) ([]*Page, error) {
	return s.repo.List(ctx)
}
