package pages

import "context"

// Repository defines the data access contract for the page catalog.
type Repository interface {
	// Create registers a page. The hash is derived from the uri before
	// insert. Returns ErrPageExists if the uri is already registered.
	Create(ctx context.Context, page *Page) (int64, error)

	// GetByHash resolves a page by its public hash.
	// Returns ErrPageNotFound if no page matches.
	GetByHash(ctx context.Context, hash string) (*Page, error)

	// GetByURI resolves a page by its uri.
	// Returns ErrPageNotFound if no page matches.
	GetByURI(ctx context.Context, uri string) (*Page, error)

	// List returns all registered pages ordered by uri.
	List(ctx context.Context) ([]*Page, error)
}

// Service exposes page resolution to the API layer.
type Service interface {
	// Resolve maps a public hash back to its page.
	Resolve(ctx context.Context, hash string) (*Page, error)

	// ResolveURI looks a page up by uri, registering it on first sight so
	// a thread can be created for pages the catalog has not seen yet.
	ResolveURI(ctx context.Context, uri, title string) (*Page, error)

	// List returns the full catalog.
	List(ctx context.Context) ([]*Page, error)
}
