package repository

import (
	"context"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/infrastructure/search"
	"bookshelf-backend/internal/shared/pagination"
)

// RepositoryInterface is the durable store of authors.
type RepositoryInterface interface {
	Create(ctx context.Context, a *model.Author) (*model.Author, error)
	// Update overwrites the row with a.ID; ErrAuthorNotFound when there is none.
	Update(ctx context.Context, a *model.Author) (*model.Author, error)
	FindByID(ctx context.Context, id int64) (*model.Author, error)
	FindPage(ctx context.Context, p pagination.Pageable) (pagination.Page[model.Author], error)
	// Delete is idempotent; ErrAuthorHasBooks when books still reference the author.
	Delete(ctx context.Context, id int64) error
}

// SearchIndex is the full-text copy of authors.
type SearchIndex interface {
	Upsert(ctx context.Context, a *model.Author) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]model.Author, error)
	Rebuild(ctx context.Context, fetch search.PageFetcher[model.Author]) (search.RebuildStats, error)
}
