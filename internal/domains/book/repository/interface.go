package repository

import (
	"context"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/infrastructure/search"
	"bookshelf-backend/internal/shared/pagination"
)

// RepositoryInterface is the durable store of books. Books come back with a
// resolved author reference.
type RepositoryInterface interface {
	// Create fails with ErrAuthorReferenceNotFound when the author id has no row.
	Create(ctx context.Context, b *model.Book) (*model.Book, error)
	Update(ctx context.Context, b *model.Book) (*model.Book, error)
	FindByID(ctx context.Context, id int64) (*model.Book, error)
	FindPage(ctx context.Context, p pagination.Pageable) (pagination.Page[model.Book], error)
	Delete(ctx context.Context, id int64) error
}

type SearchIndex interface {
	Upsert(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]model.Book, error)
	Rebuild(ctx context.Context, fetch search.PageFetcher[model.Book]) (search.RebuildStats, error)
}
