package service

import (
	"context"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/infrastructure/search"
	"bookshelf-backend/internal/shared/pagination"
)

type ServiceInterface interface {
	Create(ctx context.Context, dto *model.BookDTO) (*model.BookDTO, error)
	// Update overwrites the book with dto.ID; a nil id creates instead.
	Update(ctx context.Context, dto *model.BookDTO) (*model.BookDTO, error)
	FindAll(ctx context.Context, p pagination.Pageable) (pagination.Page[model.BookDTO], error)
	FindOne(ctx context.Context, id int64) (*model.BookDTO, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]model.BookDTO, error)

	Reindex(ctx context.Context, id int64) error
	RebuildIndex(ctx context.Context) (search.RebuildStats, error)
}
