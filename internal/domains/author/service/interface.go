package service

import (
	"context"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/infrastructure/search"
	"bookshelf-backend/internal/shared/pagination"
)

type ServiceInterface interface {
	// Create persists an author without an id and mirrors it into the index.
	Create(ctx context.Context, dto *model.AuthorDTO) (*model.AuthorDTO, error)
	// Update overwrites the author with dto.ID; a nil id creates instead.
	Update(ctx context.Context, dto *model.AuthorDTO) (*model.AuthorDTO, error)
	FindAll(ctx context.Context, p pagination.Pageable) (pagination.Page[model.AuthorDTO], error)
	FindOne(ctx context.Context, id int64) (*model.AuthorDTO, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]model.AuthorDTO, error)

	// Reindex copies the stored author into the index, or drops it from the index when gone.
	Reindex(ctx context.Context, id int64) error
	RebuildIndex(ctx context.Context) (search.RebuildStats, error)
}
