package repository

import (
	"context"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/infrastructure/search"
	pkgdb "bookshelf-backend/pkg/database"
	"bookshelf-backend/pkg/metrics"
)

type searchIndex struct {
	index *search.Index[model.Book]
}

// NewSearchIndex indexes title, author name and description, in that order of weight.
func NewSearchIndex(db pkgdb.DBTX, language string, breaker *search.Breaker, m *metrics.Metrics) SearchIndex {
	return &searchIndex{
		index: search.NewIndex[model.Book](db, search.IndexConfig{
			Entity:   model.EntityName,
			Table:    "book_search_index",
			Language: language,
			Fields: []search.Field{
				{Path: []string{"title"}, Weight: 'A'},
				{Path: []string{"author", "name"}, Weight: 'B'},
				{Path: []string{"description"}, Weight: 'C'},
			},
		}, breaker, m),
	}
}

func (s *searchIndex) Upsert(ctx context.Context, b *model.Book) error {
	return s.index.Upsert(ctx, b.ID, *b)
}

func (s *searchIndex) Delete(ctx context.Context, id int64) error {
	return s.index.Delete(ctx, id)
}

func (s *searchIndex) Search(ctx context.Context, query string) ([]model.Book, error) {
	return s.index.Search(ctx, query)
}

func (s *searchIndex) Rebuild(ctx context.Context, fetch search.PageFetcher[model.Book]) (search.RebuildStats, error) {
	return search.Rebuild(ctx, s.index, func(b model.Book) int64 { return b.ID }, fetch)
}
