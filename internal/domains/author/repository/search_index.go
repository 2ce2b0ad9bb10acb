package repository

import (
	"context"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/infrastructure/search"
	pkgdb "bookshelf-backend/pkg/database"
	"bookshelf-backend/pkg/metrics"
)

type searchIndex struct {
	index *search.Index[model.Author]
}

func NewSearchIndex(db pkgdb.DBTX, language string, breaker *search.Breaker, m *metrics.Metrics) SearchIndex {
	return &searchIndex{
		index: search.NewIndex[model.Author](db, search.IndexConfig{
			Entity:   model.EntityName,
			Table:    "author_search_index",
			Language: language,
			Fields: []search.Field{
				{Path: []string{"name"}, Weight: 'A'},
			},
		}, breaker, m),
	}
}

func (s *searchIndex) Upsert(ctx context.Context, a *model.Author) error {
	return s.index.Upsert(ctx, a.ID, *a)
}

func (s *searchIndex) Delete(ctx context.Context, id int64) error {
	return s.index.Delete(ctx, id)
}

func (s *searchIndex) Search(ctx context.Context, query string) ([]model.Author, error) {
	return s.index.Search(ctx, query)
}

func (s *searchIndex) Rebuild(ctx context.Context, fetch search.PageFetcher[model.Author]) (search.RebuildStats, error) {
	return search.Rebuild(ctx, s.index, func(a model.Author) int64 { return a.ID }, fetch)
}
