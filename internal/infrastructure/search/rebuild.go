package search

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// PageFetcher returns page n of the source ordered by id, and whether it was the last one.
type PageFetcher[D any] func(ctx context.Context, n int) (docs []D, last bool, err error)

type RebuildStats struct {
	Entity   string
	Indexed  int
	Removed  int64
	Duration time.Duration
}

// Rebuild upserts every document the fetcher yields and then removes index rows
// that were not written during the run. Writes that race with the rebuild keep
// their newer indexed_at and survive the prune.
func Rebuild[D any](ctx context.Context, x *Index[D], id func(D) int64, fetch PageFetcher[D]) (RebuildStats, error) {
	stats := RebuildStats{Entity: x.cfg.Entity}
	started := time.Now()

	since, err := x.Now(ctx)
	if err != nil {
		return stats, err
	}

	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		docs, last, err := fetch(ctx, n)
		if err != nil {
			return stats, fmt.Errorf("fetch %s page %d: %w", x.cfg.Entity, n, err)
		}

		for _, doc := range docs {
			if err := x.Upsert(ctx, id(doc), doc); err != nil {
				return stats, err
			}
			stats.Indexed++
		}

		log.Debug().Str("entity", x.cfg.Entity).Int("page", n).Int("indexed", stats.Indexed).Msg("Rebuild page indexed")

		if last {
			break
		}
	}

	removed, err := x.DeleteIndexedBefore(ctx, since)
	if err != nil {
		return stats, err
	}
	stats.Removed = removed
	stats.Duration = time.Since(started)

	return stats, nil
}
