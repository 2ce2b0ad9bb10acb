package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	redislock "bookshelf-backend/internal/infrastructure/redis"
	"bookshelf-backend/internal/infrastructure/search"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/pkg/metrics"
)

// Rebuilder rebuilds the whole search index of one entity from the store.
type Rebuilder interface {
	RebuildIndex(ctx context.Context) (search.RebuildStats, error)
}

// RebuildHandler runs search:rebuild tasks. At most one rebuild per entity runs
// at a time across all workers.
type RebuildHandler struct {
	rebuilders map[string]Rebuilder
	rdb        goredis.UniversalClient
	lockTTL    time.Duration
	metrics    *metrics.Metrics
}

func NewRebuildHandler(rebuilders map[string]Rebuilder, rdb goredis.UniversalClient, lockTTL time.Duration, m *metrics.Metrics) *RebuildHandler {
	return &RebuildHandler{
		rebuilders: rebuilders,
		rdb:        rdb,
		lockTTL:    lockTTL,
		metrics:    m,
	}
}

func (h *RebuildHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.RebuildPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal Rebuild payload")
		h.observe("invalid")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	rebuilder, ok := h.rebuilders[payload.Entity]
	if !ok {
		h.observe("invalid")
		return fmt.Errorf("unknown entity %q: %w", payload.Entity, asynq.SkipRetry)
	}

	lock := redislock.NewLock(h.rdb, "lock:search:rebuild:"+payload.Entity, h.lockTTL)
	if err := lock.Acquire(ctx); err != nil {
		if errors.Is(err, redislock.ErrLockHeld) {
			log.Info().Str("entity", payload.Entity).Msg("Rebuild already running, skipping")
			h.observe("skipped")
			return nil
		}
		h.observe("error")
		return err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Str("entity", payload.Entity).Msg("Failed to release rebuild lock")
		}
	}()

	log.Info().Str("entity", payload.Entity).Msg("Rebuilding search index")

	stats, err := rebuilder.RebuildIndex(ctx)
	if err != nil {
		log.Error().Err(err).Str("entity", payload.Entity).Int("indexed", stats.Indexed).Msg("Search index rebuild failed")
		h.observe("error")
		return fmt.Errorf("rebuild %s index: %w", payload.Entity, err)
	}

	log.Info().
		Str("entity", stats.Entity).
		Int("indexed", stats.Indexed).
		Int64("removed", stats.Removed).
		Dur("duration", stats.Duration).
		Msg("Search index rebuilt")
	h.observe("ok")
	return nil
}

func (h *RebuildHandler) observe(result string) {
	if h.metrics != nil {
		h.metrics.IndexJobsTotal.WithLabelValues(shared.TypeRebuildIndex, result).Inc()
	}
}
