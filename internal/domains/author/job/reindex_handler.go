package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/domains/author/service"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/pkg/metrics"
)

// ReindexHandler repairs one author document in the search index.
type ReindexHandler struct {
	service service.ServiceInterface
	metrics *metrics.Metrics
}

func NewReindexHandler(svc service.ServiceInterface, m *metrics.Metrics) *ReindexHandler {
	return &ReindexHandler{service: svc, metrics: m}
}

func (h *ReindexHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ReindexPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal ReindexAuthor payload")
		h.observe("invalid")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.service.Reindex(ctx, payload.ID); err != nil {
		log.Error().Err(err).Int64("author_id", payload.ID).Msg("Failed to reindex author")
		h.observe("error")
		return fmt.Errorf("reindex author %d: %w", payload.ID, err)
	}

	log.Info().Int64("author_id", payload.ID).Msg("Author reindexed")
	h.observe("ok")
	return nil
}

func (h *ReindexHandler) observe(result string) {
	if h.metrics != nil {
		h.metrics.IndexJobsTotal.WithLabelValues(shared.TypeReindexAuthor, result).Inc()
	}
}
