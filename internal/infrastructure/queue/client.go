package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/shared"
)

// Enqueuer schedules index maintenance tasks.
type Enqueuer interface {
	EnqueueReindex(ctx context.Context, entity string, id int64) error
	EnqueueRebuild(ctx context.Context, entity string) error
}

type asynqEnqueuer struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

func NewEnqueuer(client *asynq.Client, inspector *asynq.Inspector) Enqueuer {
	return &asynqEnqueuer{client: client, inspector: inspector}
}

// EnqueueReindex queues a repair of one document. Repeated requests for the same
// document within a minute collapse into one task.
func (e *asynqEnqueuer) EnqueueReindex(ctx context.Context, entity string, id int64) error {
	taskType := shared.ReindexTaskType(entity)
	if taskType == "" {
		return fmt.Errorf("no reindex task for entity %q", entity)
	}

	data, err := json.Marshal(shared.ReindexPayload{ID: id})
	if err != nil {
		return fmt.Errorf("marshal reindex payload: %w", err)
	}

	_, err = e.client.EnqueueContext(ctx,
		asynq.NewTask(taskType, data),
		asynq.Queue(shared.QueueSearch),
		asynq.MaxRetry(10),
		asynq.Timeout(30*time.Second),
		asynq.Unique(time.Minute),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}

	log.Debug().Str("task", taskType).Int64("id", id).Msg("Reindex task enqueued")
	return nil
}

// EnqueueRebuild queues a full rebuild. A rebuild that is still going to run
// for the same entity absorbs the request; a finished or archived one is
// replaced.
func (e *asynqEnqueuer) EnqueueRebuild(ctx context.Context, entity string) error {
	task, err := RebuildTask(entity)
	if err != nil {
		return err
	}

	id := rebuildTaskID(entity)
	opts := append(rebuildOptions(), asynq.TaskID(id))

	_, err = e.client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		var replaced bool
		replaced, err = e.releaseRebuild(id)
		if err != nil {
			return fmt.Errorf("enqueue rebuild %s: %w", entity, err)
		}
		if !replaced {
			log.Info().Str("entity", entity).Msg("Rebuild already queued")
			return nil
		}
		_, err = e.client.EnqueueContext(ctx, task, opts...)
	}
	if err != nil {
		return fmt.Errorf("enqueue rebuild %s: %w", entity, err)
	}

	log.Info().Str("entity", entity).Msg("Rebuild task enqueued")
	return nil
}

// releaseRebuild inspects the task holding id. It reports true when the ID is
// free again and the caller should enqueue; false when the existing task will
// still run.
func (e *asynqEnqueuer) releaseRebuild(id string) (bool, error) {
	info, err := e.inspector.GetTaskInfo(shared.QueueSearch, id)
	if errors.Is(err, asynq.ErrTaskNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("inspect %s: %w", id, err)
	}

	switch info.State {
	case asynq.TaskStateArchived, asynq.TaskStateCompleted:
		if err := e.inspector.DeleteTask(shared.QueueSearch, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
			return false, fmt.Errorf("delete %s task %s: %w", info.State, id, err)
		}
		return true, nil
	case asynq.TaskStateRetry:
		// Run the waiting retry now instead of after its backoff.
		if err := e.inspector.RunTask(shared.QueueSearch, id); err != nil && !errors.Is(err, asynq.ErrTaskNotFound) {
			return false, fmt.Errorf("run retry task %s: %w", id, err)
		}
		return false, nil
	default:
		// pending, scheduled or active
		return false, nil
	}
}

// rebuildTaskID is the task ID that keeps at most one rebuild per entity in the queue.
func rebuildTaskID(entity string) string {
	return "rebuild:" + entity
}

func RebuildTask(entity string) (*asynq.Task, error) {
	if shared.ReindexTaskType(entity) == "" {
		return nil, fmt.Errorf("no rebuild task for entity %q", entity)
	}

	data, err := json.Marshal(shared.RebuildPayload{Entity: entity})
	if err != nil {
		return nil, fmt.Errorf("marshal rebuild payload: %w", err)
	}
	return asynq.NewTask(shared.TypeRebuildIndex, data), nil
}

func rebuildOptions() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(shared.QueueSearch),
		asynq.MaxRetry(2),
		asynq.Timeout(30 * time.Minute),
	}
}
