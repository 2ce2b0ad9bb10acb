package main

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/shared"
	"bookshelf-backend/pkg/container"
)

type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer starts processing the search queue in the background.
// Signals are handled by main, so Start is used instead of Run.
func setupAsynqServer(c *container.Container, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServerFromRedisClient(c.Redis.Client, asynq.Config{
		Queues:      map[string]int{shared.QueueSearch: 1},
		Concurrency: c.Config.Queue.Concurrency,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.Error().
				Err(err).
				Str("task", task.Type()).
				Int("retry", retried).
				Int("max_retry", maxRetry).
				Msg("Task failed")
		}),
	})

	log.Info().Int("concurrency", c.Config.Queue.Concurrency).Msg("Worker starting")
	if err := srv.Start(mux); err != nil {
		log.Fatal().Err(err).Msg("Worker failed to start")
	}

	return &asynqServer{Server: srv}
}

// Shutdown waits for in-flight tasks; unfinished ones go back to the queue.
func (s *asynqServer) Shutdown() {
	log.Info().Msg("Worker shutting down")
	s.Server.Shutdown()
	log.Info().Msg("Worker stopped")
}
