package main

import (
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/infrastructure/queue"
	"bookshelf-backend/pkg/container"
)

type asynqScheduler struct {
	*queue.Scheduler
}

// setupScheduler registers the periodic rebuilds. It returns nil when
// QUEUE_REBUILD_CRON is empty.
func setupScheduler(c *container.Container) *asynqScheduler {
	spec := c.Config.Queue.RebuildCron
	if spec == "" {
		log.Info().Msg("Scheduled index rebuild disabled")
		return nil
	}

	scheduler := queue.NewScheduler(c.Redis.Client, spec)
	if err := scheduler.RegisterRebuildJobs(); err != nil {
		log.Fatal().Err(err).Msg("Failed to register scheduled jobs")
	}

	log.Info().Str("cron", spec).Msg("Scheduler starting")
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Scheduler failed to start")
	}

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	if s == nil {
		return
	}
	log.Info().Msg("Scheduler shutting down")
	s.Scheduler.Shutdown()
}
