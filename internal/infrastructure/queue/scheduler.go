package queue

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"bookshelf-backend/internal/shared"
	"bookshelf-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	cronSpec  string
}

func NewScheduler(rdb redis.UniversalClient, cronSpec string) *Scheduler {
	scheduler := asynq.NewSchedulerFromRedisClient(rdb, &asynq.SchedulerOpts{
		Location: time.UTC,
		LogLevel: asynq.InfoLevel,
	})

	return &Scheduler{
		scheduler: scheduler,
		cronSpec:  cronSpec,
	}
}

// ================================================
// Full index rebuild, one entry per entity
// ================================================
func (s *Scheduler) RegisterRebuildJobs() error {
	for _, entity := range shared.Entities {
		task, err := RebuildTask(entity)
		if err != nil {
			return err
		}

		if _, err := s.scheduler.Register(s.cronSpec, task, rebuildOptions()...); err != nil {
			logger.Error("Failed to register rebuild job for "+entity, err)
			return err
		}

		logger.Info("Registered index rebuild", map[string]interface{}{
			"entity": entity,
			"cron":   s.cronSpec,
		})
	}
	return nil
}

// Start runs the scheduler in the background. The caller owns signal handling
// and must call Shutdown.
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
