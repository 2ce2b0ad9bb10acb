package main

import (
	"github.com/hibiken/asynq"

	authorJob "bookshelf-backend/internal/domains/author/job"
	bookJob "bookshelf-backend/internal/domains/book/job"
	"bookshelf-backend/internal/infrastructure/queue"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/pkg/container"
)

// HandlerRegistry holds all task handlers.
type HandlerRegistry struct {
	reindexAuthor *authorJob.ReindexHandler
	reindexBook   *bookJob.ReindexHandler
	rebuild       *queue.RebuildHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		reindexAuthor: authorJob.NewReindexHandler(c.AuthorService, c.Metrics),
		reindexBook:   bookJob.NewReindexHandler(c.BookService, c.Metrics),
		rebuild: queue.NewRebuildHandler(
			c.Rebuilders(),
			c.Redis.Client,
			c.Config.Queue.RebuildLockTTL,
			c.Metrics,
		),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeReindexAuthor, h.reindexAuthor.ProcessTask)
	mux.HandleFunc(shared.TypeReindexBook, h.reindexBook.ProcessTask)
	mux.HandleFunc(shared.TypeRebuildIndex, h.rebuild.ProcessTask)
}
