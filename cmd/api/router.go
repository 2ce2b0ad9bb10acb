package main

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"bookshelf-backend/internal/infrastructure/queue"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/internal/shared/middleware"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/pkg/container"
	"bookshelf-backend/pkg/metrics"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Tracing(c.Config.App.Name),
		middleware.Metrics(c.Metrics),
		middleware.Logger(),
		middleware.CORS(c.Alerts.ExposedHeaders()...),
	)

	router.GET("/metrics", gin.WrapH(metrics.Handler(c.Registry)))

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c, c.AsynqInspector))

		setupAuthorRoutes(api, c)
		setupBookRoutes(api, c)
		setupSearchAdminRoutes(api, c)
	}

	return router
}

// ════════════════════════════════════════
// AUTHOR ROUTES
// ════════════════════════════════════════
func setupAuthorRoutes(api *gin.RouterGroup, c *container.Container) {
	authors := api.Group("/authors")
	{
		authors.POST("", c.AuthorHandler.Create)
		authors.PUT("", c.AuthorHandler.Update)
		authors.GET("", c.AuthorHandler.List)
		authors.GET("/:id", c.AuthorHandler.GetByID)
		authors.DELETE("/:id", c.AuthorHandler.Delete)
	}
	api.GET("/_search/authors/:query", c.AuthorHandler.Search)
}

// ════════════════════════════════════════
// BOOK ROUTES
// ════════════════════════════════════════
func setupBookRoutes(api *gin.RouterGroup, c *container.Container) {
	books := api.Group("/books")
	{
		books.POST("", c.BookHandler.Create)
		books.PUT("", c.BookHandler.Update)
		books.GET("", c.BookHandler.List)
		books.GET("/:id", c.BookHandler.GetByID)
		books.DELETE("/:id", c.BookHandler.Delete)
	}
	api.GET("/_search/books/:query", c.BookHandler.Search)
}

// ════════════════════════════════════════
// SEARCH INDEX ADMIN
// ════════════════════════════════════════
func setupSearchAdminRoutes(api *gin.RouterGroup, c *container.Container) {
	// Rebuilds are queued even when mirror repair is disabled.
	enqueuer := queue.NewEnqueuer(c.AsynqClient, c.AsynqInspector)
	api.POST("/_search/reindex", reindexHandler(enqueuer))
}

// reindexHandler queues a full rebuild for ?entity=<name>, or for every
// indexed entity when the parameter is absent.
func reindexHandler(enqueuer queue.Enqueuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		entities := shared.Entities
		if entity := c.Query("entity"); entity != "" {
			if !slices.Contains(shared.Entities, entity) {
				response.BadRequest(c, "unknown entity "+entity)
				return
			}
			entities = []string{entity}
		}

		for _, entity := range entities {
			if err := enqueuer.EnqueueRebuild(c.Request.Context(), entity); err != nil {
				log.Error().Err(err).Str("entity", entity).Msg("Failed to enqueue index rebuild")
				response.ServiceUnavailable(c, "failed to enqueue index rebuild")
				return
			}
		}

		response.JSON(c, http.StatusAccepted, gin.H{"queued": entities})
	}
}

// ════════════════════════════════════════
// HEALTH CHECK
// ════════════════════════════════════════
func healthCheckHandler(appCtx *container.Container, inspector *asynq.Inspector) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := probe(ctx, appCtx.DB.HealthCheck)
		redisStatus := probe(ctx, appCtx.Redis.HealthCheck)

		queueStatus := queueHealth(inspector)

		breakers := gin.H{}
		for name, b := range appCtx.Breakers {
			breakers[name] = b.State().String()
		}

		status, code := "ok", http.StatusOK
		if dbStatus != "ok" {
			status, code = "down", http.StatusServiceUnavailable
		} else if redisStatus != "ok" {
			status = "degraded"
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
				"queue":    queueStatus,
				"search":   breakers,
			},
		})
	}
}

// queueHealth reports the search queue backlog. A queue that has never
// received a task does not exist yet and counts as empty.
func queueHealth(inspector *asynq.Inspector) gin.H {
	info, err := inspector.GetQueueInfo(shared.QueueSearch)
	if errors.Is(err, asynq.ErrQueueNotFound) {
		return gin.H{"status": "ok", "pending": 0}
	}
	if err != nil {
		return gin.H{"status": "error: " + err.Error()}
	}
	return gin.H{
		"status":    "ok",
		"pending":   info.Pending,
		"active":    info.Active,
		"retry":     info.Retry,
		"archived":  info.Archived,
		"paused":    info.Paused,
		"processed": info.Processed,
	}
}

func probe(ctx context.Context, check func(context.Context) error) string {
	if err := check(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
