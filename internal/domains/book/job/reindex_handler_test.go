package job

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/domains/book/service"
	"bookshelf-backend/internal/shared"
)

type stubService struct {
	service.ServiceInterface
	reindexed []int64
}

func (s *stubService) Reindex(_ context.Context, id int64) error {
	s.reindexed = append(s.reindexed, id)
	return nil
}

func TestReindexHandler_PassesID(t *testing.T) {
	svc := &stubService{}
	h := NewReindexHandler(svc, nil)

	require.NoError(t, h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeReindexBook, []byte(`{"id":12}`))))
	assert.Equal(t, []int64{12}, svc.reindexed)
}

func TestReindexHandler_EmptyPayload(t *testing.T) {
	h := NewReindexHandler(&stubService{}, nil)

	err := h.ProcessTask(context.Background(), asynq.NewTask(shared.TypeReindexBook, nil))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
