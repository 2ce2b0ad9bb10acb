package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type recordingEnqueuer struct {
	rebuilds []string
	err      error
}

func (r *recordingEnqueuer) EnqueueReindex(context.Context, string, int64) error { return nil }

func (r *recordingEnqueuer) EnqueueRebuild(_ context.Context, entity string) error {
	if r.err != nil {
		return r.err
	}
	r.rebuilds = append(r.rebuilds, entity)
	return nil
}

func serveReindex(e *recordingEnqueuer, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/_search/reindex", reindexHandler(e))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, target, nil))
	return w
}

func TestReindex_AllEntities(t *testing.T) {
	e := &recordingEnqueuer{}
	w := serveReindex(e, "/api/_search/reindex")

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"author", "book"}, e.rebuilds)
	assert.JSONEq(t, `{"queued":["author","book"]}`, w.Body.String())
}

func TestReindex_OneEntity(t *testing.T) {
	e := &recordingEnqueuer{}
	w := serveReindex(e, "/api/_search/reindex?entity=book")

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"book"}, e.rebuilds)
}

func TestReindex_UnknownEntity(t *testing.T) {
	e := &recordingEnqueuer{}
	w := serveReindex(e, "/api/_search/reindex?entity=publisher")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, e.rebuilds)
}

func TestReindex_QueueDown(t *testing.T) {
	w := serveReindex(&recordingEnqueuer{err: errors.New("redis down")}, "/api/_search/reindex")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
