package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/pkg/metrics"
)

type testDoc struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func newTestIndex(t *testing.T, b *Breaker, m *metrics.Metrics) (*Index[testDoc], pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	idx := NewIndex[testDoc](mock, IndexConfig{
		Entity:   "book",
		Table:    "book_search_index",
		Language: "simple",
		Fields:   []Field{{Path: []string{"title"}, Weight: 'A'}, {Path: []string{"author", "name"}, Weight: 'B'}},
	}, b, m)
	return idx, mock
}

func TestVectorExpr(t *testing.T) {
	got := vectorExpr([]Field{{Path: []string{"author", "name"}, Weight: 'B'}}, "$2::jsonb", "$3::regconfig")
	assert.Equal(t, `setweight(to_tsvector($3::regconfig, coalesce($2::jsonb #>> '{author,name}', '')), 'B')`, got)
	assert.Equal(t, "''::tsvector", vectorExpr(nil, "d", "l"))
}

func TestIndex_Upsert(t *testing.T) {
	idx, mock := newTestIndex(t, nil, nil)

	mock.ExpectExec(`INSERT INTO "book_search_index"`).
		WithArgs(int64(5), []byte(`{"id":5,"title":"Dune"}`), "simple").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, idx.Upsert(context.Background(), 5, testDoc{ID: 5, Title: "Dune"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIndex_SearchKeepsRankOrder(t *testing.T) {
	idx, mock := newTestIndex(t, nil, nil)

	rows := pgxmock.NewRows([]string{"document"}).
		AddRow([]byte(`{"id":9,"title":"Dune Messiah"}`)).
		AddRow([]byte(`{"id":2,"title":"Dune"}`))
	mock.ExpectQuery(`websearch_to_tsquery`).WithArgs("simple", "dune").WillReturnRows(rows)

	got, err := idx.Search(context.Background(), "dune")
	require.NoError(t, err)
	assert.Equal(t, []testDoc{{ID: 9, Title: "Dune Messiah"}, {ID: 2, Title: "Dune"}}, got)
}

func TestIndex_SearchNoMatchIsEmpty(t *testing.T) {
	idx, mock := newTestIndex(t, nil, nil)
	mock.ExpectQuery(`websearch_to_tsquery`).WithArgs("simple", "zzz").
		WillReturnRows(pgxmock.NewRows([]string{"document"}))

	got, err := idx.Search(context.Background(), "zzz")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestIndex_BreakerRejectsAfterFailures(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	b := NewBreaker(BreakerConfig{Name: "book-index", MaxFailures: 1, Timeout: time.Minute}, m)
	idx, mock := newTestIndex(t, b, m)

	mock.ExpectExec(`DELETE FROM "book_search_index"`).WithArgs(int64(1)).WillReturnError(errors.New("connection reset"))

	assert.Error(t, idx.Delete(context.Background(), 1))
	assert.ErrorIs(t, idx.Delete(context.Background(), 2), ErrIndexUnavailable)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexOperationsTotal.WithLabelValues("book", "delete", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexOperationsTotal.WithLabelValues("book", "delete", "rejected")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRebuild_UpsertsAllPagesThenPrunes(t *testing.T) {
	idx, mock := newTestIndex(t, nil, nil)
	since := time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT now\(\)`).WillReturnRows(pgxmock.NewRows([]string{"now"}).AddRow(since))
	for _, id := range []int64{1, 2, 3} {
		mock.ExpectExec(`INSERT INTO "book_search_index"`).
			WithArgs(id, pgxmock.AnyArg(), "simple").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectExec(`DELETE FROM "book_search_index" WHERE indexed_at < \$1`).
		WithArgs(since).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	pages := [][]testDoc{{{ID: 1}, {ID: 2}}, {{ID: 3}}}
	fetch := func(_ context.Context, n int) ([]testDoc, bool, error) {
		return pages[n], n == len(pages)-1, nil
	}

	stats, err := Rebuild(context.Background(), idx, func(d testDoc) int64 { return d.ID }, fetch)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Indexed)
	assert.Equal(t, int64(4), stats.Removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
