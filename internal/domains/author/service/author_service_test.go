package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/infrastructure/search"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/internal/shared/pagination"
)

type fakeRepo struct {
	rows   map[int64]model.Author
	nextID int64
	writes int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[int64]model.Author{}, nextID: 1}
}

func (r *fakeRepo) Create(_ context.Context, a *model.Author) (*model.Author, error) {
	r.writes++
	created := model.Author{ID: r.nextID, Name: a.Name}
	r.rows[created.ID] = created
	r.nextID++
	return &created, nil
}

func (r *fakeRepo) Update(_ context.Context, a *model.Author) (*model.Author, error) {
	r.writes++
	if _, ok := r.rows[a.ID]; !ok {
		return nil, model.ErrAuthorNotFound
	}
	r.rows[a.ID] = *a
	return a, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*model.Author, error) {
	a, ok := r.rows[id]
	if !ok {
		return nil, model.ErrAuthorNotFound
	}
	return &a, nil
}

func (r *fakeRepo) FindPage(_ context.Context, p pagination.Pageable) (pagination.Page[model.Author], error) {
	var all []model.Author
	for id := int64(1); id < r.nextID; id++ {
		if a, ok := r.rows[id]; ok {
			all = append(all, a)
		}
	}
	start := min(p.Offset(), len(all))
	end := min(start+p.Size, len(all))
	return pagination.NewPage(all[start:end], p, int64(len(all))), nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	r.writes++
	delete(r.rows, id)
	return nil
}

type fakeIndex struct {
	docs    map[int64]model.Author
	failing error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[int64]model.Author{}}
}

func (x *fakeIndex) Upsert(_ context.Context, a *model.Author) error {
	if x.failing != nil {
		return x.failing
	}
	x.docs[a.ID] = *a
	return nil
}

func (x *fakeIndex) Delete(_ context.Context, id int64) error {
	if x.failing != nil {
		return x.failing
	}
	delete(x.docs, id)
	return nil
}

func (x *fakeIndex) Search(_ context.Context, _ string) ([]model.Author, error) {
	if x.failing != nil {
		return nil, x.failing
	}
	out := make([]model.Author, 0, len(x.docs))
	for _, a := range x.docs {
		out = append(out, a)
	}
	return out, nil
}

func (x *fakeIndex) Rebuild(ctx context.Context, fetch search.PageFetcher[model.Author]) (search.RebuildStats, error) {
	stats := search.RebuildStats{Entity: model.EntityName}
	x.docs = map[int64]model.Author{}
	for n := 0; ; n++ {
		docs, last, err := fetch(ctx, n)
		if err != nil {
			return stats, err
		}
		for _, d := range docs {
			x.docs[d.ID] = d
			stats.Indexed++
		}
		if last {
			return stats, nil
		}
	}
}

type enqueued struct {
	entity string
	id     int64
}

type fakeEnqueuer struct {
	reindex []enqueued
	err     error
}

func (e *fakeEnqueuer) EnqueueReindex(_ context.Context, entity string, id int64) error {
	if e.err != nil {
		return e.err
	}
	e.reindex = append(e.reindex, enqueued{entity, id})
	return nil
}

func (e *fakeEnqueuer) EnqueueRebuild(context.Context, string) error { return e.err }

func ptr(v int64) *int64 { return &v }

func TestCreate_PersistsAndMirrors(t *testing.T) {
	repo, idx := newFakeRepo(), newFakeIndex()
	svc := NewAuthorService(repo, idx, nil)

	got, err := svc.Create(context.Background(), &model.AuthorDTO{Name: "Frank Herbert"})
	require.NoError(t, err)
	require.NotNil(t, got.ID)
	assert.Equal(t, "Frank Herbert", got.Name)
	assert.Equal(t, model.Author{ID: *got.ID, Name: "Frank Herbert"}, idx.docs[*got.ID])
}

func TestCreate_RejectsClientID(t *testing.T) {
	repo := newFakeRepo()
	svc := NewAuthorService(repo, newFakeIndex(), nil)

	_, err := svc.Create(context.Background(), &model.AuthorDTO{ID: ptr(4), Name: "x"})
	assert.ErrorIs(t, err, model.ErrIDExists)
	assert.Zero(t, repo.writes)
}

func TestUpdate_WithoutIDCreates(t *testing.T) {
	repo := newFakeRepo()
	svc := NewAuthorService(repo, newFakeIndex(), nil)

	got, err := svc.Update(context.Background(), &model.AuthorDTO{Name: "Le Guin"})
	require.NoError(t, err)
	require.NotNil(t, got.ID)
	assert.Len(t, repo.rows, 1)
}

func TestUpdate_UnknownID(t *testing.T) {
	svc := NewAuthorService(newFakeRepo(), newFakeIndex(), nil)

	_, err := svc.Update(context.Background(), &model.AuthorDTO{ID: ptr(77), Name: "x"})
	assert.ErrorIs(t, err, model.ErrAuthorNotFound)
}

func TestMirrorFailure_QueuesRepair(t *testing.T) {
	repo, idx, enq := newFakeRepo(), newFakeIndex(), &fakeEnqueuer{}
	idx.failing = errors.New("index down")
	svc := NewAuthorService(repo, idx, enq)

	got, err := svc.Create(context.Background(), &model.AuthorDTO{Name: "Octavia Butler"})
	require.NoError(t, err)
	assert.Equal(t, []enqueued{{shared.EntityAuthor, *got.ID}}, enq.reindex)

	require.NoError(t, svc.Delete(context.Background(), *got.ID))
	assert.Len(t, enq.reindex, 2)
}

func TestMirrorFailure_WithoutRepairFails(t *testing.T) {
	idx := newFakeIndex()
	idx.failing = search.ErrIndexUnavailable
	repo := newFakeRepo()
	svc := NewAuthorService(repo, idx, nil)

	_, err := svc.Create(context.Background(), &model.AuthorDTO{Name: "x"})
	assert.ErrorIs(t, err, search.ErrIndexUnavailable)
	assert.Len(t, repo.rows, 1)
}

func TestMirrorFailure_EnqueueFailureSurfacesIndexError(t *testing.T) {
	idx := newFakeIndex()
	idx.failing = errors.New("index down")
	svc := NewAuthorService(newFakeRepo(), idx, &fakeEnqueuer{err: errors.New("redis down")})

	_, err := svc.Create(context.Background(), &model.AuthorDTO{Name: "x"})
	assert.EqualError(t, err, "index down")
}

func TestDelete_RemovesFromStoreAndIndex(t *testing.T) {
	repo, idx := newFakeRepo(), newFakeIndex()
	svc := NewAuthorService(repo, idx, nil)

	created, err := svc.Create(context.Background(), &model.AuthorDTO{Name: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), *created.ID))
	assert.Empty(t, repo.rows)
	assert.Empty(t, idx.docs)

	assert.NoError(t, svc.Delete(context.Background(), *created.ID))
}

func TestReindex(t *testing.T) {
	repo, idx := newFakeRepo(), newFakeIndex()
	svc := NewAuthorService(repo, idx, nil)

	repo.rows[1] = model.Author{ID: 1, Name: "Stored"}
	repo.nextID = 2
	idx.docs[2] = model.Author{ID: 2, Name: "Orphan"}

	require.NoError(t, svc.Reindex(context.Background(), 1))
	require.NoError(t, svc.Reindex(context.Background(), 2))

	assert.Equal(t, map[int64]model.Author{1: {ID: 1, Name: "Stored"}}, idx.docs)
}

func TestRebuildIndex_WalksEveryPage(t *testing.T) {
	repo, idx := newFakeRepo(), newFakeIndex()
	svc := NewAuthorService(repo, idx, nil)

	for i := 0; i < rebuildPageSize+3; i++ {
		_, err := repo.Create(context.Background(), &model.Author{Name: "a"})
		require.NoError(t, err)
	}

	stats, err := svc.RebuildIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, rebuildPageSize+3, stats.Indexed)
	assert.Len(t, idx.docs, rebuildPageSize+3)
}

func TestSearch_EmptyResultIsEmptySlice(t *testing.T) {
	svc := NewAuthorService(newFakeRepo(), newFakeIndex(), nil)

	got, err := svc.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
