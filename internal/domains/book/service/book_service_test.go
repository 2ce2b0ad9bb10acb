package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authorModel "bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/infrastructure/search"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/internal/shared/pagination"
)

// fakeRepo resolves author names the way the store join does.
type fakeRepo struct {
	authors map[int64]string
	rows    map[int64]model.Book
	nextID  int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		authors: map[int64]string{3: "Frank Herbert"},
		rows:    map[int64]model.Book{},
		nextID:  1,
	}
}

func (r *fakeRepo) resolve(b model.Book) (model.Book, error) {
	if b.Author != nil {
		name, ok := r.authors[b.Author.ID]
		if !ok {
			return b, model.ErrAuthorReferenceNotFound
		}
		b.Author = &authorModel.AuthorRef{ID: b.Author.ID, Name: name, Resolved: true}
	}
	return b, nil
}

func (r *fakeRepo) Create(_ context.Context, b *model.Book) (*model.Book, error) {
	row, err := r.resolve(*b)
	if err != nil {
		return nil, err
	}
	row.ID = r.nextID
	r.nextID++
	r.rows[row.ID] = row
	return &row, nil
}

func (r *fakeRepo) Update(_ context.Context, b *model.Book) (*model.Book, error) {
	if _, ok := r.rows[b.ID]; !ok {
		return nil, model.ErrBookNotFound
	}
	row, err := r.resolve(*b)
	if err != nil {
		return nil, err
	}
	r.rows[row.ID] = row
	return &row, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*model.Book, error) {
	b, ok := r.rows[id]
	if !ok {
		return nil, model.ErrBookNotFound
	}
	return &b, nil
}

func (r *fakeRepo) FindPage(_ context.Context, p pagination.Pageable) (pagination.Page[model.Book], error) {
	var all []model.Book
	for id := int64(1); id < r.nextID; id++ {
		if b, ok := r.rows[id]; ok {
			all = append(all, b)
		}
	}
	start := min(p.Offset(), len(all))
	end := min(start+p.Size, len(all))
	return pagination.NewPage(all[start:end], p, int64(len(all))), nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	delete(r.rows, id)
	return nil
}

type fakeIndex struct {
	docs    map[int64]model.Book
	failing error
}

func (x *fakeIndex) Upsert(_ context.Context, b *model.Book) error {
	if x.failing != nil {
		return x.failing
	}
	x.docs[b.ID] = *b
	return nil
}

func (x *fakeIndex) Delete(_ context.Context, id int64) error {
	if x.failing != nil {
		return x.failing
	}
	delete(x.docs, id)
	return nil
}

func (x *fakeIndex) Search(context.Context, string) ([]model.Book, error) {
	if x.failing != nil {
		return nil, x.failing
	}
	out := []model.Book{}
	for id := int64(1); id <= int64(len(x.docs))+1; id++ {
		if b, ok := x.docs[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (x *fakeIndex) Rebuild(context.Context, search.PageFetcher[model.Book]) (search.RebuildStats, error) {
	return search.RebuildStats{}, nil
}

type fakeEnqueuer struct {
	ids []int64
}

func (e *fakeEnqueuer) EnqueueReindex(_ context.Context, entity string, id int64) error {
	if entity != shared.EntityBook {
		return errors.New("wrong entity")
	}
	e.ids = append(e.ids, id)
	return nil
}

func (e *fakeEnqueuer) EnqueueRebuild(context.Context, string) error { return nil }

func ptr[T any](v T) *T { return &v }

func TestCreateThenGetReturnEqualDTOs(t *testing.T) {
	repo := newFakeRepo()
	idx := &fakeIndex{docs: map[int64]model.Book{}}
	svc := NewBookService(repo, idx, nil)

	created, err := svc.Create(context.Background(), &model.BookDTO{Title: "Dune", AuthorID: ptr(int64(3))})
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", *created.AuthorName)

	got, err := svc.FindOne(context.Background(), *created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	results, err := svc.Search(context.Background(), "dune")
	require.NoError(t, err)
	assert.Equal(t, []model.BookDTO{*created}, results)
}

func TestCreate_UnknownAuthor(t *testing.T) {
	svc := NewBookService(newFakeRepo(), &fakeIndex{docs: map[int64]model.Book{}}, nil)

	_, err := svc.Create(context.Background(), &model.BookDTO{Title: "x", AuthorID: ptr(int64(99))})
	assert.ErrorIs(t, err, model.ErrAuthorReferenceNotFound)
}

func TestCreate_WithIDIsRejected(t *testing.T) {
	repo := newFakeRepo()
	svc := NewBookService(repo, &fakeIndex{docs: map[int64]model.Book{}}, nil)

	_, err := svc.Create(context.Background(), &model.BookDTO{ID: ptr(int64(1)), Title: "x"})
	assert.ErrorIs(t, err, model.ErrIDExists)
	assert.Empty(t, repo.rows)
}

func TestUpdate_MirrorFailureQueuesRepair(t *testing.T) {
	repo := newFakeRepo()
	idx := &fakeIndex{docs: map[int64]model.Book{}}
	enq := &fakeEnqueuer{}
	svc := NewBookService(repo, idx, enq)

	created, err := svc.Create(context.Background(), &model.BookDTO{Title: "Dune"})
	require.NoError(t, err)

	idx.failing = errors.New("index down")
	created.Title = "Dune Messiah"
	updated, err := svc.Update(context.Background(), created)
	require.NoError(t, err)

	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, []int64{*created.ID}, enq.ids)
	assert.Equal(t, "Dune", idx.docs[*created.ID].Title)
}

func TestReindex_DropsDeletedBook(t *testing.T) {
	idx := &fakeIndex{docs: map[int64]model.Book{4: {ID: 4, Title: "gone"}}}
	svc := NewBookService(newFakeRepo(), idx, nil)

	require.NoError(t, svc.Reindex(context.Background(), 4))
	assert.Empty(t, idx.docs)
}
