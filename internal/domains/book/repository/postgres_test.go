package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authorModel "bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/shared/pagination"
)

var bookColumns = []string{"id", "title", "description", "publication_date", "author_id", "name"}

func newMockRepo(t *testing.T) (RepositoryInterface, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresRepository(mock), mock
}

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func TestCreate_ReturnsJoinedAuthor(t *testing.T) {
	repo, mock := newMockRepo(t)
	published := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO books`).
		WithArgs("Dune", (*string)(nil), &published, int64Ptr(3)).
		WillReturnRows(pgxmock.NewRows(bookColumns).
			AddRow(int64(5), "Dune", (*string)(nil), &published, int64Ptr(3), strPtr("Frank Herbert")))

	got, err := repo.Create(context.Background(), &model.Book{
		Title:           "Dune",
		PublicationDate: &published,
		Author:          &authorModel.AuthorRef{ID: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, &model.Book{
		ID:              5,
		Title:           "Dune",
		PublicationDate: &published,
		Author:          &authorModel.AuthorRef{ID: 3, Name: "Frank Herbert", Resolved: true},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_MissingAuthor(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO books`).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "books_author_id_fkey"})

	_, err := repo.Create(context.Background(), &model.Book{Title: "x", Author: &authorModel.AuthorRef{ID: 404}})
	assert.ErrorIs(t, err, model.ErrAuthorReferenceNotFound)
}

func TestUpdate_MissingRowIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`UPDATE books`).
		WithArgs("x", (*string)(nil), (*time.Time)(nil), (*int64)(nil), int64(8)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.Update(context.Background(), &model.Book{ID: 8, Title: "x"})
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestFindByID_WithoutAuthor(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`WHERE b.id = \$1`).WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows(bookColumns).
			AddRow(int64(2), "Orphan", strPtr("no author"), (*time.Time)(nil), (*int64)(nil), (*string)(nil)))

	got, err := repo.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, got.Author)
	assert.Nil(t, got.PublicationDate)
	assert.Equal(t, "no author", *got.Description)
}

func TestFindPage_SortsOnJoinedColumn(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM books`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`ORDER BY "a"."name" ASC, "b"."id" ASC LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 0).
		WillReturnRows(pgxmock.NewRows(bookColumns).
			AddRow(int64(1), "Dune", (*string)(nil), (*time.Time)(nil), int64Ptr(3), strPtr("Frank Herbert")))

	page, err := repo.FindPage(context.Background(), pagination.Pageable{
		Size: 10,
		Sort: []pagination.Order{{Property: "authorName"}},
	})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Frank Herbert", page.Content[0].Author.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_Idempotent(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`DELETE FROM books`).WithArgs(int64(5)).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.Delete(context.Background(), 5))
}
