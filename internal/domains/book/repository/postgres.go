package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	authorModel "bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/shared/pagination"
	pkgdb "bookshelf-backend/pkg/database"
)

var sortColumns = map[string]string{
	"id":              "b.id",
	"title":           "b.title",
	"description":     "b.description",
	"publicationDate": "b.publication_date",
	"authorId":        "b.author_id",
	"authorName":      "a.name",
}

const selectBook = `
	SELECT b.id, b.title, b.description, b.publication_date, b.author_id, a.name
	FROM books b
	LEFT JOIN authors a ON a.id = b.author_id
`

type postgresRepository struct {
	db pkgdb.DBTX
}

func NewPostgresRepository(db pkgdb.DBTX) RepositoryInterface {
	return &postgresRepository{db: db}
}

// ════════════════════════════════════════════════════════════════
// Writes return the row joined with its author so the result matches a later read
// ════════════════════════════════════════════════════════════════

func (r *postgresRepository) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	query := `
		WITH b AS (
			INSERT INTO books (title, description, publication_date, author_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, title, description, publication_date, author_id
		)
		SELECT b.id, b.title, b.description, b.publication_date, b.author_id, a.name
		FROM b
		LEFT JOIN authors a ON a.id = b.author_id
	`

	created, err := scanBook(r.db.QueryRow(ctx, query, b.Title, b.Description, b.PublicationDate, authorID(b)))
	if err != nil {
		return nil, writeError(err, "create book")
	}
	return created, nil
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) (*model.Book, error) {
	query := `
		WITH b AS (
			UPDATE books
			SET title = $1, description = $2, publication_date = $3, author_id = $4
			WHERE id = $5
			RETURNING id, title, description, publication_date, author_id
		)
		SELECT b.id, b.title, b.description, b.publication_date, b.author_id, a.name
		FROM b
		LEFT JOIN authors a ON a.id = b.author_id
	`

	updated, err := scanBook(r.db.QueryRow(ctx, query, b.Title, b.Description, b.PublicationDate, authorID(b), b.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, writeError(err, fmt.Sprintf("update book %d", b.ID))
	}
	return updated, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete book %d: %w", id, err)
	}
	return nil
}

// ════════════════════════════════════════════════════════════════
// Reads
// ════════════════════════════════════════════════════════════════

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	b, err := scanBook(r.db.QueryRow(ctx, selectBook+` WHERE b.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) FindPage(ctx context.Context, p pagination.Pageable) (pagination.Page[model.Book], error) {
	orderBy, err := pagination.OrderBy(p.Sort, sortColumns)
	if err != nil {
		return pagination.Page[model.Book]{}, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return pagination.Page[model.Book]{}, fmt.Errorf("failed to count books: %w", err)
	}

	rows, err := r.db.Query(ctx, selectBook+orderBy+` LIMIT $1 OFFSET $2`, p.Size, p.Offset())
	if err != nil {
		return pagination.Page[model.Book]{}, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0, p.Size)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return pagination.Page[model.Book]{}, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page[model.Book]{}, fmt.Errorf("failed to iterate books: %w", err)
	}

	return pagination.NewPage(books, p, total), nil
}

// ════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════

func scanBook(row pgx.Row) (*model.Book, error) {
	var (
		b          model.Book
		published  *time.Time
		refID      *int64
		authorName *string
	)

	if err := row.Scan(&b.ID, &b.Title, &b.Description, &published, &refID, &authorName); err != nil {
		return nil, err
	}

	if published != nil {
		day := time.Date(published.Year(), published.Month(), published.Day(), 0, 0, 0, 0, time.UTC)
		b.PublicationDate = &day
	}
	if refID != nil {
		b.Author = &authorModel.AuthorRef{ID: *refID, Resolved: true}
		if authorName != nil {
			b.Author.Name = *authorName
		}
	}
	return &b, nil
}

func authorID(b *model.Book) *int64 {
	if b.Author == nil {
		return nil
	}
	id := b.Author.ID
	return &id
}

func writeError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation on author_id
		return model.ErrAuthorReferenceNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
