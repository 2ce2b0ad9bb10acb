package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/shared/pagination"
	pkgdb "bookshelf-backend/pkg/database"
)

// sortable DTO properties and their columns
var sortColumns = map[string]string{
	"id":   "id",
	"name": "name",
}

type postgresRepository struct {
	db pkgdb.DBTX
}

func NewPostgresRepository(db pkgdb.DBTX) RepositoryInterface {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, a *model.Author) (*model.Author, error) {
	query := `
		INSERT INTO authors (name)
		VALUES ($1)
		RETURNING id, name
	`

	var created model.Author
	if err := r.db.QueryRow(ctx, query, a.Name).Scan(&created.ID, &created.Name); err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return &created, nil
}

func (r *postgresRepository) Update(ctx context.Context, a *model.Author) (*model.Author, error) {
	query := `
		UPDATE authors
		SET name = $1
		WHERE id = $2
		RETURNING id, name
	`

	var updated model.Author
	err := r.db.QueryRow(ctx, query, a.Name, a.ID).Scan(&updated.ID, &updated.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to update author %d: %w", a.ID, err)
	}
	return &updated, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*model.Author, error) {
	query := `SELECT id, name FROM authors WHERE id = $1`

	var a model.Author
	if err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author by id: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) FindPage(ctx context.Context, p pagination.Pageable) (pagination.Page[model.Author], error) {
	orderBy, err := pagination.OrderBy(p.Sort, sortColumns)
	if err != nil {
		return pagination.Page[model.Author]{}, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM authors`).Scan(&total); err != nil {
		return pagination.Page[model.Author]{}, fmt.Errorf("failed to count authors: %w", err)
	}

	query := `SELECT id, name FROM authors ` + orderBy + ` LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, p.Size, p.Offset())
	if err != nil {
		return pagination.Page[model.Author]{}, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]model.Author, 0, p.Size)
	for rows.Next() {
		var a model.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return pagination.Page[model.Author]{}, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return pagination.Page[model.Author]{}, fmt.Errorf("failed to iterate authors: %w", err)
	}

	return pagination.NewPage(authors, p, total), nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return model.ErrAuthorHasBooks
		}
		return fmt.Errorf("failed to delete author %d: %w", id, err)
	}
	return nil
}
