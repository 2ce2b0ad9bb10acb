package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"bookshelf-backend/internal/domains/book/model"
	"bookshelf-backend/internal/domains/book/repository"
	"bookshelf-backend/internal/infrastructure/queue"
	"bookshelf-backend/internal/infrastructure/search"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/internal/shared/pagination"
	"bookshelf-backend/pkg/tracing"
)

const (
	tracerName = "bookshelf-backend/book"

	rebuildPageSize = 500
)

type bookService struct {
	repo     repository.RepositoryInterface
	index    repository.SearchIndex
	enqueuer queue.Enqueuer
}

// NewBookService wires the store and the index. A nil enqueuer turns failed
// index writes into request errors instead of queued repairs.
func NewBookService(repo repository.RepositoryInterface, index repository.SearchIndex, enqueuer queue.Enqueuer) ServiceInterface {
	return &bookService{
		repo:     repo,
		index:    index,
		enqueuer: enqueuer,
	}
}

func (s *bookService) Create(ctx context.Context, dto *model.BookDTO) (_ *model.BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "BookService.Create")
	defer func() { tracing.End(span, err) }()

	if dto.ID != nil {
		return nil, model.ErrIDExists
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, model.ToEntity(dto))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("book.id", created.ID))

	if err := s.mirror(ctx, created); err != nil {
		return nil, err
	}

	log.Info().Int64("book_id", created.ID).Msg("Book created")
	return model.ToDTO(created), nil
}

func (s *bookService) Update(ctx context.Context, dto *model.BookDTO) (_ *model.BookDTO, err error) {
	if dto.ID == nil {
		return s.Create(ctx, dto)
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "BookService.Update", attribute.Int64("book.id", *dto.ID))
	defer func() { tracing.End(span, err) }()

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, model.ToEntity(dto))
	if err != nil {
		return nil, err
	}

	if err := s.mirror(ctx, updated); err != nil {
		return nil, err
	}

	log.Info().Int64("book_id", updated.ID).Msg("Book updated")
	return model.ToDTO(updated), nil
}

func (s *bookService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "BookService.Delete", attribute.Int64("book.id", id))
	defer func() { tracing.End(span, err) }()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.index.Delete(ctx, id); err != nil {
		if err := s.repair(ctx, id, err); err != nil {
			return err
		}
	}

	log.Info().Int64("book_id", id).Msg("Book deleted")
	return nil
}

func (s *bookService) mirror(ctx context.Context, b *model.Book) error {
	if err := s.index.Upsert(ctx, b); err != nil {
		return s.repair(ctx, b.ID, err)
	}
	return nil
}

func (s *bookService) repair(ctx context.Context, id int64, indexErr error) error {
	log.Error().Err(indexErr).Int64("book_id", id).Msg("Search index write failed")

	if s.enqueuer == nil {
		return indexErr
	}
	if err := s.enqueuer.EnqueueReindex(ctx, shared.EntityBook, id); err != nil {
		log.Error().Err(err).Int64("book_id", id).Msg("Failed to enqueue index repair")
		return indexErr
	}

	log.Warn().Int64("book_id", id).Msg("Index repair queued")
	return nil
}

func (s *bookService) FindAll(ctx context.Context, p pagination.Pageable) (_ pagination.Page[model.BookDTO], err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "BookService.FindAll",
		attribute.Int("page", p.Page), attribute.Int("size", p.Size))
	defer func() { tracing.End(span, err) }()

	page, err := s.repo.FindPage(ctx, p)
	if err != nil {
		return pagination.Page[model.BookDTO]{}, err
	}

	return pagination.Map(page, func(b model.Book) model.BookDTO { return *model.ToDTO(&b) }), nil
}

func (s *bookService) FindOne(ctx context.Context, id int64) (*model.BookDTO, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.ToDTO(b), nil
}

func (s *bookService) Search(ctx context.Context, query string) (_ []model.BookDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "BookService.Search", attribute.String("query", query))
	defer func() { tracing.End(span, err) }()

	books, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	dtos := model.ToDTOs(books)
	if dtos == nil {
		dtos = []model.BookDTO{}
	}
	return dtos, nil
}

func (s *bookService) Reindex(ctx context.Context, id int64) error {
	b, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, model.ErrBookNotFound) {
		return s.index.Delete(ctx, id)
	}
	if err != nil {
		return err
	}
	return s.index.Upsert(ctx, b)
}

func (s *bookService) RebuildIndex(ctx context.Context) (search.RebuildStats, error) {
	return s.index.Rebuild(ctx, func(ctx context.Context, n int) ([]model.Book, bool, error) {
		page, err := s.repo.FindPage(ctx, pagination.Pageable{Page: n, Size: rebuildPageSize})
		if err != nil {
			return nil, false, err
		}
		return page.Content, !page.HasNext(), nil
	})
}
