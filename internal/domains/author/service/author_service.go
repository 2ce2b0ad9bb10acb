package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/domains/author/repository"
	"bookshelf-backend/internal/infrastructure/queue"
	"bookshelf-backend/internal/infrastructure/search"
	"bookshelf-backend/internal/shared"
	"bookshelf-backend/internal/shared/pagination"
	"bookshelf-backend/pkg/tracing"
)

const (
	tracerName = "bookshelf-backend/author"

	rebuildPageSize = 500
)

type authorService struct {
	repo  repository.RepositoryInterface
	index repository.SearchIndex
	// nil disables the repair of failed index writes
	enqueuer queue.Enqueuer
}

func NewAuthorService(repo repository.RepositoryInterface, index repository.SearchIndex, enqueuer queue.Enqueuer) ServiceInterface {
	return &authorService{
		repo:     repo,
		index:    index,
		enqueuer: enqueuer,
	}
}

// ════════════════════════════════════════════════════════════════
// WRITE: store first, then index
// ════════════════════════════════════════════════════════════════

func (s *authorService) Create(ctx context.Context, dto *model.AuthorDTO) (_ *model.AuthorDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "AuthorService.Create")
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
	span.SetAttributes(attribute.Int64("author.id", created.ID))

	if err := s.mirror(ctx, created); err != nil {
		return nil, err
	}

	log.Info().Int64("author_id", created.ID).Msg("Author created")
	return model.ToDTO(created), nil
}

func (s *authorService) Update(ctx context.Context, dto *model.AuthorDTO) (_ *model.AuthorDTO, err error) {
	if dto.ID == nil {
		return s.Create(ctx, dto)
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "AuthorService.Update", attribute.Int64("author.id", *dto.ID))
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

	log.Info().Int64("author_id", updated.ID).Msg("Author updated")
	return model.ToDTO(updated), nil
}

func (s *authorService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "AuthorService.Delete", attribute.Int64("author.id", id))
	defer func() { tracing.End(span, err) }()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.index.Delete(ctx, id); err != nil {
		if err := s.repair(ctx, id, err); err != nil {
			return err
		}
	}

	log.Info().Int64("author_id", id).Msg("Author deleted")
	return nil
}

func (s *authorService) mirror(ctx context.Context, a *model.Author) error {
	if err := s.index.Upsert(ctx, a); err != nil {
		return s.repair(ctx, a.ID, err)
	}
	return nil
}

// repair queues a reindex after a failed index write. The store write already
// happened, so the request succeeds when the repair is queued and fails otherwise.
func (s *authorService) repair(ctx context.Context, id int64, indexErr error) error {
	log.Error().Err(indexErr).Int64("author_id", id).Msg("Search index write failed")

	if s.enqueuer == nil {
		return indexErr
	}
	if err := s.enqueuer.EnqueueReindex(ctx, shared.EntityAuthor, id); err != nil {
		log.Error().Err(err).Int64("author_id", id).Msg("Failed to enqueue index repair")
		return indexErr
	}

	log.Warn().Int64("author_id", id).Msg("Index repair queued")
	return nil
}

// ════════════════════════════════════════════════════════════════
// READ
// ════════════════════════════════════════════════════════════════

func (s *authorService) FindAll(ctx context.Context, p pagination.Pageable) (_ pagination.Page[model.AuthorDTO], err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "AuthorService.FindAll",
		attribute.Int("page", p.Page), attribute.Int("size", p.Size))
	defer func() { tracing.End(span, err) }()

	page, err := s.repo.FindPage(ctx, p)
	if err != nil {
		return pagination.Page[model.AuthorDTO]{}, err
	}

	return pagination.Map(page, func(a model.Author) model.AuthorDTO { return *model.ToDTO(&a) }), nil
}

func (s *authorService) FindOne(ctx context.Context, id int64) (*model.AuthorDTO, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.ToDTO(a), nil
}

func (s *authorService) Search(ctx context.Context, query string) (_ []model.AuthorDTO, err error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "AuthorService.Search", attribute.String("query", query))
	defer func() { tracing.End(span, err) }()

	authors, err := s.index.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	dtos := model.ToDTOs(authors)
	if dtos == nil {
		dtos = []model.AuthorDTO{}
	}
	return dtos, nil
}

// ════════════════════════════════════════════════════════════════
// INDEX MAINTENANCE
// ════════════════════════════════════════════════════════════════

func (s *authorService) Reindex(ctx context.Context, id int64) error {
	a, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, model.ErrAuthorNotFound) {
		return s.index.Delete(ctx, id)
	}
	if err != nil {
		return err
	}
	return s.index.Upsert(ctx, a)
}

func (s *authorService) RebuildIndex(ctx context.Context) (search.RebuildStats, error) {
	return s.index.Rebuild(ctx, func(ctx context.Context, n int) ([]model.Author, bool, error) {
		page, err := s.repo.FindPage(ctx, pagination.Pageable{Page: n, Size: rebuildPageSize})
		if err != nil {
			return nil, false, err
		}
		return page.Content, !page.HasNext(), nil
	})
}
