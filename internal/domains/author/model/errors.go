package model

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bookshelf-backend/internal/infrastructure/search"
	"bookshelf-backend/internal/shared/pagination"
	"bookshelf-backend/internal/shared/utils"
)

const (
	EntityName = "author"

	IDExistsMessage = "A new author cannot already have an ID"
)

var (
	ErrIDExists       = errors.New("new author cannot already have an id")
	ErrAuthorNotFound = errors.New("author not found")
	ErrAuthorHasBooks = errors.New("cannot delete author with linked books")
)

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	var verrs validation.Errors
	switch {
	case errors.Is(err, ErrIDExists):
		return "idexists"
	case errors.Is(err, ErrAuthorNotFound):
		return "AUTHOR_NOT_FOUND"
	case errors.Is(err, ErrAuthorHasBooks):
		return "AUTHOR_HAS_BOOKS"
	case errors.Is(err, pagination.ErrInvalidPage), errors.Is(err, pagination.ErrInvalidSort):
		return "INVALID_PAGE_REQUEST"
	case errors.Is(err, utils.ErrInvalidID):
		return "INVALID_ID"
	case errors.As(err, &verrs):
		return "VALIDATION_FAILED"
	case errors.Is(err, search.ErrIndexUnavailable):
		return "SEARCH_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	var verrs validation.Errors
	switch {
	case errors.Is(err, ErrAuthorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAuthorHasBooks):
		return http.StatusConflict
	case errors.Is(err, ErrIDExists),
		errors.Is(err, pagination.ErrInvalidPage),
		errors.Is(err, pagination.ErrInvalidSort),
		errors.Is(err, utils.ErrInvalidID),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, search.ErrIndexUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
