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
	EntityName = "book"

	IDExistsMessage = "A new book cannot already have an ID"
)

var (
	ErrIDExists                = errors.New("new book cannot already have an id")
	ErrBookNotFound            = errors.New("book not found")
	ErrAuthorReferenceNotFound = errors.New("referenced author does not exist")
)

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	var verrs validation.Errors
	switch {
	case errors.Is(err, ErrIDExists):
		return "idexists"
	case errors.Is(err, ErrBookNotFound):
		return "BOOK_NOT_FOUND"
	case errors.Is(err, ErrAuthorReferenceNotFound):
		return "AUTHOR_NOT_FOUND"
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
	case errors.Is(err, ErrBookNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIDExists),
		errors.Is(err, ErrAuthorReferenceNotFound),
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
