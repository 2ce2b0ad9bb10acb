package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jackc/pgx/v5/pgtype"

	authorModel "bookshelf-backend/internal/domains/author/model"
)

const (
	MaxTitleLength       = 255
	MaxDescriptionLength = 255
)

type Book struct {
	ID              int64                  `json:"id"`
	Title           string                 `json:"title"`
	Description     *string                `json:"description,omitempty"`
	PublicationDate *time.Time             `json:"publicationDate,omitempty"`
	Author          *authorModel.AuthorRef `json:"author,omitempty"`
}

// BookDTO is the wire shape of a book. The author is flattened to its id and name.
type BookDTO struct {
	ID              *int64      `json:"id"`
	Title           string      `json:"title"`
	Description     *string     `json:"description"`
	PublicationDate pgtype.Date `json:"publicationDate"`
	AuthorID        *int64      `json:"authorId"`
	AuthorName      *string     `json:"authorName"`
}

func (d BookDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Length(0, MaxTitleLength)),
		validation.Field(&d.Description, validation.Length(0, MaxDescriptionLength)),
		validation.Field(&d.AuthorID, validation.By(positiveID)),
	)
}

// positiveID rejects a present id below 1. validation.Min skips zero values.
func positiveID(value interface{}) error {
	if id, ok := value.(*int64); ok && id != nil && *id < 1 {
		return errors.New("must be a positive id")
	}
	return nil
}
