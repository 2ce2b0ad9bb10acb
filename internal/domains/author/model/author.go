package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const MaxNameLength = 255

type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AuthorRef is the author a book points at. A ref read from the store through
// the join is Resolved and carries the name; a ref rebuilt from a DTO only
// knows the id.
type AuthorRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	Resolved bool   `json:"resolved"`
}

// AuthorDTO is the wire shape of an author. ID is nil until the store assigns one.
type AuthorDTO struct {
	ID   *int64 `json:"id"`
	Name string `json:"name"`
}

func (d AuthorDTO) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Length(0, MaxNameLength)),
	)
}
