package model

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	authorModel "bookshelf-backend/internal/domains/author/model"
	"bookshelf-backend/internal/shared/utils"
)

// ToDTO flattens the author reference. AuthorName is only set for a
// resolved reference.
func ToDTO(b *Book) *BookDTO {
	if b == nil {
		return nil
	}

	d := &BookDTO{
		Title:           b.Title,
		Description:     b.Description,
		PublicationDate: toDate(b.PublicationDate),
	}
	if b.ID != 0 {
		d.ID = utils.Ptr(b.ID)
	}
	if b.Author != nil {
		d.AuthorID = utils.Ptr(b.Author.ID)
		if b.Author.Resolved {
			d.AuthorName = utils.Ptr(b.Author.Name)
		}
	}
	return d
}

// ToEntity keeps only the author id, as an unresolved reference.
func ToEntity(d *BookDTO) *Book {
	if d == nil {
		return nil
	}

	b := &Book{
		Title:           d.Title,
		Description:     d.Description,
		PublicationDate: fromDate(d.PublicationDate),
		Author:          authorModel.RefFromID(d.AuthorID),
		ID:              utils.Deref(d.ID),
	}
	return b
}

func ToDTOs(books []Book) []BookDTO {
	if books == nil {
		return nil
	}
	out := make([]BookDTO, len(books))
	for i := range books {
		out[i] = *ToDTO(&books[i])
	}
	return out
}

func ToEntities(dtos []BookDTO) []Book {
	if dtos == nil {
		return nil
	}
	out := make([]Book, len(dtos))
	for i := range dtos {
		out[i] = *ToEntity(&dtos[i])
	}
	return out
}

func toDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: calendarDay(*t), Valid: true}
}

func fromDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	return utils.Ptr(calendarDay(d.Time))
}

// calendarDay drops the clock and zone so equal dates compare equal.
func calendarDay(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
