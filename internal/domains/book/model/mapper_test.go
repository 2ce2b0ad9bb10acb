package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	authorModel "bookshelf-backend/internal/domains/author/model"
)

func optional[T any](t *rapid.T, label string, gen *rapid.Generator[T]) *T {
	if !rapid.Bool().Draw(t, label+"?") {
		return nil
	}
	v := gen.Draw(t, label)
	return &v
}

// genBookDTO draws DTOs as a client would send them: no author name.
func genBookDTO() *rapid.Generator[BookDTO] {
	return rapid.Custom(func(t *rapid.T) BookDTO {
		d := BookDTO{
			ID:          optional(t, "id", rapid.Int64Range(1, 1<<53)),
			Title:       rapid.StringN(0, 40, -1).Draw(t, "title"),
			Description: optional(t, "description", rapid.StringN(0, 40, -1)),
			AuthorID:    optional(t, "authorId", rapid.Int64Range(1, 1<<53)),
		}
		if rapid.Bool().Draw(t, "dated") {
			day := rapid.IntRange(0, 365*200).Draw(t, "day")
			d.PublicationDate = pgtype.Date{
				Time:  time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day),
				Valid: true,
			}
		}
		return d
	})
}

func TestMapper_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := genBookDTO().Draw(t, "dto")
		assert.Equal(t, d, *ToDTO(ToEntity(&d)))
	})
}

func TestMapper_ListPreservesOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dtos := rapid.SliceOfN(genBookDTO(), 1, 20).Draw(t, "dtos")
		assert.Equal(t, dtos, ToDTOs(ToEntities(dtos)))
	})
}

func TestToDTO_FlattensResolvedAuthor(t *testing.T) {
	published := time.Date(1965, 8, 1, 15, 30, 0, 0, time.FixedZone("X", 3600))
	b := &Book{
		ID:              5,
		Title:           "Dune",
		PublicationDate: &published,
		Author:          &authorModel.AuthorRef{ID: 3, Name: "Frank Herbert", Resolved: true},
	}

	d := ToDTO(b)
	require.NotNil(t, d.AuthorID)
	require.NotNil(t, d.AuthorName)
	assert.Equal(t, int64(3), *d.AuthorID)
	assert.Equal(t, "Frank Herbert", *d.AuthorName)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"id":5,"title":"Dune","description":null,"publicationDate":"1965-08-01","authorId":3,"authorName":"Frank Herbert"}`,
		string(data))
}

func TestToDTO_UnresolvedAuthorHasNoName(t *testing.T) {
	d := ToDTO(&Book{Title: "x", Author: &authorModel.AuthorRef{ID: 3}})
	assert.Equal(t, int64(3), *d.AuthorID)
	assert.Nil(t, d.AuthorName)
	assert.Nil(t, d.ID)
}

func TestToEntity_AuthorStub(t *testing.T) {
	id := int64(9)
	b := ToEntity(&BookDTO{Title: "x", AuthorID: &id})
	assert.Equal(t, &authorModel.AuthorRef{ID: 9}, b.Author)

	assert.Nil(t, ToEntity(&BookDTO{Title: "x"}).Author)
}

func TestMapper_Nil(t *testing.T) {
	assert.Nil(t, ToDTO(nil))
	assert.Nil(t, ToEntity(nil))
	assert.Nil(t, ToDTOs(nil))
	assert.Nil(t, ToEntities(nil))
}

func TestBookDTO_JSONNullDate(t *testing.T) {
	var d BookDTO
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","publicationDate":null}`), &d))
	assert.False(t, d.PublicationDate.Valid)

	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","publicationDate":"2001-09-11"}`), &d))
	assert.True(t, d.PublicationDate.Valid)
	assert.Equal(t, time.Date(2001, 9, 11, 0, 0, 0, 0, time.UTC), d.PublicationDate.Time)
}

func TestBookDTO_Validate(t *testing.T) {
	assert.NoError(t, BookDTO{Title: "Dune"}.Validate())

	zero := int64(0)
	assert.Error(t, BookDTO{Title: "x", AuthorID: &zero}.Validate())

	long := string(make([]rune, MaxDescriptionLength+1))
	assert.Error(t, BookDTO{Description: &long}.Validate())
}
