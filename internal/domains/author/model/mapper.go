package model

import "bookshelf-backend/internal/shared/utils"

func ToDTO(a *Author) *AuthorDTO {
	if a == nil {
		return nil
	}
	return &AuthorDTO{ID: idPtr(a.ID), Name: a.Name}
}

func ToEntity(d *AuthorDTO) *Author {
	if d == nil {
		return nil
	}
	return &Author{ID: utils.Deref(d.ID), Name: d.Name}
}

func ToDTOs(authors []Author) []AuthorDTO {
	if authors == nil {
		return nil
	}
	out := make([]AuthorDTO, len(authors))
	for i := range authors {
		out[i] = *ToDTO(&authors[i])
	}
	return out
}

func ToEntities(dtos []AuthorDTO) []Author {
	if dtos == nil {
		return nil
	}
	out := make([]Author, len(dtos))
	for i := range dtos {
		out[i] = *ToEntity(&dtos[i])
	}
	return out
}

// RefFromID builds an unresolved reference; nil id means no author.
func RefFromID(id *int64) *AuthorRef {
	if id == nil {
		return nil
	}
	return &AuthorRef{ID: *id}
}

// idPtr maps the unassigned id 0 to nil.
func idPtr(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return utils.Ptr(id)
}
