// Package pagination parses page requests (page, size, sort) and builds the
// page descriptor and Link header returned by list endpoints.
package pagination

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/lib/pq"
)

var (
	ErrInvalidPage = errors.New("invalid page request")
	ErrInvalidSort = errors.New("invalid sort parameter")
)

// Order is one sort criterion. Property is the DTO field name.
type Order struct {
	Property string
	Desc     bool
}

// Pageable is a zero-based page request.
type Pageable struct {
	Page int
	Size int
	Sort []Order
}

type Defaults struct {
	Size    int
	MaxSize int
}

func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// Parse reads page, size and the repeatable sort parameter ("field[,asc|desc]").
// An absent size falls back to d.Size and a size above d.MaxSize is clamped.
func Parse(q url.Values, d Defaults) (Pageable, error) {
	p := Pageable{Page: 0, Size: d.Size}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Pageable{}, fmt.Errorf("%w: page must be an integer", ErrInvalidPage)
		}
		p.Page = n
	}

	if v := q.Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Pageable{}, fmt.Errorf("%w: size must be an integer", ErrInvalidPage)
		}
		p.Size = n
	}
	if p.Size > d.MaxSize {
		p.Size = d.MaxSize
	}

	err := validation.ValidateStruct(&p,
		validation.Field(&p.Page, validation.Min(0)),
		validation.Field(&p.Size, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return Pageable{}, fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}
	if p.Page > math.MaxInt/p.Size {
		return Pageable{}, fmt.Errorf("%w: page is out of range", ErrInvalidPage)
	}

	for _, raw := range q["sort"] {
		order, err := parseOrder(raw)
		if err != nil {
			return Pageable{}, err
		}
		p.Sort = append(p.Sort, order)
	}

	return p, nil
}

func parseOrder(raw string) (Order, error) {
	parts := strings.Split(raw, ",")
	prop := strings.TrimSpace(parts[0])
	if prop == "" || len(parts) > 2 {
		return Order{}, fmt.Errorf("%w: %q", ErrInvalidSort, raw)
	}

	order := Order{Property: prop}
	if len(parts) == 2 {
		switch strings.ToLower(strings.TrimSpace(parts[1])) {
		case "asc", "":
		case "desc":
			order.Desc = true
		default:
			return Order{}, fmt.Errorf("%w: direction in %q", ErrInvalidSort, raw)
		}
	}
	return order, nil
}

// OrderBy renders an ORDER BY clause for p.Sort. columns maps DTO properties to
// column names and acts as the whitelist; unknown properties are rejected.
// id ascending is appended unless the caller already sorts on id, so pages are stable.
func OrderBy(sort []Order, columns map[string]string) (string, error) {
	clauses := make([]string, 0, len(sort)+1)
	hasID := false

	for _, o := range sort {
		col, ok := columns[o.Property]
		if !ok {
			return "", fmt.Errorf("%w: unknown property %q", ErrInvalidSort, o.Property)
		}
		if o.Property == "id" {
			if hasID {
				continue
			}
			hasID = true
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		clauses = append(clauses, quoteColumn(col)+" "+dir)
	}

	if !hasID {
		clauses = append(clauses, quoteColumn(columns["id"])+" ASC")
	}

	return "ORDER BY " + strings.Join(clauses, ", "), nil
}

// quoteColumn quotes each part of a possibly table-qualified column ("b.title").
func quoteColumn(col string) string {
	parts := strings.Split(col, ".")
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, ".")
}
