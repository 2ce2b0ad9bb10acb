package client

import (
	"context"
	"errors"
)

const DefaultSortField = "id"

// ViewState is everything a list view shows. Controller operations take a
// state and return the next one; the caller owns it between calls.
type ViewState[T any] struct {
	Items       []T
	Page        int
	SortField   string
	SortReverse bool // false sorts ascending
	SearchQuery string
	Links       map[string]int
	Form        T
}

func NewViewState[T any]() ViewState[T] {
	return ViewState[T]{SortField: DefaultSortField, Links: map[string]int{}}
}

// ListController loads pages of a resource for an infinite-scroll list.
type ListController[T any] struct {
	resource Resource[T]
	pageSize int
}

func NewListController[T any](resource Resource[T], pageSize int) *ListController[T] {
	return &ListController[T]{resource: resource, pageSize: pageSize}
}

// LoadAll fetches st.Page and appends it to the items already shown.
func (c *ListController[T]) LoadAll(ctx context.Context, st ViewState[T]) (ViewState[T], error) {
	result, err := c.resource.Query(ctx, Query{
		Page: st.Page,
		Size: c.pageSize,
		Sort: sortParams(st),
	})
	if err != nil {
		return st, err
	}

	items := make([]T, 0, len(st.Items)+len(result.Items))
	items = append(items, st.Items...)
	st.Items = append(items, result.Items...)
	st.Links = result.Links
	return st, nil
}

// Reset starts over from page 0, e.g. after the sort order changed.
func (c *ListController[T]) Reset(ctx context.Context, st ViewState[T]) (ViewState[T], error) {
	st.Page = 0
	st.Items = []T{}
	return c.LoadAll(ctx, st)
}

// LoadPage appends page n. Combine with Reset for a full reload.
func (c *ListController[T]) LoadPage(ctx context.Context, st ViewState[T], n int) (ViewState[T], error) {
	st.Page = n
	return c.LoadAll(ctx, st)
}

// Search replaces the items with the matches for query. An empty query, no
// match, or a 404 from the search endpoint falls back to Reset.
func (c *ListController[T]) Search(ctx context.Context, st ViewState[T], query string) (ViewState[T], error) {
	st.SearchQuery = query
	if query == "" {
		return c.Reset(ctx, st)
	}

	results, err := c.resource.Search(ctx, query)
	if errors.Is(err, ErrNotFound) || (err == nil && len(results) == 0) {
		return c.Reset(ctx, st)
	}
	if err != nil {
		return st, err
	}

	st.Items = results
	st.Links = map[string]int{}
	return st, nil
}

// Clear empties the create/edit form.
func (c *ListController[T]) Clear(st ViewState[T]) ViewState[T] {
	var zero T
	st.Form = zero
	return st
}

// Refresh reloads from the first page and empties the form.
func (c *ListController[T]) Refresh(ctx context.Context, st ViewState[T]) (ViewState[T], error) {
	st, err := c.Reset(ctx, st)
	if err != nil {
		return st, err
	}
	return c.Clear(st), nil
}

func sortParams[T any](st ViewState[T]) []string {
	field := st.SortField
	if field == "" {
		field = DefaultSortField
	}

	dir := "asc"
	if st.SortReverse {
		dir = "desc"
	}

	params := []string{field + "," + dir}
	if field != DefaultSortField {
		params = append(params, DefaultSortField)
	}
	return params
}
