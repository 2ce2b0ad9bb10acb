// Package client is a Go client for the bookshelf REST resources and the
// paginated list controller built on it.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrNotFound = errors.New("resource not found")

// StatusError is a non-2xx response other than 404.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Query selects one page. Sort entries are "field,asc|desc" or "field".
type Query struct {
	Page int
	Size int
	Sort []string
}

// PageResult is one page of items plus the page numbers from its Link header.
type PageResult[T any] struct {
	Items      []T
	Links      map[string]int
	TotalCount int64
}

// Resource is the part of a REST resource the list controller needs.
type Resource[T any] interface {
	Query(ctx context.Context, q Query) (PageResult[T], error)
	Search(ctx context.Context, query string) ([]T, error)
}

type ResourceClient[T any] struct {
	http    *http.Client
	baseURL string
	name    string
}

// NewResourceClient talks to {baseURL}/api/{name} and {baseURL}/api/_search/{name}.
// name is the plural resource name, e.g. "books".
func NewResourceClient[T any](httpClient *http.Client, baseURL, name string) *ResourceClient[T] {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &ResourceClient[T]{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		name:    name,
	}
}

func (c *ResourceClient[T]) Query(ctx context.Context, q Query) (PageResult[T], error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	if q.Size > 0 {
		params.Set("size", strconv.Itoa(q.Size))
	}
	for _, s := range q.Sort {
		params.Add("sort", s)
	}

	var items []T
	resp, err := c.get(ctx, c.baseURL+"/api/"+c.name+"?"+params.Encode(), &items)
	if err != nil {
		return PageResult[T]{}, err
	}

	result := PageResult[T]{
		Items: items,
		Links: ParseLinks(resp.Header.Get("Link")),
	}
	if total := resp.Header.Get("X-Total-Count"); total != "" {
		result.TotalCount, _ = strconv.ParseInt(total, 10, 64)
	}
	return result, nil
}

func (c *ResourceClient[T]) Search(ctx context.Context, query string) ([]T, error) {
	var items []T
	if _, err := c.get(ctx, c.baseURL+"/api/_search/"+c.name+"/"+url.PathEscape(query), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *ResourceClient[T]) get(ctx context.Context, rawURL string, out any) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return resp, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return resp, nil
}
