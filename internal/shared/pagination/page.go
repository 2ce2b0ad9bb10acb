package pagination

import (
	"fmt"
	"strings"
)

// Page is one slice of a sorted result set plus what is needed to navigate it.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
}

func NewPage[T any](content []T, p Pageable, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{Content: content, Number: p.Page, Size: p.Size, TotalElements: total}
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 1
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages()
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 0
}

// Map converts the content of a page, keeping its order and metadata.
func Map[T, R any](p Page[T], fn func(T) R) Page[R] {
	out := make([]R, len(p.Content))
	for i, item := range p.Content {
		out[i] = fn(item)
	}
	return Page[R]{Content: out, Number: p.Number, Size: p.Size, TotalElements: p.TotalElements}
}

// LinkHeader renders the RFC 5988 Link header for a page:
// next (when there is one), prev (when page > 0), last and first.
func LinkHeader(baseURL string, number, size, totalPages int) string {
	links := make([]string, 0, 4)

	if number+1 < totalPages {
		links = append(links, link(baseURL, number+1, size, "next"))
	}
	if number > 0 {
		links = append(links, link(baseURL, number-1, size, "prev"))
	}

	lastPage := 0
	if totalPages > 0 {
		lastPage = totalPages - 1
	}
	links = append(links, link(baseURL, lastPage, size, "last"))
	links = append(links, link(baseURL, 0, size, "first"))

	return strings.Join(links, ",")
}

func link(baseURL string, page, size int, rel string) string {
	return fmt.Sprintf(`<%s?page=%d&size=%d>; rel="%s"`, baseURL, page, size, rel)
}
