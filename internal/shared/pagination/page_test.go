package pagination

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkHeader(t *testing.T) {
	tests := []struct {
		name                     string
		number, size, totalPages int
		want                     string
	}{
		{
			name: "first of three", number: 0, size: 20, totalPages: 3,
			want: `</api/books?page=1&size=20>; rel="next",</api/books?page=2&size=20>; rel="last",</api/books?page=0&size=20>; rel="first"`,
		},
		{
			name: "middle", number: 1, size: 20, totalPages: 3,
			want: `</api/books?page=2&size=20>; rel="next",</api/books?page=0&size=20>; rel="prev",</api/books?page=2&size=20>; rel="last",</api/books?page=0&size=20>; rel="first"`,
		},
		{
			name: "empty result", number: 0, size: 20, totalPages: 0,
			want: `</api/books?page=0&size=20>; rel="last",</api/books?page=0&size=20>; rel="first"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkHeader("/api/books", tt.number, tt.size, tt.totalPages))
		})
	}
}

func TestPage(t *testing.T) {
	p := NewPage[int](nil, Pageable{Page: 1, Size: 2}, 5)

	assert.NotNil(t, p.Content)
	assert.Equal(t, 3, p.TotalPages())
	assert.True(t, p.HasNext())
	assert.True(t, p.HasPrevious())

	last := NewPage([]int{5}, Pageable{Page: 2, Size: 2}, 5)
	assert.False(t, last.HasNext())

	mapped := Map(last, strconv.Itoa)
	assert.Equal(t, []string{"5"}, mapped.Content)
	assert.Equal(t, 2, mapped.Number)
	assert.Equal(t, int64(5), mapped.TotalElements)
}
