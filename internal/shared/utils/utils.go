package utils

import (
	"errors"
	"strconv"
)

var ErrInvalidID = errors.New("id must be a positive integer")

// ParseID parses a path id. Store ids start at 1.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, ErrInvalidID
	}
	return id, nil
}

func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *p, or the zero value for nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
