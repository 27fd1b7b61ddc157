package domain

import "errors"

var (
	// ErrNotFound signals a missing resource (unknown page or source).
	ErrNotFound = errors.New("not found")
	// ErrFetch signals that the record collection could not be fetched.
	ErrFetch = errors.New("fetch failed")
	// ErrInvalidFilterValue signals a rejected filter setting.
	ErrInvalidFilterValue = errors.New("invalid filter value")
	// ErrInvalidSortKey signals a sort key outside the page registry.
	ErrInvalidSortKey = errors.New("invalid sort key")
	// ErrInvalidSchema signals an invalid page definition.
	ErrInvalidSchema = errors.New("invalid schema")
)
