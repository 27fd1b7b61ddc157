package unidash

import "github.com/kailas-cloud/unidash/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound           = domain.ErrNotFound
	ErrFetch              = domain.ErrFetch
	ErrInvalidFilterValue = domain.ErrInvalidFilterValue
	ErrInvalidSortKey     = domain.ErrInvalidSortKey
	ErrInvalidSchema      = domain.ErrInvalidSchema
)
