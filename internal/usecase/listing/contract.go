package listing

import (
	"context"

	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
	"github.com/kailas-cloud/unidash/internal/domain/record"
)

// Fetcher loads the normalized record collection of a page.
// Failures wrap domain.ErrFetch.
type Fetcher interface {
	Fetch(ctx context.Context, def domlisting.Definition) ([]record.Record, error)
}
