package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// SourceLister lists the record collections present in storage.
type SourceLister interface {
	Sources(ctx context.Context) ([]string, error)
}
