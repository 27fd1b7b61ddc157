package records

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultSeedWorkers bounds concurrent fixture loads.
const DefaultSeedWorkers = 4

// SeedResult reports which sources a Seed call stored.
type SeedResult struct {
	Loaded  []string
	Missing []string // no <source>.json in the fixture tree
}

// Seed stores <source>.json from fsys for every source. Sources without a
// fixture file are reported as missing, not failed. Any other read, validation
// or store error aborts the remaining loads.
func (r *Repo) Seed(ctx context.Context, fsys fs.FS, sources []string, workers int) (SeedResult, error) {
	if workers <= 0 {
		workers = DefaultSeedWorkers
	}

	var (
		mu  sync.Mutex
		res SeedResult
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, src := range sources {
		g.Go(func() error {
			data, err := fs.ReadFile(fsys, src+".json")
			if errors.Is(err, fs.ErrNotExist) {
				mu.Lock()
				res.Missing = append(res.Missing, src)
				mu.Unlock()
				return nil
			}
			if err != nil {
				return fmt.Errorf("read fixture %q: %w", src, err)
			}
			if err := r.SaveRaw(ctx, src, data); err != nil {
				return err
			}
			mu.Lock()
			res.Loaded = append(res.Loaded, src)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SeedResult{}, fmt.Errorf("seed: %w", err)
	}

	slices.Sort(res.Loaded)
	slices.Sort(res.Missing)
	return res, nil
}
