package listing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/unidash/internal/domain"
	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
	"github.com/kailas-cloud/unidash/internal/domain/listing/facet"
	"github.com/kailas-cloud/unidash/internal/domain/record"
	"github.com/kailas-cloud/unidash/internal/metrics"
)

// snapshot is an immutable fetched collection shared by pipelines.
type snapshot struct {
	records   []record.Record
	facets    []facet.Group
	fetchedAt time.Time
}

// Service owns the configured pages and caches one collection snapshot per page.
// Each Open returns an independent pipeline over the shared snapshot.
type Service struct {
	defs    []domlisting.Definition
	byName  map[string]int
	fetcher Fetcher
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	mu        sync.RWMutex
	snapshots map[string]snapshot
	inflight  singleflight.Group
}

// New creates a listing service. ttl <= 0 keeps snapshots until an explicit refresh.
func New(defs []domlisting.Definition, fetcher Fetcher, ttl time.Duration, logger *zap.Logger) (*Service, error) {
	byName := make(map[string]int, len(defs))
	for i, d := range defs {
		if _, dup := byName[d.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate page %q", domain.ErrInvalidSchema, d.Name())
		}
		byName[d.Name()] = i
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		defs:      defs,
		byName:    byName,
		fetcher:   fetcher,
		ttl:       ttl,
		logger:    logger,
		now:       time.Now,
		snapshots: make(map[string]snapshot),
	}, nil
}

// Definitions returns every configured page in declaration order.
func (s *Service) Definitions() []domlisting.Definition { return s.defs }

// Definition returns a page by name.
func (s *Service) Definition(name string) (domlisting.Definition, error) {
	i, ok := s.byName[name]
	if !ok {
		return domlisting.Definition{}, fmt.Errorf("page %q: %w", name, domain.ErrNotFound)
	}
	return s.defs[i], nil
}

// Open returns a fresh pipeline for the page over its current snapshot,
// fetching first when there is none or it has expired. A failed fetch is
// not an error here: the pipeline shows an empty collection and View().Err.
func (s *Service) Open(ctx context.Context, name string) (*Pipeline, error) {
	def, err := s.Definition(name)
	if err != nil {
		return nil, err
	}
	p := NewPipeline(def, s)
	snap, err := s.snapshot(ctx, def)
	if err != nil {
		p.load(nil, computeFacets(def, nil), err)
		return p, nil
	}
	p.load(snap.records, snap.facets, nil)
	return p, nil
}

// Refresh refetches the page collection and replaces its snapshot.
func (s *Service) Refresh(ctx context.Context, name string) error {
	def, err := s.Definition(name)
	if err != nil {
		return err
	}
	if _, err := s.reload(ctx, def); err != nil {
		return err
	}
	return nil
}

// Facets returns the facet groups of the page's full collection.
func (s *Service) Facets(ctx context.Context, name string) ([]facet.Group, error) {
	def, err := s.Definition(name)
	if err != nil {
		return nil, err
	}
	snap, err := s.snapshot(ctx, def)
	if err != nil {
		return nil, err
	}
	return snap.facets, nil
}

// Fetch refetches a page collection, so pipelines opened by the service refresh
// through the shared snapshot.
func (s *Service) Fetch(ctx context.Context, def domlisting.Definition) ([]record.Record, error) {
	snap, err := s.reload(ctx, def)
	if err != nil {
		return nil, err
	}
	return snap.records, nil
}

func (s *Service) snapshot(ctx context.Context, def domlisting.Definition) (snapshot, error) {
	s.mu.RLock()
	snap, ok := s.snapshots[def.Name()]
	s.mu.RUnlock()

	if ok && (s.ttl <= 0 || s.now().Sub(snap.fetchedAt) < s.ttl) {
		metrics.SnapshotTotal.WithLabelValues("hit").Inc()
		return snap, nil
	}
	metrics.SnapshotTotal.WithLabelValues("miss").Inc()
	return s.reload(ctx, def)
}

// reload fetches and stores a snapshot. Concurrent reloads of one page share a fetch.
// Failed fetches are not cached.
func (s *Service) reload(ctx context.Context, def domlisting.Definition) (snapshot, error) {
	v, err, shared := s.inflight.Do(def.Name(), func() (any, error) {
		records, err := s.fetcher.Fetch(context.WithoutCancel(ctx), def)
		if err != nil {
			return snapshot{}, err
		}
		snap := snapshot{
			records:   records,
			facets:    computeFacets(def, records),
			fetchedAt: s.now(),
		}
		s.mu.Lock()
		s.snapshots[def.Name()] = snap
		s.mu.Unlock()
		return snap, nil
	})
	if err != nil {
		s.logger.Warn("Collection fetch failed",
			zap.String("page", def.Name()),
			zap.Bool("shared", shared),
			zap.Error(err),
		)
		return snapshot{}, fmt.Errorf("load %s: %w", def.Name(), err)
	}
	snap, _ := v.(snapshot)
	s.logger.Debug("Collection loaded",
		zap.String("page", def.Name()),
		zap.Int("records", len(snap.records)),
		zap.Bool("shared", shared),
	)
	return snap, nil
}
