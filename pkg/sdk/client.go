package unidash

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/unidash/internal/config"
	"github.com/kailas-cloud/unidash/internal/db"
	"github.com/kailas-cloud/unidash/internal/db/connect"
	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
	"github.com/kailas-cloud/unidash/internal/domain/listing/facet"
	"github.com/kailas-cloud/unidash/internal/repository/records"
	healthuc "github.com/kailas-cloud/unidash/internal/usecase/health"
	listinguc "github.com/kailas-cloud/unidash/internal/usecase/listing"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, replaced by mocks in tests.
type listingUseCase interface {
	Definitions() []domlisting.Definition
	Open(ctx context.Context, name string) (*listinguc.Pipeline, error)
	Refresh(ctx context.Context, name string) error
	Facets(ctx context.Context, name string) ([]facet.Group, error)
}

type recordStore interface {
	Save(ctx context.Context, source string, raw []map[string]any) error
	Delete(ctx context.Context, source string) error
	Sources(ctx context.Context) ([]string, error)
}

// Client is the unidash SDK entry point.
type Client struct {
	store     db.Store
	records   recordStore
	listing   listingUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("unidash: storage required (use WithValkey, WithRedis or WithMemory)")
	}
	defs, err := definitions(cfg.pages)
	if err != nil {
		return nil, fmt.Errorf("unidash: %w", err)
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("unidash: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	c, err := wireClient(store, defs, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	s, err := connect.Open(config.DatabaseConfig{
		Driver:   cfg.driver,
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("unidash: %w", err)
	}
	return s, nil
}

func wireClient(store db.Store, defs []domlisting.Definition, cfg *clientConfig, obs *observer) (*Client, error) {
	repo := records.New(store, cfg.keyPrefix)

	svc, err := listinguc.New(defs, repo, cfg.snapshotTTL, nil)
	if err != nil {
		return nil, fmt.Errorf("unidash: %w", err)
	}

	sources := make([]string, 0, len(defs))
	for _, d := range defs {
		sources = append(sources, d.Source())
	}

	return &Client{
		store:     store,
		records:   repo,
		listing:   svc,
		healthSvc: healthuc.New(store, repo, sources),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", "", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Pages returns the configured page names in declaration order.
func (c *Client) Pages() []string {
	defs := c.listing.Definitions()
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Name()
	}
	return out
}

// Page returns the query service of a page. Unknown names fail on use with ErrNotFound.
func (c *Client) Page(name string) *PageService {
	return &PageService{name: name, svc: c.listing, obs: c.obs}
}

// Put stores a collection of raw objects under source, replacing any previous
// one, and refreshes every page that reads it.
func (c *Client) Put(ctx context.Context, source string, rows []map[string]any) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("put", "", start, err) }()

	if err = c.records.Save(ctx, source, rows); err != nil {
		return fmt.Errorf("put %s: %w", source, err)
	}
	for _, d := range c.listing.Definitions() {
		if d.Source() != source {
			continue
		}
		if err = c.listing.Refresh(ctx, d.Name()); err != nil {
			return fmt.Errorf("put %s: %w", source, err)
		}
	}
	return nil
}

// Delete removes a stored collection. Pages reading it keep their cached
// snapshot until refreshed.
func (c *Client) Delete(ctx context.Context, source string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", "", start, err) }()

	if err = c.records.Delete(ctx, source); err != nil {
		return fmt.Errorf("delete %s: %w", source, err)
	}
	return nil
}

// Sources lists the stored collections.
func (c *Client) Sources(ctx context.Context) (_ []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("sources", "", start, err) }()

	out, err := c.records.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("sources: %w", err)
	}
	return out, nil
}
