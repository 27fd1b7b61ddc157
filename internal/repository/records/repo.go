package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/unidash/internal/db"
	"github.com/kailas-cloud/unidash/internal/domain"
	domlisting "github.com/kailas-cloud/unidash/internal/domain/listing"
	"github.com/kailas-cloud/unidash/internal/domain/record"
)

// DefaultKeyPrefix namespaces every key the repository writes.
const DefaultKeyPrefix = "unidash:"

// store is the consumer interface for record collections (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores each record collection as one JSON array under <prefix>records:<source>.
// It implements usecase/listing.Fetcher.
type Repo struct {
	store  store
	prefix string
}

// New creates a record collection repository.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

// Fetch loads and normalizes the collection of a page.
// Every failure wraps domain.ErrFetch; a missing collection also wraps domain.ErrNotFound.
func (r *Repo) Fetch(ctx context.Context, def domlisting.Definition) ([]record.Record, error) {
	data, err := r.store.Get(ctx, r.key(def.Source()))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: source %q: %w", domain.ErrFetch, def.Source(), domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: get source %q: %w", domain.ErrFetch, def.Source(), err)
	}

	raw, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: source %q: %w", domain.ErrFetch, def.Source(), err)
	}
	return def.Normalizer().NormalizeAll(raw), nil
}

// Save stores a collection of raw objects, replacing any previous one.
func (r *Repo) Save(ctx context.Context, source string, raw []map[string]any) error {
	if raw == nil {
		raw = []map[string]any{}
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshal source %q: %w", source, err)
	}
	return r.set(ctx, source, data)
}

// SaveRaw validates and stores a JSON array of objects as-is.
func (r *Repo) SaveRaw(ctx context.Context, source string, data []byte) error {
	if _, err := decode(data); err != nil {
		return fmt.Errorf("source %q: %w", source, err)
	}
	return r.set(ctx, source, data)
}

// Delete removes a stored collection.
func (r *Repo) Delete(ctx context.Context, source string) error {
	if err := r.store.Del(ctx, r.key(source)); err != nil {
		return fmt.Errorf("delete source %q: %w", source, err)
	}
	return nil
}

// Sources lists the names of every stored collection, sorted.
func (r *Repo) Sources(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, r.key("*"))
	if err != nil {
		return nil, fmt.Errorf("scan sources: %w", err)
	}
	prefix := r.key("")
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, prefix))
	}
	sort.Strings(out)
	return out, nil
}

func (r *Repo) set(ctx context.Context, source string, data []byte) error {
	if source == "" {
		return fmt.Errorf("source name is required")
	}
	if err := r.store.Set(ctx, r.key(source), data); err != nil {
		return fmt.Errorf("set source %q: %w", source, err)
	}
	return nil
}

// Valkey key pattern: unidash:records:{source}

func (r *Repo) key(source string) string {
	return fmt.Sprintf("%srecords:%s", r.prefix, source)
}

// decode parses a JSON array of objects, keeping numbers exact.
func decode(data []byte) ([]map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode records: trailing data after array")
	}
	return raw, nil
}
