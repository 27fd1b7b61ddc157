package sortkey

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/unidash/internal/domain/record"
)

// Relevance keeps the upstream (fetch) order.
const Relevance = "relevance"

// Kind is how a sort field is compared.
type Kind string

// Comparison kinds.
const (
	// KindString compares with locale-aware, case-insensitive collation.
	KindString Kind = "string"
	// KindNumber compares numerically; missing values count as 0.
	KindNumber Kind = "number"
	// KindTime compares parsed timestamps; missing values sort as the zero time.
	KindTime Kind = "time"
)

// IsValid checks if the comparison kind is supported.
func (k Kind) IsValid() bool {
	return k == KindString || k == KindNumber || k == KindTime
}

// Key is an immutable named sort order.
type Key struct {
	name  string
	field string
	kind  Kind
	desc  bool
}

// NewKey validates and creates a sort Key.
func NewKey(name, field string, kind Kind, desc bool) (Key, error) {
	if name == "" {
		return Key{}, fmt.Errorf("sort key name is required")
	}
	if name == Relevance {
		return Key{}, fmt.Errorf("sort key name %q is reserved", name)
	}
	if field == "" {
		return Key{}, fmt.Errorf("sort key %q: field is required", name)
	}
	if !kind.IsValid() {
		return Key{}, fmt.Errorf("sort key %q: invalid kind %q", name, kind)
	}
	return Key{name: name, field: field, kind: kind, desc: desc}, nil
}

// Name returns the key name.
func (k Key) Name() string { return k.name }

// Field returns the compared field.
func (k Key) Field() string { return k.field }

// Kind returns the comparison kind.
func (k Key) Kind() Kind { return k.kind }

// Desc reports whether the order is descending.
func (k Key) Desc() bool { return k.desc }

// Registry is the fixed set of sort keys a page offers.
type Registry struct {
	keys   []Key
	byName map[string]int
	def    string
}

// NewRegistry validates and creates a Registry.
// def is the initial key; empty means relevance.
func NewRegistry(def string, keys ...Key) (Registry, error) {
	byName := make(map[string]int, len(keys))
	for i, k := range keys {
		if _, dup := byName[k.name]; dup {
			return Registry{}, fmt.Errorf("duplicate sort key: %s", k.name)
		}
		byName[k.name] = i
	}
	if def == "" {
		def = Relevance
	}
	if _, ok := byName[def]; !ok && def != Relevance {
		return Registry{}, fmt.Errorf("default sort key %q is not registered", def)
	}
	return Registry{keys: slices.Clone(keys), byName: byName, def: def}, nil
}

// Keys returns the registered keys in declaration order.
func (r Registry) Keys() []Key { return r.keys }

// Default returns the initial sort key name.
func (r Registry) Default() string {
	if r.def == "" {
		return Relevance
	}
	return r.def
}

// Lookup returns a registered key.
func (r Registry) Lookup(name string) (Key, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Key{}, false
	}
	return r.keys[i], true
}

// Has reports whether name is a valid selection (a registered key, relevance or empty).
func (r Registry) Has(name string) bool {
	if name == "" || name == Relevance {
		return true
	}
	_, ok := r.byName[name]
	return ok
}

// Sort returns a new slice ordered by the named key. The input is not modified.
// Relevance, empty and unregistered names keep the input order.
func (r Registry) Sort(records []record.Record, name string) []record.Record {
	k, ok := r.Lookup(name)
	if !ok {
		return slices.Clone(records)
	}
	return k.Sort(records)
}

// Sort returns a new slice stably ordered by the key.
func (k Key) Sort(records []record.Record) []record.Record {
	entries := make([]entry, len(records))
	var buf collate.Buffer
	col := collate.New(language.Und, collate.IgnoreCase)
	for i, r := range records {
		entries[i] = k.extract(r, col, &buf)
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		c := k.compare(a, b)
		if k.desc {
			return -c
		}
		return c
	})
	out := make([]record.Record, len(entries))
	for i, e := range entries {
		out[i] = e.rec
	}
	return out
}

// entry carries the precomputed sort value of one record.
type entry struct {
	rec  record.Record
	key  []byte
	num  float64
	when time.Time
}

func (k Key) extract(r record.Record, col *collate.Collator, buf *collate.Buffer) entry {
	e := entry{rec: r}
	v, ok := r.Get(k.field)
	switch k.kind {
	case KindString:
		e.key = col.KeyFromString(buf, v.Text())
	case KindNumber:
		if ok {
			e.num, _ = v.Float()
		}
	case KindTime:
		if ok {
			e.when, _ = v.Time()
		}
	}
	return e
}

func (k Key) compare(a, b entry) int {
	switch k.kind {
	case KindString:
		return bytes.Compare(a.key, b.key)
	case KindNumber:
		return cmp.Compare(a.num, b.num)
	case KindTime:
		return a.when.Compare(b.when)
	default:
		return 0
	}
}
