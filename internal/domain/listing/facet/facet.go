package facet

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kailas-cloud/unidash/internal/domain/record"
)

// Option is one selectable value of a facet with its occurrence count.
type Option struct {
	Value string // normalized (trimmed, lowercased)
	Label string // first-seen original spelling, trimmed
	Count int
}

// Group is the option list of one multi-select criterion.
type Group struct {
	Name    string
	Label   string
	Field   string
	Options []Option
}

// Contains reports whether value (after normalization) is one of the options.
func (g Group) Contains(value string) bool {
	return slices.ContainsFunc(g.Options, func(o Option) bool {
		return o.Value == record.Fold(value)
	})
}

// Values returns the normalized option values in display order.
func (g Group) Values() []string {
	out := make([]string, len(g.Options))
	for i, o := range g.Options {
		out[i] = o.Value
	}
	return out
}

// Compute counts the values of field across records.
// List elements are counted independently; empty and missing values are skipped.
// Options are ordered by count descending, then by value ascending.
func Compute(records []record.Record, field string) []Option {
	index := make(map[string]int)
	var opts []Option
	for _, r := range records {
		v, ok := r.Get(field)
		if !ok {
			continue
		}
		for _, s := range v.Strings() {
			norm := record.Fold(s)
			if norm == "" {
				continue
			}
			if i, seen := index[norm]; seen {
				opts[i].Count++
				continue
			}
			index[norm] = len(opts)
			opts = append(opts, Option{Value: norm, Label: strings.TrimSpace(s), Count: 1})
		}
	}
	slices.SortFunc(opts, func(a, b Option) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Value, b.Value)
	})
	return opts
}
