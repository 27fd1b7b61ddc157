package filter

import (
	"strings"

	"github.com/kailas-cloud/unidash/internal/domain/record"
)

type predicate func(r record.Record) bool

// Apply returns the records that satisfy every active criterion, in input order.
// Inactive criteria are skipped, so an empty state keeps every record.
func Apply(records []record.Record, s State) []record.Record {
	preds := s.predicates()
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if matchAll(r, preds) {
			out = append(out, r)
		}
	}
	return out
}

func matchAll(r record.Record, preds []predicate) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}

func (s State) predicates() []predicate {
	preds := make([]predicate, 0, len(s.criteria))
	for i, c := range s.criteria {
		v := s.values[i]
		if !c.active(v) {
			continue
		}
		switch c.kind {
		case Text:
			preds = append(preds, textPredicate(c.fields, v.query))
		case MultiSelect:
			preds = append(preds, selectPredicate(c.Field(), v.selected))
		case Range:
			preds = append(preds, rangePredicate(c.Field(), v.min, v.max, c.missing))
		}
	}
	return preds
}

// textPredicate matches when any field contains query. query is already folded.
func textPredicate(fields []string, query string) predicate {
	return func(r record.Record) bool {
		for _, f := range fields {
			v, ok := r.Get(f)
			if !ok {
				continue
			}
			for _, s := range v.Strings() {
				if strings.Contains(strings.ToLower(s), query) {
					return true
				}
			}
		}
		return false
	}
}

// selectPredicate matches when the field (or any list element) is accepted.
func selectPredicate(field string, selected []string) predicate {
	accepted := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		accepted[s] = struct{}{}
	}
	return func(r record.Record) bool {
		v, ok := r.Get(field)
		if !ok {
			return false
		}
		for _, s := range v.Strings() {
			if _, hit := accepted[record.Fold(s)]; hit {
				return true
			}
		}
		return false
	}
}

func rangePredicate(field string, minV, maxV float64, missing Missing) predicate {
	return func(r record.Record) bool {
		f, ok := r.Float(field)
		if !ok {
			if missing == MissingExclude {
				return false
			}
			f = 0
		}
		return minV <= f && f <= maxV
	}
}
