package filter

import (
	"fmt"
	"math"
	"slices"

	"github.com/kailas-cloud/unidash/internal/domain"
	"github.com/kailas-cloud/unidash/internal/domain/record"
)

// Value is the current setting of one criterion.
type Value struct {
	query    string
	selected []string
	min      float64
	max      float64
}

// Query returns the folded search text.
func (v Value) Query() string { return v.query }

// Selected returns the folded accepted values, sorted.
func (v Value) Selected() []string { return v.selected }

// Range returns the current bounds.
func (v Value) Range() (float64, float64) { return v.min, v.max }

// State holds the current value of every criterion of a page.
// It is always fully defined: criteria without a user setting hold their inactive value.
type State struct {
	criteria []Criterion
	index    map[string]int
	values   []Value
}

// NewState creates a State with every criterion inactive.
func NewState(criteria ...Criterion) (State, error) {
	index := make(map[string]int, len(criteria))
	values := make([]Value, len(criteria))
	for i, c := range criteria {
		if _, dup := index[c.Name()]; dup {
			return State{}, fmt.Errorf("duplicate criterion name: %s", c.Name())
		}
		index[c.Name()] = i
		values[i] = c.inactive()
	}
	return State{criteria: slices.Clone(criteria), index: index, values: values}, nil
}

// Criteria returns the criteria in declaration order.
func (s State) Criteria() []Criterion { return s.criteria }

// Criterion looks up a criterion by name.
func (s State) Criterion(name string) (Criterion, bool) {
	i, ok := s.index[name]
	if !ok {
		return Criterion{}, false
	}
	return s.criteria[i], true
}

// Value returns the current value of a criterion.
func (s State) Value(name string) (Value, bool) {
	i, ok := s.index[name]
	if !ok {
		return Value{}, false
	}
	return s.values[i], true
}

// IsActive reports whether the named criterion currently restricts records.
func (s State) IsActive(name string) bool {
	i, ok := s.index[name]
	return ok && s.criteria[i].active(s.values[i])
}

// IsEmpty reports whether no criterion is active.
func (s State) IsEmpty() bool {
	for i, c := range s.criteria {
		if c.active(s.values[i]) {
			return false
		}
	}
	return true
}

// Clone returns a State that shares no mutable data with s.
func (s State) Clone() State {
	values := make([]Value, len(s.values))
	for i, v := range s.values {
		v.selected = slices.Clone(v.selected)
		values[i] = v
	}
	return State{criteria: s.criteria, index: s.index, values: values}
}

// SetQuery sets the search text of a text criterion. Empty text deactivates it.
func (s *State) SetQuery(name, query string) error {
	i, err := s.lookup(name, Text)
	if err != nil {
		return err
	}
	s.values[i].query = record.Fold(query)
	return nil
}

// SetSelected replaces the accepted set of a multi-select criterion.
// Values are folded and de-duplicated; an empty set deactivates it.
func (s *State) SetSelected(name string, values ...string) error {
	i, err := s.lookup(name, MultiSelect)
	if err != nil {
		return err
	}
	sel := make([]string, 0, len(values))
	for _, v := range values {
		if f := record.Fold(v); f != "" {
			sel = append(sel, f)
		}
	}
	slices.Sort(sel)
	s.values[i].selected = slices.Compact(sel)
	return nil
}

// SetRange sets the bounds of a range criterion. min > max is rejected and
// leaves the state untouched.
func (s *State) SetRange(name string, minV, maxV float64) error {
	i, err := s.lookup(name, Range)
	if err != nil {
		return err
	}
	if math.IsNaN(minV) || math.IsNaN(maxV) {
		return fmt.Errorf("%w: range %q bounds must be numbers", domain.ErrInvalidFilterValue, name)
	}
	if minV > maxV {
		return fmt.Errorf("%w: range %q min %v > max %v", domain.ErrInvalidFilterValue, name, minV, maxV)
	}
	s.values[i].min = minV
	s.values[i].max = maxV
	return nil
}

// Reset sets every criterion to its inactive value.
func (s *State) Reset() {
	for i, c := range s.criteria {
		s.values[i] = c.inactive()
	}
}

func (s *State) lookup(name string, kind Kind) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: unknown criterion %q", domain.ErrInvalidFilterValue, name)
	}
	if k := s.criteria[i].Kind(); k != kind {
		return 0, fmt.Errorf("%w: criterion %q is %s, not %s", domain.ErrInvalidFilterValue, name, k, kind)
	}
	return i, nil
}
