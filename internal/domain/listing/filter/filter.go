package filter

import (
	"fmt"
	"math"
	"regexp"
)

// MaxSearchFields is the maximum number of fields one text criterion may search.
const MaxSearchFields = 32

var nameRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// reservedNames collide with pagination and sorting query parameters.
var reservedNames = map[string]bool{"sort": true, "page": true}

// Kind is the type of a filter criterion.
type Kind string

// Criterion kinds.
const (
	Text        Kind = "text"
	MultiSelect Kind = "multi_select"
	Range       Kind = "range"
)

// Missing decides how a range criterion treats records without a numeric value.
type Missing string

const (
	// MissingZero compares a missing value as 0.
	MissingZero Missing = "zero"
	// MissingExclude fails records without a value whenever the range is active.
	MissingExclude Missing = "exclude"
)

// IsValid checks if the missing-value policy is supported.
func (m Missing) IsValid() bool {
	return m == MissingZero || m == MissingExclude
}

// Criterion is an immutable filter rule definition.
type Criterion struct {
	name    string
	kind    Kind
	fields  []string
	min     float64
	max     float64
	missing Missing
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("criterion name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("criterion name %q too long (max 64)", name)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("criterion name %q must be lowercase alphanumeric with underscores and hyphens", name)
	}
	if reservedNames[name] {
		return fmt.Errorf("criterion name %q is reserved", name)
	}
	return nil
}

// NewText creates a free-text search criterion over one or more fields.
func NewText(name string, fields ...string) (Criterion, error) {
	if err := validateName(name); err != nil {
		return Criterion{}, err
	}
	if len(fields) == 0 {
		return Criterion{}, fmt.Errorf("text criterion %q needs at least one field", name)
	}
	if len(fields) > MaxSearchFields {
		return Criterion{}, fmt.Errorf("text criterion %q: too many fields (max %d)", name, MaxSearchFields)
	}
	for _, f := range fields {
		if f == "" {
			return Criterion{}, fmt.Errorf("text criterion %q: empty field name", name)
		}
	}
	fs := make([]string, len(fields))
	copy(fs, fields)
	return Criterion{name: name, kind: Text, fields: fs}, nil
}

// NewMultiSelect creates a multi-select criterion over one field.
func NewMultiSelect(name, field string) (Criterion, error) {
	if err := validateName(name); err != nil {
		return Criterion{}, err
	}
	if field == "" {
		return Criterion{}, fmt.Errorf("multi-select criterion %q: field is required", name)
	}
	return Criterion{name: name, kind: MultiSelect, fields: []string{field}}, nil
}

// NewRange creates an inclusive numeric range criterion.
// min and max are the full (inactive) bounds. An empty policy defaults to MissingZero.
func NewRange(name, field string, minV, maxV float64, missing Missing) (Criterion, error) {
	if err := validateName(name); err != nil {
		return Criterion{}, err
	}
	if field == "" {
		return Criterion{}, fmt.Errorf("range criterion %q: field is required", name)
	}
	if math.IsNaN(minV) || math.IsNaN(maxV) {
		return Criterion{}, fmt.Errorf("range criterion %q: bounds must be numbers", name)
	}
	if minV > maxV {
		return Criterion{}, fmt.Errorf("range criterion %q: min %v > max %v", name, minV, maxV)
	}
	if missing == "" {
		missing = MissingZero
	}
	if !missing.IsValid() {
		return Criterion{}, fmt.Errorf("range criterion %q: invalid missing policy %q", name, missing)
	}
	return Criterion{
		name: name, kind: Range, fields: []string{field},
		min: minV, max: maxV, missing: missing,
	}, nil
}

// Name returns the criterion name.
func (c Criterion) Name() string { return c.name }

// Kind returns the criterion kind.
func (c Criterion) Kind() Kind { return c.kind }

// Fields returns the fields the criterion reads.
func (c Criterion) Fields() []string { return c.fields }

// Field returns the first (for multi-select and range, the only) field.
func (c Criterion) Field() string {
	if len(c.fields) == 0 {
		return ""
	}
	return c.fields[0]
}

// Bounds returns the full range of a range criterion.
func (c Criterion) Bounds() (float64, float64) { return c.min, c.max }

// Missing returns the missing-value policy of a range criterion.
func (c Criterion) Missing() Missing { return c.missing }

// inactive returns the default value: empty query, empty set, full range.
func (c Criterion) inactive() Value {
	return Value{min: c.min, max: c.max}
}

// active reports whether v restricts anything.
func (c Criterion) active(v Value) bool {
	switch c.kind {
	case Text:
		return v.query != ""
	case MultiSelect:
		return len(v.selected) > 0
	case Range:
		return v.min > c.min || v.max < c.max
	default:
		return false
	}
}
