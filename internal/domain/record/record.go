package record

import "sort"

// Record is one normalized row of domain data (immutable value object).
type Record struct {
	fields map[string]Value
}

// New creates a Record from normalized values. The map is copied.
func New(fields map[string]Value) Record {
	c := make(map[string]Value, len(fields))
	for k, v := range fields {
		c[k] = v
	}
	return Record{fields: c}
}

// Get returns the value of a field. Absent and null fields report ok=false.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.fields[name]
	if !ok || v.IsNull() {
		return Null(), false
	}
	return v, true
}

// Text returns the string form of a field, or "" when absent.
func (r Record) Text(name string) string {
	v, _ := r.Get(name)
	return v.Text()
}

// Float returns the numeric form of a field.
func (r Record) Float(name string) (float64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	return v.Float()
}

// Len returns the number of fields, nulls included.
func (r Record) Len() int { return len(r.fields) }

// Fields returns the field names in ascending order.
func (r Record) Fields() []string {
	names := make([]string, 0, len(r.fields))
	for k := range r.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Map returns the record as plain Go values, suitable for JSON encoding.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		m[k] = v.Any()
	}
	return m
}
