package record

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the normalized shape of a field value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindList:
		return "list"
	default:
		return "null"
	}
}

// Value is an immutable normalized field value.
type Value struct {
	kind Kind
	str  string
	num  float64
	list []string
}

// Null returns the null value.
func Null() Value { return Value{} }

// String creates a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number creates a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// List creates a list value. Items are copied.
func List(items ...string) Value {
	l := make([]string, len(items))
	copy(l, items)
	return Value{kind: KindList, list: l}
}

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Strings returns the value as a list of strings.
// Scalars yield one element, null yields none.
func (v Value) Strings() []string {
	switch v.kind {
	case KindString:
		return []string{v.str}
	case KindNumber:
		return []string{formatNumber(v.num)}
	case KindList:
		return v.list
	default:
		return nil
	}
}

// Text returns the scalar string form of the value; lists are joined with ", ".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return formatNumber(v.num)
	case KindList:
		return strings.Join(v.list, ", ")
	default:
		return ""
	}
}

// Float returns the numeric form of the value.
// Numeric strings are parsed; lists and null are not numeric.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time returns the timestamp form of the value.
// Numbers are read as unix milliseconds.
func (v Value) Time() (time.Time, bool) {
	switch v.kind {
	case KindNumber:
		return time.UnixMilli(int64(v.num)).UTC(), true
	case KindString:
		s := strings.TrimSpace(v.str)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// Any returns the value as a plain Go value (string, float64, []string or nil).
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindList:
		out := make([]string, len(v.list))
		copy(out, v.list)
		return out
	default:
		return nil
	}
}

// Fold normalizes a string for case-insensitive comparison.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
