package record

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Normalizer turns raw decoded JSON objects into Records.
//
// Nested objects are flattened into dotted paths ("college.name"). Arrays of
// scalars become lists; an array of objects contributes its first element.
// Mappings then project source paths onto canonical field names, so the rest
// of the pipeline never has to chase optional nesting.
type Normalizer struct {
	mappings map[string]string
}

// NewNormalizer validates and creates a Normalizer.
// mappings maps canonical field name -> source path.
func NewNormalizer(mappings map[string]string) (Normalizer, error) {
	m := make(map[string]string, len(mappings))
	for name, path := range mappings {
		if name == "" {
			return Normalizer{}, fmt.Errorf("mapping name is required")
		}
		if path == "" {
			return Normalizer{}, fmt.Errorf("mapping %q: source path is required", name)
		}
		m[name] = path
	}
	return Normalizer{mappings: m}, nil
}

// Mappings returns a copy of the canonical name -> source path mappings.
func (n Normalizer) Mappings() map[string]string {
	m := make(map[string]string, len(n.mappings))
	for k, v := range n.mappings {
		m[k] = v
	}
	return m
}

// Normalize converts one raw object into a Record.
func (n Normalizer) Normalize(raw map[string]any) Record {
	flat := make(map[string]Value, len(raw))
	flatten(flat, "", raw)
	for name, path := range n.mappings {
		if v, ok := flat[path]; ok {
			flat[name] = v
		}
	}
	return Record{fields: flat}
}

// NormalizeAll converts a slice of raw objects.
func (n Normalizer) NormalizeAll(raw []map[string]any) []Record {
	out := make([]Record, len(raw))
	for i, r := range raw {
		out[i] = n.Normalize(r)
	}
	return out
}

// Normalize converts one raw object without field mappings.
func Normalize(raw map[string]any) Record {
	return Normalizer{}.Normalize(raw)
}

func flatten(dst map[string]Value, prefix string, obj map[string]any) {
	for k, v := range obj {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch tv := v.(type) {
		case map[string]any:
			flatten(dst, key, tv)
		case []any:
			flattenArray(dst, key, tv)
		default:
			dst[key] = scalar(tv)
		}
	}
}

func flattenArray(dst map[string]Value, key string, arr []any) {
	if len(arr) > 0 {
		if first, ok := arr[0].(map[string]any); ok {
			flatten(dst, key, first)
			return
		}
	}
	items := make([]string, 0, len(arr))
	for _, el := range arr {
		s := scalar(el)
		if s.kind == KindString || s.kind == KindNumber {
			items = append(items, s.Text())
		}
	}
	dst[key] = Value{kind: KindList, list: items}
}

func scalar(v any) Value {
	switch tv := v.(type) {
	case nil:
		return Null()
	case string:
		return String(tv)
	case float64:
		return Number(tv)
	case float32:
		return Number(float64(tv))
	case int:
		return Number(float64(tv))
	case int64:
		return Number(float64(tv))
	case json.Number:
		if f, err := tv.Float64(); err == nil {
			return Number(f)
		}
		return String(tv.String())
	case bool:
		return String(strconv.FormatBool(tv))
	default:
		return Null()
	}
}
