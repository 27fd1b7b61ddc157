package listing

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/kailas-cloud/unidash/internal/domain"
	"github.com/kailas-cloud/unidash/internal/domain/listing/filter"
	"github.com/kailas-cloud/unidash/internal/domain/listing/sortkey"
	"github.com/kailas-cloud/unidash/internal/domain/record"
)

// MaxPageSize bounds the page size a definition may declare.
const MaxPageSize = 500

var nameRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Builder is a fluent builder for page definitions.
// The first error is kept and reported by Build.
type Builder struct {
	def      Definition
	mappings map[string]string
	keys     []sortkey.Key
	defSort  string
	err      error
}

// NewDefinition starts building a page definition.
func NewDefinition(name string) *Builder {
	return &Builder{
		def:      Definition{name: name, title: name, source: name},
		mappings: make(map[string]string),
	}
}

// Title sets the display title.
func (b *Builder) Title(title string) *Builder {
	if title != "" {
		b.def.title = title
	}
	return b
}

// Source sets the record collection name (defaults to the page name).
func (b *Builder) Source(source string) *Builder {
	if source != "" {
		b.def.source = source
	}
	return b
}

// PageSize sets the page size (non-positive keeps the default).
func (b *Builder) PageSize(n int) *Builder {
	b.def.pageSize = n
	return b
}

// Map declares a canonical field read from a dotted path of the raw record.
func (b *Builder) Map(field, path string) *Builder {
	b.mappings[field] = path
	return b
}

// Search adds a free-text criterion over fields.
func (b *Builder) Search(name string, fields ...string) *Builder {
	c, err := filter.NewText(name, fields...)
	b.addCriterion(c, err)
	return b
}

// Facet adds a multi-select criterion with counted options over field.
func (b *Builder) Facet(name, field, label string) *Builder {
	c, err := filter.NewMultiSelect(name, field)
	if b.addCriterion(c, err) {
		if label == "" {
			label = name
		}
		b.def.facets = append(b.def.facets, Facet{Name: name, Field: field, Label: label})
	}
	return b
}

// Range adds an inclusive numeric range criterion over field.
func (b *Builder) Range(name, field string, minV, maxV float64, missing filter.Missing) *Builder {
	c, err := filter.NewRange(name, field, minV, maxV, missing)
	b.addCriterion(c, err)
	return b
}

// SortKey adds a named sort order.
func (b *Builder) SortKey(name, field string, kind sortkey.Kind, desc bool) *Builder {
	k, err := sortkey.NewKey(name, field, kind, desc)
	if err != nil {
		b.fail(err)
		return b
	}
	b.keys = append(b.keys, k)
	return b
}

// DefaultSort sets the initial sort key (empty means relevance).
func (b *Builder) DefaultSort(name string) *Builder {
	b.defSort = name
	return b
}

// Build validates and returns the definition. Errors wrap domain.ErrInvalidSchema.
func (b *Builder) Build() (Definition, error) {
	d := b.def
	if err := validateName(d.name); err != nil {
		b.fail(err)
	}
	if d.pageSize > MaxPageSize {
		b.fail(fmt.Errorf("page size %d exceeds max %d", d.pageSize, MaxPageSize))
	}
	if b.err != nil {
		return Definition{}, b.wrap(b.err)
	}

	if _, err := filter.NewState(d.criteria...); err != nil {
		return Definition{}, b.wrap(err)
	}

	norm, err := record.NewNormalizer(b.mappings)
	if err != nil {
		return Definition{}, b.wrap(err)
	}
	d.normalizer = norm

	reg, err := sortkey.NewRegistry(b.defSort, b.keys...)
	if err != nil {
		return Definition{}, b.wrap(err)
	}
	d.sorts = reg

	return d, nil
}

func (b *Builder) addCriterion(c filter.Criterion, err error) bool {
	if err != nil {
		b.fail(err)
		return false
	}
	b.def.criteria = append(b.def.criteria, c)
	return true
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) wrap(err error) error {
	if errors.Is(err, domain.ErrInvalidSchema) {
		return err
	}
	return fmt.Errorf("page %q: %w: %w", b.def.name, domain.ErrInvalidSchema, err)
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("page name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("page name too long (max 64)")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("page name must be lowercase alphanumeric with underscores and hyphens")
	}
	return nil
}
