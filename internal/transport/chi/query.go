package chi

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/unidash/internal/domain/listing/filter"
	listinguc "github.com/kailas-cloud/unidash/internal/usecase/listing"
)

// Reserved query parameters. Criterion names never collide with them.
const (
	paramSort = "sort"
	paramPage = "page"

	rangeMinSuffix = "_min"
	rangeMaxSuffix = "_max"
)

// errInvalidParameter marks a query parameter that could not be parsed.
var errInvalidParameter = errors.New("invalid query parameter")

// applyQuery drives a pipeline from URL query parameters: filters first,
// then sort, then the page number, since every filter or sort change
// resets the pipeline to page 1.
func applyQuery(p *listinguc.Pipeline, q url.Values) error {
	for _, c := range p.Definition().Criteria() {
		if err := applyCriterion(p, c, q); err != nil {
			return err
		}
	}

	var sort *string
	if err := bind(paramSort, q, &sort); err != nil {
		return err
	}
	if sort != nil {
		if err := p.SetSort(*sort); err != nil {
			return err
		}
	}

	var number *int
	if err := bind(paramPage, q, &number); err != nil {
		return err
	}
	if number != nil {
		p.SetPage(*number)
	}
	return nil
}

func applyCriterion(p *listinguc.Pipeline, c filter.Criterion, q url.Values) error {
	switch c.Kind() {
	case filter.Text:
		var query *string
		if err := bind(c.Name(), q, &query); err != nil {
			return err
		}
		if query != nil {
			return p.SetSearch(c.Name(), *query)
		}
	case filter.MultiSelect:
		var values *[]string
		if err := bind(c.Name(), q, &values); err != nil {
			return err
		}
		if values != nil {
			return p.SetSelected(c.Name(), *values...)
		}
	case filter.Range:
		var minP, maxP *float64
		if err := bind(c.Name()+rangeMinSuffix, q, &minP); err != nil {
			return err
		}
		if err := bind(c.Name()+rangeMaxSuffix, q, &maxP); err != nil {
			return err
		}
		if minP == nil && maxP == nil {
			return nil
		}
		minV, maxV := c.Bounds()
		if minP != nil {
			minV = *minP
		}
		if maxP != nil {
			maxV = *maxP
		}
		return p.SetRange(c.Name(), minV, maxV)
	}
	return nil
}

// bind decodes an optional form-style, exploded query parameter. dest must
// point to a nil pointer, which stays nil when the parameter is absent.
func bind(name string, q url.Values, dest any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, q, dest); err != nil {
		return fmt.Errorf("%w %q: %w", errInvalidParameter, name, err)
	}
	return nil
}
