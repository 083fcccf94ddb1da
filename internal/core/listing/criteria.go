// internal/core/listing/criteria.go
package listing

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Criteria is the set of active filters. The zero value matches everything.
type Criteria struct {
	PriceMin decimal.Decimal
	// PriceMax nil means no upper bound.
	PriceMax *decimal.Decimal
	// MinRating nil means no rating constraint.
	MinRating *float64
	// Tags holds the selected values per tag group. A group with no
	// selection does not constrain the result.
	Tags map[string][]string
}

// Clone returns a deep copy.
func (c Criteria) Clone() Criteria {
	out := Criteria{PriceMin: c.PriceMin}
	if c.PriceMax != nil {
		v := *c.PriceMax
		out.PriceMax = &v
	}
	if c.MinRating != nil {
		v := *c.MinRating
		out.MinRating = &v
	}
	if len(c.Tags) > 0 {
		out.Tags = make(map[string][]string, len(c.Tags))
		for g, vals := range c.Tags {
			if len(vals) > 0 {
				out.Tags[g] = slices.Clone(vals)
			}
		}
	}
	return out
}

// IsZero reports whether no filter is active.
func (c Criteria) IsZero() bool {
	if !c.PriceMin.IsZero() || c.PriceMax != nil || c.MinRating != nil {
		return false
	}
	for _, vals := range c.Tags {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// Selected reports whether value is selected in group.
func (c Criteria) Selected(group, value string) bool {
	return slices.Contains(c.Tags[group], value)
}

// Matches applies every active filter to a single item.
func (c Criteria) Matches(item Item) bool {
	price := item.ListingPrice()
	if price.LessThan(c.PriceMin) {
		return false
	}
	if c.PriceMax != nil && price.GreaterThan(*c.PriceMax) {
		return false
	}
	if c.MinRating != nil && item.ListingRating() < *c.MinRating {
		return false
	}
	for group, vals := range c.Tags {
		if len(vals) == 0 {
			continue
		}
		if !slices.Contains(vals, item.ListingTag(group)) {
			return false
		}
	}
	return true
}

// Key renders a canonical string for the criteria, stable under tag
// selection order. Used as part of memoization keys.
func (c Criteria) Key() string {
	var b strings.Builder
	b.WriteString("min=")
	b.WriteString(c.PriceMin.String())
	b.WriteString(";max=")
	if c.PriceMax != nil {
		b.WriteString(c.PriceMax.String())
	}
	b.WriteString(";rating=")
	if c.MinRating != nil {
		b.WriteString(strconv.FormatFloat(*c.MinRating, 'f', -1, 64))
	}
	groups := make([]string, 0, len(c.Tags))
	for g, vals := range c.Tags {
		if len(vals) > 0 {
			groups = append(groups, g)
		}
	}
	sort.Strings(groups)
	for _, g := range groups {
		vals := slices.Clone(c.Tags[g])
		sort.Strings(vals)
		b.WriteString(";")
		b.WriteString(g)
		b.WriteString("=")
		b.WriteString(strings.Join(vals, ","))
	}
	return b.String()
}

// Filter keeps the items that satisfy every active criterion, preserving
// input order.
func Filter[T Item](items []T, c Criteria) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if c.Matches(it) {
			out = append(out, it)
		}
	}
	return out
}
