// internal/core/listing/sort.go
package listing

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortOrder selects the ordering of a list.
type SortOrder string

const (
	SortNewest         SortOrder = "newest"
	SortPriceAsc       SortOrder = "price-asc"
	SortPriceDesc      SortOrder = "price-desc"
	SortRatingDesc     SortOrder = "rating-desc"
	SortPopularityDesc SortOrder = "popularity-desc"
)

// DefaultSort is used when no order is requested.
const DefaultSort = SortNewest

// ParseSortOrder maps a request value onto a SortOrder. Underscores are
// accepted in place of dashes.
func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return DefaultSort, nil
	}
	o := SortOrder(strings.ReplaceAll(s, "_", "-"))
	switch o {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRatingDesc, SortPopularityDesc:
		return o, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Sort returns a stably sorted copy of items. Items that compare equal keep
// their relative input order. Unknown orders leave the order unchanged.
func Sort[T Item](items []T, order SortOrder) []T {
	out := slices.Clone(items)
	cmpFn := comparator[T](order)
	if cmpFn != nil {
		slices.SortStableFunc(out, cmpFn)
	}
	return out
}

func comparator[T Item](order SortOrder) func(a, b T) int {
	switch order {
	case SortPriceAsc:
		return func(a, b T) int { return a.ListingPrice().Cmp(b.ListingPrice()) }
	case SortPriceDesc:
		return func(a, b T) int { return b.ListingPrice().Cmp(a.ListingPrice()) }
	case SortRatingDesc:
		return func(a, b T) int { return cmp.Compare(b.ListingRating(), a.ListingRating()) }
	case SortPopularityDesc:
		return func(a, b T) int { return cmp.Compare(b.ListingPopularity(), a.ListingPopularity()) }
	case SortNewest, "":
		// Undated items sort after dated ones.
		return func(a, b T) int {
			ta, tb := a.ListingCreatedAt(), b.ListingCreatedAt()
			switch {
			case ta.IsZero() && tb.IsZero():
				return 0
			case ta.IsZero():
				return 1
			case tb.IsZero():
				return -1
			}
			return tb.Compare(ta)
		}
	}
	return nil
}
