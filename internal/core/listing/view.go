// internal/core/listing/view.go
package listing

import (
	"slices"

	"github.com/shopspring/decimal"
)

// ViewOption configures a View.
type ViewOption func(*viewOptions)

type viewOptions struct {
	onPageChange func(page int)
}

// WithPageChangeHook registers a callback fired after every accepted page
// change. Hosts use it to scroll back to the top of the list.
func WithPageChangeHook(fn func(page int)) ViewOption {
	return func(o *viewOptions) { o.onPageChange = fn }
}

// View holds the interactive state of one list: the collection, the active
// filters, the sort order and the current page. Every filter mutation sends
// the view back to page 1. A View is not safe for concurrent use.
type View[T Item] struct {
	items    []T
	criteria Criteria
	order    SortOrder
	page     int
	pageSize int
	opts     viewOptions
}

// NewView creates a view over items showing pageSize entries per page.
func NewView[T Item](items []T, pageSize int, opts ...ViewOption) *View[T] {
	if pageSize <= 0 && pageSize != All {
		pageSize = DefaultPageSize
	}
	v := &View[T]{
		items:    slices.Clone(items),
		order:    DefaultSort,
		page:     1,
		pageSize: pageSize,
	}
	for _, opt := range opts {
		opt(&v.opts)
	}
	return v
}

// SetItems replaces the whole collection, as after a mutation response.
// The current page is kept while it still exists, otherwise it resets to 1.
func (v *View[T]) SetItems(items []T) {
	v.items = slices.Clone(items)
	if v.page > v.TotalPages() {
		v.page = 1
	}
}

// Len returns the size of the unfiltered collection.
func (v *View[T]) Len() int { return len(v.items) }

// Criteria returns a copy of the active filters.
func (v *View[T]) Criteria() Criteria { return v.criteria.Clone() }

// SortOrder returns the active sort order.
func (v *View[T]) SortOrder() SortOrder { return v.order }

// CurrentPage returns the 1-based current page.
func (v *View[T]) CurrentPage() int { return v.page }

// Query returns the pipeline inputs for the current state.
func (v *View[T]) Query() Query {
	return Query{Criteria: v.criteria.Clone(), Sort: v.order, Page: v.page, PageSize: v.pageSize}
}

// Result runs the pipeline for the current state.
func (v *View[T]) Result() Page[T] {
	return Run(v.items, v.Query())
}

// TotalPages returns the page count under the current filters.
func (v *View[T]) TotalPages() int {
	size := v.pageSize
	n := len(Filter(v.items, v.criteria))
	if size == All {
		return 1
	}
	return TotalPages(n, size)
}

// SetPriceRange sets the inclusive price bounds. A nil min means 0 and a
// nil max removes the upper bound.
func (v *View[T]) SetPriceRange(minPrice, maxPrice *decimal.Decimal) {
	v.criteria.PriceMin = decimal.Zero
	if minPrice != nil {
		v.criteria.PriceMin = *minPrice
	}
	v.criteria.PriceMax = nil
	if maxPrice != nil {
		m := *maxPrice
		v.criteria.PriceMax = &m
	}
	v.page = 1
}

// ToggleMinRating selects a minimum rating, or clears it when the same
// value is selected again.
func (v *View[T]) ToggleMinRating(r float64) {
	if v.criteria.MinRating != nil && *v.criteria.MinRating == r {
		v.criteria.MinRating = nil
	} else {
		v.criteria.MinRating = &r
	}
	v.page = 1
}

// ToggleTag adds value to the group's selection, or removes it if present.
func (v *View[T]) ToggleTag(group, value string) {
	vals := v.criteria.Tags[group]
	if i := slices.Index(vals, value); i >= 0 {
		vals = slices.Delete(slices.Clone(vals), i, i+1)
	} else {
		vals = append(slices.Clone(vals), value)
	}
	if v.criteria.Tags == nil {
		v.criteria.Tags = make(map[string][]string)
	}
	if len(vals) == 0 {
		delete(v.criteria.Tags, group)
	} else {
		v.criteria.Tags[group] = vals
	}
	v.page = 1
}

// SetCriteria replaces all filters at once.
func (v *View[T]) SetCriteria(c Criteria) {
	v.criteria = c.Clone()
	v.page = 1
}

// ClearAllFilters resets every filter and the page. The sort order stays.
func (v *View[T]) ClearAllFilters() {
	v.criteria = Criteria{}
	v.page = 1
}

// SetSort changes the order and returns to the first page.
func (v *View[T]) SetSort(order SortOrder) {
	v.order = order
	v.page = 1
}

// ChangePage moves to page p. Requests outside [1, TotalPages] are ignored
// and report false.
func (v *View[T]) ChangePage(p int) bool {
	if p < 1 || p > v.TotalPages() {
		return false
	}
	v.page = p
	if v.opts.onPageChange != nil {
		v.opts.onPageChange(p)
	}
	return true
}
