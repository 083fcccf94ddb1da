// internal/core/listing/listing.go

// Package listing turns an unordered item collection plus filter and sort
// criteria into a stable, sorted, paginated view. It is shared by the
// product marketplace and the course catalog.
package listing

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPageSize is the page size of both catalog lists.
const DefaultPageSize = 12

// All requests a single page holding every matching item.
const All = -1

// Item is what the pipeline needs to know about a collection entry.
type Item interface {
	ListingPrice() decimal.Decimal
	ListingRating() float64
	ListingPopularity() int64
	ListingCreatedAt() time.Time
	// ListingTag returns the item's value for a tag group, or "" when the
	// group does not apply.
	ListingTag(group string) string
}

// Query bundles everything one pipeline run depends on.
type Query struct {
	Criteria Criteria
	Sort     SortOrder
	Page     int
	PageSize int
}

// Run filters, sorts and paginates items. The input slice is not modified.
func Run[T Item](items []T, q Query) Page[T] {
	return Paginate(Sort(Filter(items, q.Criteria), q.Sort), q.Page, q.PageSize)
}
