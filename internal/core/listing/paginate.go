// internal/core/listing/paginate.go
package listing

// Page is one window of a sorted list.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
	// Empty is set when nothing matched, so callers can show a
	// "no results" state with pagination disabled.
	Empty bool `json:"empty"`
}

// TotalPages returns max(1, ceil(n/pageSize)).
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// Paginate slices items for the requested 1-based page. A page outside
// [1, TotalPages] yields no items; the page number is reported as given.
// pageSize 0 means DefaultPageSize and All returns every item on page 1.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	n := len(items)
	switch {
	case pageSize == All:
		pageSize = max(n, 1)
	case pageSize <= 0:
		pageSize = DefaultPageSize
	}

	total := TotalPages(n, pageSize)
	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   pageSize,
		TotalCount: n,
		TotalPages: total,
		Empty:      n == 0,
	}
	if n == 0 || page < 1 || page > total {
		return p
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, n)
	p.Items = items[start:end:end]
	p.HasPrev = page > 1
	p.HasNext = page < total
	return p
}
