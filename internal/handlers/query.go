// internal/handlers/query.go
package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/listing"
)

// ListLimits bounds the page size clients may request.
type ListLimits struct {
	DefaultPageSize int
	MaxPageSize     int
}

// parseListQuery reads the shared list parameters plus the given tag
// groups. normalize maps a raw tag value onto its canonical form and
// reports whether it is acceptable.
func parseListQuery(values url.Values, limits ListLimits, groups []string,
	normalize func(group, value string) (string, bool)) (listing.Query, error) {
	q := listing.Query{
		Page:     1,
		PageSize: limits.DefaultPageSize,
	}

	if v := values.Get("min_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return q, fmt.Errorf("min_price must be a non-negative number: %w", domain.ErrInvalidInput)
		}
		q.Criteria.PriceMin = d
	}
	if v := values.Get("max_price"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return q, fmt.Errorf("max_price must be a non-negative number: %w", domain.ErrInvalidInput)
		}
		q.Criteria.PriceMax = &d
	}
	if v := values.Get("min_rating"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 5 {
			return q, fmt.Errorf("min_rating must be between 0 and 5: %w", domain.ErrInvalidInput)
		}
		q.Criteria.MinRating = &f
	}

	for _, group := range groups {
		selected := splitList(values[group])
		if len(selected) == 0 {
			continue
		}
		if q.Criteria.Tags == nil {
			q.Criteria.Tags = make(map[string][]string)
		}
		for _, raw := range selected {
			v, ok := normalize(group, raw)
			if !ok {
				return q, fmt.Errorf("unknown %s %q: %w", group, raw, domain.ErrInvalidInput)
			}
			q.Criteria.Tags[group] = append(q.Criteria.Tags[group], v)
		}
	}

	sort, err := listing.ParseSortOrder(values.Get("sort"))
	if err != nil {
		return q, fmt.Errorf("%s: %w", err.Error(), domain.ErrInvalidInput)
	}
	q.Sort = sort

	// Out of range pages are passed through and come back empty.
	if v := values.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			q.Page = p
		}
	}

	switch v := values.Get("page_size"); {
	case v == "":
	case strings.EqualFold(v, "all"):
		q.PageSize = listing.All
	default:
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.PageSize = n
			if limits.MaxPageSize > 0 && n > limits.MaxPageSize {
				q.PageSize = limits.MaxPageSize
			}
		}
	}

	return q, nil
}

// splitList accepts both repeated parameters and comma separated values.
func splitList(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func normalizeProductTag(group, value string) (string, bool) {
	value = strings.ToLower(value)
	switch group {
	case domain.TagCategory:
		return value, domain.ValidCategory(domain.ProductCategory(value))
	case domain.TagCondition:
		switch domain.ProductCondition(value) {
		case domain.ConditionNew, domain.ConditionHandmade, domain.ConditionVintage,
			domain.ConditionAntique, domain.ConditionPreOwned, domain.ConditionUnspecified:
			return value, true
		}
	case domain.TagAvailability:
		switch domain.Availability(value) {
		case domain.AvailabilityInStock, domain.AvailabilityMadeToOrder, domain.AvailabilityOutOfStock:
			return value, true
		}
	}
	return "", false
}

func normalizeCourseTag(group, value string) (string, bool) {
	switch group {
	case domain.TagLevel:
		level, ok := domain.ParseCourseLevel(value)
		return string(level), ok
	case domain.TagCategory:
		// Course categories are free-form and matched exactly.
		return value, true
	}
	return "", false
}
