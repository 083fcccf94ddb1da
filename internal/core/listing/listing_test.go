package listing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/listing"
)

type entry struct {
	id         string
	price      decimal.Decimal
	rating     float64
	popularity int64
	created    time.Time
	level      string
}

func (e entry) ListingPrice() decimal.Decimal { return e.price }
func (e entry) ListingRating() float64         { return e.rating }
func (e entry) ListingPopularity() int64       { return e.popularity }
func (e entry) ListingCreatedAt() time.Time    { return e.created }
func (e entry) ListingTag(group string) string {
	if group == domain.TagLevel {
		return e.level
	}
	return ""
}

func priced(id string, p int64) entry {
	return entry{id: id, price: decimal.NewFromInt(p)}
}

func ids[T interface{ key() string }](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.key()
	}
	return out
}

func (e entry) key() string { return e.id }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func floatPtr(v float64) *float64 { return &v }

func TestFilter_PriceRange(t *testing.T) {
	items := []entry{priced("a", 10), priced("b", 50), priced("c", 100)}

	got := listing.Filter(items, listing.Criteria{PriceMin: decimal.NewFromInt(20), PriceMax: decPtr(80)})

	assert.Equal(t, []string{"b"}, ids(got))
}

func TestFilter_BoundsAreInclusive(t *testing.T) {
	items := []entry{priced("a", 20), priced("b", 80), priced("c", 81)}

	got := listing.Filter(items, listing.Criteria{PriceMin: decimal.NewFromInt(20), PriceMax: decPtr(80)})

	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestFilter_Criteria(t *testing.T) {
	items := []entry{
		{id: "1", price: decimal.NewFromInt(5), rating: 4.5, level: "Beginner"},
		{id: "2", price: decimal.NewFromInt(5), rating: 3.9, level: "Beginner"},
		{id: "3", price: decimal.NewFromInt(5), rating: 4.0, level: "Advanced"},
		{id: "4", price: decimal.NewFromInt(5), level: "Intermediate"},
	}

	tests := []struct {
		name     string
		criteria listing.Criteria
		want     []string
	}{
		{name: "zero_criteria_keeps_everything", want: []string{"1", "2", "3", "4"}},
		{name: "min_rating_is_inclusive", criteria: listing.Criteria{MinRating: floatPtr(4)}, want: []string{"1", "3"}},
		{
			name:     "tag_group_selection",
			criteria: listing.Criteria{Tags: map[string][]string{domain.TagLevel: {"Beginner", "Intermediate"}}},
			want:     []string{"1", "2", "4"},
		},
		{
			name:     "empty_group_does_not_constrain",
			criteria: listing.Criteria{Tags: map[string][]string{domain.TagLevel: {}}},
			want:     []string{"1", "2", "3", "4"},
		},
		{
			name:     "group_the_item_lacks_excludes_it",
			criteria: listing.Criteria{Tags: map[string][]string{domain.TagCondition: {"new"}}},
			want:     []string{},
		},
		{
			name: "all_filters_combined",
			criteria: listing.Criteria{
				MinRating: floatPtr(4),
				Tags:      map[string][]string{domain.TagLevel: {"Advanced"}},
			},
			want: []string{"3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(listing.Filter(items, tt.criteria)))
		})
	}
}

func TestSort_Orders(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []entry{
		{id: "a", price: decimal.NewFromInt(30), rating: 4, popularity: 10, created: base},
		{id: "b", price: decimal.NewFromInt(10), rating: 5, popularity: 300, created: base.Add(48 * time.Hour)},
		{id: "c", price: decimal.NewFromInt(20), rating: 3, popularity: 50, created: base.Add(24 * time.Hour)},
		{id: "d", price: decimal.NewFromInt(20), rating: 4},
	}

	tests := []struct {
		order listing.SortOrder
		want  []string
	}{
		{listing.SortNewest, []string{"b", "c", "a", "d"}},
		{listing.SortPriceAsc, []string{"b", "c", "d", "a"}},
		{listing.SortPriceDesc, []string{"a", "c", "d", "b"}},
		{listing.SortRatingDesc, []string{"b", "a", "d", "c"}},
		{listing.SortPopularityDesc, []string{"b", "c", "a", "d"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			assert.Equal(t, tt.want, ids(listing.Sort(items, tt.order)))
		})
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(items), "input must not be reordered")
}

func TestSort_IsStable(t *testing.T) {
	items := []entry{
		{id: "first", rating: 4},
		{id: "second", rating: 4},
		{id: "top", rating: 5},
		{id: "third", rating: 4},
	}

	got := listing.Sort(items, listing.SortRatingDesc)

	assert.Equal(t, []string{"top", "first", "second", "third"}, ids(got))
}

func TestParseSortOrder(t *testing.T) {
	o, err := listing.ParseSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, listing.SortNewest, o)

	o, err = listing.ParseSortOrder("price_desc")
	require.NoError(t, err)
	assert.Equal(t, listing.SortPriceDesc, o)

	_, err = listing.ParseSortOrder("cheapest")
	assert.Error(t, err)
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		n, size, want int
	}{
		{0, 12, 1},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{25, 12, 3},
		{5, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, listing.TotalPages(tt.n, tt.size), "n=%d size=%d", tt.n, tt.size)
	}
}

func TestPaginate(t *testing.T) {
	items := make([]entry, 25)
	for i := range items {
		items[i] = priced(string(rune('a'+i)), int64(i))
	}

	t.Run("last_page_is_partial", func(t *testing.T) {
		p := listing.Paginate(items, 3, 12)
		assert.Equal(t, []string{"y"}, ids(p.Items))
		assert.Equal(t, 3, p.TotalPages)
		assert.Equal(t, 25, p.TotalCount)
		assert.True(t, p.HasPrev)
		assert.False(t, p.HasNext)
	})

	t.Run("out_of_range_is_not_renormalized", func(t *testing.T) {
		p := listing.Paginate(items, 4, 12)
		assert.Empty(t, p.Items)
		assert.Equal(t, 4, p.Page)
		assert.False(t, p.Empty)
	})

	t.Run("all_returns_single_page", func(t *testing.T) {
		p := listing.Paginate(items, 1, listing.All)
		assert.Len(t, p.Items, 25)
		assert.Equal(t, 1, p.TotalPages)
	})

	t.Run("empty_collection", func(t *testing.T) {
		p := listing.Paginate([]entry{}, 1, 12)
		assert.Empty(t, p.Items)
		assert.NotNil(t, p.Items)
		assert.Equal(t, 1, p.TotalPages)
		assert.True(t, p.Empty)
		assert.False(t, p.HasNext)
		assert.False(t, p.HasPrev)
	})

	t.Run("zero_page_size_uses_default", func(t *testing.T) {
		p := listing.Paginate(items, 1, 0)
		assert.Len(t, p.Items, listing.DefaultPageSize)
	})
}

func TestRun_CourseExample(t *testing.T) {
	var courses []domain.Course
	for _, raw := range []struct {
		price  string
		rating float64
		level  domain.CourseLevel
	}{
		{"Rs. 1,500", 4.2, domain.LevelBeginner},
		{"1000", 3.0, domain.LevelAdvanced},
	} {
		courses = append(courses, domain.Course{
			Title:  raw.price,
			Price:  domain.ParseAmount(raw.price),
			Rating: raw.rating,
			Level:  raw.level,
		})
	}

	page := listing.Run(courses, listing.Query{
		Criteria: listing.Criteria{
			MinRating: floatPtr(4),
			Tags:      map[string][]string{domain.TagLevel: {"Beginner"}},
		},
		Sort:     listing.SortPriceAsc,
		Page:     1,
		PageSize: 12,
	})

	require.Len(t, page.Items, 1)
	assert.Equal(t, "Rs. 1,500", page.Items[0].Title)
	assert.True(t, page.Items[0].Price.Equal(decimal.NewFromInt(1500)))
	assert.Equal(t, 1, page.TotalPages)
}

func TestCriteria_Key(t *testing.T) {
	a := listing.Criteria{Tags: map[string][]string{"level": {"Advanced", "Beginner"}, "category": {"music"}}}
	b := listing.Criteria{Tags: map[string][]string{"category": {"music"}, "level": {"Beginner", "Advanced"}}}
	assert.Equal(t, a.Key(), b.Key())

	c := a.Clone()
	c.MinRating = floatPtr(4)
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Nil(t, a.MinRating)
}

func TestCriteria_IsZero(t *testing.T) {
	assert.True(t, listing.Criteria{}.IsZero())
	assert.True(t, listing.Criteria{Tags: map[string][]string{"level": nil}}.IsZero())
	assert.False(t, listing.Criteria{PriceMax: decPtr(10)}.IsZero())
}
