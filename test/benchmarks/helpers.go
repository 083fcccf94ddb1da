// test/benchmarks/helpers.go
package benchmarks

import (
	"bytes"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/listing"
	"github.com/ammerola/cultureconnect-be/internal/workers"
)

var (
	categories = []domain.ProductCategory{
		domain.CategoryHandicrafts,
		domain.CategoryTextiles,
		domain.CategoryPaintings,
		domain.CategoryPottery,
		domain.CategoryJewelry,
		domain.CategoryInstruments,
	}
	conditions = []domain.ProductCondition{
		domain.ConditionNew,
		domain.ConditionHandmade,
		domain.ConditionVintage,
		domain.ConditionAntique,
	}
	levels = []domain.CourseLevel{
		domain.LevelBeginner,
		domain.LevelIntermediate,
		domain.LevelAdvanced,
	}
)

// generateProducts builds a deterministic catalog of n published products.
func generateProducts(n int) []domain.Product {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	products := make([]domain.Product, n)
	for i := range products {
		products[i] = domain.Product{
			ID:           uuid.New(),
			SellerID:     fmt.Sprintf("seller-%d", i%50),
			Name:         fmt.Sprintf("Product %d", i),
			Category:     categories[rng.Intn(len(categories))],
			Condition:    conditions[rng.Intn(len(conditions))],
			Availability: domain.AvailabilityInStock,
			Price:        decimal.NewFromInt(int64(100 + rng.Intn(20000))),
			Currency:     domain.DefaultCurrency,
			Rating:       float64(rng.Intn(51)) / 10,
			ReviewCount:  rng.Intn(500),
			Popularity:   int64(rng.Intn(10000)),
			Status:       domain.StatusPublished,
			CreatedAt:    base.Add(time.Duration(rng.Intn(365*24)) * time.Hour),
		}
	}
	return products
}

// generateCourses builds a deterministic set of n courses.
func generateCourses(n int) []domain.Course {
	rng := rand.New(rand.NewSource(7))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	courses := make([]domain.Course, n)
	for i := range courses {
		courses[i] = domain.Course{
			ID:          uuid.New(),
			Title:       fmt.Sprintf("Course %d", i),
			Instructor:  fmt.Sprintf("Instructor %d", i%40),
			Category:    []string{"dance", "music", "painting", "language"}[i%4],
			Level:       levels[rng.Intn(len(levels))],
			Price:       decimal.NewFromInt(int64(500 + rng.Intn(9500))),
			Rating:      float64(rng.Intn(51)) / 10,
			ReviewCount: rng.Intn(2000),
			CreatedAt:   base.Add(time.Duration(rng.Intn(365*24)) * time.Hour),
		}
	}
	return courses
}

// benchmarkQueries is a mix of the list requests the web client sends.
func benchmarkQueries() map[string]listing.Query {
	maxPrice := decimal.NewFromInt(5000)
	minRating := 4.0

	return map[string]listing.Query{
		"default": {Sort: listing.SortNewest, Page: 1, PageSize: 12},
		"price_range": {
			Criteria: listing.Criteria{PriceMin: decimal.NewFromInt(1000), PriceMax: &maxPrice},
			Sort:     listing.SortPriceAsc,
			Page:     1,
			PageSize: 12,
		},
		"tags_and_rating": {
			Criteria: listing.Criteria{
				MinRating: &minRating,
				Tags: map[string][]string{
					domain.TagCategory:  {string(domain.CategoryTextiles), string(domain.CategoryPottery)},
					domain.TagCondition: {string(domain.ConditionHandmade)},
				},
			},
			Sort:     listing.SortRatingDesc,
			Page:     2,
			PageSize: 24,
		},
		"all_by_popularity": {Sort: listing.SortPopularityDesc, Page: 1, PageSize: listing.All},
	}
}

// exportWorkbook renders products the way the export endpoint does.
func exportWorkbook(products []domain.Product) ([]byte, error) {
	file := xlsx.NewFile()
	if err := workers.WriteProductSheet(file, products); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
