package workers_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/workers"
	"github.com/ammerola/cultureconnect-be/test/helpers"
)

func addSheet(t *testing.T, file *xlsx.File, name string, rows [][]string) {
	t.Helper()
	sheet, err := file.AddSheet(name)
	require.NoError(t, err)
	for _, values := range rows {
		row := sheet.AddRow()
		for _, v := range values {
			row.AddCell().SetString(v)
		}
	}
}

func workbookBytes(t *testing.T, file *xlsx.File) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return buf.Bytes()
}

func TestParseCatalogWorkbook(t *testing.T) {
	file := xlsx.NewFile()
	addSheet(t, file, "Products", [][]string{
		{"Name", "Seller_ID", "Price", "Category", "Condition", "Rating", "Popularity", "id"},
		{"Pattachitra Scroll", "seller-7", "Rs. 2,400", "Paintings", "Pre owned", "4.6", "1,204", "sku-1"},
		{"", "seller-7", "100", "pottery", "", "", "", ""},
		{"", "", "", "", "", "", "", ""},
		{"Blue Pottery Vase", "seller-9", "850", "pottery", "new", "7", "", ""},
	})
	addSheet(t, file, "courses", [][]string{
		{"title", "instructor", "level", "price", "enrolled_count", "duration_hours", "category"},
		{"Raga Foundations", "Pandit Rao", "intermediate", "1,999", "3,400", "10.5", "music"},
		{"Mystery", "Someone", "expert", "10", "", "", ""},
	})
	addSheet(t, file, "showcase", [][]string{
		{"title", "image_url", "sort_order", "item_kind", "ends_at"},
		{"Monsoon Sale", "https://cdn.example.com/a.jpg", "2", "product", "2030-01-01"},
		{"Broken", "https://cdn.example.com/b.jpg", "first", "", ""},
	})
	addSheet(t, file, "notes", [][]string{{"ignored"}})

	wb, err := workers.ParseCatalogWorkbook(workbookBytes(t, file))
	require.NoError(t, err)

	require.Len(t, wb.Products, 2)
	byName := map[string]domain.Product{}
	for _, p := range wb.Products {
		byName[p.Name] = p
	}
	scroll := byName["Pattachitra Scroll"]
	assert.Equal(t, domain.DeriveID("sku-1"), scroll.ID)
	assert.True(t, decimal.NewFromInt(2400).Equal(scroll.Price))
	assert.Equal(t, domain.CategoryPaintings, scroll.Category)
	assert.Equal(t, domain.ConditionPreOwned, scroll.Condition)
	assert.Equal(t, int64(1204), scroll.Popularity)
	assert.Equal(t, domain.StatusPublished, scroll.Status)
	assert.NotNil(t, scroll.PublishedAt)
	assert.True(t, scroll.IsVisible())

	vase := byName["Blue Pottery Vase"]
	assert.Equal(t, 5.0, vase.Rating)
	assert.NotEqual(t, uuid.Nil, vase.ID)

	require.Len(t, wb.Courses, 1)
	assert.Equal(t, domain.LevelIntermediate, wb.Courses[0].Level)
	assert.Equal(t, int64(3400), wb.Courses[0].EnrolledCount)
	assert.True(t, decimal.RequireFromString("10.5").Equal(wb.Courses[0].DurationHours))

	require.Len(t, wb.Slides, 1)
	assert.Equal(t, 2, wb.Slides[0].SortOrder)
	assert.Equal(t, domain.KindProduct, wb.Slides[0].ItemKind)
	require.NotNil(t, wb.Slides[0].EndsAt)
	assert.Equal(t, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), *wb.Slides[0].EndsAt)

	// The nameless product, the unknown level and the bad sort order.
	require.Len(t, wb.Skipped, 3)
	for _, s := range wb.Skipped {
		assert.NotEmpty(t, s.Error)
		assert.Greater(t, s.Row, 1)
	}
}

func TestParseCatalogWorkbook_NotAWorkbook(t *testing.T) {
	_, err := workers.ParseCatalogWorkbook([]byte("name,price\nvase,100\n"))
	assert.Error(t, err)
}

func TestWriteProductSheet_RoundTrip(t *testing.T) {
	products := helpers.CreateTestProducts(4)

	file := xlsx.NewFile()
	require.NoError(t, workers.WriteProductSheet(file, products))

	wb, err := workers.ParseCatalogWorkbook(workbookBytes(t, file))
	require.NoError(t, err)
	require.Len(t, wb.Products, len(products))
	assert.Empty(t, wb.Skipped)

	for i, got := range wb.Products {
		want := products[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.Equal(t, want.Category, got.Category)
		assert.True(t, want.Price.Equal(got.Price), "price of %s", want.Name)
		assert.Equal(t, want.Popularity, got.Popularity)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	}
}
