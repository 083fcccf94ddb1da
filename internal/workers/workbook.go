// internal/workers/workbook.go
package workers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
)

// Sheet names of a catalog workbook.
const (
	SheetProducts = "products"
	SheetCourses  = "courses"
	SheetShowcase = "showcase"
)

// ProductColumns is the header row of the products sheet.
var ProductColumns = []string{
	"id", "seller_id", "name", "description", "category", "condition", "availability",
	"price", "currency", "rating", "review_count", "popularity", "status", "created_at",
}

// CourseColumns is the header row of the courses sheet.
var CourseColumns = []string{
	"id", "title", "instructor", "description", "category", "level", "language",
	"price", "rating", "review_count", "enrolled_count", "duration_hours", "created_at",
}

// ShowcaseColumns is the header row of the showcase sheet.
var ShowcaseColumns = []string{
	"id", "title", "subtitle", "image_url", "link_url", "item_kind", "item_id",
	"sort_order", "active", "starts_at", "ends_at",
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02", "02/01/2006"}

// RowError records a row that was skipped during import.
type RowError struct {
	Sheet string `json:"sheet"`
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Workbook is the decoded content of a catalog spreadsheet.
type Workbook struct {
	Products []domain.Product
	Courses  []domain.Course
	Slides   []domain.ShowcaseSlide
	Skipped  []RowError
}

// ParseCatalogWorkbook decodes an .xlsx catalog. Columns are located by
// header name, so their order does not matter and unknown columns are
// ignored. Missing sheets are skipped; rows that fail validation are
// reported in Skipped instead of failing the whole workbook.
func ParseCatalogWorkbook(data []byte) (*Workbook, error) {
	file, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	wb := &Workbook{}
	for name, sheet := range file.Sheet {
		var parse func(sheetRow) error
		switch strings.ToLower(strings.TrimSpace(name)) {
		case SheetProducts:
			parse = func(r sheetRow) error {
				p := r.product()
				if p.Status != domain.StatusDraft && p.Status != domain.StatusPublished {
					return &domain.ValidationError{Field: "status", Message: "must be draft or published"}
				}
				if err := p.Validate(); err != nil {
					return err
				}
				p.PrepareForStorage()
				if p.Status == domain.StatusPublished && p.PublishedAt == nil {
					published := p.CreatedAt
					p.PublishedAt = &published
				}
				wb.Products = append(wb.Products, p)
				return nil
			}
		case SheetCourses:
			parse = func(r sheetRow) error {
				c := r.course()
				if err := c.Validate(); err != nil {
					return err
				}
				c.PrepareForStorage()
				wb.Courses = append(wb.Courses, c)
				return nil
			}
		case SheetShowcase:
			parse = func(r sheetRow) error {
				s, err := r.slide()
				if err != nil {
					return err
				}
				wb.Slides = append(wb.Slides, s)
				return nil
			}
		default:
			continue
		}

		if err := forEachRecord(sheet, func(r sheetRow) {
			if err := parse(r); err != nil {
				wb.Skipped = append(wb.Skipped, RowError{Sheet: name, Row: r.index + 1, Error: err.Error()})
			}
		}); err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
	}

	return wb, nil
}

// sheetRow gives header-addressed access to one data row.
type sheetRow struct {
	row     *xlsx.Row
	columns map[string]int
	index   int
}

func forEachRecord(sheet *xlsx.Sheet, fn func(sheetRow)) error {
	var columns map[string]int
	return sheet.ForEachRow(func(r *xlsx.Row) error {
		if columns == nil {
			columns = make(map[string]int)
			return r.ForEachCell(func(c *xlsx.Cell) error {
				if h := strings.ToLower(strings.TrimSpace(c.String())); h != "" {
					x, _ := c.GetCoordinates()
					columns[h] = x
				}
				return nil
			})
		}

		row := sheetRow{row: r, columns: columns, index: r.GetCoordinate()}
		if row.blank() {
			return nil
		}
		fn(row)
		return nil
	})
}

func (r sheetRow) get(column string) string {
	i, ok := r.columns[column]
	if !ok {
		return ""
	}
	c := r.row.GetCell(i)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.String())
}

func (r sheetRow) blank() bool {
	for _, i := range r.columns {
		if c := r.row.GetCell(i); c != nil && strings.TrimSpace(c.String()) != "" {
			return false
		}
	}
	return true
}

func (r sheetRow) time(column string) time.Time {
	v := r.get(column)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func (r sheetRow) timePtr(column string) *time.Time {
	t := r.time(column)
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r sheetRow) rating(column string) float64 {
	f, _ := domain.ParseAmount(r.get(column)).Float64()
	return domain.ClampRating(f)
}

// status defaults to published: imported rows are catalog listings.
func (r sheetRow) status() domain.ProductStatus {
	if v := strings.ToLower(r.get("status")); v != "" {
		return domain.ProductStatus(v)
	}
	return domain.StatusPublished
}

func (r sheetRow) product() domain.Product {
	return domain.Product{
		ID:           domain.DeriveID(r.get("id")),
		SellerID:     r.get("seller_id"),
		Name:         r.get("name"),
		Description:  r.get("description"),
		Category:     domain.ProductCategory(strings.ToLower(r.get("category"))),
		Condition:    domain.ProductCondition(strings.ToLower(strings.ReplaceAll(r.get("condition"), " ", "_"))),
		Availability: domain.Availability(strings.ToLower(strings.ReplaceAll(r.get("availability"), " ", "_"))),
		Price:        domain.ParseAmount(r.get("price")),
		Currency:     strings.ToUpper(r.get("currency")),
		Rating:       r.rating("rating"),
		ReviewCount:  int(domain.ParseCount(r.get("review_count"))),
		Popularity:   domain.ParseCount(r.get("popularity")),
		Status:       r.status(),
		CreatedAt:    r.time("created_at"),
	}
}

func (r sheetRow) course() domain.Course {
	return domain.Course{
		ID:            domain.DeriveID(r.get("id")),
		Title:         r.get("title"),
		Instructor:    r.get("instructor"),
		Description:   r.get("description"),
		Category:      r.get("category"),
		Level:         domain.CourseLevel(r.get("level")),
		Language:      r.get("language"),
		Price:         domain.ParseAmount(r.get("price")),
		Rating:        r.rating("rating"),
		ReviewCount:   int(domain.ParseCount(r.get("review_count"))),
		EnrolledCount: domain.ParseCount(r.get("enrolled_count")),
		DurationHours: domain.ParseAmount(r.get("duration_hours")),
		CreatedAt:     r.time("created_at"),
	}
}

func (r sheetRow) slide() (domain.ShowcaseSlide, error) {
	s := domain.ShowcaseSlide{
		ID:       domain.DeriveID(r.get("id")),
		Title:    r.get("title"),
		Subtitle: r.get("subtitle"),
		ImageURL: r.get("image_url"),
		LinkURL:  r.get("link_url"),
		Active:   true,
		StartsAt: r.timePtr("starts_at"),
		EndsAt:   r.timePtr("ends_at"),
	}
	if s.Title == "" {
		return s, &domain.ValidationError{Field: "title", Message: "is required"}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if v := r.get("item_kind"); v != "" {
		kind, ok := domain.ParseItemKind(v)
		if !ok {
			return s, &domain.ValidationError{Field: "item_kind", Message: "must be product or course"}
		}
		s.ItemKind = kind
	}
	if v := r.get("item_id"); v != "" {
		id := domain.DeriveID(v)
		s.ItemID = &id
	}
	if v := r.get("sort_order"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return s, &domain.ValidationError{Field: "sort_order", Message: "must be a whole number"}
		}
		s.SortOrder = n
	}
	if v := r.get("active"); v != "" {
		active, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return s, &domain.ValidationError{Field: "active", Message: "must be true or false"}
		}
		s.Active = active
	}
	return s, nil
}

// WriteProductSheet appends a products sheet in the import layout, so an
// exported workbook can be imported again unchanged.
func WriteProductSheet(file *xlsx.File, products []domain.Product) error {
	sheet, err := file.AddSheet(SheetProducts)
	if err != nil {
		return fmt.Errorf("failed to add worksheet: %w", err)
	}

	header := sheet.AddRow()
	for _, col := range ProductColumns {
		cell := header.AddCell()
		cell.Value = col
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, p := range products {
		row := sheet.AddRow()
		for _, v := range []string{
			p.ID.String(),
			p.SellerID,
			p.Name,
			p.Description,
			string(p.Category),
			string(p.Condition),
			string(p.Availability),
			p.Price.StringFixed(2),
			p.Currency,
			strconv.FormatFloat(p.Rating, 'f', 1, 64),
			strconv.Itoa(p.ReviewCount),
			strconv.FormatInt(p.Popularity, 10),
			string(p.Status),
			p.CreatedAt.UTC().Format(time.RFC3339),
		} {
			row.AddCell().SetString(v)
		}
	}

	for i := range ProductColumns {
		sheet.SetColWidth(i+1, i+1, 18)
	}
	return nil
}
