// internal/adapters/apiclient/dto.go
package apiclient

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
)

// OpaqueID accepts a JSON string or number.
type OpaqueID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *OpaqueID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = OpaqueID(s)
		return nil
	}
	*id = OpaqueID(b)
	return nil
}

// UUID returns the id itself when it is a UUID, otherwise a UUID derived
// from it deterministically.
func (id OpaqueID) UUID() uuid.UUID {
	return domain.DeriveID(string(id))
}

// Timestamp decodes RFC 3339 strings; anything else is the zero time.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

// ProductDTO is a product as served by the item API.
type ProductDTO struct {
	ID           OpaqueID      `json:"id"`
	SellerID     string        `json:"seller_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Category     string        `json:"category"`
	Condition    string        `json:"condition"`
	Availability string        `json:"availability"`
	Price        domain.Amount `json:"price"`
	Currency     string        `json:"currency"`
	Rating       domain.Rating `json:"rating"`
	ReviewCount  domain.Count  `json:"review_count"`
	Popularity   domain.Count  `json:"popularity"`
	Status       string        `json:"status"`
	ImageKeys    []string      `json:"image_keys"`
	CreatedAt    Timestamp     `json:"created_at"`
}

// ToDomain converts the wire form into a domain product.
func (d ProductDTO) ToDomain() domain.Product {
	return domain.Product{
		ID:           d.ID.UUID(),
		SellerID:     d.SellerID,
		Name:         d.Name,
		Description:  d.Description,
		Category:     domain.ProductCategory(strings.ToLower(d.Category)),
		Condition:    domain.ProductCondition(strings.ToLower(d.Condition)),
		Availability: domain.Availability(strings.ToLower(d.Availability)),
		Price:        d.Price.Decimal,
		Currency:     d.Currency,
		Rating:       float64(d.Rating),
		ReviewCount:  int(d.ReviewCount),
		Popularity:   int64(d.Popularity),
		Status:       domain.ProductStatus(d.Status),
		ImageKeys:    d.ImageKeys,
		CreatedAt:    d.CreatedAt.Time,
	}
}

// CourseDTO is a course as served by the item API.
type CourseDTO struct {
	ID            OpaqueID      `json:"id"`
	Title         string        `json:"title"`
	Instructor    string        `json:"instructor"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Level         string        `json:"level"`
	Language      string        `json:"language"`
	Price         domain.Amount `json:"price"`
	Rating        domain.Rating `json:"rating"`
	ReviewCount   domain.Count  `json:"review_count"`
	EnrolledCount domain.Count  `json:"enrolled_count"`
	DurationHours domain.Amount `json:"duration_hours"`
	CreatedAt     Timestamp     `json:"created_at"`
}

// ToDomain converts the wire form into a domain course. Unknown levels are
// kept verbatim so they still match an exact tag filter.
func (d CourseDTO) ToDomain() domain.Course {
	level, ok := domain.ParseCourseLevel(d.Level)
	if !ok {
		level = domain.CourseLevel(d.Level)
	}
	return domain.Course{
		ID:            d.ID.UUID(),
		Title:         d.Title,
		Instructor:    d.Instructor,
		Description:   d.Description,
		Category:      d.Category,
		Level:         level,
		Language:      d.Language,
		Price:         d.Price.Decimal,
		Rating:        float64(d.Rating),
		ReviewCount:   int(d.ReviewCount),
		EnrolledCount: int64(d.EnrolledCount),
		DurationHours: d.DurationHours.Decimal,
		CreatedAt:     d.CreatedAt.Time,
	}
}

// SlideDTO is a showcase slide as served by the item API.
type SlideDTO struct {
	ID        OpaqueID `json:"id"`
	Title     string   `json:"title"`
	Subtitle  string   `json:"subtitle"`
	ImageURL  string   `json:"image_url"`
	LinkURL   string   `json:"link_url"`
	ItemKind  string   `json:"item_kind"`
	SortOrder int      `json:"sort_order"`
}

// ToDomain converts the wire form into a domain slide.
func (d SlideDTO) ToDomain() domain.ShowcaseSlide {
	return domain.ShowcaseSlide{
		ID:        d.ID.UUID(),
		Title:     d.Title,
		Subtitle:  d.Subtitle,
		ImageURL:  d.ImageURL,
		LinkURL:   d.LinkURL,
		ItemKind:  domain.ItemKind(d.ItemKind),
		SortOrder: d.SortOrder,
		Active:    true,
	}
}

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

type listEnvelope[T any] struct {
	Items []T `json:"items"`
}

type reviewEnvelope struct {
	Summary domain.ReviewSummary `json:"summary"`
}
