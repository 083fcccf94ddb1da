// internal/core/domain/product.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductCategory represents marketplace product categories
type ProductCategory string

// Category constants
const (
	CategoryHandicrafts ProductCategory = "handicrafts"
	CategoryTextiles    ProductCategory = "textiles"
	CategoryPaintings   ProductCategory = "paintings"
	CategoryPottery     ProductCategory = "pottery"
	CategoryJewelry     ProductCategory = "jewelry"
	CategoryInstruments ProductCategory = "instruments"
	CategoryBooks       ProductCategory = "books"
	CategorySculpture   ProductCategory = "sculpture"
	CategoryOther       ProductCategory = "other"
)

// ProductCondition represents the state an item is sold in
type ProductCondition string

// Condition constants
const (
	ConditionNew         ProductCondition = "new"
	ConditionHandmade    ProductCondition = "handmade"
	ConditionVintage     ProductCondition = "vintage"
	ConditionAntique     ProductCondition = "antique"
	ConditionPreOwned    ProductCondition = "pre_owned"
	ConditionUnspecified ProductCondition = "unspecified"
)

// Availability describes how a product can be fulfilled
type Availability string

// Availability constants
const (
	AvailabilityInStock     Availability = "in_stock"
	AvailabilityMadeToOrder Availability = "made_to_order"
	AvailabilityOutOfStock  Availability = "out_of_stock"
)

// ProductStatus is the lifecycle state of a seller's product.
type ProductStatus string

const (
	StatusDraft     ProductStatus = "draft"
	StatusPublished ProductStatus = "published"
)

// Tag groups usable for exact-match filtering.
const (
	TagCategory     = "category"
	TagCondition    = "condition"
	TagAvailability = "availability"
	TagLevel        = "level"
)

// DefaultCurrency is applied to products created without one.
const DefaultCurrency = "INR"

// Product is an item listed on the marketplace by a seller.
type Product struct {
	ID           uuid.UUID        `json:"id"`
	SellerID     string           `json:"seller_id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Category     ProductCategory  `json:"category"`
	Condition    ProductCondition `json:"condition"`
	Availability Availability     `json:"availability"`
	Price        decimal.Decimal  `json:"price"`
	Currency     string           `json:"currency"`
	Rating       float64          `json:"rating"`
	ReviewCount  int              `json:"review_count"`
	Popularity   int64            `json:"popularity"`
	Status       ProductStatus    `json:"status"`
	ImageKeys    []string         `json:"image_keys,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	PublishedAt  *time.Time       `json:"published_at,omitempty"`
	DeletedAt    *time.Time       `json:"deleted_at,omitempty"`
}

// Validate performs domain validation on a product and fills defaults.
func (p *Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.SellerID == "" {
		return invalid("seller_id", "is required")
	}
	if p.Name == "" {
		return invalid("name", "is required")
	}
	if len(p.Name) > 200 {
		return invalid("name", "must be at most 200 characters")
	}
	if p.Price.IsNegative() {
		return invalid("price", "cannot be negative")
	}
	if p.Category == "" {
		p.Category = CategoryOther
	}
	if p.Condition == "" {
		p.Condition = ConditionUnspecified
	}
	if p.Availability == "" {
		p.Availability = AvailabilityInStock
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	return nil
}

// ValidateEdit validates a changed product. A published product has to
// keep the positive price it was published with.
func (p *Product) ValidateEdit() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Status == StatusPublished && !p.Price.IsPositive() {
		return invalid("price", "must be positive while published")
	}
	return nil
}

// PrepareForStorage assigns an ID and timestamps.
func (p *Product) PrepareForStorage() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// Publish moves a draft to the public catalog.
func (p *Product) Publish(now time.Time) error {
	if p.Status == StatusPublished {
		return ErrConflict
	}
	if p.Name == "" {
		return invalid("name", "is required to publish")
	}
	if !p.Price.IsPositive() {
		return invalid("price", "must be positive to publish")
	}
	p.Status = StatusPublished
	p.PublishedAt = &now
	p.UpdatedAt = now
	return nil
}

// OwnedBy reports whether the product belongs to the given seller.
func (p *Product) OwnedBy(sellerID string) bool {
	return sellerID != "" && p.SellerID == sellerID
}

// IsVisible reports whether the product belongs in the public catalog.
func (p *Product) IsVisible() bool {
	return p.Status == StatusPublished && p.DeletedAt == nil
}

func (p Product) ListingPrice() decimal.Decimal { return p.Price }
func (p Product) ListingRating() float64         { return p.Rating }
func (p Product) ListingPopularity() int64       { return p.Popularity }
func (p Product) ListingCreatedAt() time.Time    { return p.CreatedAt }

// ListingTag returns the value of a product tag group.
func (p Product) ListingTag(group string) string {
	switch group {
	case TagCategory:
		return string(p.Category)
	case TagCondition:
		return string(p.Condition)
	case TagAvailability:
		return string(p.Availability)
	}
	return ""
}

// ValidCategory reports whether c is a known product category.
func ValidCategory(c ProductCategory) bool {
	switch c {
	case CategoryHandicrafts, CategoryTextiles, CategoryPaintings, CategoryPottery,
		CategoryJewelry, CategoryInstruments, CategoryBooks, CategorySculpture, CategoryOther:
		return true
	}
	return false
}
