// internal/core/domain/review.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemKind identifies which collection a review or slide points at.
type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindCourse  ItemKind = "course"
)

// ParseItemKind validates an item kind string.
func ParseItemKind(s string) (ItemKind, bool) {
	switch ItemKind(strings.ToLower(s)) {
	case KindProduct:
		return KindProduct, true
	case KindCourse:
		return KindCourse, true
	}
	return "", false
}

const (
	MinReviewRating = 1
	MaxReviewRating = 5
	maxCommentLen   = 2000
)

// Review is a user's rating of a product or course.
type Review struct {
	ID        uuid.UUID `json:"id"`
	ItemKind  ItemKind  `json:"item_kind"`
	ItemID    uuid.UUID `json:"item_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewSummary aggregates the ratings of one item.
type ReviewSummary struct {
	ItemKind ItemKind `json:"item_kind"`
	ItemID   string   `json:"item_id"`
	Average  float64  `json:"average"`
	Count    int      `json:"count"`
}

// Validate checks a review before it is stored.
func (r *Review) Validate() error {
	if _, ok := ParseItemKind(string(r.ItemKind)); !ok {
		return invalid("item_kind", "must be product or course")
	}
	if r.ItemID == uuid.Nil {
		return invalid("item_id", "is required")
	}
	if r.UserID == "" {
		return invalid("user_id", "is required")
	}
	if r.Rating < MinReviewRating || r.Rating > MaxReviewRating {
		return invalid("rating", "must be between 1 and 5")
	}
	r.Comment = strings.TrimSpace(r.Comment)
	if len(r.Comment) > maxCommentLen {
		return invalid("comment", "must be at most 2000 characters")
	}
	return nil
}

// PrepareForStorage assigns an ID and timestamp.
func (r *Review) PrepareForStorage() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}
