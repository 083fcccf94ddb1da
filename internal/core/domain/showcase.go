// internal/core/domain/showcase.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShowcaseSlide is one entry of the featured carousel on the landing page.
type ShowcaseSlide struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle,omitempty"`
	ImageURL  string     `json:"image_url"`
	LinkURL   string     `json:"link_url,omitempty"`
	ItemKind  ItemKind   `json:"item_kind,omitempty"`
	ItemID    *uuid.UUID `json:"item_id,omitempty"`
	SortOrder int        `json:"sort_order"`
	Active    bool       `json:"active"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
}

// LiveAt reports whether the slide should be shown at t.
func (s *ShowcaseSlide) LiveAt(t time.Time) bool {
	if !s.Active {
		return false
	}
	if s.StartsAt != nil && t.Before(*s.StartsAt) {
		return false
	}
	if s.EndsAt != nil && !t.Before(*s.EndsAt) {
		return false
	}
	return true
}
