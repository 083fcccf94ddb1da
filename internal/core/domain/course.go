// internal/core/domain/course.go
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CourseLevel is the difficulty of a course.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "Beginner"
	LevelIntermediate CourseLevel = "Intermediate"
	LevelAdvanced     CourseLevel = "Advanced"
)

// Course is an online class offered by an instructor.
type Course struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Instructor    string          `json:"instructor"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Level         CourseLevel     `json:"level"`
	Language      string          `json:"language,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Rating        float64         `json:"rating"`
	ReviewCount   int             `json:"review_count"`
	EnrolledCount int64           `json:"enrolled_count"`
	DurationHours decimal.Decimal `json:"duration_hours"`
	SyllabusKey   string          `json:"syllabus_key,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ParseCourseLevel accepts any casing of a known level.
func ParseCourseLevel(s string) (CourseLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return LevelBeginner, true
	case "intermediate":
		return LevelIntermediate, true
	case "advanced":
		return LevelAdvanced, true
	}
	return "", false
}

// Validate performs domain validation on a course.
func (c *Course) Validate() error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return invalid("title", "is required")
	}
	if c.Instructor == "" {
		return invalid("instructor", "is required")
	}
	if c.Price.IsNegative() {
		return invalid("price", "cannot be negative")
	}
	if c.Level == "" {
		c.Level = LevelBeginner
	} else if lvl, ok := ParseCourseLevel(string(c.Level)); ok {
		c.Level = lvl
	} else {
		return invalid("level", "must be one of Beginner, Intermediate, Advanced")
	}
	if c.Category == "" {
		c.Category = "general"
	}
	return nil
}

// PrepareForStorage assigns an ID and timestamps.
func (c *Course) PrepareForStorage() {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

func (c Course) ListingPrice() decimal.Decimal { return c.Price }
func (c Course) ListingRating() float64         { return c.Rating }
func (c Course) ListingPopularity() int64       { return c.EnrolledCount }
func (c Course) ListingCreatedAt() time.Time    { return c.CreatedAt }

// ListingTag returns the value of a course tag group.
func (c Course) ListingTag(group string) string {
	switch group {
	case TagCategory:
		return c.Category
	case TagLevel:
		return string(c.Level)
	}
	return ""
}
