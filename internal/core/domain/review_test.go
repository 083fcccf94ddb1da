package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
)

func TestReview_Validate(t *testing.T) {
	valid := func() *domain.Review {
		return &domain.Review{
			ItemKind: domain.KindCourse,
			ItemID:   uuid.New(),
			UserID:   "user-7",
			Rating:   4,
			Comment:  "  Lovely instructor  ",
		}
	}

	tests := []struct {
		name     string
		mutate   func(*domain.Review)
		errorMsg string
	}{
		{name: "valid_review", mutate: func(*domain.Review) {}},
		{name: "unknown_kind", mutate: func(r *domain.Review) { r.ItemKind = "banner" }, errorMsg: "item_kind"},
		{name: "missing_item", mutate: func(r *domain.Review) { r.ItemID = uuid.Nil }, errorMsg: "item_id is required"},
		{name: "missing_user", mutate: func(r *domain.Review) { r.UserID = "" }, errorMsg: "user_id is required"},
		{name: "rating_zero", mutate: func(r *domain.Review) { r.Rating = 0 }, errorMsg: "rating must be between 1 and 5"},
		{name: "rating_six", mutate: func(r *domain.Review) { r.Rating = 6 }, errorMsg: "rating must be between 1 and 5"},
		{name: "comment_too_long", mutate: func(r *domain.Review) { r.Comment = strings.Repeat("x", 2001) }, errorMsg: "comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			err := r.Validate()
			if tt.errorMsg == "" {
				require.NoError(t, err)
				assert.Equal(t, "Lovely instructor", r.Comment)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestParseItemKind(t *testing.T) {
	k, ok := domain.ParseItemKind("Product")
	assert.True(t, ok)
	assert.Equal(t, domain.KindProduct, k)

	_, ok = domain.ParseItemKind("slide")
	assert.False(t, ok)
}

func TestCourse_Validate(t *testing.T) {
	c := &domain.Course{Title: "Kathak Basics", Instructor: "Asha", Level: "beginner"}
	require.NoError(t, c.Validate())
	assert.Equal(t, domain.LevelBeginner, c.Level)
	assert.Equal(t, "general", c.Category)

	c = &domain.Course{Title: "Ragas", Instructor: "Ravi", Level: "expert"}
	assert.ErrorIs(t, c.Validate(), domain.ErrInvalidInput)

	c = &domain.Course{Instructor: "Ravi"}
	assert.ErrorContains(t, c.Validate(), "title is required")
}

func TestShowcaseSlide_LiveAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		slide domain.ShowcaseSlide
		want  bool
	}{
		{"inactive", domain.ShowcaseSlide{Active: false}, false},
		{"active_unscheduled", domain.ShowcaseSlide{Active: true}, true},
		{"not_started", domain.ShowcaseSlide{Active: true, StartsAt: &future}, false},
		{"ended", domain.ShowcaseSlide{Active: true, EndsAt: &past}, false},
		{"ends_exactly_now", domain.ShowcaseSlide{Active: true, EndsAt: &now}, false},
		{"in_window", domain.ShowcaseSlide{Active: true, StartsAt: &past, EndsAt: &future}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.slide.LiveAt(now))
		})
	}
}
