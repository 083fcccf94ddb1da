package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/pkg/validator"
)

type reviewForm struct {
	ItemKind string `form:"item_kind" validate:"required,oneof=product course"`
	ItemID   string `form:"item_id" validate:"required,uuid"`
	Rating   int    `form:"rating" validate:"gte=1,lte=5"`
	Internal string `form:"-" validate:"required"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		input  reviewForm
		fields map[string]string
	}{
		{
			name: "valid",
			input: reviewForm{
				ItemKind: "product",
				ItemID:   "6f1c1ad1-8a6f-4a39-9d7b-1f0d7b1f6c11",
				Rating:   4,
				Internal: "x",
			},
		},
		{
			name: "reports_form_field_names",
			input: reviewForm{
				ItemKind: "event",
				ItemID:   "42",
				Rating:   9,
				Internal: "x",
			},
			fields: map[string]string{
				"item_kind": "must be one of: product course",
				"item_id":   "must be a valid UUID",
				"rating":    "must be less than or equal to 5",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.input)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var valErr *validator.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.fields, valErr.Fields())
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestValidate_SkippedTagFallsBackToFieldName(t *testing.T) {
	err := validator.Validate(reviewForm{
		ItemKind: "course",
		ItemID:   "6f1c1ad1-8a6f-4a39-9d7b-1f0d7b1f6c11",
		Rating:   3,
	})

	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, map[string]string{"Internal": "is required"}, valErr.Fields())
	assert.Equal(t, "Internal is required", err.Error())
}
