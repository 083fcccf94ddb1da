package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
)

func TestDeriveID(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, id, domain.DeriveID(id.String()))
	assert.Equal(t, id, domain.DeriveID("  "+id.String()+" "))
	assert.Equal(t, uuid.Nil, domain.DeriveID(""))

	derived := domain.DeriveID("sku-42")
	assert.NotEqual(t, uuid.Nil, derived)
	assert.Equal(t, derived, domain.DeriveID("sku-42"))
	assert.NotEqual(t, derived, domain.DeriveID("sku-43"))
}
