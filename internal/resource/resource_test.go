package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/supplychain-resilience/scr/internal"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name         string
		resourceName *string
		want         error
	}{
		{"nil", nil, internal.ErrRequiredName},
		{"blank", new("  "), internal.ErrRequiredName},
		{"punctuation only", new("&&"), internal.ErrInvalidName},
		{"supply chain", new("Medicines and medical products"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.resourceName)
			assert.Equal(t, tt.want, err)
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Medicines", "medicines"},
		{"Vaccines & Antidotes", "vaccines-antidotes"},
		{"  Critical  minerals 2 ", "critical-minerals-2"},
		{"Semiconductors (chips)", "semiconductors-chips"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.name)
			assert.Equal(t, tt.want, got)
			assert.True(t, ValidSlug(got))
		})
	}
}

func TestID(t *testing.T) {
	id := NewID(SupplyChainKind)
	assert.Equal(t, SupplyChainKind, id.Kind)
	assert.Len(t, id.ID, idLength)
	assert.Equal(t, id, ParseID(id.String()))

	var scanned ID
	assert.NoError(t, scanned.Scan(id.String()))
	assert.Equal(t, id, scanned)

	v, err := EmptyID.Value()
	assert.NoError(t, err)
	assert.Nil(t, v)
}
