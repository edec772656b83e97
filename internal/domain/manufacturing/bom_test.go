package manufacturing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrp/backend/internal/domain/shared"
)

func TestNewBOMComponent(t *testing.T) {
	componentID := uuid.New()
	one := decimal.NewFromInt(1)

	t.Run("creates a valid component", func(t *testing.T) {
		c, err := NewBOMComponent(componentID, one, decimal.RequireFromString("0.1"), "pcs", 1)
		require.NoError(t, err)
		assert.Equal(t, componentID, c.ComponentID)
		assert.Equal(t, "pcs", c.Unit)
	})

	tests := []struct {
		name        string
		componentID uuid.UUID
		quantity    decimal.Decimal
		scrapFactor decimal.Decimal
		unit        string
	}{
		{"rejects a nil component ID", uuid.Nil, one, decimal.Zero, "pcs"},
		{"rejects a zero quantity", componentID, decimal.Zero, decimal.Zero, "pcs"},
		{"rejects a negative quantity", componentID, decimal.NewFromInt(-1), decimal.Zero, "pcs"},
		{"rejects a negative scrap factor", componentID, one, decimal.RequireFromString("-0.1"), "pcs"},
		{"rejects a scrap factor above 1", componentID, one, decimal.RequireFromString("1.01"), "pcs"},
		{"rejects an empty unit", componentID, one, decimal.Zero, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBOMComponent(tt.componentID, tt.quantity, tt.scrapFactor, tt.unit, 1)
			assertDomainErrorCode(t, err, shared.CodeValidation)
		})
	}
}

func TestBOMHasComponents(t *testing.T) {
	empty := &BOM{BaseEntity: shared.NewBaseEntity(), ProductID: uuid.New(), Name: "empty"}
	assert.False(t, empty.HasComponents())

	c, err := NewBOMComponent(uuid.New(), decimal.NewFromInt(1), decimal.Zero, "pcs", 1)
	require.NoError(t, err)
	filled := &BOM{BaseEntity: shared.NewBaseEntity(), ProductID: uuid.New(), Name: "filled", Components: []BOMComponent{c}}
	assert.True(t, filled.HasComponents())
}
