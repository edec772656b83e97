package manufacturing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// BOMComponent is a read-only snapshot of one line of a bill of materials.
// It is owned and mutated by the BOM-authoring subsystem; the manufacturing
// core only consumes it.
type BOMComponent struct {
	ComponentID    uuid.UUID
	Quantity       decimal.Decimal // required quantity per unit of output
	ScrapFactor    decimal.Decimal // expected waste fraction, 0 <= f <= 1
	Unit           string
	SequenceNumber int
}

// NewBOMComponent creates a validated BOM component snapshot
func NewBOMComponent(componentID uuid.UUID, quantity, scrapFactor decimal.Decimal, unit string, sequenceNumber int) (BOMComponent, error) {
	if componentID == uuid.Nil {
		return BOMComponent{}, shared.NewValidationError("Component ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return BOMComponent{}, shared.NewValidationError("Component quantity must be positive")
	}
	if scrapFactor.IsNegative() || scrapFactor.GreaterThan(decimal.NewFromInt(1)) {
		return BOMComponent{}, shared.NewValidationError("Scrap factor must be between 0 and 1")
	}
	if unit == "" {
		return BOMComponent{}, shared.NewValidationError("Component unit cannot be empty")
	}
	return BOMComponent{
		ComponentID:    componentID,
		Quantity:       quantity,
		ScrapFactor:    scrapFactor,
		Unit:           unit,
		SequenceNumber: sequenceNumber,
	}, nil
}

// BOM is a read-only projection of a bill of materials with its components
type BOM struct {
	shared.BaseEntity
	ProductID  uuid.UUID
	Name       string
	Components []BOMComponent
}

// HasComponents returns true if the BOM has at least one component
func (b *BOM) HasComponents() bool {
	return len(b.Components) > 0
}

// BOMRepository provides read access to bills of materials
type BOMRepository interface {
	// FindComplete returns the BOM with all its components, or nil when it
	// does not exist
	FindComplete(ctx context.Context, id uuid.UUID) (*BOM, error)
}
