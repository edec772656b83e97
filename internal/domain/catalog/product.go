package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/shared/valueobject"
)

// Product represents a manufacturable or purchasable item.
// Product authoring (CRUD) lives outside the manufacturing core; this entity
// carries the fields manufacturing orders depend on.
type Product struct {
	shared.BaseEntity
	SKU          string
	Name         string
	UnitSymbol   string
	StandardCost valueobject.Money
	IsActive     bool
}

// NewProduct creates a new product with a zero standard cost
func NewProduct(sku, name, unitSymbol string) (*Product, error) {
	if sku == "" {
		return nil, shared.NewValidationError("Product SKU cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("Product name cannot be empty")
	}
	if unitSymbol == "" {
		return nil, shared.NewValidationError("Product unit symbol cannot be empty")
	}
	return &Product{
		BaseEntity:   shared.NewBaseEntity(),
		SKU:          sku,
		Name:         name,
		UnitSymbol:   unitSymbol,
		StandardCost: valueobject.ZeroMoney(valueobject.DefaultCurrency),
		IsActive:     true,
	}, nil
}

// SetStandardCost sets the per-unit standard cost used for order valuations
func (p *Product) SetStandardCost(cost valueobject.Money) error {
	if cost.IsNegative() {
		return shared.NewValidationError("Standard cost cannot be negative")
	}
	p.StandardCost = cost
	return nil
}

// ProductRepository provides access to products
type ProductRepository interface {
	// FindByID returns the product or nil when it does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Save(ctx context.Context, product *Product) error
}
