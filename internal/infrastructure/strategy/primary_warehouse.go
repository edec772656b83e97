package strategy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrp/backend/internal/domain/manufacturing"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/shared/valueobject"
	"github.com/mrp/backend/internal/infrastructure/persistence"
)

// PrimaryWarehousePolicy reserves against the warehouse holding the most
// stock of the component. It is the default ReservationPolicy; lot-aware or
// FIFO picking strategies can replace it without touching the confirmation
// flow.
type PrimaryWarehousePolicy struct {
	db *gorm.DB
}

// NewPrimaryWarehousePolicy creates a new PrimaryWarehousePolicy
func NewPrimaryWarehousePolicy(db *gorm.DB) *PrimaryWarehousePolicy {
	return &PrimaryWarehousePolicy{db: db}
}

// SelectWarehouse returns the warehouse with the highest on-hand quantity of
// the component
func (p *PrimaryWarehousePolicy) SelectWarehouse(ctx context.Context, componentID uuid.UUID, quantity valueobject.Quantity) (uuid.UUID, error) {
	var raw string
	err := p.db.WithContext(ctx).Model(&persistence.StockLedgerEntryModel{}).
		Select("warehouse_id").
		Where("component_id = ?", componentID).
		Group("warehouse_id").
		Order("SUM(quantity) DESC").
		Limit(1).
		Scan(&raw).Error
	if err != nil {
		return uuid.Nil, err
	}
	if raw == "" {
		return uuid.Nil, shared.NewBusinessRuleViolationError(
			fmt.Sprintf("No warehouse holds stock for component %s", componentID))
	}
	warehouseID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed warehouse id %q: %w", raw, err)
	}
	return warehouseID, nil
}

var _ manufacturing.ReservationPolicy = (*PrimaryWarehousePolicy)(nil)
