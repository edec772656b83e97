package manufacturing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/shared/valueobject"
)

// ReservationStatus represents the state of a material reservation
type ReservationStatus string

const (
	ReservationStatusActive   ReservationStatus = "ACTIVE"
	ReservationStatusReleased ReservationStatus = "RELEASED"
)

// MaterialReservation records a claim on component stock made when a
// manufacturing order is confirmed. Active reservations count against free
// stock in availability checks.
type MaterialReservation struct {
	shared.BaseEntity
	ManufacturingOrderID uuid.UUID
	ComponentID          uuid.UUID
	WarehouseID          uuid.UUID
	Quantity             decimal.Decimal
	Unit                 string
	ReservedBy           uuid.UUID
	Status               ReservationStatus
	ReleasedAt           *time.Time
}

// NewMaterialReservation creates an active reservation
func NewMaterialReservation(orderID, componentID, warehouseID uuid.UUID, quantity valueobject.Quantity, reservedBy uuid.UUID) (*MaterialReservation, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewValidationError("Manufacturing order ID cannot be empty")
	}
	if componentID == uuid.Nil {
		return nil, shared.NewValidationError("Component ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewValidationError("Warehouse ID cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("Reserved quantity must be positive")
	}
	if reservedBy == uuid.Nil {
		return nil, shared.NewValidationError("Reserved-by user cannot be empty")
	}
	return &MaterialReservation{
		BaseEntity:           shared.NewBaseEntity(),
		ManufacturingOrderID: orderID,
		ComponentID:          componentID,
		WarehouseID:          warehouseID,
		Quantity:             quantity.Amount(),
		Unit:                 quantity.Unit(),
		ReservedBy:           reservedBy,
		Status:               ReservationStatusActive,
	}, nil
}

// Release marks the reservation as released so it no longer counts against
// free stock
func (r *MaterialReservation) Release() error {
	if r.Status == ReservationStatusReleased {
		return shared.NewBusinessRuleViolationError("Reservation is already released")
	}
	now := time.Now()
	r.Status = ReservationStatusReleased
	r.ReleasedAt = &now
	r.UpdatedAt = now
	return nil
}

// ReservationPolicy selects the warehouse/location a reservation is placed
// against. The selection algorithm (single warehouse, FIFO across locations,
// lot-aware picking) is deliberately pluggable.
type ReservationPolicy interface {
	SelectWarehouse(ctx context.Context, componentID uuid.UUID, quantity valueobject.Quantity) (uuid.UUID, error)
}
