package manufacturing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// ManufacturingOrderRepository provides access to manufacturing orders
type ManufacturingOrderRepository interface {
	// FindByID returns the order or nil when it does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*ManufacturingOrder, error)
	FindByMoNumber(ctx context.Context, moNumber string) (*ManufacturingOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ManufacturingOrder, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	// Save upserts the order
	Save(ctx context.Context, order *ManufacturingOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	// GenerateMoNumber returns the next order number for the current calendar
	// month, formatted MO{yyyy}{mm}{0000-padded sequence}. The sequence is
	// monotonic per month: existing numbers with the month's prefix are
	// scanned and the maximum incremented.
	GenerateMoNumber(ctx context.Context) (string, error)
}

// StockLedgerRepository exposes on-hand stock per component. The stock
// ledger itself is owned by the inventory subsystem.
type StockLedgerRepository interface {
	GetCurrentStock(ctx context.Context, componentID uuid.UUID) (decimal.Decimal, error)
	// GetCurrentStockForUpdate reads on-hand stock under a row-level lock.
	// Must be called inside a transaction; callers use it to re-check
	// availability immediately before writing reservations, closing the
	// window between the advisory read and the reservation write.
	GetCurrentStockForUpdate(ctx context.Context, componentID uuid.UUID) (decimal.Decimal, error)
}

// MaterialReservationRepository provides access to material reservations
type MaterialReservationRepository interface {
	// GetTotalReservedQuantity sums active reservations for a component
	GetTotalReservedQuantity(ctx context.Context, componentID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, reservation *MaterialReservation) error
	FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]MaterialReservation, error)
}
