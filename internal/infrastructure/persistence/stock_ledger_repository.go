package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrp/backend/internal/domain/manufacturing"
)

// GormStockLedgerRepository implements StockLedgerRepository using GORM.
// On-hand stock is the sum of signed ledger movements per component.
type GormStockLedgerRepository struct {
	db *gorm.DB
}

// NewGormStockLedgerRepository creates a new repository
func NewGormStockLedgerRepository(db *gorm.DB) *GormStockLedgerRepository {
	return &GormStockLedgerRepository{db: db}
}

// GetCurrentStock returns the summed on-hand quantity for a component
func (r *GormStockLedgerRepository) GetCurrentStock(ctx context.Context, componentID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&StockLedgerEntryModel{}).
		Select("SUM(quantity)").
		Where("component_id = ?", componentID).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// GetCurrentStockForUpdate reads the component's ledger rows under FOR UPDATE
// and sums them. Postgres does not allow row locking on aggregate queries, so
// the rows are locked first and summed client side. Must run inside a
// transaction.
func (r *GormStockLedgerRepository) GetCurrentStockForUpdate(ctx context.Context, componentID uuid.UUID) (decimal.Decimal, error) {
	var entries []StockLedgerEntryModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("component_id = ?", componentID).
		Find(&entries).Error
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Quantity)
	}
	return total, nil
}

// RecordMovement appends a signed movement to the ledger
func (r *GormStockLedgerRepository) RecordMovement(ctx context.Context, componentID, warehouseID uuid.UUID, quantity decimal.Decimal, reference string) error {
	return r.db.WithContext(ctx).Create(&StockLedgerEntryModel{
		ID:          uuid.New(),
		ComponentID: componentID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
		Reference:   reference,
	}).Error
}

var _ manufacturing.StockLedgerRepository = (*GormStockLedgerRepository)(nil)
