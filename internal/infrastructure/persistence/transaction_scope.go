package persistence

import (
	"context"

	"gorm.io/gorm"

	appmfg "github.com/mrp/backend/internal/application/manufacturing"
)

// GormTransactionScope implements TransactionScope using GORM transactions
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. All repositories handed to
// fn share the transaction; an error from fn rolls everything back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appmfg.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(appmfg.TransactionalRepositories{
			Orders:       NewGormManufacturingOrderRepository(tx),
			BOMs:         NewGormBOMRepository(tx),
			Products:     NewGormProductRepository(tx),
			StockLedger:  NewGormStockLedgerRepository(tx),
			Reservations: NewGormMaterialReservationRepository(tx),
		})
	})
}

var _ appmfg.TransactionScope = (*GormTransactionScope)(nil)
