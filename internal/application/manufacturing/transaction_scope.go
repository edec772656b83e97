package manufacturing

import (
	"context"

	"github.com/mrp/backend/internal/domain/catalog"
	"github.com/mrp/backend/internal/domain/manufacturing"
)

// TransactionalRepositories bundles the repositories that participate in a
// single database transaction. All reads and writes made through them share
// the same transaction and commit or roll back together.
type TransactionalRepositories struct {
	Orders       manufacturing.ManufacturingOrderRepository
	BOMs         manufacturing.BOMRepository
	Products     catalog.ProductRepository
	StockLedger  manufacturing.StockLedgerRepository
	Reservations manufacturing.MaterialReservationRepository
}

// TransactionScope executes a function within a database transaction. If fn
// returns an error the transaction is rolled back, otherwise it is committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// NoOpTransactionScope runs the function against a fixed set of repositories
// without any transaction semantics. Used in tests.
type NoOpTransactionScope struct {
	Repos TransactionalRepositories
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.Repos)
}
