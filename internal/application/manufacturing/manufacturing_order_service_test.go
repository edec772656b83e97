package manufacturing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrp/backend/internal/domain/catalog"
	"github.com/mrp/backend/internal/domain/manufacturing"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/shared/valueobject"
)

// ============================================
// Mocks
// ============================================

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*manufacturing.ManufacturingOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manufacturing.ManufacturingOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByMoNumber(ctx context.Context, moNumber string) (*manufacturing.ManufacturingOrder, error) {
	args := m.Called(ctx, moNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manufacturing.ManufacturingOrder), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]manufacturing.ManufacturingOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]manufacturing.ManufacturingOrder), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByStatus(ctx context.Context, status manufacturing.Status) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *manufacturing.ManufacturingOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) GenerateMoNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockBOMRepository struct {
	mock.Mock
}

func (m *MockBOMRepository) FindComplete(ctx context.Context, id uuid.UUID) (*manufacturing.BOM, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manufacturing.BOM), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

type MockStockLedgerRepository struct {
	mock.Mock
}

func (m *MockStockLedgerRepository) GetCurrentStock(ctx context.Context, componentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, componentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStockLedgerRepository) GetCurrentStockForUpdate(ctx context.Context, componentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, componentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) GetTotalReservedQuantity(ctx context.Context, componentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, componentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReservationRepository) Save(ctx context.Context, reservation *manufacturing.MaterialReservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) ([]manufacturing.MaterialReservation, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]manufacturing.MaterialReservation), args.Error(1)
}

type MockReservationPolicy struct {
	mock.Mock
}

func (m *MockReservationPolicy) SelectWarehouse(ctx context.Context, componentID uuid.UUID, quantity valueobject.Quantity) (uuid.UUID, error) {
	args := m.Called(ctx, componentID, quantity)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// ============================================
// Fixture
// ============================================

type serviceFixture struct {
	service      *ManufacturingOrderService
	orders       *MockOrderRepository
	boms         *MockBOMRepository
	products     *MockProductRepository
	stockLedger  *MockStockLedgerRepository
	reservations *MockReservationRepository
	policy       *MockReservationPolicy
	publisher    *MockEventPublisher
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		orders:       new(MockOrderRepository),
		boms:         new(MockBOMRepository),
		products:     new(MockProductRepository),
		stockLedger:  new(MockStockLedgerRepository),
		reservations: new(MockReservationRepository),
		policy:       new(MockReservationPolicy),
		publisher:    new(MockEventPublisher),
	}
	txScope := &NoOpTransactionScope{Repos: TransactionalRepositories{
		Orders:       f.orders,
		BOMs:         f.boms,
		Products:     f.products,
		StockLedger:  f.stockLedger,
		Reservations: f.reservations,
	}}
	f.service = NewManufacturingOrderService(
		txScope, f.orders, f.reservations, f.stockLedger, f.policy, f.publisher, zap.NewNop())
	return f
}

func fixtureProduct(t *testing.T) *catalog.Product {
	product, err := catalog.NewProduct("FG-100", "Finished Widget", "pcs")
	require.NoError(t, err)
	return product
}

func fixtureBOM(t *testing.T, productID uuid.UUID, components ...manufacturing.BOMComponent) *manufacturing.BOM {
	return &manufacturing.BOM{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		Name:       "Widget assembly",
		Components: components,
	}
}

func fixtureComponent(t *testing.T, qty, scrap string, seq int) manufacturing.BOMComponent {
	c, err := manufacturing.NewBOMComponent(
		uuid.New(), decimal.RequireFromString(qty), decimal.RequireFromString(scrap), "pcs", seq)
	require.NoError(t, err)
	return c
}

func fixtureOrder(t *testing.T, productID, bomID uuid.UUID, qty string) *manufacturing.ManufacturingOrder {
	order, err := manufacturing.NewManufacturingOrder(manufacturing.NewManufacturingOrderParams{
		MoNumber:  "MO2026080001",
		ProductID: productID,
		BOMID:     bomID,
		Quantity:  valueobject.MustNewQuantity(decimal.RequireFromString(qty), "pcs"),
		CreatedBy: uuid.New(),
	})
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}

func requireDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

// ============================================
// CreateManufacturingOrder
// ============================================

func TestCreateManufacturingOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a draft order without touching stock", func(t *testing.T) {
		f := newServiceFixture()
		product := fixtureProduct(t)
		bom := fixtureBOM(t, product.ID, fixtureComponent(t, "2", "0.1", 1))

		f.products.On("FindByID", ctx, product.ID).Return(product, nil)
		f.boms.On("FindComplete", ctx, bom.ID).Return(bom, nil)
		f.orders.On("GenerateMoNumber", ctx).Return("MO2026080042", nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*manufacturing.ManufacturingOrder")).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.CreateManufacturingOrder(ctx, CreateManufacturingOrderRequest{
			ProductID: product.ID,
			BOMID:     bom.ID,
			Quantity:  decimal.NewFromInt(10),
			CreatedBy: uuid.New(),
		})
		require.NoError(t, err)
		assert.Equal(t, "MO2026080042", resp.MoNumber)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.Equal(t, "NORMAL", resp.Priority)

		f.stockLedger.AssertNotCalled(t, "GetCurrentStock", mock.Anything, mock.Anything)
		f.reservations.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.orders.AssertExpectations(t)
	})

	t.Run("fails when product does not exist", func(t *testing.T) {
		f := newServiceFixture()
		productID := uuid.New()
		f.products.On("FindByID", ctx, productID).Return(nil, nil)

		_, err := f.service.CreateManufacturingOrder(ctx, CreateManufacturingOrderRequest{
			ProductID: productID,
			BOMID:     uuid.New(),
			Quantity:  decimal.NewFromInt(1),
			CreatedBy: uuid.New(),
		})
		requireDomainErrorCode(t, err, shared.CodeEntityNotFound)
	})

	t.Run("fails when BOM does not exist", func(t *testing.T) {
		f := newServiceFixture()
		product := fixtureProduct(t)
		bomID := uuid.New()
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)
		f.boms.On("FindComplete", ctx, bomID).Return(nil, nil)

		_, err := f.service.CreateManufacturingOrder(ctx, CreateManufacturingOrderRequest{
			ProductID: product.ID,
			BOMID:     bomID,
			Quantity:  decimal.NewFromInt(1),
			CreatedBy: uuid.New(),
		})
		requireDomainErrorCode(t, err, shared.CodeEntityNotFound)
	})

	t.Run("fails when BOM belongs to another product", func(t *testing.T) {
		f := newServiceFixture()
		product := fixtureProduct(t)
		bom := fixtureBOM(t, uuid.New(), fixtureComponent(t, "2", "0", 1))
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)
		f.boms.On("FindComplete", ctx, bom.ID).Return(bom, nil)

		_, err := f.service.CreateManufacturingOrder(ctx, CreateManufacturingOrderRequest{
			ProductID: product.ID,
			BOMID:     bom.ID,
			Quantity:  decimal.NewFromInt(1),
			CreatedBy: uuid.New(),
		})
		requireDomainErrorCode(t, err, shared.CodeValidation)
	})

	t.Run("fails when BOM has no components", func(t *testing.T) {
		f := newServiceFixture()
		product := fixtureProduct(t)
		bom := fixtureBOM(t, product.ID)
		f.products.On("FindByID", ctx, product.ID).Return(product, nil)
		f.boms.On("FindComplete", ctx, bom.ID).Return(bom, nil)

		_, err := f.service.CreateManufacturingOrder(ctx, CreateManufacturingOrderRequest{
			ProductID: product.ID,
			BOMID:     bom.ID,
			Quantity:  decimal.NewFromInt(1),
			CreatedBy: uuid.New(),
		})
		requireDomainErrorCode(t, err, shared.CodeBusinessRuleViolation)
	})

	t.Run("rejects a non-positive quantity before any lookup", func(t *testing.T) {
		for _, quantity := range []decimal.Decimal{decimal.NewFromInt(-5), decimal.Zero} {
			f := newServiceFixture()
			_, err := f.service.CreateManufacturingOrder(ctx, CreateManufacturingOrderRequest{
				ProductID: uuid.New(),
				BOMID:     uuid.New(),
				Quantity:  quantity,
				CreatedBy: uuid.New(),
			})
			requireDomainErrorCode(t, err, shared.CodeValidation)
			f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		}
	})

	t.Run("rejects an invalid priority before any lookup", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.service.CreateManufacturingOrder(ctx, CreateManufacturingOrderRequest{
			ProductID: uuid.New(),
			BOMID:     uuid.New(),
			Quantity:  decimal.NewFromInt(1),
			Priority:  "WHENEVER",
			CreatedBy: uuid.New(),
		})
		requireDomainErrorCode(t, err, shared.CodeValidation)
		f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("wraps unexpected repository errors with a stable code", func(t *testing.T) {
		f := newServiceFixture()
		productID := uuid.New()
		f.products.On("FindByID", ctx, productID).Return(nil, assert.AnError)

		_, err := f.service.CreateManufacturingOrder(ctx, CreateManufacturingOrderRequest{
			ProductID: productID,
			BOMID:     uuid.New(),
			Quantity:  decimal.NewFromInt(1),
			CreatedBy: uuid.New(),
		})
		requireDomainErrorCode(t, err, ErrCodeCreateOrder)
	})
}

// ============================================
// ConfirmManufacturingOrder
// ============================================

func TestConfirmManufacturingOrder(t *testing.T) {
	ctx := context.Background()

	setupConfirmable := func(f *serviceFixture, t *testing.T, componentQty, scrap string) (*manufacturing.ManufacturingOrder, manufacturing.BOMComponent) {
		product := fixtureProduct(t)
		comp := fixtureComponent(t, componentQty, scrap, 1)
		bom := fixtureBOM(t, product.ID, comp)
		order := fixtureOrder(t, product.ID, bom.ID, "10")

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.boms.On("FindComplete", ctx, bom.ID).Return(bom, nil)
		f.products.On("FindByID", ctx, comp.ComponentID).Return(nil, nil)
		return order, comp
	}

	t.Run("confirms and reserves when free stock is sufficient", func(t *testing.T) {
		f := newServiceFixture()
		// requirement: 10 * 2 * 1.1 = 22
		order, comp := setupConfirmable(f, t, "2", "0.1")
		warehouseID := uuid.New()

		f.stockLedger.On("GetCurrentStock", mock.Anything, comp.ComponentID).Return(decimal.NewFromInt(100), nil)
		f.stockLedger.On("GetCurrentStockForUpdate", ctx, comp.ComponentID).Return(decimal.NewFromInt(100), nil)
		f.reservations.On("GetTotalReservedQuantity", mock.Anything, comp.ComponentID).Return(decimal.NewFromInt(50), nil)
		f.policy.On("SelectWarehouse", ctx, comp.ComponentID, mock.Anything).Return(warehouseID, nil)
		f.reservations.On("Save", ctx, mock.AnythingOfType("*manufacturing.MaterialReservation")).Return(nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*manufacturing.ManufacturingOrder")).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.ConfirmManufacturingOrder(ctx, order.ID, ConfirmManufacturingOrderRequest{
			ConfirmedBy: uuid.New(),
		})
		require.NoError(t, err)
		assert.Equal(t, "CONFIRMED", resp.Order.Status)
		require.Len(t, resp.Reservations, 1)
		assert.True(t, resp.Reservations[0].Quantity.Equal(decimal.NewFromInt(22)),
			"got %s", resp.Reservations[0].Quantity)
		assert.Equal(t, warehouseID, resp.Reservations[0].WarehouseID)
		assert.Equal(t, "ACTIVE", resp.Reservations[0].Status)
	})

	t.Run("values reserved material at component standard cost", func(t *testing.T) {
		f := newServiceFixture()
		product := fixtureProduct(t)
		comp := fixtureComponent(t, "2", "0.1", 1)
		bom := fixtureBOM(t, product.ID, comp)
		order := fixtureOrder(t, product.ID, bom.ID, "10")

		componentProduct, err := catalog.NewProduct("RM-001", "Steel Plate", "pcs")
		require.NoError(t, err)
		require.NoError(t, componentProduct.SetStandardCost(valueobject.NewMoneyUSDFromFloat(2.5)))

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.boms.On("FindComplete", ctx, bom.ID).Return(bom, nil)
		f.products.On("FindByID", ctx, comp.ComponentID).Return(componentProduct, nil)
		f.stockLedger.On("GetCurrentStock", mock.Anything, comp.ComponentID).Return(decimal.NewFromInt(100), nil)
		f.stockLedger.On("GetCurrentStockForUpdate", ctx, comp.ComponentID).Return(decimal.NewFromInt(100), nil)
		f.reservations.On("GetTotalReservedQuantity", mock.Anything, comp.ComponentID).Return(decimal.Zero, nil)
		f.policy.On("SelectWarehouse", ctx, comp.ComponentID, mock.Anything).Return(uuid.New(), nil)
		f.reservations.On("Save", ctx, mock.AnythingOfType("*manufacturing.MaterialReservation")).Return(nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*manufacturing.ManufacturingOrder")).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.ConfirmManufacturingOrder(ctx, order.ID, ConfirmManufacturingOrderRequest{
			ConfirmedBy: uuid.New(),
		})
		require.NoError(t, err)
		// 22 units at 2.50 each
		assert.True(t, resp.EstimatedMaterialCost.Equal(valueobject.NewMoneyUSDFromFloat(55)),
			"got %s", resp.EstimatedMaterialCost)
	})

	t.Run("reserved stock blocks confirmation even when on-hand covers it", func(t *testing.T) {
		f := newServiceFixture()
		// requirement: 10 * 2.5 * 1.0 = 25; free = 100 - 80 = 20
		order, comp := setupConfirmable(f, t, "2.5", "0")

		f.stockLedger.On("GetCurrentStock", mock.Anything, comp.ComponentID).Return(decimal.NewFromInt(100), nil)
		f.reservations.On("GetTotalReservedQuantity", mock.Anything, comp.ComponentID).Return(decimal.NewFromInt(80), nil)

		_, err := f.service.ConfirmManufacturingOrder(ctx, order.ID, ConfirmManufacturingOrderRequest{
			ConfirmedBy: uuid.New(),
		})
		requireDomainErrorCode(t, err, shared.CodeBusinessRuleViolation)
		f.reservations.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("non-draft order fails on status before any material check", func(t *testing.T) {
		f := newServiceFixture()
		product := fixtureProduct(t)
		bom := fixtureBOM(t, product.ID, fixtureComponent(t, "2", "0", 1))
		confirmed, err := fixtureOrder(t, product.ID, bom.ID, "10").Confirm()
		require.NoError(t, err)

		f.orders.On("FindByID", ctx, confirmed.ID).Return(confirmed, nil)

		_, err = f.service.ConfirmManufacturingOrder(ctx, confirmed.ID, ConfirmManufacturingOrderRequest{
			ConfirmedBy: uuid.New(),
		})
		requireDomainErrorCode(t, err, shared.CodeBusinessRuleViolation)
		f.stockLedger.AssertNotCalled(t, "GetCurrentStock", mock.Anything, mock.Anything)
	})

	t.Run("locked re-check catches stock consumed after the advisory read", func(t *testing.T) {
		f := newServiceFixture()
		// requirement: 10 * 2 * 1.0 = 20
		order, comp := setupConfirmable(f, t, "2", "0")

		// advisory read sees plenty, the locked read does not
		f.stockLedger.On("GetCurrentStock", mock.Anything, comp.ComponentID).Return(decimal.NewFromInt(100), nil)
		f.stockLedger.On("GetCurrentStockForUpdate", ctx, comp.ComponentID).Return(decimal.NewFromInt(5), nil)
		f.reservations.On("GetTotalReservedQuantity", mock.Anything, comp.ComponentID).Return(decimal.Zero, nil)

		_, err := f.service.ConfirmManufacturingOrder(ctx, order.ID, ConfirmManufacturingOrderRequest{
			ConfirmedBy: uuid.New(),
		})
		requireDomainErrorCode(t, err, shared.CodeBusinessRuleViolation)
		f.reservations.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("reports every insufficient component at once", func(t *testing.T) {
		f := newServiceFixture()
		product := fixtureProduct(t)
		short1 := fixtureComponent(t, "5", "0", 1)
		ok := fixtureComponent(t, "1", "0", 2)
		short2 := fixtureComponent(t, "3", "0", 3)
		bom := fixtureBOM(t, product.ID, short1, ok, short2)
		order := fixtureOrder(t, product.ID, bom.ID, "10")

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.boms.On("FindComplete", ctx, bom.ID).Return(bom, nil)
		f.products.On("FindByID", ctx, mock.Anything).Return(nil, nil)
		f.stockLedger.On("GetCurrentStock", mock.Anything, short1.ComponentID).Return(decimal.NewFromInt(10), nil)
		f.stockLedger.On("GetCurrentStock", mock.Anything, ok.ComponentID).Return(decimal.NewFromInt(100), nil)
		f.stockLedger.On("GetCurrentStock", mock.Anything, short2.ComponentID).Return(decimal.NewFromInt(2), nil)
		f.reservations.On("GetTotalReservedQuantity", mock.Anything, mock.Anything).Return(decimal.Zero, nil)

		_, err := f.service.ConfirmManufacturingOrder(ctx, order.ID, ConfirmManufacturingOrderRequest{
			ConfirmedBy: uuid.New(),
		})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeBusinessRuleViolation, domainErr.Code)
		assert.Len(t, domainErr.Details, 2)
	})

	t.Run("fails when the order does not exist", func(t *testing.T) {
		f := newServiceFixture()
		orderID := uuid.New()
		f.orders.On("FindByID", ctx, orderID).Return(nil, nil)

		_, err := f.service.ConfirmManufacturingOrder(ctx, orderID, ConfirmManufacturingOrderRequest{
			ConfirmedBy: uuid.New(),
		})
		requireDomainErrorCode(t, err, shared.CodeEntityNotFound)
	})
}

// ============================================
// Start / Complete / Cancel
// ============================================

func TestStartManufacturingOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("starts a confirmed order", func(t *testing.T) {
		f := newServiceFixture()
		confirmed, err := fixtureOrder(t, uuid.New(), uuid.New(), "5").Confirm()
		require.NoError(t, err)
		confirmed.ClearDomainEvents()

		f.orders.On("FindByID", ctx, confirmed.ID).Return(confirmed, nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*manufacturing.ManufacturingOrder")).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.StartManufacturingOrder(ctx, confirmed.ID)
		require.NoError(t, err)
		assert.Equal(t, "IN_PROGRESS", resp.Status)
		assert.NotNil(t, resp.ActualStartDate)
	})

	t.Run("fails from draft with a transition error", func(t *testing.T) {
		f := newServiceFixture()
		order := fixtureOrder(t, uuid.New(), uuid.New(), "5")
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := f.service.StartManufacturingOrder(ctx, order.ID)
		requireDomainErrorCode(t, err, shared.CodeInvalidStatusTransition)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCompleteManufacturingOrder(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	confirmed, err := fixtureOrder(t, uuid.New(), uuid.New(), "5").Confirm()
	require.NoError(t, err)
	started, err := confirmed.Start()
	require.NoError(t, err)
	started.ClearDomainEvents()

	f.orders.On("FindByID", ctx, started.ID).Return(started, nil)
	f.orders.On("Save", ctx, mock.AnythingOfType("*manufacturing.ManufacturingOrder")).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	resp, err := f.service.CompleteManufacturingOrder(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", resp.Status)
	assert.NotNil(t, resp.ActualEndDate)
}

func TestCancelManufacturingOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels a confirmed order and releases its reservations", func(t *testing.T) {
		f := newServiceFixture()
		confirmed, err := fixtureOrder(t, uuid.New(), uuid.New(), "5").Confirm()
		require.NoError(t, err)
		confirmed.ClearDomainEvents()

		reservation, err := manufacturing.NewMaterialReservation(
			confirmed.ID, uuid.New(), uuid.New(),
			valueobject.MustNewQuantity(decimal.NewFromInt(10), "pcs"), uuid.New())
		require.NoError(t, err)

		f.orders.On("FindByID", ctx, confirmed.ID).Return(confirmed, nil)
		f.reservations.On("FindActiveByOrder", ctx, confirmed.ID).
			Return([]manufacturing.MaterialReservation{*reservation}, nil)
		f.reservations.On("Save", ctx, mock.MatchedBy(func(r *manufacturing.MaterialReservation) bool {
			return r.Status == manufacturing.ReservationStatusReleased && r.ReleasedAt != nil
		})).Return(nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*manufacturing.ManufacturingOrder")).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		resp, err := f.service.CancelManufacturingOrder(ctx, confirmed.ID, CancelManufacturingOrderRequest{
			Reason: "materials recalled",
		})
		require.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.Equal(t, "materials recalled", resp.CancelReason)
		f.reservations.AssertExpectations(t)
	})

	t.Run("fails for a completed order", func(t *testing.T) {
		f := newServiceFixture()
		confirmed, err := fixtureOrder(t, uuid.New(), uuid.New(), "5").Confirm()
		require.NoError(t, err)
		started, err := confirmed.Start()
		require.NoError(t, err)
		completed, err := started.Complete()
		require.NoError(t, err)

		f.orders.On("FindByID", ctx, completed.ID).Return(completed, nil)

		_, err = f.service.CancelManufacturingOrder(ctx, completed.ID, CancelManufacturingOrderRequest{
			Reason: "too late",
		})
		requireDomainErrorCode(t, err, shared.CodeInvalidStatusTransition)
	})
}

// ============================================
// Queries and deletion
// ============================================

func TestGetManufacturingOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the order", func(t *testing.T) {
		f := newServiceFixture()
		order := fixtureOrder(t, uuid.New(), uuid.New(), "5")
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		resp, err := f.service.GetManufacturingOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, order.MoNumber, resp.MoNumber)
	})

	t.Run("returns not found for a missing order", func(t *testing.T) {
		f := newServiceFixture()
		orderID := uuid.New()
		f.orders.On("FindByID", ctx, orderID).Return(nil, nil)

		_, err := f.service.GetManufacturingOrder(ctx, orderID)
		requireDomainErrorCode(t, err, shared.CodeEntityNotFound)
	})
}

func TestListManufacturingOrders(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a page with pagination metadata", func(t *testing.T) {
		f := newServiceFixture()
		orders := []manufacturing.ManufacturingOrder{
			*fixtureOrder(t, uuid.New(), uuid.New(), "5"),
			*fixtureOrder(t, uuid.New(), uuid.New(), "3"),
		}
		f.orders.On("FindAll", ctx, mock.Anything).Return(orders, nil)
		f.orders.On("Count", ctx, mock.Anything).Return(int64(42), nil)

		page, err := f.service.ListManufacturingOrders(ctx, ListManufacturingOrdersRequest{
			Page: 2, PageSize: 20,
		})
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.Equal(t, int64(42), page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 3, page.TotalPages)
	})

	t.Run("rejects an invalid status filter", func(t *testing.T) {
		f := newServiceFixture()
		_, err := f.service.ListManufacturingOrders(ctx, ListManufacturingOrdersRequest{Status: "NOPE"})
		requireDomainErrorCode(t, err, shared.CodeValidation)
	})
}

func TestDeleteManufacturingOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes a draft order", func(t *testing.T) {
		f := newServiceFixture()
		order := fixtureOrder(t, uuid.New(), uuid.New(), "5")
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("Delete", ctx, order.ID).Return(nil)

		require.NoError(t, f.service.DeleteManufacturingOrder(ctx, order.ID))
		f.orders.AssertExpectations(t)
	})

	t.Run("refuses to delete a confirmed order", func(t *testing.T) {
		f := newServiceFixture()
		confirmed, err := fixtureOrder(t, uuid.New(), uuid.New(), "5").Confirm()
		require.NoError(t, err)
		f.orders.On("FindByID", ctx, confirmed.ID).Return(confirmed, nil)

		err = f.service.DeleteManufacturingOrder(ctx, confirmed.ID)
		requireDomainErrorCode(t, err, shared.CodeBusinessRuleViolation)
		f.orders.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestGetStatusSummary(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture()

	f.orders.On("CountByStatus", ctx, manufacturing.StatusDraft).Return(int64(3), nil)
	f.orders.On("CountByStatus", ctx, manufacturing.StatusConfirmed).Return(int64(2), nil)
	f.orders.On("CountByStatus", ctx, manufacturing.StatusInProgress).Return(int64(1), nil)
	f.orders.On("CountByStatus", ctx, manufacturing.StatusCompleted).Return(int64(10), nil)
	f.orders.On("CountByStatus", ctx, manufacturing.StatusCancelled).Return(int64(4), nil)

	summary, err := f.service.GetStatusSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Draft)
	assert.Equal(t, int64(20), summary.Total)
}
