package manufacturing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mrp/backend/internal/domain/manufacturing"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/shared/valueobject"
)

// Error codes for unexpected failures, one per operation
const (
	ErrCodeCreateOrder   = "CREATE_MANUFACTURING_ORDER_ERROR"
	ErrCodeConfirmOrder  = "CONFIRM_MANUFACTURING_ORDER_ERROR"
	ErrCodeStartOrder    = "START_MANUFACTURING_ORDER_ERROR"
	ErrCodeCompleteOrder = "COMPLETE_MANUFACTURING_ORDER_ERROR"
	ErrCodeCancelOrder   = "CANCEL_MANUFACTURING_ORDER_ERROR"
	ErrCodeUpdateOrder   = "UPDATE_MANUFACTURING_ORDER_ERROR"
	ErrCodeGetOrder      = "GET_MANUFACTURING_ORDER_ERROR"
	ErrCodeListOrders    = "LIST_MANUFACTURING_ORDERS_ERROR"
	ErrCodeDeleteOrder   = "DELETE_MANUFACTURING_ORDER_ERROR"
)

// ManufacturingOrderService orchestrates the manufacturing order lifecycle:
// creation, confirmation with material reservation, production start and
// completion, and cancellation with reservation release.
type ManufacturingOrderService struct {
	txScope       TransactionScope
	orders        manufacturing.ManufacturingOrderRepository
	reservations  manufacturing.MaterialReservationRepository
	stockLedger   manufacturing.StockLedgerRepository
	domainService *manufacturing.ManufacturingOrderDomainService
	policy        manufacturing.ReservationPolicy
	publisher     shared.EventPublisher
	logger        *zap.Logger
}

// NewManufacturingOrderService creates a new ManufacturingOrderService
func NewManufacturingOrderService(
	txScope TransactionScope,
	orders manufacturing.ManufacturingOrderRepository,
	reservations manufacturing.MaterialReservationRepository,
	stockLedger manufacturing.StockLedgerRepository,
	policy manufacturing.ReservationPolicy,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ManufacturingOrderService {
	return &ManufacturingOrderService{
		txScope:       txScope,
		orders:        orders,
		reservations:  reservations,
		stockLedger:   stockLedger,
		domainService: manufacturing.NewManufacturingOrderDomainService(),
		policy:        policy,
		publisher:     publisher,
		logger:        logger,
	}
}

// wrapError passes domain errors through unchanged and converts anything else
// into a stable operation-level error code, logging the original cause
func (s *ManufacturingOrderService) wrapError(err error, code, message string, fields ...zap.Field) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error(message, append(fields, zap.Error(err))...)
	return shared.NewDomainError(code, message)
}

func (s *ManufacturingOrderService) publishEvents(ctx context.Context, order *manufacturing.ManufacturingOrder) {
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("mo_number", order.MoNumber),
			zap.Error(err))
	}
	order.ClearDomainEvents()
}

// CreateManufacturingOrder creates a new order in DRAFT status. The BOM is
// validated for existence and non-emptiness but no stock is checked or
// reserved; that happens at confirmation.
func (s *ManufacturingOrderService) CreateManufacturingOrder(ctx context.Context, req CreateManufacturingOrderRequest) (*ManufacturingOrderResponse, error) {
	if !req.Quantity.IsPositive() {
		return nil, shared.NewValidationError("Order quantity must be positive")
	}
	priority := manufacturing.PriorityNormal
	if req.Priority != "" {
		priority = manufacturing.Priority(req.Priority)
		if !priority.IsValid() {
			return nil, shared.NewValidationError(fmt.Sprintf("Invalid priority: %s", req.Priority))
		}
	}

	var created *manufacturing.ManufacturingOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.Products.FindByID(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return shared.NewEntityNotFoundError("Product", req.ProductID.String())
		}

		bom, err := repos.BOMs.FindComplete(ctx, req.BOMID)
		if err != nil {
			return err
		}
		if bom == nil {
			return shared.NewEntityNotFoundError("BOM", req.BOMID.String())
		}
		if bom.ProductID != product.ID {
			return shared.NewValidationError(
				fmt.Sprintf("BOM %s does not belong to product %s", bom.ID, product.ID))
		}

		quantity, err := valueobject.NewQuantity(req.Quantity, product.UnitSymbol)
		if err != nil {
			return err
		}
		if err := s.domainService.ValidateCreation(product, quantity, bom.Components); err != nil {
			return err
		}

		moNumber, err := repos.Orders.GenerateMoNumber(ctx)
		if err != nil {
			return err
		}

		order, err := manufacturing.NewManufacturingOrder(manufacturing.NewManufacturingOrderParams{
			MoNumber:         moNumber,
			ProductID:        product.ID,
			BOMID:            bom.ID,
			Quantity:         quantity,
			Priority:         priority,
			PlannedStartDate: req.PlannedStartDate,
			PlannedEndDate:   req.PlannedEndDate,
			Notes:            req.Notes,
			Metadata:         req.Metadata,
			CreatedBy:        req.CreatedBy,
		})
		if err != nil {
			return err
		}

		if err := repos.Orders.Save(ctx, order); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, s.wrapError(err, ErrCodeCreateOrder, "Failed to create manufacturing order",
			zap.String("product_id", req.ProductID.String()))
	}

	s.publishEvents(ctx, created)
	s.logger.Info("manufacturing order created",
		zap.String("mo_number", created.MoNumber),
		zap.String("order_id", created.ID.String()))
	return toOrderResponse(created), nil
}

// ConfirmManufacturingOrder confirms a draft order, checking material
// availability and reserving components.
//
// Availability is read in two passes. The first pass fans out per-component
// stock and reservation reads concurrently; it runs outside the transaction
// and exists to fail fast with a complete shortfall report. The second pass
// re-reads stock under row locks inside the transaction, immediately before
// the reservation rows are written, so a concurrent confirmation of the same
// components cannot slip between check and act.
func (s *ManufacturingOrderService) ConfirmManufacturingOrder(ctx context.Context, orderID uuid.UUID, req ConfirmManufacturingOrderRequest) (*ConfirmManufacturingOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, s.wrapError(err, ErrCodeConfirmOrder, "Failed to confirm manufacturing order")
	}
	if order == nil {
		return nil, shared.NewEntityNotFoundError("ManufacturingOrder", orderID.String())
	}

	// Status eligibility comes before any material work so a non-draft order
	// never produces a material error
	if err := s.domainService.ValidateConfirmation(order); err != nil {
		return nil, err
	}

	var requirements []manufacturing.MaterialRequirement
	var confirmed *manufacturing.ManufacturingOrder
	var reservations []MaterialReservationResponse
	var estimatedCost valueobject.Money

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		bom, err := repos.BOMs.FindComplete(ctx, order.BOMID)
		if err != nil {
			return err
		}
		if bom == nil {
			return shared.NewEntityNotFoundError("BOM", order.BOMID.String())
		}
		if !bom.HasComponents() {
			return shared.NewBusinessRuleViolationError("BOM has no components")
		}

		requirements = s.domainService.CalculateMaterialRequirements(order.Quantity, bom.Components)

		costs := make(map[uuid.UUID]valueobject.Money, len(requirements))
		for _, req := range requirements {
			component, err := repos.Products.FindByID(ctx, req.ComponentID)
			if err != nil {
				return err
			}
			if component != nil {
				costs[req.ComponentID] = component.StandardCost
			}
		}
		estimatedCost, err = s.domainService.EstimateMaterialCost(requirements, costs)
		return err
	})
	if err != nil {
		return nil, s.wrapError(err, ErrCodeConfirmOrder, "Failed to confirm manufacturing order",
			zap.String("mo_number", order.MoNumber))
	}

	availability, err := s.readAvailability(ctx, requirements)
	if err != nil {
		return nil, s.wrapError(err, ErrCodeConfirmOrder, "Failed to read stock availability",
			zap.String("mo_number", order.MoNumber))
	}
	if _, err := s.domainService.ValidateMaterialAvailability(requirements, availability); err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Authoritative re-read under the transaction: the order may have
		// been confirmed by another request since the eligibility check
		current, err := repos.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if current == nil {
			return shared.NewEntityNotFoundError("ManufacturingOrder", orderID.String())
		}

		next, err := current.Confirm()
		if err != nil {
			return err
		}

		// Locked re-check per component before writing reservations. The
		// advisory read above is stale by definition; this one is not.
		locked := make(map[uuid.UUID]manufacturing.StockAvailability, len(requirements))
		for _, req := range requirements {
			onHand, err := repos.StockLedger.GetCurrentStockForUpdate(ctx, req.ComponentID)
			if err != nil {
				return err
			}
			reserved, err := repos.Reservations.GetTotalReservedQuantity(ctx, req.ComponentID)
			if err != nil {
				return err
			}
			locked[req.ComponentID] = manufacturing.StockAvailability{
				ComponentID:   req.ComponentID,
				CurrentStock:  onHand,
				ReservedStock: reserved,
			}
		}
		if _, err := s.domainService.ValidateMaterialAvailability(requirements, locked); err != nil {
			return err
		}

		for _, requirement := range requirements {
			warehouseID, err := s.policy.SelectWarehouse(ctx, requirement.ComponentID, requirement.Quantity)
			if err != nil {
				return err
			}
			reservation, err := manufacturing.NewMaterialReservation(
				next.ID, requirement.ComponentID, warehouseID, requirement.Quantity, req.ConfirmedBy)
			if err != nil {
				return err
			}
			if err := repos.Reservations.Save(ctx, reservation); err != nil {
				return err
			}
			reservations = append(reservations, toReservationResponse(reservation))
		}

		if err := repos.Orders.Save(ctx, next); err != nil {
			return err
		}
		confirmed = next
		return nil
	})
	if err != nil {
		return nil, s.wrapError(err, ErrCodeConfirmOrder, "Failed to confirm manufacturing order",
			zap.String("mo_number", order.MoNumber))
	}

	s.publishEvents(ctx, confirmed)
	s.logger.Info("manufacturing order confirmed",
		zap.String("mo_number", confirmed.MoNumber),
		zap.Int("reservations", len(reservations)))
	return &ConfirmManufacturingOrderResponse{
		Order:                 toOrderResponse(confirmed),
		Reservations:          reservations,
		EstimatedMaterialCost: estimatedCost,
	}, nil
}

// readAvailability fans out stock and reservation reads per component. Reads
// are independent of each other so they run concurrently.
func (s *ManufacturingOrderService) readAvailability(ctx context.Context, requirements []manufacturing.MaterialRequirement) (map[uuid.UUID]manufacturing.StockAvailability, error) {
	results := make([]manufacturing.StockAvailability, len(requirements))
	g, gctx := errgroup.WithContext(ctx)
	for i, requirement := range requirements {
		i, requirement := i, requirement
		g.Go(func() error {
			onHand, err := s.stockLedger.GetCurrentStock(gctx, requirement.ComponentID)
			if err != nil {
				return err
			}
			reserved, err := s.reservations.GetTotalReservedQuantity(gctx, requirement.ComponentID)
			if err != nil {
				return err
			}
			results[i] = manufacturing.StockAvailability{
				ComponentID:   requirement.ComponentID,
				CurrentStock:  onHand,
				ReservedStock: reserved,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	availability := make(map[uuid.UUID]manufacturing.StockAvailability, len(results))
	for _, a := range results {
		availability[a.ComponentID] = a
	}
	return availability, nil
}

// StartManufacturingOrder moves a confirmed order into production
func (s *ManufacturingOrderService) StartManufacturingOrder(ctx context.Context, orderID uuid.UUID) (*ManufacturingOrderResponse, error) {
	return s.transition(ctx, orderID, ErrCodeStartOrder, "Failed to start manufacturing order",
		func(order *manufacturing.ManufacturingOrder) (*manufacturing.ManufacturingOrder, error) {
			return order.Start()
		})
}

// CompleteManufacturingOrder finishes production for an in-progress order
func (s *ManufacturingOrderService) CompleteManufacturingOrder(ctx context.Context, orderID uuid.UUID) (*ManufacturingOrderResponse, error) {
	return s.transition(ctx, orderID, ErrCodeCompleteOrder, "Failed to complete manufacturing order",
		func(order *manufacturing.ManufacturingOrder) (*manufacturing.ManufacturingOrder, error) {
			return order.Complete()
		})
}

// CancelManufacturingOrder cancels an order and releases any active material
// reservations it holds
func (s *ManufacturingOrderService) CancelManufacturingOrder(ctx context.Context, orderID uuid.UUID, req CancelManufacturingOrderRequest) (*ManufacturingOrderResponse, error) {
	var cancelled *manufacturing.ManufacturingOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return shared.NewEntityNotFoundError("ManufacturingOrder", orderID.String())
		}

		next, err := order.Cancel(req.Reason)
		if err != nil {
			return err
		}

		active, err := repos.Reservations.FindActiveByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		for i := range active {
			if err := active[i].Release(); err != nil {
				return err
			}
			if err := repos.Reservations.Save(ctx, &active[i]); err != nil {
				return err
			}
		}

		if err := repos.Orders.Save(ctx, next); err != nil {
			return err
		}
		cancelled = next
		return nil
	})
	if err != nil {
		return nil, s.wrapError(err, ErrCodeCancelOrder, "Failed to cancel manufacturing order",
			zap.String("order_id", orderID.String()))
	}

	s.publishEvents(ctx, cancelled)
	s.logger.Info("manufacturing order cancelled",
		zap.String("mo_number", cancelled.MoNumber),
		zap.String("reason", req.Reason))
	return toOrderResponse(cancelled), nil
}

// transition loads the order inside a transaction, applies fn, and saves the
// result. Used for the transitions with no side effects beyond the order row.
func (s *ManufacturingOrderService) transition(
	ctx context.Context,
	orderID uuid.UUID,
	code, message string,
	fn func(*manufacturing.ManufacturingOrder) (*manufacturing.ManufacturingOrder, error),
) (*ManufacturingOrderResponse, error) {
	var result *manufacturing.ManufacturingOrder
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return shared.NewEntityNotFoundError("ManufacturingOrder", orderID.String())
		}
		next, err := fn(order)
		if err != nil {
			return err
		}
		if err := repos.Orders.Save(ctx, next); err != nil {
			return err
		}
		result = next
		return nil
	})
	if err != nil {
		return nil, s.wrapError(err, code, message, zap.String("order_id", orderID.String()))
	}

	s.publishEvents(ctx, result)
	return toOrderResponse(result), nil
}

// AssignManufacturingOrder assigns the order to a user
func (s *ManufacturingOrderService) AssignManufacturingOrder(ctx context.Context, orderID uuid.UUID, req AssignManufacturingOrderRequest) (*ManufacturingOrderResponse, error) {
	return s.transition(ctx, orderID, ErrCodeUpdateOrder, "Failed to assign manufacturing order",
		func(order *manufacturing.ManufacturingOrder) (*manufacturing.ManufacturingOrder, error) {
			return order.AssignTo(req.AssigneeID)
		})
}

// UpdatePriority changes the order priority
func (s *ManufacturingOrderService) UpdatePriority(ctx context.Context, orderID uuid.UUID, req UpdatePriorityRequest) (*ManufacturingOrderResponse, error) {
	return s.transition(ctx, orderID, ErrCodeUpdateOrder, "Failed to update manufacturing order priority",
		func(order *manufacturing.ManufacturingOrder) (*manufacturing.ManufacturingOrder, error) {
			return order.UpdatePriority(manufacturing.Priority(req.Priority))
		})
}

// UpdatePlannedDates changes the planned production window
func (s *ManufacturingOrderService) UpdatePlannedDates(ctx context.Context, orderID uuid.UUID, req UpdatePlannedDatesRequest) (*ManufacturingOrderResponse, error) {
	return s.transition(ctx, orderID, ErrCodeUpdateOrder, "Failed to update manufacturing order dates",
		func(order *manufacturing.ManufacturingOrder) (*manufacturing.ManufacturingOrder, error) {
			return order.UpdatePlannedDates(req.PlannedStartDate, req.PlannedEndDate)
		})
}

// UpdateNotes changes the order notes
func (s *ManufacturingOrderService) UpdateNotes(ctx context.Context, orderID uuid.UUID, req UpdateNotesRequest) (*ManufacturingOrderResponse, error) {
	return s.transition(ctx, orderID, ErrCodeUpdateOrder, "Failed to update manufacturing order notes",
		func(order *manufacturing.ManufacturingOrder) (*manufacturing.ManufacturingOrder, error) {
			return order.UpdateNotes(req.Notes)
		})
}

// GetManufacturingOrder returns a single order by ID
func (s *ManufacturingOrderService) GetManufacturingOrder(ctx context.Context, orderID uuid.UUID) (*ManufacturingOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, s.wrapError(err, ErrCodeGetOrder, "Failed to load manufacturing order",
			zap.String("order_id", orderID.String()))
	}
	if order == nil {
		return nil, shared.NewEntityNotFoundError("ManufacturingOrder", orderID.String())
	}
	return toOrderResponse(order), nil
}

// GetManufacturingOrderByNumber returns a single order by MO number
func (s *ManufacturingOrderService) GetManufacturingOrderByNumber(ctx context.Context, moNumber string) (*ManufacturingOrderResponse, error) {
	order, err := s.orders.FindByMoNumber(ctx, moNumber)
	if err != nil {
		return nil, s.wrapError(err, ErrCodeGetOrder, "Failed to load manufacturing order",
			zap.String("mo_number", moNumber))
	}
	if order == nil {
		return nil, shared.NewEntityNotFoundError("ManufacturingOrder", moNumber)
	}
	return toOrderResponse(order), nil
}

// GetOrderReservations returns the active reservations held by an order
func (s *ManufacturingOrderService) GetOrderReservations(ctx context.Context, orderID uuid.UUID) ([]MaterialReservationResponse, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, s.wrapError(err, ErrCodeGetOrder, "Failed to load manufacturing order",
			zap.String("order_id", orderID.String()))
	}
	if order == nil {
		return nil, shared.NewEntityNotFoundError("ManufacturingOrder", orderID.String())
	}

	active, err := s.reservations.FindActiveByOrder(ctx, orderID)
	if err != nil {
		return nil, s.wrapError(err, ErrCodeGetOrder, "Failed to load reservations",
			zap.String("order_id", orderID.String()))
	}
	responses := make([]MaterialReservationResponse, 0, len(active))
	for i := range active {
		responses = append(responses, toReservationResponse(&active[i]))
	}
	return responses, nil
}

// ListManufacturingOrders returns a page of orders matching the filters
func (s *ManufacturingOrderService) ListManufacturingOrders(ctx context.Context, req ListManufacturingOrdersRequest) (*shared.Paginated[ManufacturingOrderResponse], error) {
	if req.Status != "" && !manufacturing.Status(req.Status).IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid status: %s", req.Status))
	}
	if req.Priority != "" && !manufacturing.Priority(req.Priority).IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid priority: %s", req.Priority))
	}

	filter := req.toFilter()
	orders, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, s.wrapError(err, ErrCodeListOrders, "Failed to list manufacturing orders")
	}
	total, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, s.wrapError(err, ErrCodeListOrders, "Failed to count manufacturing orders")
	}

	items := make([]ManufacturingOrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *toOrderResponse(&orders[i]))
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// DeleteManufacturingOrder removes a draft order. Orders that have moved past
// draft carry history and reservations and must be cancelled instead.
func (s *ManufacturingOrderService) DeleteManufacturingOrder(ctx context.Context, orderID uuid.UUID) error {
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return shared.NewEntityNotFoundError("ManufacturingOrder", orderID.String())
		}
		if !order.IsDraft() {
			return shared.NewBusinessRuleViolationError("Only draft manufacturing orders can be deleted")
		}
		return repos.Orders.Delete(ctx, orderID)
	})
	if err != nil {
		return s.wrapError(err, ErrCodeDeleteOrder, "Failed to delete manufacturing order",
			zap.String("order_id", orderID.String()))
	}
	s.logger.Info("manufacturing order deleted", zap.String("order_id", orderID.String()))
	return nil
}

// GetStatusSummary returns order counts per status
func (s *ManufacturingOrderService) GetStatusSummary(ctx context.Context) (*StatusSummaryResponse, error) {
	summary := &StatusSummaryResponse{}
	targets := []struct {
		status manufacturing.Status
		dest   *int64
	}{
		{manufacturing.StatusDraft, &summary.Draft},
		{manufacturing.StatusConfirmed, &summary.Confirmed},
		{manufacturing.StatusInProgress, &summary.InProgress},
		{manufacturing.StatusCompleted, &summary.Completed},
		{manufacturing.StatusCancelled, &summary.Cancelled},
	}
	for _, target := range targets {
		count, err := s.orders.CountByStatus(ctx, target.status)
		if err != nil {
			return nil, s.wrapError(err, ErrCodeListOrders, "Failed to build status summary")
		}
		*target.dest = count
		summary.Total += count
	}
	return summary, nil
}
