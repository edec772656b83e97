package manufacturing

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/catalog"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/shared/valueobject"
)

// MaterialRequirement is the quantity of one component needed to produce a
// manufacturing order. It is derived, never persisted: BOM and order quantity
// are the sources of truth and both may change between creation and
// confirmation, so requirements are recomputed on every confirmation attempt.
type MaterialRequirement struct {
	ComponentID uuid.UUID
	Quantity    valueobject.Quantity
}

// StockAvailability is a point-in-time snapshot of one component's on-hand
// and reserved stock, read from the stock ledger and reservation records
type StockAvailability struct {
	ComponentID   uuid.UUID
	CurrentStock  decimal.Decimal
	ReservedStock decimal.Decimal
}

// FreeStock returns on-hand stock minus active reservations
func (s StockAvailability) FreeStock() decimal.Decimal {
	return s.CurrentStock.Sub(s.ReservedStock)
}

// ManufacturingOrderDomainService holds the business rules that span an
// order, its BOM, and stock state. All methods are pure functions over their
// inputs; persistence stays in the application layer.
type ManufacturingOrderDomainService struct{}

// NewManufacturingOrderDomainService creates a new ManufacturingOrderDomainService
func NewManufacturingOrderDomainService() *ManufacturingOrderDomainService {
	return &ManufacturingOrderDomainService{}
}

// ValidateCreation checks the rules for creating a manufacturing order.
// Creation never touches stock; nothing is reserved until confirmation.
func (s *ManufacturingOrderDomainService) ValidateCreation(product *catalog.Product, quantity valueobject.Quantity, components []BOMComponent) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("Order quantity must be positive")
	}
	if quantity.Unit() != product.UnitSymbol {
		return shared.NewBusinessRuleViolationError(
			fmt.Sprintf("Order quantity unit %s does not match product unit %s", quantity.Unit(), product.UnitSymbol))
	}
	if len(components) == 0 {
		return shared.NewBusinessRuleViolationError("BOM has no components")
	}
	return nil
}

// CalculateMaterialRequirements computes the per-component quantities needed
// for the given order quantity:
//
//	required = orderQuantity * componentQuantity * (1 + scrapFactor)
//
// Decimal arithmetic throughout; results are rounded to 4 places to match
// the DECIMAL(15,4) storage precision. Output follows sequenceNumber
// ascending so repeated runs over the same BOM are deterministic.
func (s *ManufacturingOrderDomainService) CalculateMaterialRequirements(orderQuantity valueobject.Quantity, components []BOMComponent) []MaterialRequirement {
	sorted := make([]BOMComponent, len(components))
	copy(sorted, components)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SequenceNumber < sorted[j].SequenceNumber
	})

	one := decimal.NewFromInt(1)
	requirements := make([]MaterialRequirement, 0, len(sorted))
	for _, c := range sorted {
		required := orderQuantity.Amount().
			Mul(c.Quantity).
			Mul(one.Add(c.ScrapFactor)).
			Round(4)
		requirements = append(requirements, MaterialRequirement{
			ComponentID: c.ComponentID,
			Quantity:    valueobject.MustNewQuantity(required, c.Unit),
		})
	}
	return requirements
}

// ValidateMaterialAvailability checks every requirement against free stock
// (current minus reserved). It is a gate, not a transform: the requirement
// list is returned unchanged on success. All insufficient components are
// aggregated into a single error so the caller sees the full shortfall.
func (s *ManufacturingOrderDomainService) ValidateMaterialAvailability(requirements []MaterialRequirement, availability map[uuid.UUID]StockAvailability) ([]MaterialRequirement, error) {
	var shortfalls []string
	for _, req := range requirements {
		avail, ok := availability[req.ComponentID]
		if !ok {
			shortfalls = append(shortfalls, fmt.Sprintf(
				"component %s: no stock record, required %s",
				req.ComponentID, req.Quantity.Amount()))
			continue
		}
		free := avail.FreeStock()
		if free.LessThan(req.Quantity.Amount()) {
			shortfalls = append(shortfalls, fmt.Sprintf(
				"component %s: required %s, free %s (on hand %s, reserved %s)",
				req.ComponentID, req.Quantity.Amount(), free, avail.CurrentStock, avail.ReservedStock))
		}
	}
	if len(shortfalls) > 0 {
		return nil, shared.NewBusinessRuleViolationErrorWithDetails("Insufficient stock for manufacturing order", shortfalls)
	}
	return requirements, nil
}

// EstimateMaterialCost values the requirements at each component's standard
// cost. Components without a known cost contribute nothing; the estimate is
// informational and never gates confirmation.
func (s *ManufacturingOrderDomainService) EstimateMaterialCost(requirements []MaterialRequirement, costs map[uuid.UUID]valueobject.Money) (valueobject.Money, error) {
	total := valueobject.ZeroMoney(valueobject.DefaultCurrency)
	for _, req := range requirements {
		cost, ok := costs[req.ComponentID]
		if !ok || cost.IsZero() {
			continue
		}
		line := cost.Multiply(req.Quantity.Amount())
		sum, err := total.Add(line)
		if err != nil {
			return valueobject.Money{}, err
		}
		total = sum
	}
	return total, nil
}

// ValidateConfirmation checks that the order is eligible for confirmation.
// Status eligibility is independent of material checks and must be reported
// ahead of them, so confirming a non-draft order never surfaces a stale
// material error.
func (s *ManufacturingOrderDomainService) ValidateConfirmation(order *ManufacturingOrder) error {
	if !order.CanBeConfirmed() {
		return shared.NewBusinessRuleViolationError(
			fmt.Sprintf("Manufacturing order %s cannot be confirmed in %s status", order.MoNumber, order.Status))
	}
	return nil
}
