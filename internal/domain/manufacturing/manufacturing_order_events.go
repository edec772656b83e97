package manufacturing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeManufacturingOrder = "ManufacturingOrder"

// Event type constants
const (
	EventTypeManufacturingOrderCreated   = "ManufacturingOrderCreated"
	EventTypeManufacturingOrderConfirmed = "ManufacturingOrderConfirmed"
	EventTypeManufacturingOrderStarted   = "ManufacturingOrderStarted"
	EventTypeManufacturingOrderCompleted = "ManufacturingOrderCompleted"
	EventTypeManufacturingOrderCancelled = "ManufacturingOrderCancelled"
)

// ManufacturingOrderCreatedEvent is raised when a new order is created
type ManufacturingOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID       `json:"order_id"`
	MoNumber  string          `json:"mo_number"`
	ProductID uuid.UUID       `json:"product_id"`
	BOMID     uuid.UUID       `json:"bom_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	Priority  string          `json:"priority"`
	CreatedBy uuid.UUID       `json:"created_by"`
}

// NewManufacturingOrderCreatedEvent creates a new ManufacturingOrderCreatedEvent
func NewManufacturingOrderCreatedEvent(order *ManufacturingOrder) *ManufacturingOrderCreatedEvent {
	return &ManufacturingOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManufacturingOrderCreated, AggregateTypeManufacturingOrder, order.ID),
		OrderID:         order.ID,
		MoNumber:        order.MoNumber,
		ProductID:       order.ProductID,
		BOMID:           order.BOMID,
		Quantity:        order.Quantity.Amount(),
		Unit:            order.Quantity.Unit(),
		Priority:        order.Priority.String(),
		CreatedBy:       order.CreatedBy,
	}
}

// EventType returns the event type name
func (e *ManufacturingOrderCreatedEvent) EventType() string {
	return EventTypeManufacturingOrderCreated
}

// ManufacturingOrderConfirmedEvent is raised when an order is confirmed.
// This event signals that material reservations exist for the order.
type ManufacturingOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID   uuid.UUID       `json:"order_id"`
	MoNumber  string          `json:"mo_number"`
	ProductID uuid.UUID       `json:"product_id"`
	BOMID     uuid.UUID       `json:"bom_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
}

// NewManufacturingOrderConfirmedEvent creates a new ManufacturingOrderConfirmedEvent
func NewManufacturingOrderConfirmedEvent(order *ManufacturingOrder) *ManufacturingOrderConfirmedEvent {
	return &ManufacturingOrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManufacturingOrderConfirmed, AggregateTypeManufacturingOrder, order.ID),
		OrderID:         order.ID,
		MoNumber:        order.MoNumber,
		ProductID:       order.ProductID,
		BOMID:           order.BOMID,
		Quantity:        order.Quantity.Amount(),
		Unit:            order.Quantity.Unit(),
	}
}

// EventType returns the event type name
func (e *ManufacturingOrderConfirmedEvent) EventType() string {
	return EventTypeManufacturingOrderConfirmed
}

// ManufacturingOrderStartedEvent is raised when production begins
type ManufacturingOrderStartedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID  `json:"order_id"`
	MoNumber        string     `json:"mo_number"`
	ActualStartDate *time.Time `json:"actual_start_date,omitempty"`
}

// NewManufacturingOrderStartedEvent creates a new ManufacturingOrderStartedEvent
func NewManufacturingOrderStartedEvent(order *ManufacturingOrder) *ManufacturingOrderStartedEvent {
	return &ManufacturingOrderStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManufacturingOrderStarted, AggregateTypeManufacturingOrder, order.ID),
		OrderID:         order.ID,
		MoNumber:        order.MoNumber,
		ActualStartDate: order.ActualStartDate,
	}
}

// EventType returns the event type name
func (e *ManufacturingOrderStartedEvent) EventType() string {
	return EventTypeManufacturingOrderStarted
}

// ManufacturingOrderCompletedEvent is raised when production finishes
type ManufacturingOrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID       `json:"order_id"`
	MoNumber      string          `json:"mo_number"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Unit          string          `json:"unit"`
	ActualEndDate *time.Time      `json:"actual_end_date,omitempty"`
}

// NewManufacturingOrderCompletedEvent creates a new ManufacturingOrderCompletedEvent
func NewManufacturingOrderCompletedEvent(order *ManufacturingOrder) *ManufacturingOrderCompletedEvent {
	return &ManufacturingOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManufacturingOrderCompleted, AggregateTypeManufacturingOrder, order.ID),
		OrderID:         order.ID,
		MoNumber:        order.MoNumber,
		ProductID:       order.ProductID,
		Quantity:        order.Quantity.Amount(),
		Unit:            order.Quantity.Unit(),
		ActualEndDate:   order.ActualEndDate,
	}
}

// EventType returns the event type name
func (e *ManufacturingOrderCompletedEvent) EventType() string {
	return EventTypeManufacturingOrderCompleted
}

// ManufacturingOrderCancelledEvent is raised when an order is cancelled.
// If WasConfirmed is true, material reservations need to be released.
type ManufacturingOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	MoNumber     string    `json:"mo_number"`
	CancelReason string    `json:"cancel_reason"`
	WasConfirmed bool      `json:"was_confirmed"`
}

// NewManufacturingOrderCancelledEvent creates a new ManufacturingOrderCancelledEvent
func NewManufacturingOrderCancelledEvent(order *ManufacturingOrder, wasConfirmed bool) *ManufacturingOrderCancelledEvent {
	return &ManufacturingOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManufacturingOrderCancelled, AggregateTypeManufacturingOrder, order.ID),
		OrderID:         order.ID,
		MoNumber:        order.MoNumber,
		CancelReason:    order.CancelReason,
		WasConfirmed:    wasConfirmed,
	}
}

// EventType returns the event type name
func (e *ManufacturingOrderCancelledEvent) EventType() string {
	return EventTypeManufacturingOrderCancelled
}
