package manufacturing

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/shared/valueobject"
)

// Status represents the lifecycle status of a manufacturing order
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusConfirmed || target == StatusCancelled
	case StatusConfirmed:
		return target == StatusInProgress || target == StatusCancelled
	case StatusInProgress:
		return target == StatusCompleted || target == StatusCancelled
	case StatusCompleted, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for completed and cancelled
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Priority represents the scheduling priority of a manufacturing order
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid checks if the priority is a valid Priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// String returns the string representation of Priority
func (p Priority) String() string {
	return string(p)
}

const maxNotesLength = 1000
const maxMoNumberLength = 50

// ManufacturingOrder is the aggregate root for the manufacturing order
// lifecycle. Instances are immutable: every transition and mutation returns
// a new instance, so an order that passed validation can never be observed
// in an invalid intermediate state.
type ManufacturingOrder struct {
	shared.BaseAggregateRoot
	MoNumber         string
	ProductID        uuid.UUID
	BOMID            uuid.UUID
	Quantity         valueobject.Quantity
	Status           Status
	Priority         Priority
	PlannedStartDate *time.Time
	PlannedEndDate   *time.Time
	ActualStartDate  *time.Time
	ActualEndDate    *time.Time
	CreatedBy        uuid.UUID
	AssignedTo       *uuid.UUID
	Notes            string
	Metadata         map[string]string
	CancelReason     string
}

// NewManufacturingOrderParams carries the inputs for creating a new order
type NewManufacturingOrderParams struct {
	MoNumber         string
	ProductID        uuid.UUID
	BOMID            uuid.UUID
	Quantity         valueobject.Quantity
	Priority         Priority
	PlannedStartDate *time.Time
	PlannedEndDate   *time.Time
	CreatedBy        uuid.UUID
	AssignedTo       *uuid.UUID
	Notes            string
	Metadata         map[string]string
}

// NewManufacturingOrder creates a new manufacturing order in DRAFT status
func NewManufacturingOrder(params NewManufacturingOrderParams) (*ManufacturingOrder, error) {
	priority := params.Priority
	if priority == "" {
		priority = PriorityNormal
	}
	metadata := params.Metadata
	if metadata == nil {
		metadata = make(map[string]string)
	}

	order := &ManufacturingOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MoNumber:          params.MoNumber,
		ProductID:         params.ProductID,
		BOMID:             params.BOMID,
		Quantity:          params.Quantity,
		Status:            StatusDraft,
		Priority:          priority,
		PlannedStartDate:  params.PlannedStartDate,
		PlannedEndDate:    params.PlannedEndDate,
		CreatedBy:         params.CreatedBy,
		AssignedTo:        params.AssignedTo,
		Notes:             params.Notes,
		Metadata:          metadata,
	}
	if err := order.validate(); err != nil {
		return nil, err
	}

	order.AddDomainEvent(NewManufacturingOrderCreatedEvent(order))

	return order, nil
}

// ManufacturingOrderProps carries the full persisted state of an order
type ManufacturingOrderProps struct {
	ID               uuid.UUID
	MoNumber         string
	ProductID        uuid.UUID
	BOMID            uuid.UUID
	Quantity         valueobject.Quantity
	Status           Status
	Priority         Priority
	PlannedStartDate *time.Time
	PlannedEndDate   *time.Time
	ActualStartDate  *time.Time
	ActualEndDate    *time.Time
	CreatedBy        uuid.UUID
	AssignedTo       *uuid.UUID
	Notes            string
	Metadata         map[string]string
	CancelReason     string
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FromPersistence reconstructs an order from its persisted state.
// The same invariants are enforced as at creation time, so corrupted rows
// surface as errors instead of invalid aggregates.
func FromPersistence(props ManufacturingOrderProps) (*ManufacturingOrder, error) {
	if !props.Status.IsValid() {
		return nil, shared.NewValidationError("Invalid manufacturing order status: " + string(props.Status))
	}
	if !props.Priority.IsValid() {
		return nil, shared.NewValidationError("Invalid manufacturing order priority: " + string(props.Priority))
	}
	metadata := props.Metadata
	if metadata == nil {
		metadata = make(map[string]string)
	}

	order := &ManufacturingOrder{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        props.ID,
				CreatedAt: props.CreatedAt,
				UpdatedAt: props.UpdatedAt,
			},
			Version: props.Version,
		},
		MoNumber:         props.MoNumber,
		ProductID:        props.ProductID,
		BOMID:            props.BOMID,
		Quantity:         props.Quantity,
		Status:           props.Status,
		Priority:         props.Priority,
		PlannedStartDate: props.PlannedStartDate,
		PlannedEndDate:   props.PlannedEndDate,
		ActualStartDate:  props.ActualStartDate,
		ActualEndDate:    props.ActualEndDate,
		CreatedBy:        props.CreatedBy,
		AssignedTo:       props.AssignedTo,
		Notes:            props.Notes,
		Metadata:         metadata,
		CancelReason:     props.CancelReason,
	}
	if err := order.validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Props exports the order's full state for persistence
func (o *ManufacturingOrder) Props() ManufacturingOrderProps {
	metadata := make(map[string]string, len(o.Metadata))
	for k, v := range o.Metadata {
		metadata[k] = v
	}
	return ManufacturingOrderProps{
		ID:               o.ID,
		MoNumber:         o.MoNumber,
		ProductID:        o.ProductID,
		BOMID:            o.BOMID,
		Quantity:         o.Quantity,
		Status:           o.Status,
		Priority:         o.Priority,
		PlannedStartDate: o.PlannedStartDate,
		PlannedEndDate:   o.PlannedEndDate,
		ActualStartDate:  o.ActualStartDate,
		ActualEndDate:    o.ActualEndDate,
		CreatedBy:        o.CreatedBy,
		AssignedTo:       o.AssignedTo,
		Notes:            o.Notes,
		Metadata:         metadata,
		CancelReason:     o.CancelReason,
		Version:          o.Version,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// validate enforces every construction invariant
func (o *ManufacturingOrder) validate() error {
	if o.MoNumber == "" {
		return shared.NewValidationError("MO number cannot be empty")
	}
	if len(o.MoNumber) > maxMoNumberLength {
		return shared.NewValidationError("MO number cannot exceed 50 characters")
	}
	if o.ProductID == uuid.Nil {
		return shared.NewValidationError("Product ID cannot be empty")
	}
	if o.BOMID == uuid.Nil {
		return shared.NewValidationError("BOM ID cannot be empty")
	}
	if !o.Quantity.IsPositive() {
		return shared.NewValidationError("Quantity must be positive")
	}
	if o.CreatedBy == uuid.Nil {
		return shared.NewValidationError("Created-by user cannot be empty")
	}
	if len(o.Notes) > maxNotesLength {
		return shared.NewValidationError("Notes cannot exceed 1000 characters")
	}
	if o.PlannedStartDate != nil && o.PlannedEndDate != nil && !o.PlannedStartDate.Before(*o.PlannedEndDate) {
		return shared.NewValidationError("Planned start date must be before planned end date")
	}
	if o.ActualStartDate != nil && o.ActualEndDate != nil && !o.ActualStartDate.Before(*o.ActualEndDate) {
		return shared.NewValidationError("Actual start date must be before actual end date")
	}
	return nil
}

// clone returns a copy of the order with its own metadata map and an empty
// pending-event list. Transitions build on the copy, never the receiver.
func (o *ManufacturingOrder) clone() *ManufacturingOrder {
	next := *o
	next.ClearDomainEvents()
	next.Metadata = make(map[string]string, len(o.Metadata))
	for k, v := range o.Metadata {
		next.Metadata[k] = v
	}
	return &next
}

// CanBeConfirmed returns true if the order may transition to CONFIRMED
func (o *ManufacturingOrder) CanBeConfirmed() bool {
	return o.Status.CanTransitionTo(StatusConfirmed)
}

// CanBeStarted returns true if the order may transition to IN_PROGRESS
func (o *ManufacturingOrder) CanBeStarted() bool {
	return o.Status.CanTransitionTo(StatusInProgress)
}

// CanBeCompleted returns true if the order may transition to COMPLETED
func (o *ManufacturingOrder) CanBeCompleted() bool {
	return o.Status.CanTransitionTo(StatusCompleted)
}

// CanBeCancelled returns true if the order may transition to CANCELLED
func (o *ManufacturingOrder) CanBeCancelled() bool {
	return o.Status.CanTransitionTo(StatusCancelled)
}

// Confirm transitions the order from DRAFT to CONFIRMED and returns the new
// instance. Material availability is the application layer's concern; the
// transition table is checked before anything else.
func (o *ManufacturingOrder) Confirm() (*ManufacturingOrder, error) {
	if !o.Status.CanTransitionTo(StatusConfirmed) {
		return nil, shared.NewInvalidStatusTransitionError(AggregateTypeManufacturingOrder, o.Status.String(), StatusConfirmed.String())
	}

	next := o.clone()
	next.Status = StatusConfirmed
	next.UpdatedAt = time.Now()
	next.AddDomainEvent(NewManufacturingOrderConfirmedEvent(next))
	return next, nil
}

// Start transitions the order to IN_PROGRESS and returns the new instance.
// ActualStartDate is set only if not already present.
func (o *ManufacturingOrder) Start() (*ManufacturingOrder, error) {
	if !o.Status.CanTransitionTo(StatusInProgress) {
		return nil, shared.NewInvalidStatusTransitionError(AggregateTypeManufacturingOrder, o.Status.String(), StatusInProgress.String())
	}

	now := time.Now()
	next := o.clone()
	next.Status = StatusInProgress
	if next.ActualStartDate == nil {
		next.ActualStartDate = &now
	}
	next.UpdatedAt = now
	next.AddDomainEvent(NewManufacturingOrderStartedEvent(next))
	return next, nil
}

// Complete transitions the order to COMPLETED and returns the new instance
func (o *ManufacturingOrder) Complete() (*ManufacturingOrder, error) {
	if !o.Status.CanTransitionTo(StatusCompleted) {
		return nil, shared.NewInvalidStatusTransitionError(AggregateTypeManufacturingOrder, o.Status.String(), StatusCompleted.String())
	}

	now := time.Now()
	next := o.clone()
	next.Status = StatusCompleted
	if next.ActualEndDate == nil {
		next.ActualEndDate = &now
	}
	next.UpdatedAt = now
	next.AddDomainEvent(NewManufacturingOrderCompletedEvent(next))
	return next, nil
}

// Cancel transitions the order to CANCELLED and returns the new instance.
// If the order had been confirmed, its reservations must be released by the
// application layer; the event carries WasConfirmed for that purpose.
func (o *ManufacturingOrder) Cancel(reason string) (*ManufacturingOrder, error) {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return nil, shared.NewInvalidStatusTransitionError(AggregateTypeManufacturingOrder, o.Status.String(), StatusCancelled.String())
	}
	if reason == "" {
		return nil, shared.NewValidationError("Cancel reason is required")
	}

	wasConfirmed := o.Status == StatusConfirmed || o.Status == StatusInProgress
	next := o.clone()
	next.Status = StatusCancelled
	next.CancelReason = reason
	next.UpdatedAt = time.Now()
	next.AddDomainEvent(NewManufacturingOrderCancelledEvent(next, wasConfirmed))
	return next, nil
}

// AssignTo assigns the order to a user and returns the new instance
func (o *ManufacturingOrder) AssignTo(userID uuid.UUID) (*ManufacturingOrder, error) {
	if o.Status.IsTerminal() {
		return nil, shared.NewBusinessRuleViolationError("Cannot assign a completed or cancelled order")
	}
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("Assignee cannot be empty")
	}

	next := o.clone()
	next.AssignedTo = &userID
	next.UpdatedAt = time.Now()
	return next, nil
}

// UpdatePriority changes the order priority and returns the new instance
func (o *ManufacturingOrder) UpdatePriority(priority Priority) (*ManufacturingOrder, error) {
	if o.Status.IsTerminal() {
		return nil, shared.NewBusinessRuleViolationError("Cannot change priority of a completed or cancelled order")
	}
	if !priority.IsValid() {
		return nil, shared.NewValidationError("Invalid priority: " + string(priority))
	}

	next := o.clone()
	next.Priority = priority
	next.UpdatedAt = time.Now()
	return next, nil
}

// UpdatePlannedDates changes the planned window and returns the new instance
func (o *ManufacturingOrder) UpdatePlannedDates(start, end *time.Time) (*ManufacturingOrder, error) {
	if o.Status.IsTerminal() {
		return nil, shared.NewBusinessRuleViolationError("Cannot change planned dates of a completed or cancelled order")
	}
	if start != nil && end != nil && !start.Before(*end) {
		return nil, shared.NewValidationError("Planned start date must be before planned end date")
	}

	next := o.clone()
	next.PlannedStartDate = start
	next.PlannedEndDate = end
	next.UpdatedAt = time.Now()
	return next, nil
}

// UpdateNotes changes the free-form notes and returns the new instance
func (o *ManufacturingOrder) UpdateNotes(notes string) (*ManufacturingOrder, error) {
	if o.Status.IsTerminal() {
		return nil, shared.NewBusinessRuleViolationError("Cannot change notes of a completed or cancelled order")
	}
	if len(notes) > maxNotesLength {
		return nil, shared.NewValidationError("Notes cannot exceed 1000 characters")
	}

	next := o.clone()
	next.Notes = notes
	next.UpdatedAt = time.Now()
	return next, nil
}

// UpdateMetadata replaces the metadata map and returns the new instance
func (o *ManufacturingOrder) UpdateMetadata(metadata map[string]string) (*ManufacturingOrder, error) {
	if o.Status.IsTerminal() {
		return nil, shared.NewBusinessRuleViolationError("Cannot change metadata of a completed or cancelled order")
	}

	next := o.clone()
	next.Metadata = make(map[string]string, len(metadata))
	for k, v := range metadata {
		next.Metadata[k] = v
	}
	next.UpdatedAt = time.Now()
	return next, nil
}

// IsDraft returns true if the order is in draft status
func (o *ManufacturingOrder) IsDraft() bool {
	return o.Status == StatusDraft
}

// IsTerminal returns true if the order is completed or cancelled
func (o *ManufacturingOrder) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// IsOverdue returns true if the planned end date has passed and the order is
// neither completed nor cancelled. Used for reporting; never blocks an
// operation.
func (o *ManufacturingOrder) IsOverdue() bool {
	if o.PlannedEndDate == nil {
		return false
	}
	if o.Status.IsTerminal() {
		return false
	}
	return o.PlannedEndDate.Before(time.Now())
}
