package manufacturing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrp/backend/internal/domain/manufacturing"
	"github.com/mrp/backend/internal/domain/shared"
	"github.com/mrp/backend/internal/domain/shared/valueobject"
)

// CreateManufacturingOrderRequest carries the data for creating an order
type CreateManufacturingOrderRequest struct {
	ProductID        uuid.UUID         `json:"product_id" binding:"required"`
	BOMID            uuid.UUID         `json:"bom_id" binding:"required"`
	Quantity         decimal.Decimal   `json:"quantity" binding:"required"`
	Priority         string            `json:"priority,omitempty" binding:"omitempty,mo_priority"`
	PlannedStartDate *time.Time        `json:"planned_start_date,omitempty"`
	PlannedEndDate   *time.Time        `json:"planned_end_date,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedBy        uuid.UUID         `json:"created_by" binding:"required"`
}

// ConfirmManufacturingOrderRequest carries the data for confirming an order
type ConfirmManufacturingOrderRequest struct {
	ConfirmedBy uuid.UUID `json:"confirmed_by" binding:"required"`
}

// CancelManufacturingOrderRequest carries the data for cancelling an order
type CancelManufacturingOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AssignManufacturingOrderRequest carries the assignee for an order
type AssignManufacturingOrderRequest struct {
	AssigneeID uuid.UUID `json:"assignee_id" binding:"required"`
}

// UpdatePriorityRequest carries a priority change
type UpdatePriorityRequest struct {
	Priority string `json:"priority" binding:"required,mo_priority"`
}

// UpdatePlannedDatesRequest carries a planned-window change
type UpdatePlannedDatesRequest struct {
	PlannedStartDate *time.Time `json:"planned_start_date,omitempty"`
	PlannedEndDate   *time.Time `json:"planned_end_date,omitempty"`
}

// UpdateNotesRequest carries a notes change
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

// ListManufacturingOrdersRequest carries list filters
type ListManufacturingOrdersRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// ManufacturingOrderResponse is the order representation returned to clients
type ManufacturingOrderResponse struct {
	ID               uuid.UUID         `json:"id"`
	MoNumber         string            `json:"mo_number"`
	ProductID        uuid.UUID         `json:"product_id"`
	BOMID            uuid.UUID         `json:"bom_id"`
	Quantity         decimal.Decimal   `json:"quantity"`
	Unit             string            `json:"unit"`
	Status           string            `json:"status"`
	Priority         string            `json:"priority"`
	PlannedStartDate *time.Time        `json:"planned_start_date,omitempty"`
	PlannedEndDate   *time.Time        `json:"planned_end_date,omitempty"`
	ActualStartDate  *time.Time        `json:"actual_start_date,omitempty"`
	ActualEndDate    *time.Time        `json:"actual_end_date,omitempty"`
	AssignedTo       *uuid.UUID        `json:"assigned_to,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	CancelReason     string            `json:"cancel_reason,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	IsOverdue        bool              `json:"is_overdue"`
	CreatedBy        uuid.UUID         `json:"created_by"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	Version          int               `json:"version"`
}

// MaterialReservationResponse is the reservation representation returned to clients
type MaterialReservationResponse struct {
	ID                   uuid.UUID       `json:"id"`
	ManufacturingOrderID uuid.UUID       `json:"manufacturing_order_id"`
	ComponentID          uuid.UUID       `json:"component_id"`
	WarehouseID          uuid.UUID       `json:"warehouse_id"`
	Quantity             decimal.Decimal `json:"quantity"`
	Unit                 string          `json:"unit"`
	Status               string          `json:"status"`
	ReservedBy           uuid.UUID       `json:"reserved_by"`
	ReleasedAt           *time.Time      `json:"released_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// ConfirmManufacturingOrderResponse returns the confirmed order together with
// the reservations created for it and the reserved material valued at
// component standard costs
type ConfirmManufacturingOrderResponse struct {
	Order                 *ManufacturingOrderResponse   `json:"order"`
	Reservations          []MaterialReservationResponse `json:"reservations"`
	EstimatedMaterialCost valueobject.Money             `json:"estimated_material_cost"`
}

// StatusSummaryResponse is a count of orders per status
type StatusSummaryResponse struct {
	Draft      int64 `json:"draft"`
	Confirmed  int64 `json:"confirmed"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
	Total      int64 `json:"total"`
}

func toOrderResponse(order *manufacturing.ManufacturingOrder) *ManufacturingOrderResponse {
	return &ManufacturingOrderResponse{
		ID:               order.ID,
		MoNumber:         order.MoNumber,
		ProductID:        order.ProductID,
		BOMID:            order.BOMID,
		Quantity:         order.Quantity.Amount(),
		Unit:             order.Quantity.Unit(),
		Status:           order.Status.String(),
		Priority:         order.Priority.String(),
		PlannedStartDate: order.PlannedStartDate,
		PlannedEndDate:   order.PlannedEndDate,
		ActualStartDate:  order.ActualStartDate,
		ActualEndDate:    order.ActualEndDate,
		AssignedTo:       order.AssignedTo,
		Notes:            order.Notes,
		CancelReason:     order.CancelReason,
		Metadata:         order.Metadata,
		IsOverdue:        order.IsOverdue(),
		CreatedBy:        order.CreatedBy,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
		Version:          order.Version,
	}
}

func toReservationResponse(r *manufacturing.MaterialReservation) MaterialReservationResponse {
	return MaterialReservationResponse{
		ID:                   r.ID,
		ManufacturingOrderID: r.ManufacturingOrderID,
		ComponentID:          r.ComponentID,
		WarehouseID:          r.WarehouseID,
		Quantity:             r.Quantity,
		Unit:                 r.Unit,
		Status:               string(r.Status),
		ReservedBy:           r.ReservedBy,
		ReleasedAt:           r.ReleasedAt,
		CreatedAt:            r.CreatedAt,
	}
}

func (r ListManufacturingOrdersRequest) toFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if r.Page > 0 {
		filter.Page = r.Page
	}
	if r.PageSize > 0 && r.PageSize <= 100 {
		filter.PageSize = r.PageSize
	}
	if r.OrderBy != "" {
		filter.OrderBy = r.OrderBy
	}
	if r.OrderDir == "asc" || r.OrderDir == "desc" {
		filter.OrderDir = r.OrderDir
	}
	filter.Search = r.Search
	if r.Status != "" {
		filter.Filters["status"] = r.Status
	}
	if r.Priority != "" {
		filter.Filters["priority"] = r.Priority
	}
	return filter
}
