package handler

import (
	"github.com/gin-gonic/gin"

	appmfg "github.com/mrp/backend/internal/application/manufacturing"
)

// ManufacturingOrderHandler handles manufacturing order HTTP requests
type ManufacturingOrderHandler struct {
	BaseHandler
	service *appmfg.ManufacturingOrderService
}

// NewManufacturingOrderHandler creates a new ManufacturingOrderHandler
func NewManufacturingOrderHandler(service *appmfg.ManufacturingOrderService) *ManufacturingOrderHandler {
	return &ManufacturingOrderHandler{service: service}
}

// RegisterRoutes registers the manufacturing order routes
func (h *ManufacturingOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	orders := router.Group("/manufacturing-orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/summary", h.StatusSummary)
		orders.GET("/by-number/:moNumber", h.GetByNumber)
		orders.GET("/:id", h.Get)
		orders.DELETE("/:id", h.Delete)
		orders.POST("/:id/confirm", h.Confirm)
		orders.POST("/:id/start", h.Start)
		orders.POST("/:id/complete", h.Complete)
		orders.POST("/:id/cancel", h.Cancel)
		orders.GET("/:id/reservations", h.Reservations)
		orders.PATCH("/:id/assignee", h.Assign)
		orders.PATCH("/:id/priority", h.UpdatePriority)
		orders.PATCH("/:id/planned-dates", h.UpdatePlannedDates)
		orders.PATCH("/:id/notes", h.UpdateNotes)
	}
}

// Create creates a new manufacturing order in DRAFT status
func (h *ManufacturingOrderHandler) Create(c *gin.Context) {
	var req appmfg.CreateManufacturingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.CreateManufacturingOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns a page of manufacturing orders
func (h *ManufacturingOrderHandler) List(c *gin.Context) {
	var req appmfg.ListManufacturingOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	page, err := h.service.ListManufacturingOrders(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// Get returns a single manufacturing order
func (h *ManufacturingOrderHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.service.GetManufacturingOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber returns a single manufacturing order by MO number
func (h *ManufacturingOrderHandler) GetByNumber(c *gin.Context) {
	resp, err := h.service.GetManufacturingOrderByNumber(c.Request.Context(), c.Param("moNumber"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Confirm confirms a draft order, reserving materials
func (h *ManufacturingOrderHandler) Confirm(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	var req appmfg.ConfirmManufacturingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.ConfirmManufacturingOrder(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Start moves a confirmed order into production
func (h *ManufacturingOrderHandler) Start(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.service.StartManufacturingOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Complete finishes production for an in-progress order
func (h *ManufacturingOrderHandler) Complete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.service.CompleteManufacturingOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel cancels an order and releases its reservations
func (h *ManufacturingOrderHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	var req appmfg.CancelManufacturingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.CancelManufacturingOrder(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reservations returns the active material reservations held by an order
func (h *ManufacturingOrderHandler) Reservations(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.service.GetOrderReservations(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Assign assigns the order to a user
func (h *ManufacturingOrderHandler) Assign(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	var req appmfg.AssignManufacturingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.AssignManufacturingOrder(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdatePriority changes the order priority
func (h *ManufacturingOrderHandler) UpdatePriority(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	var req appmfg.UpdatePriorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.UpdatePriority(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdatePlannedDates changes the planned production window
func (h *ManufacturingOrderHandler) UpdatePlannedDates(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	var req appmfg.UpdatePlannedDatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.UpdatePlannedDates(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateNotes changes the order notes
func (h *ManufacturingOrderHandler) UpdateNotes(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	var req appmfg.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.service.UpdateNotes(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes a draft order
func (h *ManufacturingOrderHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	if err := h.service.DeleteManufacturingOrder(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// StatusSummary returns order counts per status
func (h *ManufacturingOrderHandler) StatusSummary(c *gin.Context) {
	resp, err := h.service.GetStatusSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
