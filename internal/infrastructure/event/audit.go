package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/mrp/backend/internal/domain/manufacturing"
	"github.com/mrp/backend/internal/domain/shared"
)

// AuditLogHandler writes a structured log line for every manufacturing order
// lifecycle event. It stands in for a real audit trail sink.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.logger.Info("manufacturing order event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns the manufacturing order lifecycle events
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		manufacturing.EventTypeManufacturingOrderCreated,
		manufacturing.EventTypeManufacturingOrderConfirmed,
		manufacturing.EventTypeManufacturingOrderStarted,
		manufacturing.EventTypeManufacturingOrderCompleted,
		manufacturing.EventTypeManufacturingOrderCancelled,
	}
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
