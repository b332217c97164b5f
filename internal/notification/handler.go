package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/shipment-tracking/internal/domain/shipment"
	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/example/shipment-tracking/internal/platform/metrics"
)

// Handler processes shipment notifications from Kafka and reports tracking
// milestones.
type Handler struct {
	log *logger.Logger
}

func NewHandler(log *logger.Logger) *Handler {
	return &Handler{log: log}
}

// HandleEvent processes a single message. Malformed payloads return an
// error so the consumer logs them.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var n shipment.Notification
	if err := json.Unmarshal(value, &n); err != nil {
		return fmt.Errorf("decode shipment notification key=%s: %w", key, err)
	}

	metrics.NotificationsHandledTotal.WithLabelValues(string(n.Type)).Inc()

	if !n.Milestone() {
		h.log.Debug("shipment event", "shipment_id", n.ShipmentID, "type", n.Type, "source", n.Source)
		return nil
	}

	fields := []interface{}{
		"shipment_id", n.ShipmentID,
		"event_id", n.EventID,
		"source", n.Source,
		"occurred_at", n.OccurredAt,
	}
	if n.Reason != nil {
		fields = append(fields, "reason", *n.Reason)
	}

	switch n.Type {
	case shipment.EventDelivered:
		h.log.Info("shipment delivered", fields...)
	case shipment.EventPickedUpForDelivery:
		h.log.Info("shipment out for delivery", fields...)
	case shipment.EventDelayed:
		h.log.Warn("shipment delayed", fields...)
	}
	return nil
}
