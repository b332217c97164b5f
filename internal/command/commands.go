package command

import (
	"time"

	"github.com/example/shipment-tracking/internal/domain"
	"github.com/example/shipment-tracking/internal/domain/shipment"
	"github.com/google/uuid"
)

// Merchant Commands
type CreateMerchant struct {
	Name string `json:"name"`
}

type DeleteMerchant struct {
	MerchantID uuid.UUID `json:"-"`
}

// Shipment Commands
type CreateShipment struct {
	Name       string    `json:"name"`
	MerchantID uuid.UUID `json:"merchant_id"`
}

func (c CreateShipment) Validate() error {
	if c.MerchantID == uuid.Nil {
		return domain.Invalid("merchant_id", "is required")
	}
	return nil
}

type AppendShipmentEvent struct {
	ShipmentID uuid.UUID            `json:"-"`
	Type       shipment.EventType   `json:"type"`
	Source     shipment.EventSource `json:"source"`
	OccurredAt time.Time            `json:"occurred_at"`
	Reason     *string              `json:"reason"`
}

func (c AppendShipmentEvent) Validate() error {
	if c.Type == "" {
		return domain.Invalid("type", "is required")
	}
	if !c.Type.Valid() {
		return domain.Invalid("type", "unknown event type "+string(c.Type))
	}
	if c.Source == "" {
		return domain.Invalid("source", "is required")
	}
	if !c.Source.Valid() {
		return domain.Invalid("source", "unknown event source "+string(c.Source))
	}
	if c.OccurredAt.IsZero() {
		return domain.Invalid("occurred_at", "is required")
	}
	return nil
}
