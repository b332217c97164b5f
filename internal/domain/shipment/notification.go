package shipment

import (
	"time"

	"github.com/google/uuid"
)

// Notification is published for every persisted shipment event.
type Notification struct {
	EventID    uuid.UUID   `json:"event_id"`
	ShipmentID uuid.UUID   `json:"shipment_id"`
	Type       EventType   `json:"type"`
	Source     EventSource `json:"source"`
	Reason     *string     `json:"reason,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	RecordedAt time.Time   `json:"recorded_at"`
}

func NewNotification(e Event) Notification {
	return Notification{
		EventID:    e.ID,
		ShipmentID: e.ShipmentID,
		Type:       e.Type,
		Source:     e.Source,
		Reason:     e.Reason,
		OccurredAt: e.OccurredAt,
		RecordedAt: e.CreatedAt,
	}
}

// Milestone reports whether the event type is worth notifying about.
func (n Notification) Milestone() bool {
	switch n.Type {
	case EventPickedUpForDelivery, EventDelayed, EventDelivered:
		return true
	}
	return false
}
