package shipment

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/shipment-tracking/internal/domain"
	"github.com/google/uuid"
)

// ErrShipmentNotFound is returned when a shipment id does not resolve.
var ErrShipmentNotFound = fmt.Errorf("shipment %w", domain.ErrNotFound)

// SystemUserID owns every shipment until real user accounts exist.
// TODO: replace with the authenticated caller once the API has user auth.
var SystemUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// Shipment is a trackable parcel owned by a merchant. It always has at
// least one Event: the "created" event written with it.
type Shipment struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	MerchantID uuid.UUID `json:"merchant_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Event is one timestamped status update. OccurredAt is supplied by the
// caller and is not checked against earlier events.
type Event struct {
	ID         uuid.UUID   `json:"id"`
	ShipmentID uuid.UUID   `json:"shipment_id"`
	Type       EventType   `json:"type"`
	Source     EventSource `json:"source"`
	Reason     *string     `json:"reason"`
	OccurredAt time.Time   `json:"occurred_at"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  *time.Time  `json:"updated_at"`
}

// WithEvents is a shipment plus its full timeline, ascending by OccurredAt.
type WithEvents struct {
	Shipment
	Events []Event `json:"events"`
}

// CreateParams describes a new shipment. UserID is passed explicitly.
type CreateParams struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	MerchantID uuid.UUID
	Name       string
	EventID    uuid.UUID
}

// AppendParams describes an event appended to an existing shipment.
type AppendParams struct {
	ID         uuid.UUID
	ShipmentID uuid.UUID
	Type       EventType
	Source     EventSource
	Reason     *string
	OccurredAt time.Time
}

// ValidateName rejects empty or whitespace-only names. The name is stored as sent.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return domain.Invalid("name", "is required")
	}
	return nil
}

// NormalizeReason trims reason and maps blank values to nil.
func NormalizeReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	r := strings.TrimSpace(*reason)
	if r == "" {
		return nil
	}
	return &r
}

// SortEvents orders events by OccurredAt, then CreatedAt, then ID.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.Before(b.OccurredAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
