package command

import (
	"context"

	"github.com/example/shipment-tracking/internal/domain/merchant"
	"github.com/example/shipment-tracking/internal/domain/shipment"
	"github.com/example/shipment-tracking/internal/infrastructure/store"
	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/example/shipment-tracking/internal/platform/metrics"
	"github.com/google/uuid"
)

// Publisher sends shipment notifications downstream. The kafka Producer
// implements it.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Handler struct {
	store     store.Store
	publisher Publisher
	userID    uuid.UUID
	log       *logger.Logger
}

// NewHandler builds the write side. publisher may be nil to disable
// notifications.
func NewHandler(s store.Store, publisher Publisher, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		store:     s,
		publisher: publisher,
		userID:    shipment.SystemUserID,
		log:       log,
	}
}

// WithOwner overrides the user recorded as owner of new shipments.
func (h *Handler) WithOwner(userID uuid.UUID) *Handler {
	h.userID = userID
	return h
}

// CreateMerchant creates a merchant. Names need not be unique.
func (h *Handler) CreateMerchant(ctx context.Context, cmd CreateMerchant) (*merchant.Merchant, error) {
	if err := merchant.ValidateName(cmd.Name); err != nil {
		return nil, err
	}
	return h.store.CreateMerchant(ctx, uuid.New(), cmd.Name)
}

// DeleteMerchant removes a merchant with all of its shipments and events.
func (h *Handler) DeleteMerchant(ctx context.Context, cmd DeleteMerchant) error {
	if err := h.store.DeleteMerchant(ctx, cmd.MerchantID); err != nil {
		return err
	}
	h.log.Info("merchant deleted", "merchant_id", cmd.MerchantID)
	return nil
}

// CreateShipment creates a shipment together with its "created" event.
func (h *Handler) CreateShipment(ctx context.Context, cmd CreateShipment) (*shipment.Shipment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := shipment.ValidateName(cmd.Name); err != nil {
		return nil, err
	}

	sh, created, err := h.store.CreateShipment(ctx, shipment.CreateParams{
		ID:         uuid.New(),
		UserID:     h.userID,
		MerchantID: cmd.MerchantID,
		Name:       cmd.Name,
		EventID:    uuid.New(),
	})
	if err != nil {
		return nil, err
	}

	h.recorded(ctx, *created)
	return sh, nil
}

// AppendShipmentEvent records a status update. Any type may follow any
// other and occurred_at is taken as given.
func (h *Handler) AppendShipmentEvent(ctx context.Context, cmd AppendShipmentEvent) (*shipment.Event, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	ev, err := h.store.AppendShipmentEvent(ctx, shipment.AppendParams{
		ID:         uuid.New(),
		ShipmentID: cmd.ShipmentID,
		Type:       cmd.Type,
		Source:     cmd.Source,
		Reason:     shipment.NormalizeReason(cmd.Reason),
		OccurredAt: cmd.OccurredAt,
	})
	if err != nil {
		return nil, err
	}

	h.recorded(ctx, *ev)
	return ev, nil
}

// recorded runs after commit; a failed publish is logged, not returned.
// Production wires an AsyncPublisher so this never waits on the broker.
func (h *Handler) recorded(ctx context.Context, ev shipment.Event) {
	metrics.ShipmentEventsRecordedTotal.WithLabelValues(string(ev.Type), string(ev.Source)).Inc()

	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, ev.ShipmentID.String(), shipment.NewNotification(ev)); err != nil {
		metrics.NotificationPublishFailuresTotal.Inc()
		h.log.Warn("publish shipment notification failed",
			"shipment_id", ev.ShipmentID, "event_id", ev.ID, "type", ev.Type, "error", err)
	}
}
