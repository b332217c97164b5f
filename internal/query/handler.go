package query

import (
	"context"

	"github.com/example/shipment-tracking/internal/domain/merchant"
	"github.com/example/shipment-tracking/internal/domain/shipment"
	"github.com/example/shipment-tracking/internal/infrastructure/store"
	"github.com/google/uuid"
)

// Handler serves the read side. Shallow and full shipment reads are
// separate calls; nothing is loaded implicitly.
type Handler struct {
	store store.Store
}

func NewHandler(s store.Store) *Handler {
	return &Handler{store: s}
}

// Merchants
func (h *Handler) ListMerchants(ctx context.Context) ([]merchant.Merchant, error) {
	return h.store.ListMerchants(ctx)
}

func (h *Handler) GetMerchant(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	return h.store.GetMerchant(ctx, id)
}

// Shipments
func (h *Handler) ListShipments(ctx context.Context) ([]shipment.Shipment, error) {
	return h.store.ListShipments(ctx)
}

func (h *Handler) GetShipment(ctx context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	return h.store.GetShipment(ctx, id)
}

// GetShipmentWithEvents returns the shipment and its timeline, oldest first.
func (h *Handler) GetShipmentWithEvents(ctx context.Context, id uuid.UUID) (*shipment.WithEvents, error) {
	return h.store.GetShipmentWithEvents(ctx, id)
}

func (h *Handler) ListShipmentEvents(ctx context.Context, shipmentID uuid.UUID) ([]shipment.Event, error) {
	return h.store.ListShipmentEvents(ctx, shipmentID)
}

// Ready reports whether the backing store answers.
func (h *Handler) Ready(ctx context.Context) error {
	return h.store.Ping(ctx)
}
