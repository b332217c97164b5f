package store

import (
	"context"

	"github.com/example/shipment-tracking/internal/domain/merchant"
	"github.com/example/shipment-tracking/internal/domain/shipment"
	"github.com/google/uuid"
)

// Store persists merchants, shipments and shipment events.
//
// Implementations return merchant.ErrMerchantNotFound and
// shipment.ErrShipmentNotFound for missing parents, list events ascending by
// occurred_at, and write a shipment together with its "created" event or
// not at all.
type Store interface {
	CreateMerchant(ctx context.Context, id uuid.UUID, name string) (*merchant.Merchant, error)
	ListMerchants(ctx context.Context) ([]merchant.Merchant, error)
	GetMerchant(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error)
	// DeleteMerchant removes the merchant, its shipments and their events.
	DeleteMerchant(ctx context.Context, id uuid.UUID) error

	CreateShipment(ctx context.Context, p shipment.CreateParams) (*shipment.Shipment, *shipment.Event, error)
	ListShipments(ctx context.Context) ([]shipment.Shipment, error)
	GetShipment(ctx context.Context, id uuid.UUID) (*shipment.Shipment, error)
	GetShipmentWithEvents(ctx context.Context, id uuid.UUID) (*shipment.WithEvents, error)
	ListShipmentEvents(ctx context.Context, shipmentID uuid.UUID) ([]shipment.Event, error)
	AppendShipmentEvent(ctx context.Context, p shipment.AppendParams) (*shipment.Event, error)

	Ping(ctx context.Context) error
}
