package mocks

import (
	"context"
	"sync"

	"github.com/example/shipment-tracking/internal/domain/merchant"
	"github.com/example/shipment-tracking/internal/domain/shipment"
	"github.com/example/shipment-tracking/internal/infrastructure/store"
	"github.com/google/uuid"
)

// MockStore records calls and delegates to an in-memory store unless an
// error has been injected for the operation.
type MockStore struct {
	mu    sync.Mutex
	inner *store.MemoryStore

	// For tracking calls in tests
	CreateMerchantCalls []CreateMerchantCall
	CreateShipmentCalls []shipment.CreateParams
	AppendEventCalls    []shipment.AppendParams
	DeleteMerchantCalls []uuid.UUID

	CreateMerchantErr error
	CreateShipmentErr error
	AppendEventErr    error
	ListErr           error
	GetErr            error
	DeleteErr         error
	PingErr           error
}

// CreateMerchantCall records parameters passed to CreateMerchant
type CreateMerchantCall struct {
	ID   uuid.UUID
	Name string
}

func NewMockStore() *MockStore {
	return &MockStore{inner: store.NewMemoryStore()}
}

// Inner exposes the backing store for seeding test data.
func (m *MockStore) Inner() *store.MemoryStore {
	return m.inner
}

func (m *MockStore) CreateMerchant(ctx context.Context, id uuid.UUID, name string) (*merchant.Merchant, error) {
	m.mu.Lock()
	m.CreateMerchantCalls = append(m.CreateMerchantCalls, CreateMerchantCall{ID: id, Name: name})
	err := m.CreateMerchantErr
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.inner.CreateMerchant(ctx, id, name)
}

func (m *MockStore) ListMerchants(ctx context.Context) ([]merchant.Merchant, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.inner.ListMerchants(ctx)
}

func (m *MockStore) GetMerchant(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.inner.GetMerchant(ctx, id)
}

func (m *MockStore) DeleteMerchant(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	m.DeleteMerchantCalls = append(m.DeleteMerchantCalls, id)
	err := m.DeleteErr
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.inner.DeleteMerchant(ctx, id)
}

func (m *MockStore) CreateShipment(ctx context.Context, p shipment.CreateParams) (*shipment.Shipment, *shipment.Event, error) {
	m.mu.Lock()
	m.CreateShipmentCalls = append(m.CreateShipmentCalls, p)
	err := m.CreateShipmentErr
	m.mu.Unlock()

	if err != nil {
		return nil, nil, err
	}
	return m.inner.CreateShipment(ctx, p)
}

func (m *MockStore) ListShipments(ctx context.Context) ([]shipment.Shipment, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.inner.ListShipments(ctx)
}

func (m *MockStore) GetShipment(ctx context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.inner.GetShipment(ctx, id)
}

func (m *MockStore) GetShipmentWithEvents(ctx context.Context, id uuid.UUID) (*shipment.WithEvents, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.inner.GetShipmentWithEvents(ctx, id)
}

func (m *MockStore) ListShipmentEvents(ctx context.Context, shipmentID uuid.UUID) ([]shipment.Event, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.inner.ListShipmentEvents(ctx, shipmentID)
}

func (m *MockStore) AppendShipmentEvent(ctx context.Context, p shipment.AppendParams) (*shipment.Event, error) {
	m.mu.Lock()
	m.AppendEventCalls = append(m.AppendEventCalls, p)
	err := m.AppendEventErr
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.inner.AppendShipmentEvent(ctx, p)
}

func (m *MockStore) Ping(ctx context.Context) error {
	if m.PingErr != nil {
		return m.PingErr
	}
	return m.inner.Ping(ctx)
}

var _ store.Store = (*MockStore)(nil)
