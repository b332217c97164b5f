package store

import (
	"context"
	"sync"
	"time"

	"github.com/example/shipment-tracking/internal/domain/merchant"
	"github.com/example/shipment-tracking/internal/domain/shipment"
	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. It keeps insertion order for list
// operations and applies the same cascade and ordering rules as Postgres.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	merchants     map[uuid.UUID]merchant.Merchant
	merchantOrder []uuid.UUID
	shipments     map[uuid.UUID]shipment.Shipment
	shipmentOrder []uuid.UUID
	events        map[uuid.UUID][]shipment.Event // shipmentID -> events
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:       func() time.Time { return time.Now().UTC() },
		merchants: make(map[uuid.UUID]merchant.Merchant),
		shipments: make(map[uuid.UUID]shipment.Shipment),
		events:    make(map[uuid.UUID][]shipment.Event),
	}
}

// WithClock replaces the clock used for created_at, updated_at and the
// occurred_at of "created" events.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) CreateMerchant(ctx context.Context, id uuid.UUID, name string) (*merchant.Merchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := merchant.Merchant{ID: id, Name: name, CreatedAt: s.now()}
	s.merchants[id] = m
	s.merchantOrder = append(s.merchantOrder, id)
	return &m, nil
}

func (s *MemoryStore) ListMerchants(ctx context.Context) ([]merchant.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]merchant.Merchant, 0, len(s.merchantOrder))
	for _, id := range s.merchantOrder {
		out = append(out, s.merchants[id])
	}
	return out, nil
}

func (s *MemoryStore) GetMerchant(ctx context.Context, id uuid.UUID) (*merchant.Merchant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.merchants[id]
	if !ok {
		return nil, merchant.ErrMerchantNotFound
	}
	return &m, nil
}

func (s *MemoryStore) DeleteMerchant(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.merchants[id]; !ok {
		return merchant.ErrMerchantNotFound
	}
	delete(s.merchants, id)
	s.merchantOrder = without(s.merchantOrder, id)

	kept := s.shipmentOrder[:0]
	for _, sid := range s.shipmentOrder {
		if s.shipments[sid].MerchantID == id {
			delete(s.shipments, sid)
			delete(s.events, sid)
			continue
		}
		kept = append(kept, sid)
	}
	s.shipmentOrder = kept
	return nil
}

func (s *MemoryStore) CreateShipment(ctx context.Context, p shipment.CreateParams) (*shipment.Shipment, *shipment.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.merchants[p.MerchantID]; !ok {
		return nil, nil, merchant.ErrMerchantNotFound
	}

	now := s.now()
	sh := shipment.Shipment{
		ID:         p.ID,
		UserID:     p.UserID,
		MerchantID: p.MerchantID,
		Name:       p.Name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	ev := shipment.Event{
		ID:         p.EventID,
		ShipmentID: p.ID,
		Type:       shipment.EventCreated,
		Source:     shipment.SourceSystem,
		OccurredAt: now,
		CreatedAt:  now,
	}

	s.shipments[sh.ID] = sh
	s.shipmentOrder = append(s.shipmentOrder, sh.ID)
	s.events[sh.ID] = []shipment.Event{ev}
	return &sh, &ev, nil
}

func (s *MemoryStore) ListShipments(ctx context.Context) ([]shipment.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]shipment.Shipment, 0, len(s.shipmentOrder))
	for _, id := range s.shipmentOrder {
		out = append(out, s.shipments[id])
	}
	return out, nil
}

func (s *MemoryStore) GetShipment(ctx context.Context, id uuid.UUID) (*shipment.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.shipments[id]
	if !ok {
		return nil, shipment.ErrShipmentNotFound
	}
	return &sh, nil
}

func (s *MemoryStore) GetShipmentWithEvents(ctx context.Context, id uuid.UUID) (*shipment.WithEvents, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.shipments[id]
	if !ok {
		return nil, shipment.ErrShipmentNotFound
	}
	return &shipment.WithEvents{Shipment: sh, Events: s.sortedEvents(id)}, nil
}

func (s *MemoryStore) ListShipmentEvents(ctx context.Context, shipmentID uuid.UUID) ([]shipment.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.shipments[shipmentID]; !ok {
		return nil, shipment.ErrShipmentNotFound
	}
	return s.sortedEvents(shipmentID), nil
}

func (s *MemoryStore) AppendShipmentEvent(ctx context.Context, p shipment.AppendParams) (*shipment.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shipments[p.ShipmentID]
	if !ok {
		return nil, shipment.ErrShipmentNotFound
	}

	now := s.now()
	ev := shipment.Event{
		ID:         p.ID,
		ShipmentID: p.ShipmentID,
		Type:       p.Type,
		Source:     p.Source,
		Reason:     p.Reason,
		OccurredAt: p.OccurredAt,
		CreatedAt:  now,
	}
	s.events[sh.ID] = append(s.events[sh.ID], ev)

	sh.UpdatedAt = now
	s.shipments[sh.ID] = sh
	return &ev, nil
}

// sortedEvents returns a sorted copy; callers must hold the lock.
func (s *MemoryStore) sortedEvents(shipmentID uuid.UUID) []shipment.Event {
	events := make([]shipment.Event, len(s.events[shipmentID]))
	copy(events, s.events[shipmentID])
	shipment.SortEvents(events)
	return events
}

func without(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
