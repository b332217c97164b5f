package store

import (
	"context"
	"testing"
	"time"

	"github.com/example/shipment-tracking/internal/domain/merchant"
	"github.com/example/shipment-tracking/internal/domain/shipment"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every Store must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("MerchantRoundTrip", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		m, err := s.CreateMerchant(ctx, uuid.New(), "Acme")
		require.NoError(t, err)
		assert.Equal(t, "Acme", m.Name)
		assert.False(t, m.CreatedAt.IsZero())

		got, err := s.GetMerchant(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
		assert.Equal(t, "Acme", got.Name)

		// names are not unique
		other, err := s.CreateMerchant(ctx, uuid.New(), "Acme")
		require.NoError(t, err)
		assert.NotEqual(t, m.ID, other.ID)

		all, err := s.ListMerchants(ctx)
		require.NoError(t, err)
		ids := merchantIDs(all)
		assert.Contains(t, ids, m.ID)
		assert.Contains(t, ids, other.ID)
	})

	t.Run("GetMerchantNotFound", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetMerchant(context.Background(), uuid.New())
		assert.ErrorIs(t, err, merchant.ErrMerchantNotFound)
	})

	t.Run("CreateShipmentWritesCreatedEvent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		m := mustMerchant(t, s)

		sh, ev, err := s.CreateShipment(ctx, shipment.CreateParams{
			ID:         uuid.New(),
			UserID:     shipment.SystemUserID,
			MerchantID: m.ID,
			Name:       "Box1",
			EventID:    uuid.New(),
		})
		require.NoError(t, err)
		assert.Equal(t, shipment.SystemUserID, sh.UserID)
		assert.Equal(t, m.ID, sh.MerchantID)
		assert.Equal(t, shipment.EventCreated, ev.Type)
		assert.Equal(t, shipment.SourceSystem, ev.Source)
		assert.Equal(t, sh.ID, ev.ShipmentID)

		full, err := s.GetShipmentWithEvents(ctx, sh.ID)
		require.NoError(t, err)
		require.Len(t, full.Events, 1)
		assert.Equal(t, ev.ID, full.Events[0].ID)
		assert.Equal(t, shipment.EventCreated, full.Events[0].Type)
		assert.Equal(t, shipment.SourceSystem, full.Events[0].Source)
		assert.Nil(t, full.Events[0].Reason)
	})

	t.Run("CreateShipmentUnknownMerchantPersistsNothing", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		shipmentID := uuid.New()

		_, _, err := s.CreateShipment(ctx, shipment.CreateParams{
			ID:         shipmentID,
			UserID:     shipment.SystemUserID,
			MerchantID: uuid.New(),
			Name:       "Orphan",
			EventID:    uuid.New(),
		})
		require.ErrorIs(t, err, merchant.ErrMerchantNotFound)

		_, err = s.GetShipment(ctx, shipmentID)
		assert.ErrorIs(t, err, shipment.ErrShipmentNotFound)
		_, err = s.ListShipmentEvents(ctx, shipmentID)
		assert.ErrorIs(t, err, shipment.ErrShipmentNotFound)

		all, err := s.ListShipments(ctx)
		require.NoError(t, err)
		assert.NotContains(t, shipmentIDs(all), shipmentID)
	})

	t.Run("EventsSortedByOccurredAt", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		sh := mustShipment(t, s, mustMerchant(t, s).ID)

		now := time.Now().UTC()
		inserted := []struct {
			typ shipment.EventType
			at  time.Time
		}{
			{shipment.EventDelivered, now.Add(48 * time.Hour)},
			{shipment.EventPackaged, now.Add(-2 * time.Hour)},
			{shipment.EventInTransit, now.Add(24 * time.Hour)},
			{shipment.EventDelayed, now.Add(30 * time.Hour)},
		}
		for _, in := range inserted {
			_, err := s.AppendShipmentEvent(ctx, shipment.AppendParams{
				ID:         uuid.New(),
				ShipmentID: sh.ID,
				Type:       in.typ,
				Source:     shipment.SourceCarrier,
				OccurredAt: in.at,
			})
			require.NoError(t, err)
		}

		events, err := s.ListShipmentEvents(ctx, sh.ID)
		require.NoError(t, err)
		require.Len(t, events, len(inserted)+1)

		var types []shipment.EventType
		for i, e := range events {
			types = append(types, e.Type)
			if i > 0 {
				assert.False(t, e.OccurredAt.Before(events[i-1].OccurredAt), "events out of order at %d", i)
			}
		}
		assert.Equal(t, []shipment.EventType{
			shipment.EventPackaged,
			shipment.EventCreated,
			shipment.EventInTransit,
			shipment.EventDelayed,
			shipment.EventDelivered,
		}, types)

		full, err := s.GetShipmentWithEvents(ctx, sh.ID)
		require.NoError(t, err)
		assert.Equal(t, events, full.Events)
	})

	t.Run("AppendNEventsListsNPlusOne", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		sh := mustShipment(t, s, mustMerchant(t, s).ID)

		const n = 5
		reason := "address unclear"
		for i := 0; i < n; i++ {
			// any type may follow any type, including repeats
			ev, err := s.AppendShipmentEvent(ctx, shipment.AppendParams{
				ID:         uuid.New(),
				ShipmentID: sh.ID,
				Type:       shipment.EventDelivered,
				Source:     shipment.SourceManual,
				Reason:     &reason,
				OccurredAt: time.Now().UTC().Add(time.Duration(i) * time.Minute),
			})
			require.NoError(t, err)
			require.NotNil(t, ev.Reason)
			assert.Equal(t, reason, *ev.Reason)
		}

		events, err := s.ListShipmentEvents(ctx, sh.ID)
		require.NoError(t, err)
		assert.Len(t, events, n+1)

		touched, err := s.GetShipment(ctx, sh.ID)
		require.NoError(t, err)
		assert.False(t, touched.UpdatedAt.Before(sh.UpdatedAt))
	})

	t.Run("AppendToMissingShipment", func(t *testing.T) {
		s := newStore(t)

		_, err := s.AppendShipmentEvent(context.Background(), shipment.AppendParams{
			ID:         uuid.New(),
			ShipmentID: uuid.New(),
			Type:       shipment.EventPackaged,
			Source:     shipment.SourceCarrier,
			OccurredAt: time.Now(),
		})
		assert.ErrorIs(t, err, shipment.ErrShipmentNotFound)
	})

	t.Run("DeleteMerchantCascades", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		m := mustMerchant(t, s)
		keep := mustMerchant(t, s)
		sh1 := mustShipment(t, s, m.ID)
		sh2 := mustShipment(t, s, m.ID)
		kept := mustShipment(t, s, keep.ID)

		require.NoError(t, s.DeleteMerchant(ctx, m.ID))

		_, err := s.GetMerchant(ctx, m.ID)
		assert.ErrorIs(t, err, merchant.ErrMerchantNotFound)
		for _, id := range []uuid.UUID{sh1.ID, sh2.ID} {
			_, err = s.GetShipment(ctx, id)
			assert.ErrorIs(t, err, shipment.ErrShipmentNotFound)
			_, err = s.GetShipmentWithEvents(ctx, id)
			assert.ErrorIs(t, err, shipment.ErrShipmentNotFound)
			_, err = s.ListShipmentEvents(ctx, id)
			assert.ErrorIs(t, err, shipment.ErrShipmentNotFound)
		}

		_, err = s.GetShipment(ctx, kept.ID)
		assert.NoError(t, err)

		assert.ErrorIs(t, s.DeleteMerchant(ctx, m.ID), merchant.ErrMerchantNotFound)
	})
}

func mustMerchant(t *testing.T, s Store) *merchant.Merchant {
	t.Helper()
	m, err := s.CreateMerchant(context.Background(), uuid.New(), "merchant-"+uuid.NewString()[:8])
	require.NoError(t, err)
	return m
}

func mustShipment(t *testing.T, s Store, merchantID uuid.UUID) *shipment.Shipment {
	t.Helper()
	sh, _, err := s.CreateShipment(context.Background(), shipment.CreateParams{
		ID:         uuid.New(),
		UserID:     shipment.SystemUserID,
		MerchantID: merchantID,
		Name:       "parcel",
		EventID:    uuid.New(),
	})
	require.NoError(t, err)
	return sh
}

func merchantIDs(ms []merchant.Merchant) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}
	return ids
}

func shipmentIDs(ss []shipment.Shipment) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		ids = append(ids, s.ID)
	}
	return ids
}
