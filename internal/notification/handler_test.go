package notification

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/example/shipment-tracking/internal/domain/shipment"
	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedHandler() (*Handler, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewHandler(logger.FromZap(zap.New(core))), logs
}

func encode(t *testing.T, n shipment.Notification) []byte {
	t.Helper()
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return b
}

func TestHandler_Delivered(t *testing.T) {
	handler, logs := newObservedHandler()
	n := shipment.Notification{
		EventID:    uuid.New(),
		ShipmentID: uuid.New(),
		Type:       shipment.EventDelivered,
		Source:     shipment.SourceCarrier,
		OccurredAt: time.Now().UTC(),
	}

	err := handler.HandleEvent(context.Background(), []byte(n.ShipmentID.String()), encode(t, n))

	require.NoError(t, err)
	entries := logs.FilterMessage("shipment delivered").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
}

func TestHandler_DelayedIncludesReason(t *testing.T) {
	handler, logs := newObservedHandler()
	reason := "storm"
	n := shipment.Notification{
		EventID:    uuid.New(),
		ShipmentID: uuid.New(),
		Type:       shipment.EventDelayed,
		Source:     shipment.SourceCarrier,
		Reason:     &reason,
	}

	require.NoError(t, handler.HandleEvent(context.Background(), nil, encode(t, n)))

	entries := logs.FilterMessage("shipment delayed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "storm", entries[0].ContextMap()["reason"])
}

func TestHandler_NonMilestoneIsDebugOnly(t *testing.T) {
	handler, logs := newObservedHandler()
	n := shipment.Notification{EventID: uuid.New(), ShipmentID: uuid.New(), Type: shipment.EventCreated, Source: shipment.SourceSystem}

	require.NoError(t, handler.HandleEvent(context.Background(), nil, encode(t, n)))

	assert.Equal(t, 0, logs.FilterLevelExact(zapcore.InfoLevel).Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.DebugLevel).Len())
}

func TestHandler_MalformedPayload(t *testing.T) {
	handler, _ := newObservedHandler()

	err := handler.HandleEvent(context.Background(), []byte("k"), []byte("{not json"))
	assert.Error(t, err)

	err = handler.HandleEvent(context.Background(), []byte("k"), []byte(`{"type":"vanished"}`))
	assert.Error(t, err)
}
