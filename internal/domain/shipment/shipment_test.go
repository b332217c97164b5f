package shipment

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/example/shipment-tracking/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventType(t *testing.T) {
	for _, et := range EventTypes {
		got, err := ParseEventType(string(et))
		require.NoError(t, err)
		assert.Equal(t, et, got)
	}

	_, err := ParseEventType("lost")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	_, err = ParseEventType("")
	assert.Error(t, err)
}

func TestParseEventSource(t *testing.T) {
	for _, s := range EventSources {
		got, err := ParseEventSource(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := ParseEventSource("robot")
	assert.True(t, domain.IsValidation(err))
}

func TestEventType_UnmarshalJSON(t *testing.T) {
	var body struct {
		Type   EventType   `json:"type"`
		Source EventSource `json:"source"`
	}

	err := json.Unmarshal([]byte(`{"type":"in_transit","source":"carrier"}`), &body)
	require.NoError(t, err)
	assert.Equal(t, EventInTransit, body.Type)
	assert.Equal(t, SourceCarrier, body.Source)

	err = json.Unmarshal([]byte(`{"type":"teleported","source":"carrier"}`), &body)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	err = json.Unmarshal([]byte(`{"type":"delivered","source":"drone"}`), &body)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestSortEvents(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Event{ID: uuid.New(), Type: EventDelivered, OccurredAt: base.Add(2 * time.Hour), CreatedAt: base}
	b := Event{ID: uuid.New(), Type: EventCreated, OccurredAt: base, CreatedAt: base.Add(time.Minute)}
	c := Event{ID: uuid.New(), Type: EventInTransit, OccurredAt: base.Add(time.Hour), CreatedAt: base.Add(2 * time.Minute)}
	// same occurred_at as c, recorded later
	d := Event{ID: uuid.New(), Type: EventDelayed, OccurredAt: base.Add(time.Hour), CreatedAt: base.Add(3 * time.Minute)}

	events := []Event{a, d, c, b}
	SortEvents(events)

	assert.Equal(t, []EventType{EventCreated, EventInTransit, EventDelayed, EventDelivered},
		[]EventType{events[0].Type, events[1].Type, events[2].Type, events[3].Type})
}

func TestNormalizeReason(t *testing.T) {
	assert.Nil(t, NormalizeReason(nil))

	blank := "   "
	assert.Nil(t, NormalizeReason(&blank))

	r := "  weather  "
	got := NormalizeReason(&r)
	require.NotNil(t, got)
	assert.Equal(t, "weather", *got)
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Box1"))
	assert.NoError(t, ValidateName("  Box1 "))

	assert.True(t, domain.IsValidation(ValidateName("")))
	assert.True(t, domain.IsValidation(ValidateName(" \t")))
}

func TestNotification_Milestone(t *testing.T) {
	assert.True(t, Notification{Type: EventDelivered}.Milestone())
	assert.True(t, Notification{Type: EventDelayed}.Milestone())
	assert.True(t, Notification{Type: EventPickedUpForDelivery}.Milestone())
	assert.False(t, Notification{Type: EventCreated}.Milestone())
	assert.False(t, Notification{Type: EventPackaged}.Milestone())
}
