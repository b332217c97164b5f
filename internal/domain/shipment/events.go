package shipment

import (
	"fmt"

	"github.com/example/shipment-tracking/internal/domain"
)

// EventType is the closed vocabulary of shipment status updates.
type EventType string

const (
	EventCreated             EventType = "created"
	EventPackaged            EventType = "packaged"
	EventInTransit           EventType = "in_transit"
	EventPickedUpForDelivery EventType = "picked_up_for_delivery"
	EventDelayed             EventType = "delayed"
	EventDelivered           EventType = "delivered"
)

// EventTypes lists every EventType in lifecycle order.
var EventTypes = []EventType{
	EventCreated,
	EventPackaged,
	EventInTransit,
	EventPickedUpForDelivery,
	EventDelayed,
	EventDelivered,
}

// Valid reports whether t is one of EventTypes.
func (t EventType) Valid() bool {
	for _, v := range EventTypes {
		if t == v {
			return true
		}
	}
	return false
}

// String returns the wire form of t.
func (t EventType) String() string { return string(t) }

// UnmarshalText rejects values outside the vocabulary so that bad input
// fails while the request body is decoded.
func (t *EventType) UnmarshalText(text []byte) error {
	v, err := ParseEventType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ParseEventType converts s into an EventType or returns a ValidationError.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if !t.Valid() {
		return "", domain.Invalid("type", fmt.Sprintf("unknown event type %q", s))
	}
	return t, nil
}

// EventSource identifies who reported an event.
type EventSource string

const (
	SourceCarrier EventSource = "carrier"
	SourceSystem  EventSource = "system"
	SourceManual  EventSource = "manual"
)

// EventSources lists every EventSource.
var EventSources = []EventSource{SourceCarrier, SourceSystem, SourceManual}

// Valid reports whether s is one of EventSources.
func (s EventSource) Valid() bool {
	for _, v := range EventSources {
		if s == v {
			return true
		}
	}
	return false
}

// String returns the wire form of s.
func (s EventSource) String() string { return string(s) }

// UnmarshalText rejects values outside the vocabulary.
func (s *EventSource) UnmarshalText(text []byte) error {
	v, err := ParseEventSource(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseEventSource converts s into an EventSource or returns a ValidationError.
func ParseEventSource(s string) (EventSource, error) {
	src := EventSource(s)
	if !src.Valid() {
		return "", domain.Invalid("source", fmt.Sprintf("unknown event source %q", s))
	}
	return src, nil
}
