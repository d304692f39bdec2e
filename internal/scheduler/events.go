package scheduler

import (
	"time"

	"github.com/manav03panchal/watchout/internal/model"
)

// EventType identifies what happened to a reminder's timer.
type EventType int

const (
	// EventScheduled is emitted when a timer is armed by Schedule.
	EventScheduled EventType = iota
	// EventFired is emitted after each delivery attempt.
	EventFired
	// EventExpired follows EventFired for one-time reminders.
	EventExpired
	// EventCancelled is emitted when a pending timer is cancelled.
	EventCancelled
	// EventSkipped is emitted when a one-time reminder is already due.
	EventSkipped
)

func (t EventType) String() string {
	switch t {
	case EventScheduled:
		return "scheduled"
	case EventFired:
		return "fired"
	case EventExpired:
		return "expired"
	case EventCancelled:
		return "cancelled"
	case EventSkipped:
		return "skipped"
	}
	return "unknown"
}

// MarshalText encodes the event type by name.
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Event describes a timer state change.
type Event struct {
	Type     EventType      `json:"type"`
	Reminder model.Reminder `json:"reminder"`
	At       time.Time      `json:"at"`

	// NextFire is set for EventScheduled and for EventFired on recurring reminders.
	NextFire time.Time `json:"nextFire,omitempty"`

	// Err is the delivery error for EventFired.
	Err error `json:"-"`
}

// Listener receives events synchronously on the goroutine that produced
// them. It must not block.
type Listener func(Event)
