// Package scheduler arms one timer per active reminder and delivers a
// notification each time a timer fires.
//
// Recurring reminders re-arm themselves after every fire. One-time reminders
// fire once, after which the scheduler forgets them and emits EventExpired so
// the owner can drop them from storage.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/manav03panchal/watchout/internal/logging"
	"github.com/manav03panchal/watchout/internal/model"
)

// DefaultDeliveryTimeout bounds a single delivery when Options leaves it unset.
const DefaultDeliveryTimeout = 15 * time.Second

// Deliverer hands a notification to the user.
type Deliverer interface {
	Deliver(ctx context.Context, n *model.Notification) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, n *model.Notification) error

// Deliver calls f.
func (f DelivererFunc) Deliver(ctx context.Context, n *model.Notification) error {
	return f(ctx, n)
}

// Options configures a Scheduler.
type Options struct {
	Clock           clock.Clock
	Deliverer       Deliverer
	Listener        Listener
	DeliveryTimeout time.Duration
}

// handle is one armed timer. A fire callback only acts while its handle is
// still the current entry for the reminder id.
type handle struct {
	seq      uint64
	reminder model.Reminder
	timer    *clock.Timer
	fireAt   time.Time
}

// Scheduler owns the pending timers, at most one per reminder id.
type Scheduler struct {
	mu      sync.Mutex
	clock   clock.Clock
	deliver Deliverer
	listen  Listener
	timeout time.Duration
	handles map[string]*handle
	seq     uint64
}

// New creates a scheduler. A nil Deliverer drops notifications.
func New(opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Deliverer == nil {
		opts.Deliverer = DelivererFunc(func(context.Context, *model.Notification) error { return nil })
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = DefaultDeliveryTimeout
	}

	return &Scheduler{
		clock:   opts.Clock,
		deliver: opts.Deliverer,
		listen:  opts.Listener,
		timeout: opts.DeliveryTimeout,
		handles: make(map[string]*handle),
	}
}

// Delay computes how long to wait before r fires, measured from now.
// Recurring reminders wait their interval (unknown tags use the default
// interval). One-time reminders wait until their fire time, or zero when it
// has passed or cannot be parsed.
func Delay(freq model.Frequency, now time.Time) time.Duration {
	if !freq.IsOneTime() {
		return freq.Interval().Duration()
	}

	at, err := freq.FireAt()
	if err != nil {
		return 0
	}
	if d := at.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Schedule arms a timer for r, replacing any pending timer for the same id.
// A one-time reminder whose fire time is not in the future is not armed;
// Schedule then reports false and emits EventSkipped.
func (s *Scheduler) Schedule(r model.Reminder) bool {
	s.mu.Lock()
	s.stopLocked(r.ID)

	now := s.clock.Now()
	delay := Delay(r.Frequency, now)
	if r.IsOneTime() && delay <= 0 {
		s.mu.Unlock()

		logging.DebugLog("one-time reminder is in the past, not scheduling",
			logging.KeyReminderID, r.ID, logging.KeyFireAt, r.Frequency.Value)
		s.emit(Event{Type: EventSkipped, Reminder: r, At: now})
		return false
	}

	h := s.armLocked(r, now, delay)
	s.mu.Unlock()

	logging.DebugLog("reminder scheduled",
		logging.KeyReminderID, r.ID, logging.KeyDelay, delay.String())
	s.emit(Event{Type: EventScheduled, Reminder: r, At: now, NextFire: h.fireAt})
	return true
}

// Cancel stops and forgets the pending timer for id. It reports whether a
// timer was pending.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	h := s.stopLocked(id)
	s.mu.Unlock()

	if h == nil {
		return false
	}
	s.emit(Event{Type: EventCancelled, Reminder: h.reminder, At: s.clock.Now()})
	return true
}

// CancelAll stops every pending timer.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	cancelled := make([]*handle, 0, len(s.handles))
	for id := range s.handles {
		cancelled = append(cancelled, s.stopLocked(id))
	}
	s.mu.Unlock()

	now := s.clock.Now()
	for _, h := range cancelled {
		s.emit(Event{Type: EventCancelled, Reminder: h.reminder, At: now})
	}
	if len(cancelled) > 0 {
		logging.DebugLog("cancelled all timers", logging.KeyCount, len(cancelled))
	}
}

// ActiveIDs returns the ids with a pending timer, sorted.
func (s *Scheduler) ActiveIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.handles))
	for id := range s.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NextFire returns when the pending timer for id fires.
func (s *Scheduler) NextFire(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.handles[id]; ok {
		return h.fireAt, true
	}
	return time.Time{}, false
}

// Len returns the number of pending timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

func (s *Scheduler) armLocked(r model.Reminder, now time.Time, delay time.Duration) *handle {
	s.seq++
	h := &handle{
		seq:      s.seq,
		reminder: r,
		fireAt:   now.Add(delay),
	}
	h.timer = s.clock.AfterFunc(delay, func() { s.fire(h) })
	s.handles[r.ID] = h
	return h
}

func (s *Scheduler) stopLocked(id string) *handle {
	h, ok := s.handles[id]
	if !ok {
		return nil
	}
	h.timer.Stop()
	delete(s.handles, id)
	return h
}

func (s *Scheduler) fire(h *handle) {
	r := h.reminder

	s.mu.Lock()
	if s.handles[r.ID] != h {
		// Cancelled or replaced after the timer went off.
		s.mu.Unlock()
		return
	}

	now := s.clock.Now()
	var next time.Time
	if r.IsOneTime() {
		delete(s.handles, r.ID)
	} else {
		next = s.armLocked(r, now, Delay(r.Frequency, now)).fireAt
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	err := s.deliver.Deliver(ctx, model.NotificationForReminder(r, now))
	cancel()
	if err != nil {
		logging.Warn("notification delivery failed",
			logging.KeyReminderID, r.ID, logging.KeyError, err)
	}

	s.emit(Event{Type: EventFired, Reminder: r, At: now, NextFire: next, Err: err})
	if r.IsOneTime() {
		logging.Info("one-time reminder expired", logging.KeyReminderID, r.ID, logging.KeyTitle, r.Title)
		s.emit(Event{Type: EventExpired, Reminder: r, At: now})
	}
}

func (s *Scheduler) emit(e Event) {
	if s.listen != nil {
		s.listen(e)
	}
}
