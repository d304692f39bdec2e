package engine

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/logging"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/scheduler"
	"github.com/manav03panchal/watchout/internal/storage"
)

// Options configures an Engine.
type Options struct {
	// Arm enables timers. An offline engine (Arm false) only edits the store;
	// the daemon arms stored reminders the next time it starts.
	Arm bool

	Clock           clock.Clock
	Deliverer       scheduler.Deliverer
	DeliveryTimeout time.Duration
}

// Engine is the in-process Controller.
type Engine struct {
	store *storage.ReminderStore
	sched *scheduler.Scheduler
	arm   bool

	subsMu sync.Mutex
	subs   []chan scheduler.Event
}

var _ Controller = (*Engine)(nil)

// New creates an engine over store.
func New(store *storage.ReminderStore, opts Options) *Engine {
	e := &Engine{store: store, arm: opts.Arm}
	e.sched = scheduler.New(scheduler.Options{
		Clock:           opts.Clock,
		Deliverer:       opts.Deliverer,
		Listener:        e.onEvent,
		DeliveryTimeout: opts.DeliveryTimeout,
	})
	return e
}

// Start arms every active reminder. One-time reminders that are already
// due are skipped.
func (e *Engine) Start(ctx context.Context) error {
	if !e.arm {
		return nil
	}

	armed := 0
	for _, r := range e.store.List() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.sched.Schedule(r) {
			armed++
		}
	}
	logging.Info("scheduler started", logging.KeyCount, armed)
	return nil
}

// Stop cancels all timers. The store stays open.
func (e *Engine) Stop() {
	e.sched.CancelAll()
}

// Close stops the engine, closes every subscription and the store.
func (e *Engine) Close() error {
	e.Stop()

	e.subsMu.Lock()
	for _, ch := range e.subs {
		close(ch)
	}
	e.subs = nil
	e.subsMu.Unlock()

	return e.store.Close()
}

// Store returns the underlying reminder store.
func (e *Engine) Store() *storage.ReminderStore {
	return e.store
}

// Armed reports whether the engine runs timers.
func (e *Engine) Armed() bool {
	return e.arm
}

func (e *Engine) onEvent(ev scheduler.Event) {
	if ev.Type == scheduler.EventExpired {
		e.store.Remove(ev.Reminder.ID)
	}
	e.publish(ev)
}

// Subscribe returns a channel receiving scheduler events. When the
// subscriber falls behind, the oldest buffered event is dropped.
func (e *Engine) Subscribe(buffer int) <-chan scheduler.Event {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan scheduler.Event, buffer)
	e.subsMu.Lock()
	e.subs = append(e.subs, ch)
	e.subsMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription.
func (e *Engine) Unsubscribe(ch <-chan scheduler.Event) {
	if ch == nil {
		return
	}
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for i, s := range e.subs {
		if s == ch {
			last := len(e.subs) - 1
			e.subs[i] = e.subs[last]
			e.subs[last] = nil
			e.subs = e.subs[:last]
			close(s)
			return
		}
	}
}

func (e *Engine) publish(ev scheduler.Event) {
	// Hold subsMu while sending to avoid send-on-closed panics.
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
				logging.DebugLog("event dropped (subscriber slow)", logging.KeyReminderID, ev.Reminder.ID)
			}
		}
	}
}

// List returns the active reminders.
func (e *Engine) List(context.Context) ([]model.Reminder, error) {
	return e.store.List(), nil
}

// ListLibrary returns the saved reminders.
func (e *Engine) ListLibrary(context.Context) ([]model.Reminder, error) {
	return e.store.ListLibrary(), nil
}

// Add stores a new reminder and arms it.
func (e *Engine) Add(_ context.Context, title, description string, freq model.Frequency) (model.Reminder, error) {
	r, err := e.store.Add(title, description, freq)
	if err != nil {
		return model.Reminder{}, err
	}
	if e.arm {
		e.sched.Schedule(r)
	}
	logging.Info("reminder added", logging.KeyReminderID, r.ID, logging.KeyTitle, r.Title)
	return r, nil
}

// Remove cancels the reminder's timer and then deletes it. Unknown ids are a
// no-op.
func (e *Engine) Remove(_ context.Context, id string) error {
	e.sched.Cancel(id)
	if e.store.Remove(id) {
		logging.Info("reminder removed", logging.KeyReminderID, id)
	}
	return nil
}

// SaveToLibrary copies an active reminder into the library.
func (e *Engine) SaveToLibrary(_ context.Context, id string) (model.Reminder, error) {
	r, ok := e.store.SaveToLibrary(id)
	if !ok {
		return model.Reminder{}, errors.ErrReminderNotFound
	}
	return r, nil
}

// RemoveFromLibrary deletes a saved reminder. Unknown ids are a no-op.
func (e *Engine) RemoveFromLibrary(_ context.Context, id string) error {
	e.store.RemoveFromLibrary(id)
	return nil
}

// ActivateFromLibrary copies a saved reminder back into the active set and
// arms it. Activating a reminder that is already active changes nothing.
func (e *Engine) ActivateFromLibrary(_ context.Context, id string) (model.Reminder, error) {
	lib := e.store.ListLibrary()
	i := model.FindReminder(lib, id)
	if i < 0 {
		return model.Reminder{}, errors.ErrReminderNotFound
	}

	r := lib[i]
	if e.store.ActivateFromLibrary(r) && e.arm {
		e.sched.Schedule(r)
	}
	return r, nil
}

// ActiveIDs returns the ids with a pending timer.
func (e *Engine) ActiveIDs(context.Context) ([]string, error) {
	return e.sched.ActiveIDs(), nil
}

// Timers returns every pending timer with its next fire time.
func (e *Engine) Timers(context.Context) ([]Timer, error) {
	ids := e.sched.ActiveIDs()
	timers := make([]Timer, 0, len(ids))
	for _, id := range ids {
		if at, ok := e.sched.NextFire(id); ok {
			timers = append(timers, Timer{ID: id, NextFire: at})
		}
	}
	return timers, nil
}

// Schedule (re)arms an active reminder.
func (e *Engine) Schedule(_ context.Context, id string) error {
	r, ok := e.store.Get(id)
	if !ok {
		return errors.ErrReminderNotFound
	}
	if !e.arm {
		return errors.ErrDaemonNotRunning
	}
	if !e.sched.Schedule(r) {
		return errors.ErrFireTimeInPast
	}
	return nil
}

// Cancel stops the reminder's timer without deleting it.
func (e *Engine) Cancel(_ context.Context, id string) error {
	e.sched.Cancel(id)
	return nil
}
