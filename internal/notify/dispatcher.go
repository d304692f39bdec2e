package notify

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/logging"
	"github.com/manav03panchal/watchout/internal/model"
)

// Options configures a Dispatcher.
type Options struct {
	// Desktop enables native notifications.
	Desktop bool
	// RatePerSec caps deliveries per second. Zero disables the limit.
	RatePerSec int
	// Timeout bounds each webhook post.
	Timeout time.Duration
	// Webhooks lists the configured webhooks; disabled ones are ignored.
	Webhooks []model.Webhook
}

// Dispatcher fans a notification out to the desktop and webhook sinks.
// It implements scheduler.Deliverer.
type Dispatcher struct {
	desktop  *DesktopSink
	webhooks []Sink
	limiter  *rate.Limiter

	mu        sync.RWMutex
	permitted bool
	probed    bool
}

// NewDispatcher creates a dispatcher from opts.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{}
	if opts.Desktop {
		d.desktop = NewDesktopSink()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultWebhookTimeout
	}
	client := &http.Client{Timeout: timeout}
	for _, w := range opts.Webhooks {
		if w.Disabled {
			continue
		}
		d.webhooks = append(d.webhooks, NewWebhookSink(w, client))
	}

	if opts.RatePerSec > 0 {
		d.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.RatePerSec)
	}
	return d
}

// AddSink registers an extra webhook-style sink.
func (d *Dispatcher) AddSink(s Sink) {
	d.webhooks = append(d.webhooks, s)
}

// RequestPermission checks once whether desktop notifications can be shown.
// When permission is denied desktop deliveries become silent no-ops and
// ErrPermissionDenied is returned; webhooks are unaffected.
func (d *Dispatcher) RequestPermission(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.probed = true
	if d.desktop == nil {
		d.permitted = false
		return errors.ErrPermissionDenied
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := d.desktop.Probe()
	d.permitted = err == nil
	return err
}

// Permitted reports whether desktop notifications are allowed. Before
// RequestPermission is called it reports whether the desktop sink is enabled.
func (d *Dispatcher) Permitted() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.probed {
		return d.desktop != nil
	}
	return d.permitted
}

// Sinks returns the names of the active sinks.
func (d *Dispatcher) Sinks() []string {
	var names []string
	if d.Permitted() {
		names = append(names, d.desktop.Name())
	}
	for _, s := range d.webhooks {
		names = append(names, s.Name())
	}
	return names
}

func (d *Dispatcher) sinks() []Sink {
	var out []Sink
	if d.Permitted() {
		out = append(out, d.desktop)
	}
	return append(out, d.webhooks...)
}

// Deliver sends n to every sink concurrently and joins their errors.
func (d *Dispatcher) Deliver(ctx context.Context, n *model.Notification) error {
	sinks := d.sinks()
	if len(sinks) == 0 {
		logging.DebugLog("no notification sinks, dropping", logging.KeyTitle, n.Title,
			logging.KeyError, errors.ErrPermissionDenied)
		return nil
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", errors.ErrNotificationLimit, err)
		}
	}

	results := d.dispatch(ctx, n, sinks)

	var errs []error
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Sink, r.Error))
		}
	}
	return errors.Join(errs...)
}

// DispatchResult contains the result of sending to a single sink.
type DispatchResult struct {
	Sink     string
	Duration time.Duration
	Error    error
}

// Test sends a test notification to every sink and reports per-sink results.
func (d *Dispatcher) Test(ctx context.Context) []DispatchResult {
	n := model.NewNotification(
		model.NotifyTest,
		"WatchOut Test",
		"This is a test notification from WatchOut. If you see this, notifications are working!",
	).WithField("Time", time.Now().Format("3:04 PM"))

	return d.dispatch(ctx, n, d.sinks())
}

func (d *Dispatcher) dispatch(ctx context.Context, n *model.Notification, sinks []Sink) []DispatchResult {
	var wg sync.WaitGroup
	results := make([]DispatchResult, len(sinks))

	for i, s := range sinks {
		wg.Add(1)
		go func(idx int, s Sink) {
			defer wg.Done()
			start := time.Now()
			err := s.Send(ctx, n)
			results[idx] = DispatchResult{Sink: s.Name(), Duration: time.Since(start), Error: err}
			if err != nil {
				logging.Warn("notification sink failed",
					logging.KeySink, s.Name(), logging.KeyError, err)
			}
		}(i, s)
	}

	wg.Wait()
	return results
}
