package daemon

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/scheduler"
)

// Metrics counts scheduler events and deliveries.
type Metrics struct {
	fired            atomic.Int64
	expired          atomic.Int64
	skipped          atomic.Int64
	deliveriesSent   atomic.Int64
	deliveriesFailed atomic.Int64

	mu               sync.RWMutex
	lastLatency      time.Duration
	lastFireAt       time.Time
	lastError        string
	lastErrorAt      time.Time
	errorsByCategory map[string]int64
}

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{errorsByCategory: make(map[string]int64)}
}

// MetricsSnapshot is a point-in-time view of Metrics.
type MetricsSnapshot struct {
	FiredTotal            int64            `json:"fired_total"`
	ExpiredTotal          int64            `json:"expired_total"`
	SkippedTotal          int64            `json:"skipped_total"`
	DeliveriesSentTotal   int64            `json:"deliveries_sent_total"`
	DeliveriesFailedTotal int64            `json:"deliveries_failed_total"`
	LastDeliveryMs        int64            `json:"last_delivery_ms"`
	LastFireAt            *time.Time       `json:"last_fire_at,omitempty"`
	LastError             string           `json:"last_error,omitempty"`
	LastErrorAt           *time.Time       `json:"last_error_at,omitempty"`
	ErrorsByCategory      map[string]int64 `json:"errors_by_category,omitempty"`
}

// Snapshot returns a copy of the current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		FiredTotal:            m.fired.Load(),
		ExpiredTotal:          m.expired.Load(),
		SkippedTotal:          m.skipped.Load(),
		DeliveriesSentTotal:   m.deliveriesSent.Load(),
		DeliveriesFailedTotal: m.deliveriesFailed.Load(),
		LastDeliveryMs:        m.lastLatency.Milliseconds(),
		LastError:             m.lastError,
	}
	if !m.lastFireAt.IsZero() {
		at := m.lastFireAt
		snap.LastFireAt = &at
	}
	if !m.lastErrorAt.IsZero() {
		at := m.lastErrorAt
		snap.LastErrorAt = &at
	}
	if len(m.errorsByCategory) > 0 {
		snap.ErrorsByCategory = make(map[string]int64, len(m.errorsByCategory))
		for k, v := range m.errorsByCategory {
			snap.ErrorsByCategory[k] = v
		}
	}
	return snap
}

// Observe records a scheduler event.
func (m *Metrics) Observe(ev scheduler.Event) {
	switch ev.Type {
	case scheduler.EventFired:
		m.fired.Add(1)
		m.mu.Lock()
		m.lastFireAt = ev.At
		m.mu.Unlock()
	case scheduler.EventExpired:
		m.expired.Add(1)
	case scheduler.EventSkipped:
		m.skipped.Add(1)
	}
}

// RecordDelivery records the outcome of one delivery fan-out.
func (m *Metrics) RecordDelivery(latency time.Duration, err error) {
	m.mu.Lock()
	m.lastLatency = latency
	m.mu.Unlock()

	if err == nil {
		m.deliveriesSent.Add(1)
		return
	}

	m.deliveriesFailed.Add(1)
	category := "delivery"
	if errors.Is(err, errors.ErrNotificationLimit) {
		category = "rate_limit"
	}
	m.RecordError(category, err)
}

// RecordError records an error under category.
func (m *Metrics) RecordError(category string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastError = err.Error()
	m.lastErrorAt = time.Now()
	if category != "" {
		m.errorsByCategory[category]++
	}
}

// Wrap returns a Deliverer that records every delivery made through d.
func (m *Metrics) Wrap(d scheduler.Deliverer) scheduler.Deliverer {
	return scheduler.DelivererFunc(func(ctx context.Context, n *model.Notification) error {
		start := time.Now()
		err := d.Deliver(ctx, n)
		m.RecordDelivery(time.Since(start), err)
		return err
	})
}
