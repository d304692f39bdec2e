package daemon

import (
	"runtime"
	"sort"
	"sync"
	"time"
)

// Health states.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status        string          `json:"status"`
	Version       string          `json:"version,omitempty"`
	PID           int             `json:"pid"`
	StartedAt     time.Time       `json:"started_at"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Backend       string          `json:"backend,omitempty"`
	Reminders     int             `json:"reminders"`
	Library       int             `json:"library"`
	Timers        int             `json:"timers"`
	Sinks         []string        `json:"sinks,omitempty"`
	MemoryMB      float64         `json:"memory_mb"`
	Goroutines    int             `json:"goroutines"`
	Metrics       MetricsSnapshot `json:"metrics"`
	Checks        []CheckResult   `json:"checks,omitempty"`
}

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// HealthChecker assembles HealthStatus from named checks and a reporter
// that fills in the daemon's counters.
type HealthChecker struct {
	mu        sync.RWMutex
	startTime time.Time
	version   string
	checks    map[string]func() error
	report    func(*HealthStatus)
}

// NewHealthChecker creates a checker for a daemon started at startTime.
func NewHealthChecker(version string, startTime time.Time) *HealthChecker {
	return &HealthChecker{
		startTime: startTime,
		version:   version,
		checks:    make(map[string]func() error),
	}
}

// AddCheck adds a named check. A non-nil error marks the daemon unhealthy.
func (h *HealthChecker) AddCheck(name string, check func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// RemoveCheck removes a named check.
func (h *HealthChecker) RemoveCheck(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.checks, name)
}

// SetReporter installs the function that fills in counters on each Check.
func (h *HealthChecker) SetReporter(report func(*HealthStatus)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.report = report
}

// Uptime returns how long the daemon has been running.
func (h *HealthChecker) Uptime() time.Duration {
	return time.Since(h.startTime)
}

// Check runs every check and returns the status.
func (h *HealthChecker) Check() *HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := &HealthStatus{
		Status:        StatusHealthy,
		Version:       h.version,
		PID:           osPID(),
		StartedAt:     h.startTime,
		UptimeSeconds: int64(h.Uptime().Seconds()),
		MemoryMB:      float64(memStats.Alloc) / 1024 / 1024,
		Goroutines:    runtime.NumGoroutine(),
	}

	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result := CheckResult{Name: name, Healthy: true}
		if err := h.checks[name](); err != nil {
			result.Healthy = false
			result.Error = err.Error()
			status.Status = StatusUnhealthy
		}
		status.Checks = append(status.Checks, result)
	}
	report := h.report
	h.mu.RUnlock()

	if report != nil {
		report(status)
	}
	return status
}

// IsHealthy reports whether every check passes.
func (h *HealthChecker) IsHealthy() bool {
	return h.Check().Status == StatusHealthy
}
