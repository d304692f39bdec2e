package daemon

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/watchout/internal/api"
	"github.com/manav03panchal/watchout/internal/config"
	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/scheduler"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Backend = config.BackendSQLite
	cfg.Storage.Path = t.TempDir()
	cfg.Storage.Seed = false
	cfg.Daemon.Addr = "127.0.0.1:0"
	cfg.Notify.Desktop = false
	return cfg
}

func testDaemon(t *testing.T) *Daemon {
	t.Helper()
	return New(testConfig(t), Options{Paths: Paths{Dir: t.TempDir()}, Version: "test"})
}

// =============================================================================
// PIDFile Tests
// =============================================================================

func TestPIDFile(t *testing.T) {
	p := NewPIDFile(filepath.Join(t.TempDir(), "sub", PIDFileName))

	_, err := p.Read()
	assert.ErrorIs(t, err, errors.ErrDaemonNotRunning)
	assert.False(t, p.IsRunning())

	require.NoError(t, p.Write())
	pid, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
	assert.True(t, p.IsRunning())
	assert.Equal(t, os.Getpid(), p.RunningPID())

	require.NoError(t, p.Remove())
	require.NoError(t, p.Remove())
	assert.False(t, p.IsRunning())
}

func TestPIDFileInvalidContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), PIDFileName)
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))

	p := NewPIDFile(path)
	_, err := p.Read()
	assert.Error(t, err)
	assert.Equal(t, 0, p.RunningPID())
}

func TestIsProcessRunning(t *testing.T) {
	assert.True(t, IsProcessRunning(os.Getpid()))
	assert.False(t, IsProcessRunning(0))
	assert.False(t, IsProcessRunning(-1))
}

func TestPaths(t *testing.T) {
	p := Paths{Dir: "/tmp/wo"}
	assert.Equal(t, "/tmp/wo/watchout.pid", p.PIDFile())
	assert.Equal(t, "/tmp/wo/daemon.json", p.StateFile())
	assert.Equal(t, "/tmp/wo/daemon.log", p.LogFile())
	assert.True(t, strings.HasSuffix(DefaultPaths().Dir, "watchout"))
}

// =============================================================================
// Log File Tests
// =============================================================================

func TestRotateLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), LogFileName)
	require.NoError(t, RotateLog(path, 10))

	require.NoError(t, os.WriteFile(path, []byte("short"), 0644))
	require.NoError(t, RotateLog(path, 10))
	_, err := os.Stat(path + ".old")
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, os.WriteFile(path, []byte("a much longer line"), 0644))
	require.NoError(t, RotateLog(path, 10))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	data, err := os.ReadFile(path + ".old")
	require.NoError(t, err)
	assert.Equal(t, "a much longer line", string(data))
}

func TestTailLogAndLastError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", LogFileName)
	f, err := OpenLog(path)
	require.NoError(t, err)
	for i := 1; i <= 20; i++ {
		_, err := f.WriteString("line " + strconv.Itoa(i) + "\n")
		require.NoError(t, err)
	}
	_, err = f.WriteString(`{"level":"ERROR","msg":"failed to open store"}` + "\n")
	require.NoError(t, err)
	_, err = f.WriteString("line 22\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	lines, err := TailLog(path, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 20", `{"level":"ERROR","msg":"failed to open store"}`, "line 22"}, lines)

	all, err := TailLog(path, 0)
	require.NoError(t, err)
	assert.Len(t, all, 22)

	assert.Contains(t, lastLogError(path), "failed to open store")
	assert.Empty(t, lastLogError(filepath.Join(t.TempDir(), "missing.log")))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollowLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), LogFileName)
	f, err := OpenLog(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("before\n")
	require.NoError(t, err)

	var out syncBuffer
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- FollowLog(ctx, path, &out, 10*time.Millisecond) }()

	// Give the follower time to seek to the end.
	time.Sleep(50 * time.Millisecond)
	_, err = f.WriteString("after 1\nafter")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return out.String() == "after 1\n" }, time.Second, 10*time.Millisecond)

	_, err = f.WriteString(" 2\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return out.String() == "after 1\nafter 2\n" }, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.NotContains(t, out.String(), "before")

	assert.Error(t, FollowLog(context.Background(), filepath.Join(t.TempDir(), "missing.log"), &out, time.Millisecond))
}

// =============================================================================
// Metrics Tests
// =============================================================================

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics()
	at := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	m.Observe(scheduler.Event{Type: scheduler.EventFired, At: at})
	m.Observe(scheduler.Event{Type: scheduler.EventFired, At: at.Add(time.Minute)})
	m.Observe(scheduler.Event{Type: scheduler.EventExpired})
	m.Observe(scheduler.Event{Type: scheduler.EventSkipped})
	m.Observe(scheduler.Event{Type: scheduler.EventScheduled})

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.FiredTotal)
	assert.Equal(t, int64(1), snap.ExpiredTotal)
	assert.Equal(t, int64(1), snap.SkippedTotal)
	require.NotNil(t, snap.LastFireAt)
	assert.Equal(t, at.Add(time.Minute), *snap.LastFireAt)
}

func TestMetricsWrap(t *testing.T) {
	m := NewMetrics()
	fail := false
	d := m.Wrap(scheduler.DelivererFunc(func(context.Context, *model.Notification) error {
		if fail {
			return errors.Wrap(errors.ErrNotificationLimit, "desktop")
		}
		return nil
	}))

	n := &model.Notification{Title: "t"}
	require.NoError(t, d.Deliver(context.Background(), n))
	fail = true
	assert.Error(t, d.Deliver(context.Background(), n))

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.DeliveriesSentTotal)
	assert.Equal(t, int64(1), snap.DeliveriesFailedTotal)
	assert.Equal(t, int64(1), snap.ErrorsByCategory["rate_limit"])
	assert.NotEmpty(t, snap.LastError)
	assert.NotNil(t, snap.LastErrorAt)
}

// =============================================================================
// HealthChecker Tests
// =============================================================================

func TestHealthChecker(t *testing.T) {
	h := NewHealthChecker("1.0.0", time.Now().Add(-time.Minute))

	status := h.Check()
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, "1.0.0", status.Version)
	assert.Equal(t, os.Getpid(), status.PID)
	assert.GreaterOrEqual(t, status.UptimeSeconds, int64(59))
	assert.GreaterOrEqual(t, status.Goroutines, 1)

	h.AddCheck("store", func() error { return errors.New("2 failed writes") })
	h.AddCheck("desktop", func() error { return nil })
	h.SetReporter(func(s *HealthStatus) { s.Timers = 3 })

	status = h.Check()
	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Equal(t, 3, status.Timers)
	require.Len(t, status.Checks, 2)
	assert.Equal(t, "desktop", status.Checks[0].Name)
	assert.True(t, status.Checks[0].Healthy)
	assert.Equal(t, "2 failed writes", status.Checks[1].Error)
	assert.False(t, h.IsHealthy())

	h.RemoveCheck("store")
	assert.True(t, h.IsHealthy())
}

// =============================================================================
// Daemon Tests
// =============================================================================

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "45s", formatUptime(45*time.Second))
	assert.Equal(t, "5m", formatUptime(5*time.Minute))
	assert.Equal(t, "2h", formatUptime(2*time.Hour))
	assert.Equal(t, "2h 30m", formatUptime(150*time.Minute))
	assert.Equal(t, "1d", formatUptime(24*time.Hour))
	assert.Equal(t, "1d 3h", formatUptime(27*time.Hour))
}

func TestStatusNotRunning(t *testing.T) {
	d := testDaemon(t)

	status := d.Status()
	assert.False(t, status.Running)
	assert.Equal(t, d.Paths().LogFile(), status.LogPath)
	assert.ErrorIs(t, d.Stop(), errors.ErrDaemonNotRunning)
	assert.Equal(t, "127.0.0.1:0", d.Addr())
}

func TestStateRoundTrip(t *testing.T) {
	d := testDaemon(t)
	started := time.Now().Add(-90 * time.Minute).Truncate(time.Second)

	require.NoError(t, d.writeState(&State{StartedAt: started, Addr: "127.0.0.1:9999", Version: "v1"}))
	require.NoError(t, d.pidFile.Write())
	t.Cleanup(d.cleanup)

	status := d.Status()
	assert.True(t, status.Running)
	assert.Equal(t, os.Getpid(), status.PID)
	assert.Equal(t, "127.0.0.1:9999", status.Addr)
	assert.Equal(t, "v1", status.Version)
	assert.Equal(t, "1h 30m", status.Uptime)
	assert.Equal(t, "127.0.0.1:9999", d.Addr())

	d.cleanup()
	_, err := os.Stat(d.Paths().StateFile())
	assert.True(t, os.IsNotExist(err))
}

func TestRunServesAPIUntilCancelled(t *testing.T) {
	d := testDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, d.IsRunning, 5*time.Second, 10*time.Millisecond)

	client := api.NewClient(d.Addr(), nil)
	require.NoError(t, client.Ping(ctx))

	r, err := client.Add(ctx, "Stretch", "Stand up", model.Recurring(model.Interval30s))
	require.NoError(t, err)
	ids, err := client.ActiveIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids)

	health, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusHealthy, health["status"])
	assert.Equal(t, "sqlite", health["backend"])
	assert.EqualValues(t, 1, health["timers"])

	assert.ErrorIs(t, d.Run(ctx), ErrAlreadyRunning)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}

	assert.False(t, d.IsRunning())
	_, err = os.Stat(d.Paths().PIDFile())
	assert.True(t, os.IsNotExist(err))
}
