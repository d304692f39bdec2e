package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/manav03panchal/watchout/internal/api"
	"github.com/manav03panchal/watchout/internal/config"
	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/logging"
	"github.com/manav03panchal/watchout/internal/notify"
	"github.com/manav03panchal/watchout/internal/storage"
)

var osPID = os.Getpid

// Options configures a Daemon.
type Options struct {
	Paths   Paths
	Version string
	// ConfigPath is forwarded to the re-exec'd background process.
	ConfigPath string
	Debug      bool
}

// Daemon manages the background daemon process.
type Daemon struct {
	cfg     *config.Config
	opts    Options
	pidFile *PIDFile
	metrics *Metrics
}

// Status represents the daemon status.
type Status struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	Addr      string    `json:"addr,omitempty"`
	Version   string    `json:"version,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	LogPath   string    `json:"log_path"`
}

// State is persisted next to the PID file while the daemon runs.
type State struct {
	StartedAt time.Time `json:"started_at"`
	Addr      string    `json:"addr"`
	Version   string    `json:"version,omitempty"`
}

// New creates a daemon manager.
func New(cfg *config.Config, opts Options) *Daemon {
	if opts.Paths.Dir == "" {
		opts.Paths = DefaultPaths()
	}
	return &Daemon{
		cfg:     cfg,
		opts:    opts,
		pidFile: NewPIDFile(opts.Paths.PIDFile()),
		metrics: NewMetrics(),
	}
}

// Paths returns the daemon's runtime file locations.
func (d *Daemon) Paths() Paths {
	return d.opts.Paths
}

// IsRunning returns true if the daemon is running.
func (d *Daemon) IsRunning() bool {
	return d.pidFile.IsRunning()
}

// Status returns the current daemon status.
func (d *Daemon) Status() *Status {
	status := &Status{LogPath: d.opts.Paths.LogFile()}

	pid := d.pidFile.RunningPID()
	if pid == 0 {
		return status
	}
	status.Running = true
	status.PID = pid

	if state, err := d.readState(); err == nil {
		status.Addr = state.Addr
		status.Version = state.Version
		status.StartedAt = state.StartedAt
		status.Uptime = formatUptime(time.Since(state.StartedAt))
	}
	return status
}

// Run runs the daemon in the foreground until ctx is cancelled or a
// shutdown signal arrives.
func (d *Daemon) Run(ctx context.Context) error {
	if d.IsRunning() {
		return ErrAlreadyRunning
	}

	docs, err := storage.OpenBackend(d.cfg.Storage.Backend, d.cfg.DataDir())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	store := storage.NewReminderStore(docs, storage.StoreOptions{Seed: d.cfg.Storage.Seed})

	dispatcher := notify.NewDispatcher(notify.Options{
		Desktop:    d.cfg.Notify.Desktop,
		RatePerSec: d.cfg.Notify.RatePerSec,
		Timeout:    d.cfg.Notify.Timeout,
		Webhooks:   d.cfg.Notify.Webhooks,
	})
	if d.cfg.Notify.Desktop {
		if err := dispatcher.RequestPermission(ctx); err != nil {
			logging.Warn("desktop notifications unavailable", logging.KeyError, err)
		}
	}

	eng := engine.New(store, engine.Options{
		Arm:             true,
		Deliverer:       d.metrics.Wrap(dispatcher),
		DeliveryTimeout: d.cfg.Scheduler.DeliveryTimeout,
	})
	defer eng.Close()

	events := eng.Subscribe(64)
	go func() {
		for ev := range events {
			d.metrics.Observe(ev)
		}
	}()

	startedAt := time.Now()
	health := d.newHealthChecker(startedAt, eng, dispatcher)

	srv := api.NewServer(d.cfg.Daemon.Addr, api.NewRouter(eng, api.Options{
		Health:   func() any { return health.Check() },
		Notifier: dispatcher,
	}))
	if err := srv.Start(); err != nil {
		return err
	}

	// State goes first: clients read the address once the PID file exists.
	if err := d.writeState(&State{StartedAt: startedAt, Addr: srv.Addr(), Version: d.opts.Version}); err != nil {
		d.shutdownServer(srv)
		return err
	}
	if err := d.pidFile.Write(); err != nil {
		d.shutdownServer(srv)
		d.removeState()
		return err
	}
	defer d.cleanup()

	if err := eng.Start(ctx); err != nil {
		d.shutdownServer(srv)
		return err
	}

	logging.Info("daemon started",
		"pid", os.Getpid(),
		logging.KeyBackend, store.Backend(),
		"sinks", dispatcher.Sinks(),
	)
	if warning := storage.CheckDiskSpaceWarning(d.cfg.DataDir()); warning != "" {
		logging.Warn(warning, logging.KeyPath, d.cfg.DataDir())
	}

	sigHandler := NewSignalHandler()
	defer sigHandler.Stop()

	if sig := sigHandler.Wait(ctx); sig != nil {
		logging.Info("received signal", "signal", sig.String())
	}

	eng.Stop()
	d.shutdownServer(srv)
	logging.Info("daemon stopped")
	return nil
}

func (d *Daemon) newHealthChecker(startedAt time.Time, eng *engine.Engine, dispatcher *notify.Dispatcher) *HealthChecker {
	health := NewHealthChecker(d.opts.Version, startedAt)
	store := eng.Store()

	health.AddCheck("store", func() error {
		if n := store.WriteFailures(); n > 0 {
			return fmt.Errorf("%d failed writes", n)
		}
		return nil
	})
	health.AddCheck("disk", func() error {
		return storage.CheckDiskSpace(d.cfg.DataDir())
	})
	if d.cfg.Notify.Desktop {
		health.AddCheck("desktop", func() error {
			if !dispatcher.Permitted() {
				return errors.ErrPermissionDenied
			}
			return nil
		})
	}

	health.SetReporter(func(s *HealthStatus) {
		ctx := context.Background()
		s.Backend = store.Backend()
		s.Reminders = len(store.List())
		s.Library = len(store.ListLibrary())
		if ids, err := eng.ActiveIDs(ctx); err == nil {
			s.Timers = len(ids)
		}
		s.Sinks = dispatcher.Sinks()
		s.Metrics = d.metrics.Snapshot()
	})
	return health
}

func (d *Daemon) shutdownServer(srv *api.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Daemon.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("api shutdown", logging.KeyError, err)
	}
}

func (d *Daemon) cleanup() {
	if err := d.pidFile.Remove(); err != nil {
		logging.Warn("failed to remove PID file", logging.KeyError, err)
	}
	d.removeState()
}

// StartBackground re-executes the binary as "daemon start --foreground"
// with its output appended to the daemon log, and waits for it to come up.
func (d *Daemon) StartBackground() (int, error) {
	if pid := d.pidFile.RunningPID(); pid > 0 {
		return pid, ErrAlreadyRunning
	}

	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	args := []string{"daemon", "start", "--foreground"}
	if d.opts.ConfigPath != "" {
		args = append(args, "--config", d.opts.ConfigPath)
	}
	if d.opts.Debug {
		args = append(args, "--debug")
	}

	logPath := d.opts.Paths.LogFile()
	if err := RotateLog(logPath, MaxLogSize); err != nil {
		logging.Warn("failed to rotate daemon log", logging.KeyError, err)
	}
	logFile, err := OpenLog(logPath)
	if err != nil {
		return 0, err
	}
	defer logFile.Close()

	cmd := exec.Command(executable, args...)
	cmd.Stdin = nil
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	detach(cmd)

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}
	pid := cmd.Process.Pid
	go cmd.Wait()

	time.Sleep(d.cfg.Daemon.StartupWait)

	if !d.pidFile.IsRunning() {
		if errMsg := lastLogError(logPath); errMsg != "" {
			return 0, fmt.Errorf("daemon failed to start: %s", errMsg)
		}
		return 0, fmt.Errorf("daemon failed to start (check logs: %s)", logPath)
	}
	return pid, nil
}

// Stop signals the running daemon and waits for it to exit, killing it
// after the configured timeout.
func (d *Daemon) Stop() error {
	pid := d.pidFile.RunningPID()
	if pid == 0 {
		return errors.ErrDaemonNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(os.Interrupt); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to stop daemon: %w", err)
		}
	}

	deadline := time.Now().Add(d.cfg.Daemon.KillTimeout)
	for IsProcessRunning(pid) {
		if time.Now().After(deadline) {
			logging.Warn("daemon did not exit in time, killing", "pid", pid)
			process.Kill()
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	d.cleanup()
	return nil
}

func (d *Daemon) writeState(state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return storage.SafeWrite(d.opts.Paths.StateFile(), data, 0644)
}

func (d *Daemon) readState() (*State, error) {
	data, err := os.ReadFile(d.opts.Paths.StateFile())
	if err != nil {
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (d *Daemon) removeState() {
	path := d.opts.Paths.StateFile()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove daemon state file", logging.KeyError, err, logging.KeyPath, path)
	}
}

// Addr returns the API address of the running daemon, falling back to the
// configured one.
func (d *Daemon) Addr() string {
	if state, err := d.readState(); err == nil && state.Addr != "" {
		return state.Addr
	}
	return d.cfg.Daemon.Addr
}

// formatUptime formats a duration as uptime.
func formatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	if hours > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}
