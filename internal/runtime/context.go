// Package runtime provides application runtime context for WatchOut.
package runtime

import (
	"fmt"
	"io"

	"github.com/manav03panchal/watchout/internal/api"
	"github.com/manav03panchal/watchout/internal/config"
	"github.com/manav03panchal/watchout/internal/daemon"
	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/logging"
	"github.com/manav03panchal/watchout/internal/output"
	"github.com/manav03panchal/watchout/internal/storage"
)

// Context holds the application runtime context.
type Context struct {
	Config    *config.Config
	Formatter *output.Formatter
	Daemon    *daemon.Daemon

	// Debug mode
	Debug bool

	ctrl    engine.Controller
	offline *engine.Engine
}

// Options configures the runtime context.
type Options struct {
	// ConfigPath is the YAML config file. Empty means config.DefaultPath.
	ConfigPath string
	// Config, when set, is used instead of loading ConfigPath.
	Config *config.Config

	Paths   daemon.Paths
	Version string
	// Output receives command output. Default: stdout
	Output    io.Writer
	Format    output.Format
	ColorMode output.ColorMode
	Debug     bool
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		Paths:     daemon.DefaultPaths(),
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
	}
}

// New creates a new runtime context. The store is not opened until
// Controller is called.
func New(opts Options) (*Context, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if opts.Format == "" {
		opts.Format = output.FormatCLI
	}
	if opts.ColorMode == "" {
		opts.ColorMode = output.ColorAuto
	}

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode
	if opts.Output != nil {
		formatter.Writer = opts.Output
	}

	return &Context{
		Config:    cfg,
		Formatter: formatter,
		Daemon: daemon.New(cfg, daemon.Options{
			Paths:      opts.Paths,
			Version:    opts.Version,
			ConfigPath: opts.ConfigPath,
			Debug:      opts.Debug,
		}),
		Debug: opts.Debug,
	}, nil
}

// Controller returns the reminder controller. A running daemon owns the
// store, so commands go through its API; otherwise the store is opened
// in process without timers.
func (c *Context) Controller() (engine.Controller, error) {
	if c.ctrl != nil {
		return c.ctrl, nil
	}

	if c.Daemon.IsRunning() {
		addr := c.Daemon.Addr()
		c.Debugf("using daemon at %s", addr)
		c.ctrl = api.NewClient(addr, nil)
		return c.ctrl, nil
	}

	dataDir := c.Config.DataDir()
	docs, err := storage.OpenBackend(c.Config.Storage.Backend, dataDir)
	if err != nil {
		return nil, WrapDiskFullError(err, "open", dataDir)
	}
	c.Debugf("opened %s store in %s", c.Config.Storage.Backend, dataDir)

	c.offline = engine.New(storage.NewReminderStore(docs, storage.StoreOptions{Seed: c.Config.Storage.Seed}), engine.Options{})
	c.ctrl = c.offline
	return c.ctrl, nil
}

// Remote reports whether commands are sent to a running daemon.
func (c *Context) Remote() bool {
	_, ok := c.ctrl.(*api.Client)
	return ok
}

// Close closes the runtime context. It reports changes the offline store
// could not persist.
func (c *Context) Close() error {
	if c.offline == nil {
		return nil
	}
	failures := c.offline.Store().WriteFailures()
	err := c.offline.Close()
	c.offline = nil
	c.ctrl = nil
	if err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d change(s) could not be saved (see the log for details)", failures)
	}
	return nil
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// Debugf logs debug output if debug mode is enabled.
func (c *Context) Debugf(format string, args ...interface{}) {
	if c.Debug {
		logging.DebugLog(fmt.Sprintf(format, args...))
	}
}
