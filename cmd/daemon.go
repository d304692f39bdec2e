package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/watchout/internal/api"
	"github.com/manav03panchal/watchout/internal/daemon"
	"github.com/manav03panchal/watchout/internal/errors"
	"github.com/manav03panchal/watchout/internal/logging"
)

// Daemon command flags.
var (
	daemonStartFlagForeground bool
	daemonLogsFlagTail        int
	daemonLogsFlagFollow      bool
)

// daemonCmd represents the daemon command.
var daemonCmd = &cobra.Command{
	Use:     "daemon [command]",
	Aliases: []string{"bg"},
	Short:   "Manage the background daemon",
	Long: `Manage the WatchOut daemon. The daemon owns the reminder store, arms a
timer for every active reminder and delivers notifications to the desktop
and the configured webhooks. It serves a local API that the other commands use.

Examples:
  watchout daemon start
  watchout daemon status
  watchout daemon stop
  watchout daemon logs --tail 50`,
	RunE: runDaemonStatus,
}

// daemonStartCmd starts the daemon.
var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the background daemon",
	Long: `Start the WatchOut daemon.

Examples:
  watchout daemon start           # Start in background
  watchout daemon start -f        # Start in foreground (for debugging)`,
	RunE: runDaemonStart,
}

// daemonStopCmd stops the daemon.
var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	RunE:  runDaemonStop,
}

// daemonStatusCmd shows daemon status.
var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runDaemonStatus,
}

// daemonLogsCmd shows daemon logs.
var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View daemon logs",
	Long: `View the daemon log file.

Examples:
  watchout daemon logs
  watchout daemon logs --tail 50
  watchout daemon logs --follow`,
	RunE: runDaemonLogs,
}

func init() {
	daemonStartCmd.Flags().BoolVarP(&daemonStartFlagForeground, "foreground", "f", false,
		"Run in foreground (don't daemonize)")

	daemonLogsCmd.Flags().IntVarP(&daemonLogsFlagTail, "tail", "n", 20,
		"Number of lines to show")
	daemonLogsCmd.Flags().BoolVar(&daemonLogsFlagFollow, "follow", false,
		"Follow log output (like tail -f)")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonLogsCmd)

	rootCmd.AddCommand(daemonCmd)
}

// runDaemonStart handles the daemon start command.
func runDaemonStart(cmd *cobra.Command, args []string) error {
	d := ctx.Daemon

	if daemonStartFlagForeground {
		if !ctx.Debug {
			// Stdout and stderr are the daemon log when started in the background.
			logging.Init(logging.DaemonConfig(os.Stderr))
		}
		if !ctx.IsJSON() {
			fmt.Fprintln(os.Stderr, "Starting watchout daemon (foreground mode)...")
		}
		err := d.Run(cmd.Context())
		if errors.Is(err, daemon.ErrAlreadyRunning) {
			return fmt.Errorf("%w (PID: %d)", err, d.Status().PID)
		}
		if err != nil {
			logging.Error("daemon failed", logging.KeyError, err)
		}
		return err
	}

	if status := d.Status(); status.Running {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]interface{}{
				"status": "already_running",
				"pid":    status.PID,
			})
		}
		return fmt.Errorf("%w (PID: %d)", daemon.ErrAlreadyRunning, status.PID)
	}

	if !ctx.IsJSON() {
		ctx.Formatter.Println("Starting watchout daemon...")
	}
	pid, err := d.StartBackground()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"status": "started",
			"pid":    pid,
			"addr":   d.Addr(),
		})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Daemon started (PID: %d)", pid))
	return nil
}

// runDaemonStop handles the daemon stop command.
func runDaemonStop(cmd *cobra.Command, args []string) error {
	d := ctx.Daemon

	status := d.Status()
	if !status.Running {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]interface{}{"status": "not_running"})
		}
		ctx.Formatter.Println("Daemon is not running")
		return nil
	}

	if !ctx.IsJSON() {
		ctx.Formatter.Println("Stopping watchout daemon...")
	}
	if err := d.Stop(); err != nil && !errors.Is(err, errors.ErrDaemonNotRunning) {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"status": "stopped",
			"pid":    status.PID,
		})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Daemon stopped (was PID: %d)", status.PID))
	return nil
}

// runDaemonStatus handles the daemon status command.
func runDaemonStatus(cmd *cobra.Command, args []string) error {
	status := ctx.Daemon.Status()

	var health map[string]any
	if status.Running {
		c, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
		defer cancel()
		h, err := api.NewClient(status.Addr, nil).Health(c)
		if err != nil {
			logging.Warn("daemon health check failed", logging.KeyError, err)
		}
		health = h
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]interface{}{
			"daemon": status,
			"health": health,
		})
	}

	f := ctx.Formatter
	ctx.CLIFormatter().Title("WatchOut Daemon Status")
	f.Println("")

	if !status.Running {
		f.Printf("  Status:    stopped\n")
		f.Printf("  Log:       %s\n", status.LogPath)
		f.Println("")
		f.Println("Start with: watchout daemon start")
		return nil
	}

	f.Printf("  Status:    running\n")
	f.Printf("  PID:       %d\n", status.PID)
	f.Printf("  Address:   %s\n", status.Addr)
	if status.Version != "" {
		f.Printf("  Version:   %s\n", status.Version)
	}
	f.Printf("  Uptime:    %s\n", status.Uptime)
	f.Printf("  Log:       %s\n", status.LogPath)

	if health != nil {
		f.Println("")
		f.Printf("  Health:    %v\n", health["status"])
		f.Printf("  Backend:   %v\n", health["backend"])
		f.Printf("  Reminders: %v active, %v in library\n", health["reminders"], health["library"])
		f.Printf("  Timers:    %v\n", health["timers"])
		if sinks, ok := health["sinks"].([]any); ok {
			f.Printf("  Sinks:     %v\n", sinks)
		}
	}
	return nil
}

// runDaemonLogs handles the daemon logs command.
func runDaemonLogs(cmd *cobra.Command, args []string) error {
	logPath := ctx.Daemon.Paths().LogFile()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		ctx.Formatter.Println("No log file found.")
		ctx.Formatter.Printf("Log path: %s\n", logPath)
		return nil
	}

	lines, err := daemon.TailLog(logPath, daemonLogsFlagTail)
	if err != nil {
		return err
	}
	for _, line := range lines {
		ctx.Formatter.Println(line)
	}

	if !daemonLogsFlagFollow {
		return nil
	}

	c, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return daemon.FollowLog(c, logPath, ctx.Formatter.Writer, 250*time.Millisecond)
}
