// Package cmd provides the CLI commands for WatchOut.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/watchout/internal/logging"
	"github.com/manav03panchal/watchout/internal/output"
	"github.com/manav03panchal/watchout/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
	flagConfig string
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// runtimeOptions returns the base options for the runtime context.
var runtimeOptions = runtime.DefaultOptions

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "watchout",
	Short: "Recurring and one-time desktop reminders",
	Long: `WatchOut keeps a list of reminders and fires a notification for each one
on its schedule. A background daemon owns the timers; every command talks to
it when it is running and edits the local store otherwise.

Examples:
  watchout add Stretch "Stand up and stretch" --every 30m
  watchout add Dentist "Call to book a checkup" --at "tomorrow 9am"
  watchout list
  watchout daemon start
  watchout dashboard`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion and help commands (but allow __complete for dynamic completions)
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		format, err := output.ParseFormat(flagFormat)
		if err != nil {
			return err
		}
		colorMode, err := output.ParseColorMode(flagColor)
		if err != nil {
			return err
		}

		if flagDebug {
			logging.InitDebug()
		}

		opts := runtimeOptions()
		opts.ConfigPath = flagConfig
		opts.Version = Version
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		ctx, err = runtime.New(opts)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: list active reminders
		return runList(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Errors are printed here, with their suggestion.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(err)
	}
	if ctx != nil {
		ctx.Close()
	}
	return err
}

func printError(err error) {
	if ctx != nil && ctx.IsJSON() {
		ctx.JSONFormatter().PrintError(err)
		return
	}
	fmt.Fprintln(os.Stderr, "Error: "+runtime.FormatError(err))
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $XDG_CONFIG_HOME/watchout/config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]string{
				"version":    Version,
				"commit":     Commit,
				"build_time": BuildTime,
			})
		}
		cmd.Printf("watchout %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
		return nil
	},
}
