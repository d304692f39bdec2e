package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/watchout/internal/config"
	"github.com/manav03panchal/watchout/internal/output"
)

// configCmd represents the config command.
var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg"},
	Short:   "Show the effective configuration",
	Long: `Show the configuration after defaults, the YAML file and WATCHOUT_
environment overrides have been applied.

Environment variables use double underscores between sections:
  WATCHOUT_STORAGE__BACKEND=sqlite
  WATCHOUT_DAEMON__ADDR=127.0.0.1:7400

Examples:
  watchout config
  watchout config path`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx.Formatter.Println(configPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configPath returns the config file in use.
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.DefaultPath()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := ctx.Config

	settings := []struct {
		key   string
		value interface{}
	}{
		{"storage.backend", cfg.Storage.Backend},
		{"storage.path", cfg.DataDir()},
		{"storage.seed", cfg.Storage.Seed},
		{"daemon.addr", cfg.Daemon.Addr},
		{"daemon.startup_wait", cfg.Daemon.StartupWait},
		{"daemon.kill_timeout", cfg.Daemon.KillTimeout},
		{"daemon.shutdown_timeout", cfg.Daemon.ShutdownTimeout},
		{"notify.desktop", cfg.Notify.Desktop},
		{"notify.rate_per_sec", cfg.Notify.RatePerSec},
		{"notify.timeout", cfg.Notify.Timeout},
		{"notify.webhooks", len(cfg.Notify.Webhooks)},
		{"scheduler.delivery_timeout", cfg.Scheduler.DeliveryTimeout},
	}

	if ctx.IsJSON() {
		m := make(map[string]interface{}, len(settings)+1)
		for _, s := range settings {
			m[s.key] = fmt.Sprint(s.value)
		}
		m["config_file"] = configPath()
		return ctx.Formatter.JSON(m)
	}

	cli := ctx.CLIFormatter()
	cli.Muted("# " + configPath())
	rows := make([]output.TableRow, len(settings))
	for i, s := range settings {
		rows[i] = output.TableRow{Columns: []string{s.key, fmt.Sprint(s.value)}}
	}
	cli.PrintTable([]string{"KEY", "VALUE"}, rows)
	return nil
}
