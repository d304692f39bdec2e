package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/watchout/internal/api"
	"github.com/manav03panchal/watchout/internal/notify"
	"github.com/manav03panchal/watchout/internal/output"
)

// webhookCmd represents the webhook command.
var webhookCmd = &cobra.Command{
	Use:     "webhook [command]",
	Aliases: []string{"wh", "notify"},
	Short:   "Inspect and test notification sinks",
	Long: `Reminders are delivered to the desktop and to every enabled webhook in the
config file (notify.webhooks). Discord, Slack, Teams and generic JSON
endpoints are supported.

Examples:
  watchout webhook list
  watchout webhook test`,
	RunE: runWebhookList,
}

var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sinks",
	RunE:  runWebhookList,
}

var webhookTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test notification to every sink",
	Long: `Send a test notification to the desktop and every enabled webhook. When
the daemon is running the test goes through it, so its permission state
and rate limit apply.`,
	RunE: runWebhookTest,
}

func init() {
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookTestCmd)

	rootCmd.AddCommand(webhookCmd)
}

func runWebhookList(cmd *cobra.Command, args []string) error {
	cfg := ctx.Config.Notify

	if ctx.IsJSON() {
		hooks := make([]map[string]interface{}, 0, len(cfg.Webhooks))
		for _, w := range cfg.Webhooks {
			hooks = append(hooks, map[string]interface{}{
				"name":    w.Name,
				"type":    w.Type,
				"url":     w.MaskedURL(),
				"enabled": !w.Disabled,
			})
		}
		return ctx.Formatter.JSON(map[string]interface{}{
			"desktop":  cfg.Desktop,
			"webhooks": hooks,
		})
	}

	cli := ctx.CLIFormatter()
	desktop := "disabled"
	if cfg.Desktop {
		desktop = "enabled"
	}
	cli.Printf("Desktop notifications: %s\n\n", desktop)

	if len(cfg.Webhooks) == 0 {
		cli.Muted("No webhooks configured.")
		cli.Muted("Add them under notify.webhooks in " + configPath())
		return nil
	}

	rows := make([]output.TableRow, len(cfg.Webhooks))
	for i, w := range cfg.Webhooks {
		status := "enabled"
		if w.Disabled {
			status = "disabled"
		}
		rows[i] = output.TableRow{Columns: []string{w.Name, w.Type, status, w.MaskedURL()}}
	}
	cli.PrintTable([]string{"NAME", "TYPE", "STATUS", "URL"}, rows)
	return nil
}

func runWebhookTest(cmd *cobra.Command, args []string) error {
	var results []api.TestResult

	if ctx.Daemon.IsRunning() {
		r, err := api.NewClient(ctx.Daemon.Addr(), nil).TestNotify(cmd.Context())
		if err != nil {
			return err
		}
		results = r
	} else {
		cfg := ctx.Config.Notify
		dispatcher := notify.NewDispatcher(notify.Options{
			Desktop:  cfg.Desktop,
			Timeout:  cfg.Timeout,
			Webhooks: cfg.Webhooks,
		})
		for _, r := range dispatcher.Test(cmd.Context()) {
			results = append(results, api.NewTestResult(r))
		}
	}

	if ctx.IsJSON() {
		if results == nil {
			results = []api.TestResult{}
		}
		return ctx.Formatter.JSON(map[string]interface{}{"results": results})
	}

	cli := ctx.CLIFormatter()
	if len(results) == 0 {
		cli.Warning("No sinks are enabled.")
		return nil
	}

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
			cli.Error(fmt.Sprintf("%s: %s", r.Sink, r.Error))
			continue
		}
		cli.Success(fmt.Sprintf("%s (%dms)", r.Sink, r.DurationMs))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sinks failed", failed, len(results))
	}
	return nil
}
