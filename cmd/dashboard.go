package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/manav03panchal/watchout/internal/tui"
)

// dashboardCmd represents the dashboard command.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "tui"},
	Short:   "Open the interactive TUI dashboard",
	Long: `Open an interactive terminal dashboard of the active reminders.

The dashboard shows:
  - Every active reminder with a live countdown to its next fire
  - How many reminders are saved in the library

Keyboard Controls:
  ↑/↓ - Select a reminder
  d   - Delete the selected reminder
  s   - Save the selected reminder to the library
  r   - Refresh data
  q   - Quit dashboard

Examples:
  watchout dashboard
  watchout dash`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("the dashboard needs an interactive terminal")
	}

	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}

	return tui.Run(tui.DashboardConfig{
		Controller: ctrl,
		Remote:     ctx.Remote(),
	})
}
