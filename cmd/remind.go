package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/parser"
	"github.com/manav03panchal/watchout/internal/storage"
)

// Add command flags.
var (
	addFlagEvery string
	addFlagAt    string
)

// addCmd creates a reminder.
var addCmd = &cobra.Command{
	Use:     "add TITLE DESCRIPTION",
	Aliases: []string{"new", "a"},
	Short:   "Add a reminder",
	Long: `Add a recurring or one-time reminder.

Intervals (--every): 30s, 60s (1m), 30min (30m), 1h (hourly), 12h, 24h (daily).
Without --every or --at the reminder repeats every 30 seconds.

Fire times (--at):
  - Relative: +10m, +2h, +1d
  - Natural language: "tomorrow 9am", "friday 5pm"
  - Date/time: "2026-01-15 14:00"

Examples:
  watchout add Stretch "Stand up and stretch" --every 30m
  watchout add Water "Drink a glass of water" --every hourly
  watchout add Dentist "Call to book a checkup" --at "tomorrow 9am"`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

// listCmd lists active reminders.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List active reminders",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

// rmCmd deletes active reminders.
var rmCmd = &cobra.Command{
	Use:     "rm ID...",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete reminders and cancel their timers",
	Long: `Delete one or more active reminders. IDs may be unique prefixes.

Examples:
  watchout rm 3f2a
  watchout rm 3f2a 9c1d`,
	Args:              cobra.MinimumNArgs(1),
	ValidArgsFunction: completeReminderArgs,
	RunE:              runRemove,
}

// pauseCmd cancels a reminder's timer without deleting it.
var pauseCmd = &cobra.Command{
	Use:   "pause ID",
	Short: "Stop a reminder's timer and keep the reminder",
	Long: `Cancel the pending timer of an active reminder. The reminder stays in the
list and is armed again by 'watchout resume' or the next daemon start.`,
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeReminderArgs,
	RunE:              runPause,
}

// resumeCmd re-arms a reminder's timer.
var resumeCmd = &cobra.Command{
	Use:               "resume ID",
	Short:             "Restart a paused reminder's timer",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeReminderArgs,
	RunE:              runResume,
}

func init() {
	addCmd.Flags().StringVarP(&addFlagEvery, "every", "e", "",
		"Repeat interval: 30s, 60s, 30min, 1h, 12h, 24h")
	addCmd.Flags().StringVarP(&addFlagAt, "at", "a", "",
		"Fire once at this time")
	addCmd.MarkFlagsMutuallyExclusive("every", "at")
	addCmd.RegisterFlagCompletionFunc("every", completeIntervals)

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
}

// parseFrequency turns the add flags into a frequency.
func parseFrequency(every, at string, now time.Time) (model.Frequency, error) {
	switch {
	case at != "":
		t, err := parser.ParseFireAt(at, now)
		if err != nil {
			return model.Frequency{}, err
		}
		return model.OneTime(t), nil
	case every != "":
		i, err := parser.ParseInterval(every)
		if err != nil {
			return model.Frequency{}, err
		}
		return model.Recurring(i), nil
	}
	return model.Recurring(model.DefaultInterval), nil
}

// runAdd handles the add command.
func runAdd(cmd *cobra.Command, args []string) error {
	now := time.Now()
	freq, err := parseFrequency(addFlagEvery, addFlagAt, now)
	if err != nil {
		return err
	}

	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}

	r, err := ctrl.Add(cmd.Context(), args[0], args[1], freq)
	if err != nil {
		return err
	}
	next := nextFire(cmd.Context(), ctrl, r.ID)

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintAction("added", &r, next)
	}

	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Added reminder %s", r.ShortID()))
	cli.PrintReminder(r, next, now)
	offlineHint()
	return nil
}

// runList handles the list command.
func runList(cmd *cobra.Command, args []string) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}

	list, err := ctrl.List(cmd.Context())
	if err != nil {
		return err
	}
	timers, err := ctrl.Timers(cmd.Context())
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintReminders(list, timers)
	}

	ctx.CLIFormatter().PrintReminders(list, timers, time.Now())
	if len(list) > 0 {
		offlineHint()
	}
	return nil
}

// runRemove handles the rm command. Every id is resolved before anything
// is deleted.
func runRemove(cmd *cobra.Command, args []string) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}

	list, err := ctrl.List(cmd.Context())
	if err != nil {
		return err
	}

	targets := make([]model.Reminder, 0, len(args))
	for _, id := range args {
		r, err := storage.Resolve(list, id)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		targets = append(targets, r)
	}

	for _, r := range targets {
		if err := ctrl.Remove(cmd.Context(), r.ID); err != nil {
			return err
		}
		if ctx.IsJSON() {
			if err := ctx.JSONFormatter().PrintActionID("removed", r.ID); err != nil {
				return err
			}
			continue
		}
		ctx.CLIFormatter().Success(fmt.Sprintf("Deleted %s (%s)", r.ShortID(), r.Title))
	}
	return nil
}

// runPause handles the pause command.
func runPause(cmd *cobra.Command, args []string) error {
	ctrl, r, err := resolveActive(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := ctrl.Cancel(cmd.Context(), r.ID); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintAction("paused", &r, nil)
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Paused %s (%s)", r.ShortID(), r.Title))
	return nil
}

// runResume handles the resume command.
func runResume(cmd *cobra.Command, args []string) error {
	ctrl, r, err := resolveActive(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := ctrl.Schedule(cmd.Context(), r.ID); err != nil {
		return err
	}
	next := nextFire(cmd.Context(), ctrl, r.ID)

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintAction("scheduled", &r, next)
	}
	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Resumed %s (%s)", r.ShortID(), r.Title))
	if next != nil {
		cli.Muted("Next: " + parser.FormatFireAt(*next, time.Now()))
	}
	return nil
}

// resolveActive finds an active reminder by id or unique prefix.
func resolveActive(c context.Context, id string) (engine.Controller, model.Reminder, error) {
	ctrl, err := ctx.Controller()
	if err != nil {
		return nil, model.Reminder{}, err
	}
	list, err := ctrl.List(c)
	if err != nil {
		return nil, model.Reminder{}, err
	}
	r, err := storage.Resolve(list, id)
	if err != nil {
		return nil, model.Reminder{}, fmt.Errorf("%s: %w", id, err)
	}
	return ctrl, r, nil
}

// nextFire returns the pending fire time of id, or nil.
func nextFire(c context.Context, ctrl engine.Controller, id string) *time.Time {
	timers, err := ctrl.Timers(c)
	if err != nil {
		return nil
	}
	for _, t := range timers {
		if t.ID == id {
			at := t.NextFire
			return &at
		}
	}
	return nil
}

// offlineHint tells the user that timers wait for the daemon.
func offlineHint() {
	if ctx.Remote() || ctx.IsJSON() {
		return
	}
	ctx.CLIFormatter().Muted("The daemon is not running; reminders fire once it starts ('watchout daemon start').")
}
