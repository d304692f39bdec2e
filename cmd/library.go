package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/watchout/internal/storage"
)

// libraryCmd represents the library command.
var libraryCmd = &cobra.Command{
	Use:     "library [command]",
	Aliases: []string{"lib"},
	Short:   "Manage saved reminders",
	Long: `The library keeps copies of reminders you may want to activate again.
Saving a reminder does not remove it from the active list.

Examples:
  watchout library
  watchout library save 3f2a
  watchout library activate 3f2a
  watchout library remove 3f2a`,
	Args: cobra.NoArgs,
	RunE: runLibraryList,
}

var libraryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved reminders",
	Args:    cobra.NoArgs,
	RunE:    runLibraryList,
}

var librarySaveCmd = &cobra.Command{
	Use:               "save ID",
	Short:             "Save an active reminder to the library",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeReminderArgs,
	RunE:              runLibrarySave,
}

var libraryRemoveCmd = &cobra.Command{
	Use:               "remove ID",
	Aliases:           []string{"rm"},
	Short:             "Remove a reminder from the library",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeLibraryArgs,
	RunE:              runLibraryRemove,
}

var libraryActivateCmd = &cobra.Command{
	Use:               "activate ID",
	Short:             "Copy a saved reminder back into the active list",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeLibraryArgs,
	RunE:              runLibraryActivate,
}

func init() {
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(librarySaveCmd)
	libraryCmd.AddCommand(libraryRemoveCmd)
	libraryCmd.AddCommand(libraryActivateCmd)

	rootCmd.AddCommand(libraryCmd)
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}
	lib, err := ctrl.ListLibrary(cmd.Context())
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintLibrary(lib)
	}
	ctx.CLIFormatter().PrintLibrary(lib)
	return nil
}

func runLibrarySave(cmd *cobra.Command, args []string) error {
	ctrl, r, err := resolveActive(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	saved, err := ctrl.SaveToLibrary(cmd.Context(), r.ID)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintAction("saved", &saved, nil)
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Saved %s (%s) to the library", saved.ShortID(), saved.Title))
	return nil
}

func runLibraryRemove(cmd *cobra.Command, args []string) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}
	lib, err := ctrl.ListLibrary(cmd.Context())
	if err != nil {
		return err
	}
	r, err := storage.Resolve(lib, args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	if err := ctrl.RemoveFromLibrary(cmd.Context(), r.ID); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintActionID("removed", r.ID)
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Removed %s (%s) from the library", r.ShortID(), r.Title))
	return nil
}

func runLibraryActivate(cmd *cobra.Command, args []string) error {
	ctrl, err := ctx.Controller()
	if err != nil {
		return err
	}
	lib, err := ctrl.ListLibrary(cmd.Context())
	if err != nil {
		return err
	}
	r, err := storage.Resolve(lib, args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	activated, err := ctrl.ActivateFromLibrary(cmd.Context(), r.ID)
	if err != nil {
		return err
	}
	next := nextFire(cmd.Context(), ctrl, activated.ID)

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintAction("activated", &activated, next)
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Activated %s (%s)", activated.ShortID(), activated.Title))
	offlineHint()
	return nil
}
