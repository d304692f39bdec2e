package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/watchout/internal/engine"
	"github.com/manav03panchal/watchout/internal/model"
	"github.com/manav03panchal/watchout/internal/runtime"
)

// completionController initializes the context for completion, which runs
// without the persistent pre-run hook.
func completionController() (engine.Controller, error) {
	if ctx == nil {
		opts := runtimeOptions()
		opts.ConfigPath = flagConfig
		var err error
		ctx, err = runtime.New(opts)
		if err != nil {
			return nil, err
		}
	}
	return ctx.Controller()
}

// completeIDs suggests short ids with titles from the list returned by load.
func completeIDs(toComplete string, load func(context.Context) ([]model.Reminder, error)) ([]string, cobra.ShellCompDirective) {
	list, err := load(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var suggestions []string
	for _, r := range list {
		shortID := r.ShortID()
		if strings.HasPrefix(shortID, toComplete) {
			suggestions = append(suggestions, fmt.Sprintf("%s\t%s", shortID, r.Title))
		}
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

// completeReminderArgs provides completion for active reminder IDs.
func completeReminderArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 && cmd.Name() != "rm" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctrl, err := completionController()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return completeIDs(toComplete, ctrl.List)
}

// completeLibraryArgs provides completion for library reminder IDs.
func completeLibraryArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctrl, err := completionController()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return completeIDs(toComplete, ctrl.ListLibrary)
}

// completeIntervals completes --every values.
func completeIntervals(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, i := range model.Intervals() {
		if strings.HasPrefix(string(i), toComplete) {
			out = append(out, string(i)+"\t"+i.Label())
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
