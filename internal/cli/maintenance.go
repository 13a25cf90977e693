package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rpggio/folio/internal/app"
)

// NewRotateCommand creates the rotate command.
func NewRotateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rotate",
		Short:         "Run the retention check now",
		Long:          "Move the oldest activities into the archive if the live log exceeds its maximum.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				result, err := a.Worker.Flush(ctx)
				if err != nil {
					return err
				}
				return out.Success(result, func(w io.Writer) {
					if !result.Rotated {
						fmt.Fprintf(w, "%d activities, below the limit of %d\n", result.Count, a.Retention.Policy().MaxEntries)
						return
					}
					fmt.Fprintf(w, "archived %d of %d activities\n", result.Moved, result.Count)
				})
			})
		},
	}
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Delete every activity, live and archived",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "refusing to clear without --yes")
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				if err := a.Activities.ClearAll(ctx); err != nil {
					return err
				}
				return out.Success(map[string]bool{"cleared": true}, func(w io.Writer) {
					fmt.Fprintln(w, "cleared")
				})
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}
