package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/folio/internal/app"
	"github.com/rpggio/folio/internal/domain/activity"
)

// NewRecentCommand creates the recent command.
func NewRecentCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "recent",
		Short:         "List the most recent activities, newest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return NewExitError(ExitCommandError, "--limit must not be negative")
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				list, err := a.Activities.GetRecentActivities(ctx, limit)
				if err != nil {
					return err
				}
				return out.Success(list, func(w io.Writer) { writeActivities(w, list) })
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", activity.DefaultRecentLimit, "maximum number of activities")
	return cmd
}

// NewSinceCommand creates the since command.
func NewSinceCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "since <timestamp>",
		Short:         "List activities that ended after an RFC 3339 timestamp",
		Example:       `  folio since 2024-03-01T12:00:00.000Z`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := time.Parse(time.RFC3339Nano, args[0]); err != nil {
				return WrapExitError(ExitCommandError, "invalid timestamp", err)
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				list, err := a.Activities.GetActivitiesSince(ctx, args[0])
				if err != nil {
					return err
				}
				return out.Success(list, func(w io.Writer) { writeActivities(w, list) })
			})
		},
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:           "history <object-id>",
		Short:         "Show the change history of one resource",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				var (
					list []activity.Activity
					err  error
				)
				switch scope {
				case "all":
					list, err = a.Activities.GetAllActivitiesForObject(ctx, args[0])
				case "live":
					list, err = a.Activities.GetActivitiesForObject(ctx, args[0])
				case "archive":
					list, err = a.Activities.GetArchivedActivitiesForObject(ctx, args[0])
				default:
					return NewExitError(ExitCommandError, fmt.Sprintf("invalid scope %q: must be live, archive or all", scope))
				}
				if err != nil {
					return err
				}
				return out.Success(list, func(w io.Writer) { writeActivities(w, list) })
			})
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "all", "stores to read (live|archive|all)")
	return cmd
}

// StatsResult combines live log and archive statistics.
type StatsResult struct {
	Live    *activity.Stats        `json:"live"`
	Archive *activity.ArchiveStats `json:"archive"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "stats",
		Short:         "Summarize the live log and the archive",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				live, err := a.Activities.GetStats(ctx)
				if err != nil {
					return err
				}
				archive, err := a.Activities.GetArchiveStats(ctx)
				if err != nil {
					return err
				}
				result := StatsResult{Live: live, Archive: archive}
				return out.Success(result, func(w io.Writer) { writeStats(w, result) })
			})
		},
	}
}

func writeStats(w io.Writer, s StatsResult) {
	fmt.Fprintf(w, "live:     %d (max %d, keep %d after rotation)\n", s.Archive.MainCount, s.Archive.MaxEntries, s.Archive.RetentionCount)
	fmt.Fprintf(w, "archive:  %d\n", s.Archive.ArchiveCount)
	fmt.Fprintf(w, "total:    %d\n", s.Archive.TotalCount)
	if s.Live.Oldest != "" {
		fmt.Fprintf(w, "range:    %s .. %s\n", s.Live.Oldest, s.Live.Newest)
	}
	types := make([]string, 0, len(s.Live.ByType))
	for t := range s.Live.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-8s %d\n", t, s.Live.ByType[t])
	}
}
