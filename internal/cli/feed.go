package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rpggio/folio/internal/app"
)

// baseURL prefers the flag, then the configured server base URL, then the
// local listen address.
func baseURL(flag string, a *app.App) string {
	if flag != "" {
		return flag
	}
	if a.Config.Server.BaseURL != "" {
		return a.Config.Server.BaseURL
	}
	return fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)
}

// NewCollectionCommand creates the collection command.
func NewCollectionCommand(rootOpts *RootOptions) *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:           "collection",
		Short:         "Print the Change Discovery OrderedCollection",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				c, err := a.Discovery.Collection(ctx, baseURL(base, a))
				if err != nil {
					return err
				}
				return out.Success(c, func(w io.Writer) {
					fmt.Fprintf(w, "%s\n  totalItems: %d\n", c.ID, c.TotalItems)
					if c.First != nil {
						fmt.Fprintf(w, "  first: %s\n  last:  %s\n", c.First.ID, c.Last.ID)
					}
				})
			})
		},
	}
	cmd.Flags().StringVar(&base, "base-url", "", "public base URL used in ids")
	return cmd
}

// NewPageCommand creates the page command.
func NewPageCommand(rootOpts *RootOptions) *cobra.Command {
	var base string

	cmd := &cobra.Command{
		Use:           "page <n>",
		Short:         "Print one Change Discovery OrderedCollectionPage",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid page number", err)
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				page, err := a.Discovery.Page(ctx, baseURL(base, a), n)
				if err != nil {
					return err
				}
				return out.Success(page, func(w io.Writer) {
					fmt.Fprintf(w, "%s (startIndex %d)\n", page.ID, page.StartIndex)
					writeActivities(w, page.OrderedItems)
				})
			})
		},
	}
	cmd.Flags().StringVar(&base, "base-url", "", "public base URL used in ids")
	return cmd
}
