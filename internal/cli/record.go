package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rpggio/folio/internal/app"
	"github.com/rpggio/folio/internal/domain/activity"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Request activity.RecordRequest
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <Create|Update|Delete|Move|Add|Remove>",
		Short: "Record a change to a resource",
		Long: `Record one activity in the live log.

Move needs --origin and --target, Add needs --target and Remove needs --origin.

Examples:
  folio record Create --object https://example.org/m1 --object-type Manifest
  folio record Move --object m1 --object-type Manifest --origin c1 --target c2`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Request.Type = activity.Type(args[0])
			if err := opts.Request.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid activity", err)
			}
			return withApp(opts.RootOptions, cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				recorded, err := a.Activities.Record(ctx, opts.Request)
				if err != nil {
					return err
				}
				return out.Success(recorded, func(w io.Writer) {
					fmt.Fprintf(w, "recorded %s %s\n", recorded.Type, recorded.ID)
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Request.ObjectID, "object", "", "object id (required)")
	_ = cmd.MarkFlagRequired("object")
	cmd.Flags().StringVar(&opts.Request.ObjectType, "object-type", "", "object type, e.g. Manifest (required)")
	_ = cmd.MarkFlagRequired("object-type")
	cmd.Flags().StringVar(&opts.Request.OriginID, "origin", "", "origin container id")
	cmd.Flags().StringVar(&opts.Request.OriginType, "origin-type", "Collection", "origin container type")
	cmd.Flags().StringVar(&opts.Request.TargetID, "target", "", "target container id")
	cmd.Flags().StringVar(&opts.Request.TargetType, "target-type", "Collection", "target container type")
	cmd.Flags().StringVar(&opts.Request.Summary, "summary", "", "short description")

	return cmd
}
