package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/rpggio/folio/internal/app"
	"github.com/rpggio/folio/internal/domain/activity"
	"github.com/rpggio/folio/internal/domain/discovery"
	"github.com/rpggio/folio/internal/domain/reconcile"
)

// withApp opens the App for the duration of fn. Errors fn returns are
// classified into exit codes; in JSON mode they are also written to stdout
// as an error envelope.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, a *app.App, out *OutputFormatter) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	a, err := opts.open(ctx, cmd)
	if err != nil {
		if out.Format == "json" {
			out.Error(err)
		}
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			out.VerboseLog("close: %v", cerr)
		}
	}()

	if err := fn(ctx, a, out); err != nil {
		err = classify(err)
		if out.Format == "json" {
			out.Error(err)
		}
		return err
	}
	return nil
}

func classify(err error) error {
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return err
	case errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, reconcile.ErrInvalidActivity),
		errors.Is(err, discovery.ErrInvalidPage):
		return WrapExitError(ExitCommandError, "invalid input", err)
	default:
		return WrapExitError(ExitFailure, "command failed", err)
	}
}
