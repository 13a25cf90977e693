package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpggio/folio/internal/app"
	"github.com/rpggio/folio/internal/domain/activity"
)

// DumpResult reports a dump written to a file.
type DumpResult struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Export every activity as a sync payload",
		Long: `Export the live log and the archive as one JSON array, oldest first.

Without --out the array is written to stdout as is, so it can be piped
into "folio import -" on another device.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				list, err := a.Activities.ExportAll(ctx)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(list, "", "  ")
				if err != nil {
					return err
				}
				data = append(data, '\n')

				if outPath == "" {
					_, err := out.Writer.Write(data)
					return err
				}
				if err := os.WriteFile(outPath, data, 0o644); err != nil {
					return WrapExitError(ExitCommandError, "failed to write dump", err)
				}
				result := DumpResult{Path: outPath, Count: len(list)}
				return out.Success(result, func(w io.Writer) {
					fmt.Fprintf(w, "wrote %d activities to %s\n", result.Count, result.Path)
				})
			})
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to file instead of stdout")
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Merge a sync payload from another device",
		Long: `Merge activities exported by "folio dump". Activities whose id is already
known, live or archived, are skipped. A malformed entry rejects the whole
payload.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app.App, out *OutputFormatter) error {
				result, err := a.Importer.Import(ctx, list)
				if err != nil {
					return err
				}
				return out.Success(result, func(w io.Writer) {
					fmt.Fprintf(w, "imported %d, skipped %d\n", result.Imported, result.Skipped)
				})
			})
		},
	}
}

func readPayload(cmd *cobra.Command, path string) ([]activity.Activity, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open payload", err)
		}
		defer f.Close()
		r = f
	}

	var list []activity.Activity
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to parse payload", err)
	}
	return list, nil
}
