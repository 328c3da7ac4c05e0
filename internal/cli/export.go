package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seedcat/seedprov/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Prov int64
	Out  string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the translation file or a provenance document",
		Long: `Export the plain-text translation file for the target language: one
line per sentence, blank where no completed translation exists.

With --prov, export the PROV-JSON provenance document of a single
sentence instead.

Examples:
  seedprov export -t spa_Latn -o spa_Latn.txt
  seedprov export -t spa_Latn --prov 3`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Prov, "prov", 0, "export the provenance document of this sentence")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "write to a file instead of stdout")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	target, err := requireTarget(opts.RootOptions)
	if err != nil {
		return err
	}
	env, err := openEnv(opts.RootOptions)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	var data []byte
	if opts.Prov > 0 {
		data, err = export.Prov(ctx, env.store, env.cfg.SourceLanguage, target, opts.Prov)
		if err != nil {
			return WrapExitError(ExitCommandError, "export provenance", err)
		}
	} else {
		data, err = export.Text(ctx, env.store, target, env.cfg.SentenceCount)
		if err != nil {
			return WrapExitError(ExitCommandError, "export translations", err)
		}
	}

	if opts.Out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.Out, data, 0o644); err != nil {
		return WrapExitError(ExitCommandError, "write export file", err)
	}
	opts.formatter(cmd).VerboseLog("wrote %d bytes to %s", len(data), opts.Out)
	return nil
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a provenance document into the record store",
		Long: `Validate a PROV-JSON provenance document and replay its records
into the store. Existing records for the same sentence are replaced.

Example:
  seedprov import spa_Latn-3.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "read document", err)
	}
	ref, ok, err := export.Import(cmd.Context(), env.store, data)
	if err != nil {
		return WrapExitError(ExitCommandError, "import document", err)
	}
	if !ok {
		return NewExitError(ExitFailure, "document contains no provenance records")
	}

	f := opts.formatter(cmd)
	if opts.Format == "json" {
		return f.Success(ref)
	}
	return f.Success(fmt.Sprintf("imported %s sentence %d", ref.TargetLanguage, ref.Index))
}
