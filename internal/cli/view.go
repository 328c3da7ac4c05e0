package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewViewCommand creates the view command.
func NewViewCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <index>",
		Short: "Fetch a source sentence and record the view",
		Long: `Fetch a source sentence from the dataset service and record the view.

The first view of a sentence quotes its text into the record store as a
sentences entity derived from the source corpus. Later views are
recorded without writing a second copy.

Example:
  seedprov view 3 -t spa_Latn`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runView(opts *RootOptions, arg string, cmd *cobra.Command) error {
	index, err := parseIndex(arg)
	if err != nil {
		return err
	}
	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()
	if err := env.requireService("dataset", env.cfg.Services.Dataset); err != nil {
		return err
	}
	session, err := env.session(opts, index)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	created, err := session.EnsureTargetLanguage(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "declare target language", err)
	}
	sentence, ok, err := session.ViewSentence(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "view sentence", err)
	}
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("sentence %d is not in the %s corpus", index, env.cfg.SourceLanguage))
	}

	f := opts.formatter(cmd)
	if created {
		f.VerboseLog("declared target language %s", opts.Target)
	}
	if opts.Format == "json" {
		return f.Success(sentence)
	}
	fmt.Fprintln(cmd.OutOrStdout(), sentence.Text)
	if sentence.Source != "" {
		f.VerboseLog("source: %s", sentence.Source)
	}
	return nil
}
