package cli

import (
	"github.com/spf13/cobra"
)

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <index> <text>",
		Short: "Revise the translation of a sentence",
		Long: `Revise the translation of a sentence.

The text becomes a new translation version; the previous version is
invalidated and linked as the revision source. Newlines in the text are
folded to spaces.

Example:
  seedprov edit 3 -t spa_Latn "El zorro marrón salta."`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(rootOpts, args[0], args[1], false, cmd)
		},
	}

	return cmd
}

// NewDoneCommand creates the done command.
func NewDoneCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <index> <text>",
		Short: "Revise a translation and mark it completed",
		Long: `Revise the translation of a sentence and stamp it completed.

Completed translations appear in the exported translation file and in
the completion count reported by status.

Example:
  seedprov done 3 -t spa_Latn "El zorro marrón salta."`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(rootOpts, args[0], args[1], true, cmd)
		},
	}

	return cmd
}

func runEdit(opts *RootOptions, arg, text string, markDone bool, cmd *cobra.Command) error {
	index, err := parseIndex(arg)
	if err != nil {
		return err
	}
	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()
	session, err := env.session(opts, index)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if _, err := session.EnsureTargetLanguage(ctx); err != nil {
		return WrapExitError(ExitCommandError, "declare target language", err)
	}
	if markDone {
		if err := session.MarkDone(ctx, text, 0); err != nil {
			return WrapExitError(ExitCommandError, "mark done", err)
		}
	} else {
		if err := session.Edit(ctx, text, 0); err != nil {
			return WrapExitError(ExitCommandError, "edit translation", err)
		}
	}

	f := opts.formatter(cmd)
	if opts.Format == "json" {
		return f.Success(map[string]any{"index": index, "completed": markDone})
	}
	if markDone {
		return f.Success("completed")
	}
	return f.Success("revised")
}
