package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewReopenCommand creates the reopen command.
func NewReopenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reopen <index>",
		Short: "Clear the completion stamp on a translation",
		Long: `Clear the completion stamp on the current translation of a sentence.

The translation text is kept; only the completion timestamp is removed,
so the sentence drops out of the exported translation file until it is
marked done again.

Example:
  seedprov reopen 3 -t spa_Latn`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReopen(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runReopen(opts *RootOptions, arg string, cmd *cobra.Command) error {
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

	reopened, err := session.Reopen(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "reopen translation", err)
	}
	if !reopened {
		return NewExitError(ExitFailure, fmt.Sprintf("sentence %d has no completed translation to reopen", index))
	}

	f := opts.formatter(cmd)
	if opts.Format == "json" {
		return f.Success(map[string]any{"index": index, "reopened": true})
	}
	return f.Success("reopened")
}
