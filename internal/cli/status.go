package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report translation progress for a target language",
		Long: `Report how many sentences of the corpus have a completed
translation in the target language.

Example:
  seedprov status -t spa_Latn`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, cmd)
		},
	}

	return cmd
}

func runStatus(opts *RootOptions, cmd *cobra.Command) error {
	target, err := requireTarget(opts)
	if err != nil {
		return err
	}
	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	completed, err := env.store.CountCompletedTranslations(cmd.Context(), target)
	if err != nil {
		return WrapExitError(ExitCommandError, "count completed translations", err)
	}

	f := opts.formatter(cmd)
	if opts.Format == "json" {
		return f.Success(map[string]any{
			"target":    target,
			"completed": completed,
			"total":     env.cfg.SentenceCount,
		})
	}
	return f.Success(fmt.Sprintf("%s: %d/%d translations completed", target, completed, env.cfg.SentenceCount))
}
