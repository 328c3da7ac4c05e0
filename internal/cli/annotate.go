package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seedcat/seedprov/internal/record"
)

// AnnotateOptions holds flags for the annotate command.
type AnnotateOptions struct {
	*RootOptions
	Show bool
}

// NewAnnotateCommand creates the annotate command.
func NewAnnotateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnnotateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "annotate <index>",
		Short: "Tokenize and part-of-speech tag a source sentence",
		Long: `Tokenize and part-of-speech tag a source sentence.

Tags supplied by the dataset service are preferred; for languages the
service has no tagger for, a local annotator produces the tokens. The
tokens and tags are written once per sentence.

Example:
  seedprov annotate 3 -t spa_Latn --show`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Show, "show", false, "print the tag pairs and record the display")

	return cmd
}

func runAnnotate(opts *AnnotateOptions, arg string, cmd *cobra.Command) error {
	index, err := parseIndex(arg)
	if err != nil {
		return err
	}
	env, err := openEnv(opts.RootOptions)
	if err != nil {
		return err
	}
	defer env.Close()
	if err := env.requireService("dataset", env.cfg.Services.Dataset); err != nil {
		return err
	}
	session, err := env.session(opts.RootOptions, index)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	wrote, err := session.Annotate(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "annotate sentence", err)
	}

	f := opts.formatter(cmd)
	if !opts.Show {
		if opts.Format == "json" {
			return f.Success(map[string]any{"annotated": wrote})
		}
		if wrote {
			fmt.Fprintln(cmd.OutOrStdout(), "annotated")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "already annotated")
		}
		return nil
	}

	shown, err := session.ShowTags(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "show tags", err)
	}
	if !shown {
		return NewExitError(ExitFailure, fmt.Sprintf("sentence %d has no tags to show", index))
	}
	tags, err := storedTags(cmd, env, index)
	if err != nil {
		return err
	}
	if err := session.HideTags(ctx); err != nil {
		return WrapExitError(ExitCommandError, "close tag display", err)
	}

	if opts.Format == "json" {
		return f.Success(map[string]any{"annotated": wrote, "tags": tags})
	}
	for _, pair := range tags {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", pair[0], pair[1])
	}
	return nil
}

// storedTags reads the tag pairs recorded for a source sentence.
func storedTags(cmd *cobra.Command, env *commandEnv, index int64) ([][2]string, error) {
	key := record.SentenceKey(env.cfg.SourceLanguage, index)
	entity, ok, err := env.store.GetEntity(cmd.Context(), record.PosTags, key)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "read tags", err)
	}
	if !ok {
		return nil, NewExitError(ExitFailure, fmt.Sprintf("sentence %d has not been annotated", index))
	}
	return entity.Attributes.GetPairs(record.AttrContent), nil
}
