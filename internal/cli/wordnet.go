package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewWordnetCommand creates the wordnet command.
func NewWordnetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordnet <index> <term>",
		Short: "Look up a term in WordNet while translating a sentence",
		Long: `Look up a term in WordNet while translating a sentence.

Each dictionary entry is recorded as a query result quoted from the
WordNet database. The lookup is only recorded once the sentence has
been annotated.

Example:
  seedprov wordnet 3 -t spa_Latn fox`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWordnet(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runWordnet(opts *RootOptions, arg, term string, cmd *cobra.Command) error {
	index, err := parseIndex(arg)
	if err != nil {
		return err
	}
	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()
	if err := env.requireService("wordnet", env.cfg.Services.Wordnet); err != nil {
		return err
	}
	session, err := env.session(opts, index)
	if err != nil {
		return err
	}

	records, err := session.QueryWordnet(cmd.Context(), term)
	if err != nil {
		return WrapExitError(ExitCommandError, "query wordnet", err)
	}
	if len(records) == 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("no WordNet entries for %q", term))
	}

	f := opts.formatter(cmd)
	if opts.Format == "json" {
		return f.Success(records)
	}
	for _, entry := range records {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", entry.Lemma, entry.Pos, entry.Gloss)
		if len(entry.Synonyms) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  synonyms: %s\n", strings.Join(entry.Synonyms, ", "))
		}
		for _, example := range entry.Examples {
			fmt.Fprintf(cmd.OutOrStdout(), "  %q\n", example)
		}
	}
	return nil
}
