package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seedcat/seedprov/internal/record"
)

// translationVersion is the JSON view of one translation version.
type translationVersion struct {
	Content       string `json:"content"`
	GeneratedAt   int64  `json:"generated_at"`
	CompletedAt   int64  `json:"completed_at,omitempty"`
	InvalidatedAt int64  `json:"invalidated_at,omitempty"`
	QuotedFrom    string `json:"quoted_from,omitempty"`
	RevisionOf    string `json:"revision_of,omitempty"`
}

// NewTranslationsCommand creates the translations command.
func NewTranslationsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "translations <index>",
		Short: "List the translation versions of a sentence",
		Long: `List every translation version recorded for a sentence, oldest
first, with its completion, invalidation, and revision lineage.

Example:
  seedprov translations 3 -t spa_Latn`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslations(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runTranslations(opts *RootOptions, arg string, cmd *cobra.Command) error {
	index, err := parseIndex(arg)
	if err != nil {
		return err
	}
	target, err := requireTarget(opts)
	if err != nil {
		return err
	}
	env, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	versions, err := env.store.TranslationVersions(cmd.Context(), target, index)
	if err != nil {
		return WrapExitError(ExitCommandError, "read translation versions", err)
	}
	if len(versions) == 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("sentence %d has no translations in %s", index, target))
	}

	views := make([]translationVersion, len(versions))
	for i, entity := range versions {
		views[i] = translationVersion{
			Content:       entity.Attributes.GetString(record.AttrContent),
			GeneratedAt:   entity.GeneratedAtTime,
			CompletedAt:   entity.Attributes.GetInt(record.AttrCompletedAtTime),
			InvalidatedAt: entity.InvalidatedAtTime,
			QuotedFrom:    entity.WasQuotedFrom,
			RevisionOf:    entity.WasRevisionOf.String(),
		}
	}

	f := opts.formatter(cmd)
	if opts.Format == "json" {
		return f.Success(views)
	}
	for i, view := range views {
		marker := " "
		switch {
		case view.CompletedAt != 0:
			marker = "*"
		case view.InvalidatedAt != 0:
			marker = "x"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s v%d %s\n", marker, i+1, view.Content)
		if view.QuotedFrom != "" {
			f.VerboseLog("  quoted from %s", view.QuotedFrom)
		}
		if view.RevisionOf != "" {
			f.VerboseLog("  revision of %s", view.RevisionOf)
		}
	}
	return nil
}
