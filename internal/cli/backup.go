package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seedcat/seedprov/internal/backup"
	"github.com/seedcat/seedprov/internal/provjson"
)

// BackupOptions holds flags for the backup command.
type BackupOptions struct {
	*RootOptions
	Restore bool
}

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "backup <index>",
		Short: "Back up a sentence to the storage service",
		Long: `Upload the current translation and provenance document of a
sentence to the storage service. With --restore, download the sentence's
provenance document instead and replay it into the local store.

Examples:
  seedprov backup 3 -t spa_Latn
  seedprov backup 3 -t spa_Latn --restore`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Restore, "restore", false, "download and replay the sentence's provenance document")

	return cmd
}

func runBackup(opts *BackupOptions, arg string, cmd *cobra.Command) error {
	index, err := parseIndex(arg)
	if err != nil {
		return err
	}
	target, err := requireTarget(opts.RootOptions)
	if err != nil {
		return err
	}
	env, err := openEnv(opts.RootOptions)
	if err != nil {
		return err
	}
	defer env.Close()
	if err := env.requireService("backup", env.cfg.Services.Backup); err != nil {
		return err
	}
	client := backup.New(env.cfg.Services.Backup)

	ctx := cmd.Context()
	f := opts.formatter(cmd)
	if opts.Restore {
		doc, ok, err := client.Download(ctx, target, index)
		if err != nil {
			return WrapExitError(ExitCommandError, "download backup", err)
		}
		if !ok {
			return NewExitError(ExitFailure, fmt.Sprintf("no backup found for %s sentence %d", target, index))
		}
		ref, ok, err := provjson.Deserialize(ctx, env.store, doc)
		if err != nil {
			return WrapExitError(ExitCommandError, "replay backup", err)
		}
		if !ok {
			return NewExitError(ExitFailure, "backup document contains no provenance records")
		}
		if opts.Format == "json" {
			return f.Success(ref)
		}
		return f.Success(fmt.Sprintf("restored %s sentence %d", ref.TargetLanguage, ref.Index))
	}

	uploaded, err := client.Upload(ctx, env.store, env.cfg.SourceLanguage, target, index)
	if err != nil {
		return WrapExitError(ExitCommandError, "upload backup", err)
	}
	if !uploaded {
		return NewExitError(ExitFailure, fmt.Sprintf("sentence %d has no translation to back up", index))
	}
	if opts.Format == "json" {
		return f.Success(map[string]any{"index": index, "uploaded": true})
	}
	return f.Success("uploaded")
}
