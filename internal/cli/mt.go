package cli

import (
	"github.com/spf13/cobra"
)

// MTOptions holds flags for the mt command.
type MTOptions struct {
	*RootOptions
	Adopt bool
}

// NewMTCommand creates the mt command.
func NewMTCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MTOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mt <index>",
		Short: "Machine translate a sentence",
		Long: `Machine translate a sentence with the configured translation service.

With no translation in progress the suggestion becomes the current
translation, quoted from the machine translation. Against existing
content a comparison is recorded instead; pass --adopt to replace the
current translation with the suggestion.

Example:
  seedprov mt 3 -t spa_Latn --adopt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMT(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Adopt, "adopt", false, "replace the current translation with the suggestion")

	return cmd
}

func runMT(opts *MTOptions, arg string, cmd *cobra.Command) error {
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
	if err := env.requireService("translation", env.cfg.Services.Translation); err != nil {
		return err
	}
	session, err := env.session(opts.RootOptions, index)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if _, err := session.EnsureTargetLanguage(ctx); err != nil {
		return WrapExitError(ExitCommandError, "declare target language", err)
	}
	text, adopted, err := session.MachineTranslate(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "machine translate", err)
	}
	if text == "" {
		return NewExitError(ExitFailure, "no machine translation available")
	}

	f := opts.formatter(cmd)
	if !adopted && opts.Adopt {
		adopted, err = session.AdoptMachineTranslation(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "adopt machine translation", err)
		}
	} else if !adopted {
		if _, err := session.DismissMachineTranslation(ctx); err != nil {
			return WrapExitError(ExitCommandError, "dismiss machine translation", err)
		}
	}

	if opts.Format == "json" {
		return f.Success(map[string]any{"translation": text, "adopted": adopted})
	}
	if err := f.Success(text); err != nil {
		return err
	}
	if adopted {
		f.VerboseLog("suggestion adopted as the current translation")
	}
	return nil
}
