package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seedcat/seedprov/internal/annotate"
	"github.com/seedcat/seedprov/internal/config"
	"github.com/seedcat/seedprov/internal/dataset"
	"github.com/seedcat/seedprov/internal/ledger"
	"github.com/seedcat/seedprov/internal/mt"
	"github.com/seedcat/seedprov/internal/record"
	"github.com/seedcat/seedprov/internal/wordnet"
	"github.com/seedcat/seedprov/internal/workflow"
)

// commandEnv is the configuration and open store shared by a single
// command invocation.
type commandEnv struct {
	cfg   *config.Config
	store *record.Store
}

// openEnv loads the configuration and opens the record store.
func openEnv(opts *RootOptions) (*commandEnv, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}
	if opts.Store != "" {
		cfg.StorePath = opts.Store
	}
	store, err := record.Open(cfg.StorePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open record store", err)
	}
	return &commandEnv{cfg: cfg, store: store}, nil
}

func (e *commandEnv) Close() error {
	return e.store.Close()
}

// session builds the workflow session for one sentence, wiring the
// service clients the configuration declares.
func (e *commandEnv) session(opts *RootOptions, index int64) (*workflow.Session, error) {
	target, err := requireTarget(opts)
	if err != nil {
		return nil, err
	}
	annotator, err := annotate.ForLanguage(e.cfg.SourceLanguage)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load annotator", err)
	}

	sessionOpts := []workflow.Option{workflow.WithAnnotator(annotator)}
	var ledgerOpts []ledger.Option
	if e.cfg.Services.Dataset != "" {
		sessionOpts = append(sessionOpts, workflow.WithSentences(dataset.New(e.cfg.Services.Dataset)))
	}
	if e.cfg.Services.Translation != "" {
		sessionOpts = append(sessionOpts, workflow.WithTranslator(mt.New(e.cfg.Services.Translation)))
		// The translation service runs the hosted model, not the
		// in-process worker the ledger assumes by default.
		ledgerOpts = append(ledgerOpts, ledger.WithMTAgent(ledger.AgentNLLBRemote))
	}
	if e.cfg.Services.Wordnet != "" {
		sessionOpts = append(sessionOpts, workflow.WithDictionary(wordnet.New(e.cfg.Services.Wordnet)))
	}
	if e.cfg.TranslatorID != "" {
		ledgerOpts = append(ledgerOpts, ledger.WithTranslatorID(e.cfg.TranslatorID))
	}
	if len(ledgerOpts) > 0 {
		sessionOpts = append(sessionOpts, workflow.WithLedgerOptions(ledgerOpts...))
	}

	scope := ledger.Scope{
		SourceLanguage: e.cfg.SourceLanguage,
		TargetLanguage: target,
		Index:          index,
	}
	return workflow.New(e.store, record.SystemClock{}, scope, sessionOpts...), nil
}

// requireService errors when a needed service has no configured URL.
func (e *commandEnv) requireService(name, url string) error {
	if url == "" {
		return NewExitError(ExitCommandError, fmt.Sprintf("no %s service configured: set services.%s in the configuration file", name, name))
	}
	return nil
}

// requireTarget returns the target language or a command error.
func requireTarget(opts *RootOptions) (string, error) {
	if opts.Target == "" {
		return "", NewExitError(ExitCommandError, "target language required: pass --target (e.g. -t spa_Latn)")
	}
	return opts.Target, nil
}

// parseIndex parses a 1-based sentence index argument.
func parseIndex(arg string) (int64, error) {
	index, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || index < 1 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid sentence index %q: must be a positive integer", arg))
	}
	return index, nil
}

// formatter builds the output formatter for one command invocation.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
