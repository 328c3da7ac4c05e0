// Package ledger opens and closes activity records for one sentence
// editing session.
//
// The ledger computes each activity type's default used/wasInformedBy
// relations from current store state, resolves the responsible agent,
// and enforces per-type gatekeeper preconditions that silently veto
// redundant activity starts. It keeps a process-local, per-type stack
// of started activity keys so End can find its matching Start even
// under interleaved activities; the stack is never persisted, so an
// activity left open when the process exits stays open forever.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/seedcat/seedprov/internal/record"
)

// Agent identifiers. Automated activity types carry a fixed software
// agent; user-driven types carry a per-session human agent derived from
// AgentTranslator.
const (
	AgentBrillPosTagger    = "BrillPosTagger"
	AgentNLLBRemote        = "facebook/nllb-200-distilled-600M"
	AgentNLLBLocal         = "Xenova/nllb-200-distilled-600M"
	AgentTranslator        = "Translator"
	AgentTreebankTokenizer = "TreebankTokenizer"
)

// Scope pins a ledger to one sentence of one language pair.
// Language-level activities use Index 0.
type Scope struct {
	SourceLanguage string
	TargetLanguage string
	Index          int64
}

// Ledger records activities for one scope.
type Ledger struct {
	store  *record.Store
	clock  record.Clock
	logger *slog.Logger
	scope  Scope

	translator string
	mtAgent    string

	mu   sync.Mutex
	open map[record.ActivityType][]record.ActivityKey
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithTranslatorID fixes the human agent identifier instead of minting
// a fresh per-session one.
func WithTranslatorID(id string) Option {
	return func(l *Ledger) {
		if id != "" {
			l.translator = AgentTranslator + "/" + id
		}
	}
}

// WithMTAgent sets the machine translation engine agent identifier.
func WithMTAgent(agent string) Option {
	return func(l *Ledger) { l.mtAgent = agent }
}

// WithLogger sets the logger used for gatekeeper warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// New creates a ledger for one scope. The default human agent is a
// fresh per-session identifier.
func New(store *record.Store, clock record.Clock, scope Scope, opts ...Option) *Ledger {
	l := &Ledger{
		store:      store,
		clock:      clock,
		logger:     slog.Default(),
		scope:      scope,
		translator: AgentTranslator + "/" + uuid.NewString(),
		mtAgent:    AgentNLLBLocal,
		open:       make(map[record.ActivityType][]record.ActivityKey),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Translator returns the ledger's human agent identifier.
func (l *Ledger) Translator() string {
	return l.translator
}

// Overrides carries caller-supplied values that take precedence over
// the ledger's computed defaults. Zero values mean "use the default";
// a non-nil Used or WasInformedBy replaces the computed list entirely.
type Overrides struct {
	StartedAtTime int64 // backdated start for debounced callers
	Agent         string
	Used          []record.UsedEntity
	WasInformedBy []record.ActivityKey
}

// Start opens an activity of the given type. When the type's
// gatekeeper vetoes the start, a warning is logged and ok is false with
// no record written. On success the new activity's key is returned and
// pushed onto the type's open stack.
func (l *Ledger) Start(ctx context.Context, typ record.ActivityType, ov Overrides) (record.ActivityKey, bool, error) {
	passed, err := l.gatekeeper(ctx, typ)
	if err != nil {
		return record.ActivityKey{}, false, fmt.Errorf("start activity: %w", err)
	}
	if !passed {
		l.logger.Warn("gatekeeper prevented logging activity", "type", typ)
		return record.ActivityKey{}, false, nil
	}

	a := record.Activity{
		Type:           typ,
		StartedAtTime:  l.clock.NowMillis(),
		TargetLanguage: l.scope.TargetLanguage,
		Index:          l.scope.Index,
	}

	used, informedBy, err := l.defaults(ctx, typ)
	if err != nil {
		return record.ActivityKey{}, false, fmt.Errorf("start activity: %w", err)
	}
	a.Used = used
	a.WasInformedBy = informedBy
	a.WasAssociatedWith = l.agentFor(typ)

	if ov.StartedAtTime != 0 {
		a.StartedAtTime = ov.StartedAtTime
	}
	if ov.Agent != "" {
		a.WasAssociatedWith = ov.Agent
	}
	if ov.Used != nil {
		a.Used = ov.Used
	}
	if ov.WasInformedBy != nil {
		a.WasInformedBy = ov.WasInformedBy
	}

	if err := l.store.PutActivity(ctx, a); err != nil {
		return record.ActivityKey{}, false, fmt.Errorf("start activity: %w", err)
	}

	key := a.Key()
	l.mu.Lock()
	l.open[typ] = append(l.open[typ], key)
	l.mu.Unlock()

	return key, true, nil
}

// End closes the most recently started activity of the given type.
// Ending a type with no started activity, or one already ended, is a
// no-op reported as ok=false.
func (l *Ledger) End(ctx context.Context, typ record.ActivityType) (record.ActivityKey, bool, error) {
	l.mu.Lock()
	stack := l.open[typ]
	l.mu.Unlock()
	if len(stack) == 0 {
		return record.ActivityKey{}, false, nil
	}
	key := stack[len(stack)-1]

	a, ok, err := l.store.GetActivity(ctx, key)
	if err != nil {
		return record.ActivityKey{}, false, fmt.Errorf("end activity: %w", err)
	}
	if !ok || a.EndedAtTime != 0 {
		return record.ActivityKey{}, false, nil
	}

	a.EndedAtTime = l.clock.NowMillis()
	if err := l.store.PutActivity(ctx, a); err != nil {
		return record.ActivityKey{}, false, fmt.Errorf("end activity: %w", err)
	}
	return key, true, nil
}

// Started returns the keys of every activity of one type started
// through this ledger, in start order. Ended activities stay listed.
func (l *Ledger) Started(typ record.ActivityType) []record.ActivityKey {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]record.ActivityKey, len(l.open[typ]))
	copy(out, l.open[typ])
	return out
}

// gatekeeper evaluates the type's precondition against store state.
func (l *Ledger) gatekeeper(ctx context.Context, typ record.ActivityType) (bool, error) {
	sourceKey := record.SentenceKey(l.scope.SourceLanguage, l.scope.Index)

	switch typ {
	case record.ViewSentence:
		ok, err := l.exists(ctx, record.Sentences, sourceKey)
		return !ok, err
	case record.DisplayPosTags:
		return l.exists(ctx, record.PosTags, sourceKey)
	case record.GeneratePosTags:
		ok, err := l.exists(ctx, record.PosTags, sourceKey)
		return !ok, err
	case record.TokenizeSentence:
		ok, err := l.exists(ctx, record.Tokens, sourceKey)
		return !ok, err
	case record.QueryWordnet:
		return l.exists(ctx, record.Tokens, sourceKey)
	case record.MachineTranslate:
		ok, err := l.exists(ctx, record.MachineTranslations,
			record.SentenceKey(l.scope.TargetLanguage, l.scope.Index))
		return !ok, err
	default:
		return true, nil
	}
}

func (l *Ledger) exists(ctx context.Context, collection record.Collection, key record.Key) (bool, error) {
	_, ok, err := l.store.GetEntity(ctx, collection, key)
	return ok, err
}

// defaults computes the type's used/wasInformedBy relations from
// current store state.
func (l *Ledger) defaults(ctx context.Context, typ record.ActivityType) ([]record.UsedEntity, []record.ActivityKey, error) {
	sourceKey := record.SentenceKey(l.scope.SourceLanguage, l.scope.Index)
	targetKey := record.SentenceKey(l.scope.TargetLanguage, l.scope.Index)

	switch typ {
	case record.OpenSourceURL, record.TokenizeSentence:
		return []record.UsedEntity{{Entity: record.Sentences, Key: sourceKey}}, nil, nil

	case record.DisplayPosTags:
		return []record.UsedEntity{{Entity: record.PosTags, Key: sourceKey}}, nil, nil

	case record.GeneratePosTags, record.QueryWordnet:
		return []record.UsedEntity{{Entity: record.Tokens, Key: sourceKey}}, nil, nil

	case record.MachineTranslate:
		return []record.UsedEntity{
			{Entity: record.TargetLanguages, Key: record.LanguageKey(l.scope.TargetLanguage)},
			{Entity: record.Sentences, Key: sourceKey},
		}, nil, nil

	case record.CompareMachineTranslation:
		used := []record.UsedEntity{{Entity: record.Sentences, Key: targetKey}}

		translation, ok, err := l.store.LatestTranslation(ctx, l.scope.TargetLanguage, l.scope.Index)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			used = append(used, record.UsedEntity{
				Entity: record.Translations,
				Key:    record.TranslationKey(l.scope.TargetLanguage, l.scope.Index, translation.GeneratedAtTime),
			})
		}

		mtOK, err := l.exists(ctx, record.MachineTranslations, targetKey)
		if err != nil {
			return nil, nil, err
		}
		if mtOK {
			used = append(used, record.UsedEntity{Entity: record.MachineTranslations, Key: targetKey})
		}
		return used, nil, nil

	case record.EditTranslation:
		used := []record.UsedEntity{
			{Entity: record.TargetLanguages, Key: record.LanguageKey(l.scope.TargetLanguage)},
		}

		current, ok, err := l.store.LatestTranslation(ctx, l.scope.TargetLanguage, l.scope.Index)
		if err != nil {
			return nil, nil, err
		}
		if ok && current.InvalidatedAtTime == 0 {
			used = append(used, record.UsedEntity{
				Entity: record.Translations,
				Key:    record.TranslationKey(l.scope.TargetLanguage, l.scope.Index, current.GeneratedAtTime),
			})
		}

		l.mu.Lock()
		var informants []record.ActivityKey
		for _, informing := range []record.ActivityType{
			record.CompareMachineTranslation,
			record.DisplayPosTags,
			record.MachineTranslate,
			record.OpenSourceURL,
			record.QueryWordnet,
			record.ViewSentence,
		} {
			informants = append(informants, l.open[informing]...)
		}
		l.mu.Unlock()

		return used, informants, nil

	default:
		return nil, nil, nil
	}
}

// agentFor resolves the responsible agent for one activity type.
func (l *Ledger) agentFor(typ record.ActivityType) string {
	switch typ {
	case record.GeneratePosTags:
		return AgentBrillPosTagger
	case record.MachineTranslate:
		return l.mtAgent
	case record.TokenizeSentence:
		return AgentTreebankTokenizer
	default:
		return l.translator
	}
}
