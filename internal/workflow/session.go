// Package workflow drives the translation workflow for one sentence:
// each operation performs the user-visible action and records its full
// provenance through the ledger, the revision manager, and the store.
package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/seedcat/seedprov/internal/annotate"
	"github.com/seedcat/seedprov/internal/attr"
	"github.com/seedcat/seedprov/internal/dataset"
	"github.com/seedcat/seedprov/internal/ledger"
	"github.com/seedcat/seedprov/internal/provjson"
	"github.com/seedcat/seedprov/internal/record"
	"github.com/seedcat/seedprov/internal/revision"
	"github.com/seedcat/seedprov/internal/wordnet"
)

// SentenceSource supplies source-corpus sentences.
type SentenceSource interface {
	Sentence(ctx context.Context, language string, index int64) (dataset.Sentence, bool, error)
}

// Translator supplies machine translations.
type Translator interface {
	Translate(ctx context.Context, source, target, query string) (string, error)
}

// Dictionary supplies dictionary lookups.
type Dictionary interface {
	Lookup(ctx context.Context, term string) ([]wordnet.Record, error)
}

// Session is the workflow for one sentence of one language pair.
type Session struct {
	store     *record.Store
	ledger    *ledger.Ledger
	revisions *revision.Manager
	clock     record.Clock
	scope     ledger.Scope

	sentences  SentenceSource
	translator Translator
	dictionary Dictionary
	annotator  annotate.Annotator
	ledgerOpts []ledger.Option

	mu        sync.Mutex
	pendingMT *pendingComparison
}

// pendingComparison is an open CompareMachineTranslation awaiting the
// adopt-or-dismiss decision.
type pendingComparison struct {
	text    string
	compare record.ActivityKey
}

// Option configures a Session.
type Option func(*Session)

// WithSentences sets the source-corpus client.
func WithSentences(s SentenceSource) Option {
	return func(session *Session) { session.sentences = s }
}

// WithTranslator sets the machine-translation client.
func WithTranslator(t Translator) Option {
	return func(session *Session) { session.translator = t }
}

// WithDictionary sets the dictionary client.
func WithDictionary(d Dictionary) Option {
	return func(session *Session) { session.dictionary = d }
}

// WithAnnotator replaces the default Latin-script annotator.
func WithAnnotator(a annotate.Annotator) Option {
	return func(session *Session) { session.annotator = a }
}

// WithLedgerOptions passes options through to the session's ledger.
func WithLedgerOptions(opts ...ledger.Option) Option {
	return func(session *Session) { session.ledgerOpts = opts }
}

// New creates a session scoped to one (source, target, index) triple.
func New(store *record.Store, clock record.Clock, scope ledger.Scope, opts ...Option) *Session {
	s := &Session{
		store:     store,
		revisions: revision.New(store, clock),
		clock:     clock,
		scope:     scope,
		annotator: annotate.Latin{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = ledger.New(store, clock, scope, s.ledgerOpts...)
	return s
}

// TranslatorID returns the session's human agent identifier.
func (s *Session) TranslatorID() string {
	return s.ledger.Translator()
}

// EnsureTargetLanguage declares the target language if it is not yet
// declared, recording the creation activity. Reports whether a record
// was created.
func (s *Session) EnsureTargetLanguage(ctx context.Context) (bool, error) {
	languageKey := record.LanguageKey(s.scope.TargetLanguage)
	_, exists, err := s.store.GetEntity(ctx, record.TargetLanguages, languageKey)
	if err != nil {
		return false, fmt.Errorf("ensure target language: %w", err)
	}
	if exists {
		return false, nil
	}

	now := s.clock.NowMillis()
	activity := record.Activity{
		Type:              record.CreateTargetLanguage,
		StartedAtTime:     now,
		TargetLanguage:    s.scope.TargetLanguage,
		Index:             0,
		WasAssociatedWith: s.ledger.Translator(),
	}
	if err := s.store.PutActivity(ctx, activity); err != nil {
		return false, fmt.Errorf("ensure target language: %w", err)
	}
	_, err = s.store.PutEntity(ctx, record.Entity{
		Collection:      record.TargetLanguages,
		Attributes:      attr.Object{record.AttrName: attr.String(s.scope.TargetLanguage)},
		GeneratedAtTime: now,
		WasGeneratedBy:  activity.Key(),
	})
	if err != nil {
		return false, fmt.Errorf("ensure target language: %w", err)
	}
	return true, nil
}

// ViewSentence fetches the source sentence and records the view: the
// first view quotes the sentence text into the store from the corpus.
// A sentence the corpus does not have is reported as ok=false.
func (s *Session) ViewSentence(ctx context.Context) (dataset.Sentence, bool, error) {
	sentence, ok, err := s.sentences.Sentence(ctx, s.scope.SourceLanguage, s.scope.Index)
	if err != nil {
		return dataset.Sentence{}, false, fmt.Errorf("view sentence: %w", err)
	}
	if !ok {
		return dataset.Sentence{}, false, nil
	}
	if sentence.Text == "" || len(sentence.Tags) == 0 {
		return sentence, true, nil
	}

	key, started, err := s.ledger.Start(ctx, record.ViewSentence, ledger.Overrides{})
	if err != nil {
		return dataset.Sentence{}, false, fmt.Errorf("view sentence: %w", err)
	}
	if started {
		_, err = s.store.PutEntity(ctx, record.Entity{
			Collection: record.Sentences,
			Attributes: attr.Object{
				record.AttrContent:        attr.String(sentence.Text),
				record.AttrIndex:          attr.Int(s.scope.Index),
				record.AttrSourceLanguage: attr.String(s.scope.SourceLanguage),
				record.AttrSource:         attr.String(sentence.Source),
			},
			GeneratedAtTime: key.StartedAtTime,
			WasGeneratedBy:  key,
			WasQuotedFrom:   "oldi:seed/" + s.scope.SourceLanguage,
		})
		if err != nil {
			return dataset.Sentence{}, false, fmt.Errorf("view sentence: %w", err)
		}
		if _, _, err := s.ledger.End(ctx, record.ViewSentence); err != nil {
			return dataset.Sentence{}, false, fmt.Errorf("view sentence: %w", err)
		}
	}
	return sentence, true, nil
}

// Annotate tokenizes and tags the source sentence, recording the
// tokens and pos_tags entities. Tags from the dataset service win;
// the local annotator covers languages the service has no tagger for.
// Both writes happen once per sentence; later calls are vetoed.
func (s *Session) Annotate(ctx context.Context) (bool, error) {
	sentence, ok, err := s.sentences.Sentence(ctx, s.scope.SourceLanguage, s.scope.Index)
	if err != nil {
		return false, fmt.Errorf("annotate: %w", err)
	}
	if !ok || sentence.Text == "" {
		return false, nil
	}

	tags := sentence.Tags
	if len(tags) == 0 {
		tags = s.annotator.Tag(sentence.Text)
	}
	tokens := make([]string, len(tags))
	for i, pair := range tags {
		tokens[i] = pair[0]
	}

	tokenizeKey, started, err := s.ledger.Start(ctx, record.TokenizeSentence, ledger.Overrides{})
	if err != nil {
		return false, fmt.Errorf("annotate: %w", err)
	}
	wrote := false
	if started {
		_, err = s.store.PutEntity(ctx, record.Entity{
			Collection: record.Tokens,
			Attributes: attr.Object{
				record.AttrContent:  attr.Strings(tokens),
				record.AttrIndex:    attr.Int(s.scope.Index),
				record.AttrLanguage: attr.String(s.scope.SourceLanguage),
			},
			GeneratedAtTime: tokenizeKey.StartedAtTime,
			WasGeneratedBy:  tokenizeKey,
		})
		if err != nil {
			return false, fmt.Errorf("annotate: write tokens: %w", err)
		}
		if _, _, err := s.ledger.End(ctx, record.TokenizeSentence); err != nil {
			return false, fmt.Errorf("annotate: %w", err)
		}
		wrote = true
	}

	posKey, started, err := s.ledger.Start(ctx, record.GeneratePosTags, ledger.Overrides{})
	if err != nil {
		return false, fmt.Errorf("annotate: %w", err)
	}
	if started {
		_, err = s.store.PutEntity(ctx, record.Entity{
			Collection: record.PosTags,
			Attributes: attr.Object{
				record.AttrContent:  attr.Pairs(tags),
				record.AttrIndex:    attr.Int(s.scope.Index),
				record.AttrLanguage: attr.String(s.scope.SourceLanguage),
			},
			GeneratedAtTime: posKey.StartedAtTime,
			WasGeneratedBy:  posKey,
		})
		if err != nil {
			return false, fmt.Errorf("annotate: write pos tags: %w", err)
		}
		if _, _, err := s.ledger.End(ctx, record.GeneratePosTags); err != nil {
			return false, fmt.Errorf("annotate: %w", err)
		}
		wrote = true
	}
	return wrote, nil
}

// ShowTags records the start of a tag display. Vetoed until the
// sentence has been annotated.
func (s *Session) ShowTags(ctx context.Context) (bool, error) {
	_, started, err := s.ledger.Start(ctx, record.DisplayPosTags, ledger.Overrides{})
	if err != nil {
		return false, fmt.Errorf("show tags: %w", err)
	}
	return started, nil
}

// HideTags closes the open tag display, if any.
func (s *Session) HideTags(ctx context.Context) error {
	if _, _, err := s.ledger.End(ctx, record.DisplayPosTags); err != nil {
		return fmt.Errorf("hide tags: %w", err)
	}
	return nil
}

// MachineTranslate obtains the machine translation for the sentence,
// caching the model output on first use. With an empty editor the
// suggestion is adopted immediately as a quoted translation version;
// against existing content a comparison activity is opened instead,
// and the decision lands through AdoptMachineTranslation or
// DismissMachineTranslation.
func (s *Session) MachineTranslate(ctx context.Context) (string, bool, error) {
	current, hasCurrent, err := s.revisions.Current(ctx, s.scope.TargetLanguage, s.scope.Index)
	if err != nil {
		return "", false, fmt.Errorf("machine translate: %w", err)
	}
	editorEmpty := !hasCurrent || current.Attributes.GetString(record.AttrContent) == ""

	text, mtKey, err := s.machineTranslation(ctx)
	if err != nil {
		return "", false, err
	}
	if text == "" {
		return "", false, nil
	}

	if editorEmpty {
		// Adoption is quoted only when this call ran the model; a
		// cached suggestion reaches the store through a later edit.
		if mtKey.IsZero() {
			return text, false, nil
		}
		quotedFrom := provjson.MachineTranslationID(s.scope.TargetLanguage, s.scope.Index)
		if err := s.revisions.Revise(ctx, s.scope.TargetLanguage, s.scope.Index, text, mtKey, 0, quotedFrom); err != nil {
			return "", false, fmt.Errorf("machine translate: %w", err)
		}
		return text, true, nil
	}

	compareKey, started, err := s.ledger.Start(ctx, record.CompareMachineTranslation, ledger.Overrides{})
	if err != nil {
		return "", false, fmt.Errorf("machine translate: %w", err)
	}
	if started {
		s.mu.Lock()
		s.pendingMT = &pendingComparison{text: text, compare: compareKey}
		s.mu.Unlock()
	}
	return text, false, nil
}

// machineTranslation returns the cached model output, or runs the
// model and caches it. The activity key is zero on a cache hit.
func (s *Session) machineTranslation(ctx context.Context) (string, record.ActivityKey, error) {
	targetKey := record.SentenceKey(s.scope.TargetLanguage, s.scope.Index)
	cached, ok, err := s.store.GetEntity(ctx, record.MachineTranslations, targetKey)
	if err != nil {
		return "", record.ActivityKey{}, fmt.Errorf("machine translate: %w", err)
	}
	if ok {
		return cached.Attributes.GetString(record.AttrContent), record.ActivityKey{}, nil
	}
	if s.sentences == nil {
		return "", record.ActivityKey{}, fmt.Errorf("machine translate: no sentence source configured")
	}
	if s.translator == nil {
		return "", record.ActivityKey{}, fmt.Errorf("machine translate: no translator configured")
	}

	sentence, ok, err := s.sentences.Sentence(ctx, s.scope.SourceLanguage, s.scope.Index)
	if err != nil {
		return "", record.ActivityKey{}, fmt.Errorf("machine translate: %w", err)
	}
	if !ok || sentence.Text == "" {
		return "", record.ActivityKey{}, fmt.Errorf("machine translate: source sentence %s/%d not available", s.scope.SourceLanguage, s.scope.Index)
	}

	key, started, err := s.ledger.Start(ctx, record.MachineTranslate, ledger.Overrides{})
	if err != nil {
		return "", record.ActivityKey{}, fmt.Errorf("machine translate: %w", err)
	}
	if !started {
		return "", record.ActivityKey{}, nil
	}

	text, err := s.translator.Translate(ctx, s.scope.SourceLanguage, s.scope.TargetLanguage, sentence.Text)
	if err != nil {
		// Close the activity with nothing generated.
		if _, _, endErr := s.ledger.End(ctx, record.MachineTranslate); endErr != nil {
			return "", record.ActivityKey{}, fmt.Errorf("machine translate: %w", endErr)
		}
		return "", record.ActivityKey{}, fmt.Errorf("machine translate: %w", err)
	}

	if text != "" {
		_, err = s.store.PutEntity(ctx, record.Entity{
			Collection: record.MachineTranslations,
			Attributes: attr.Object{
				record.AttrContent:        attr.String(text),
				record.AttrIndex:          attr.Int(s.scope.Index),
				record.AttrTargetLanguage: attr.String(s.scope.TargetLanguage),
			},
			GeneratedAtTime: s.clock.NowMillis(),
			WasGeneratedBy:  key,
		})
		if err != nil {
			return "", record.ActivityKey{}, fmt.Errorf("machine translate: cache output: %w", err)
		}
	}
	if _, _, err := s.ledger.End(ctx, record.MachineTranslate); err != nil {
		return "", record.ActivityKey{}, fmt.Errorf("machine translate: %w", err)
	}
	return text, key, nil
}

// AdoptMachineTranslation confirms an open comparison: the suggestion
// replaces the current translation as a quoted version. Reports
// ok=false when no comparison is open.
func (s *Session) AdoptMachineTranslation(ctx context.Context) (bool, error) {
	s.mu.Lock()
	pending := s.pendingMT
	s.pendingMT = nil
	s.mu.Unlock()
	if pending == nil {
		return false, nil
	}

	quotedFrom := provjson.MachineTranslationID(s.scope.TargetLanguage, s.scope.Index)
	if err := s.revisions.Revise(ctx, s.scope.TargetLanguage, s.scope.Index, pending.text, pending.compare, 0, quotedFrom); err != nil {
		return false, fmt.Errorf("adopt machine translation: %w", err)
	}
	if _, _, err := s.ledger.End(ctx, record.CompareMachineTranslation); err != nil {
		return false, fmt.Errorf("adopt machine translation: %w", err)
	}
	return true, nil
}

// DismissMachineTranslation closes an open comparison without adopting
// the suggestion.
func (s *Session) DismissMachineTranslation(ctx context.Context) (bool, error) {
	s.mu.Lock()
	pending := s.pendingMT
	s.pendingMT = nil
	s.mu.Unlock()
	if pending == nil {
		return false, nil
	}
	if _, _, err := s.ledger.End(ctx, record.CompareMachineTranslation); err != nil {
		return false, fmt.Errorf("dismiss machine translation: %w", err)
	}
	return true, nil
}

// Edit revises the translation with the given text. startedAtTime
// backdates the edit activity to when typing began; zero means now.
func (s *Session) Edit(ctx context.Context, text string, startedAtTime int64) error {
	key, started, err := s.ledger.Start(ctx, record.EditTranslation, ledger.Overrides{StartedAtTime: startedAtTime})
	if err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if !started {
		return nil
	}
	if err := s.revisions.Revise(ctx, s.scope.TargetLanguage, s.scope.Index, text, key, 0, ""); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	if _, _, err := s.ledger.End(ctx, record.EditTranslation); err != nil {
		return fmt.Errorf("edit: %w", err)
	}
	return nil
}

// MarkDone revises the translation and stamps it completed.
func (s *Session) MarkDone(ctx context.Context, text string, startedAtTime int64) error {
	key, started, err := s.ledger.Start(ctx, record.EditTranslation, ledger.Overrides{StartedAtTime: startedAtTime})
	if err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	if !started {
		return nil
	}
	if err := s.revisions.MarkDone(ctx, s.scope.TargetLanguage, s.scope.Index, text, key); err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	if _, _, err := s.ledger.End(ctx, record.EditTranslation); err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	return nil
}

// Reopen clears the completion stamp on the current translation.
func (s *Session) Reopen(ctx context.Context) (bool, error) {
	reopened, err := s.revisions.Reopen(ctx, s.scope.TargetLanguage, s.scope.Index)
	if err != nil {
		return false, fmt.Errorf("reopen: %w", err)
	}
	return reopened, nil
}

// QueryWordnet looks up a term and records the query: each dictionary
// record lands as a wordnet_queries entity quoted from the database.
// Vetoed until the sentence has been annotated.
func (s *Session) QueryWordnet(ctx context.Context, term string) ([]wordnet.Record, error) {
	records, err := s.dictionary.Lookup(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("query wordnet: %w", err)
	}
	if len(records) == 0 {
		return records, nil
	}

	key, started, err := s.ledger.Start(ctx, record.QueryWordnet, ledger.Overrides{})
	if err != nil {
		return nil, fmt.Errorf("query wordnet: %w", err)
	}
	if started {
		for _, entry := range records {
			_, err = s.store.PutEntity(ctx, record.Entity{
				Collection: record.WordnetQueries,
				Attributes: attr.Object{
					record.AttrExamples: attr.Strings(entry.Examples),
					record.AttrGloss:    attr.String(entry.Gloss),
					record.AttrLemma:    attr.String(entry.Lemma),
					record.AttrPos:      attr.String(entry.Pos),
					record.AttrSynonyms: attr.Strings(entry.Synonyms),
				},
				GeneratedAtTime: s.clock.NowMillis(),
				WasGeneratedBy:  key,
				WasQuotedFrom:   provjson.WordnetID,
			})
			if err != nil {
				return nil, fmt.Errorf("query wordnet: record entry: %w", err)
			}
		}
		if _, _, err := s.ledger.End(ctx, record.QueryWordnet); err != nil {
			return nil, fmt.Errorf("query wordnet: %w", err)
		}
	}
	return records, nil
}

// OpenSourceURL records that the sentence's provenance source was
// opened.
func (s *Session) OpenSourceURL(ctx context.Context) (bool, error) {
	_, started, err := s.ledger.Start(ctx, record.OpenSourceURL, ledger.Overrides{})
	if err != nil {
		return false, fmt.Errorf("open source url: %w", err)
	}
	return started, nil
}
