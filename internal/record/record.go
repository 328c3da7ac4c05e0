package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seedcat/seedprov/internal/attr"
)

// Collection names an entity store. Collections are closed: every
// record belongs to exactly one of the constants below.
type Collection string

const (
	Activities          Collection = "activities"
	MachineTranslations Collection = "machine_translations"
	PosTags             Collection = "pos_tags"
	Sentences           Collection = "sentences"
	TargetLanguages     Collection = "target_languages"
	Tokens              Collection = "tokens"
	Translations        Collection = "translations"
	WordnetQueries      Collection = "wordnet_queries"
)

// EntityCollections lists every collection except activities, in
// serialization order.
var EntityCollections = []Collection{
	MachineTranslations,
	PosTags,
	Sentences,
	TargetLanguages,
	Tokens,
	Translations,
	WordnetQueries,
}

// IsEntityCollection reports whether name is a known entity collection.
func IsEntityCollection(name Collection) bool {
	for _, c := range EntityCollections {
		if c == name {
			return true
		}
	}
	return false
}

// ActivityType identifies the kind of event an activity records.
type ActivityType string

const (
	CompareMachineTranslation ActivityType = "CompareMachineTranslation"
	CreateTargetLanguage      ActivityType = "CreateTargetLanguage"
	DisplayPosTags            ActivityType = "DisplayPosTags"
	EditTranslation           ActivityType = "EditTranslation"
	GeneratePosTags           ActivityType = "GeneratePosTags"
	MachineTranslate          ActivityType = "MachineTranslate"
	OpenSourceURL             ActivityType = "OpenSourceUrl"
	QueryWordnet              ActivityType = "QueryWordNet"
	TokenizeSentence          ActivityType = "TokenizeSentence"
	ViewSentence              ActivityType = "ViewSentence"
)

// ActivityTypes lists every activity type.
var ActivityTypes = []ActivityType{
	CompareMachineTranslation,
	CreateTargetLanguage,
	DisplayPosTags,
	EditTranslation,
	GeneratePosTags,
	MachineTranslate,
	OpenSourceURL,
	QueryWordnet,
	TokenizeSentence,
	ViewSentence,
}

// Attribute names shared across collections.
const (
	AttrCompletedAtTime = "completedAtTime"
	AttrContent         = "content"
	AttrExamples        = "examples"
	AttrGloss           = "gloss"
	AttrIndex           = "index"
	AttrLanguage        = "language"
	AttrLemma           = "lemma"
	AttrName            = "name"
	AttrPos             = "pos"
	AttrSource          = "source"
	AttrSourceLanguage  = "sourceLanguage"
	AttrSynonyms        = "synonyms"
	AttrTargetLanguage  = "targetLanguage"
)

// Key is an ordered tuple of key parts. Numeric parts are stored in
// their decimal string form; the slash-joined form is the identifier
// used in exported documents.
type Key []string

// String joins the key parts with "/".
func (k Key) String() string {
	return strings.Join(k, "/")
}

// Equal reports whether two keys have identical parts.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// Int parses key part i as a base-10 integer.
func (k Key) Int(i int) (int64, error) {
	if i < 0 || i >= len(k) {
		return 0, fmt.Errorf("key %q has no part %d", k.String(), i)
	}
	n, err := strconv.ParseInt(k[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("key part %d of %q is not numeric: %w", i, k.String(), err)
	}
	return n, nil
}

// ParseKey splits a slash-joined key back into its parts.
func ParseKey(s string) Key {
	if s == "" {
		return nil
	}
	return Key(strings.Split(s, "/"))
}

// LanguageKey builds the target_languages key.
func LanguageKey(name string) Key {
	return Key{name}
}

// SentenceKey builds the key shared by sentences, tokens, pos_tags, and
// machine_translations: (language, sentence index).
func SentenceKey(language string, index int64) Key {
	return Key{language, strconv.FormatInt(index, 10)}
}

// TranslationKey builds the three-part translations key.
func TranslationKey(targetLanguage string, index, generatedAtTime int64) Key {
	return Key{targetLanguage, strconv.FormatInt(index, 10), strconv.FormatInt(generatedAtTime, 10)}
}

// WordnetKey builds the wordnet_queries key.
func WordnetKey(lemma string, generatedAtTime int64) Key {
	return Key{lemma, strconv.FormatInt(generatedAtTime, 10)}
}

// ActivityKey identifies an activity record: its type plus start time.
type ActivityKey struct {
	Type          ActivityType `json:"type"`
	StartedAtTime int64        `json:"startedAtTime"`
}

// IsZero reports whether the key is unset.
func (k ActivityKey) IsZero() bool {
	return k.Type == "" && k.StartedAtTime == 0
}

// Key returns the activity key in tuple form.
func (k ActivityKey) Key() Key {
	return Key{string(k.Type), strconv.FormatInt(k.StartedAtTime, 10)}
}

// ParseActivityKey decodes a two-part tuple into an ActivityKey.
func ParseActivityKey(key Key) (ActivityKey, error) {
	if len(key) != 2 {
		return ActivityKey{}, fmt.Errorf("activity key %q must have 2 parts", key.String())
	}
	started, err := key.Int(1)
	if err != nil {
		return ActivityKey{}, err
	}
	return ActivityKey{Type: ActivityType(key[0]), StartedAtTime: started}, nil
}

// UsedEntity names an entity an activity consumed.
type UsedEntity struct {
	Entity Collection `json:"entity"`
	Key    Key        `json:"key"`
}

// Entity is one immutable provenance fact. The zero value of
// InvalidatedAtTime means "not invalidated"; only translations are ever
// invalidated. WasRevisionOf, when set, is a three-part translations
// key; WasQuotedFrom is an exported identifier string, possibly in an
// external namespace.
type Entity struct {
	Collection        Collection
	Attributes        attr.Object
	GeneratedAtTime   int64
	InvalidatedAtTime int64
	WasGeneratedBy    ActivityKey
	WasInvalidatedBy  *ActivityKey
	WasQuotedFrom     string
	WasRevisionOf     Key
}

// Key computes the entity's collection key from its attributes, per the
// closed set of per-collection key shapes.
func (e Entity) Key() (Key, error) {
	switch e.Collection {
	case TargetLanguages:
		name := e.Attributes.GetString(AttrName)
		if name == "" {
			return nil, fmt.Errorf("target_languages record missing %q attribute", AttrName)
		}
		return LanguageKey(name), nil
	case Sentences:
		return SentenceKey(e.Attributes.GetString(AttrSourceLanguage), e.Attributes.GetInt(AttrIndex)), nil
	case Tokens, PosTags:
		return SentenceKey(e.Attributes.GetString(AttrLanguage), e.Attributes.GetInt(AttrIndex)), nil
	case MachineTranslations:
		return SentenceKey(e.Attributes.GetString(AttrTargetLanguage), e.Attributes.GetInt(AttrIndex)), nil
	case Translations:
		return TranslationKey(e.Attributes.GetString(AttrTargetLanguage), e.Attributes.GetInt(AttrIndex), e.GeneratedAtTime), nil
	case WordnetQueries:
		return WordnetKey(e.Attributes.GetString(AttrLemma), e.GeneratedAtTime), nil
	default:
		return nil, fmt.Errorf("unknown entity collection %q", e.Collection)
	}
}

// Activity is one typed event record. TargetLanguage and Index scope
// the activity to a sentence; language-level activities use index 0.
type Activity struct {
	Type              ActivityType
	StartedAtTime     int64
	EndedAtTime       int64
	TargetLanguage    string
	Index             int64
	WasAssociatedWith string
	Used              []UsedEntity
	WasInformedBy     []ActivityKey
}

// Key returns the activity's store key.
func (a Activity) Key() ActivityKey {
	return ActivityKey{Type: a.Type, StartedAtTime: a.StartedAtTime}
}

// Attributes returns the activity's declared attributes in entity form.
func (a Activity) Attributes() attr.Object {
	return attr.Object{
		AttrIndex:          attr.Int(a.Index),
		AttrTargetLanguage: attr.String(a.TargetLanguage),
	}
}

// Clock supplies wall-clock timestamps in epoch milliseconds, the time
// unit used throughout the store.
type Clock interface {
	NowMillis() int64
}

// SystemClock reads the system wall clock.
type SystemClock struct{}

// NowMillis returns the current time in epoch milliseconds.
func (SystemClock) NowMillis() int64 {
	return time.Now().UnixMilli()
}
