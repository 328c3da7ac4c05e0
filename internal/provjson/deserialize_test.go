package provjson

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedcat/seedprov/internal/attr"
	"github.com/seedcat/seedprov/internal/record"
)

func TestDeserialize_RoundTrip(t *testing.T) {
	source := createTestStore(t)
	seedHistory(t, source)
	ctx := context.Background()

	doc, err := Serialize(ctx, source, "eng_Latn", "spa_Latn", 3, true)
	require.NoError(t, err)
	data, err := Encode(doc)
	require.NoError(t, err)

	parsed, err := ParseDocument(data)
	require.NoError(t, err)

	replica := createTestStore(t)
	ref, ok, err := Deserialize(ctx, replica, parsed)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Ref{SourceLanguage: "eng_Latn", TargetLanguage: "spa_Latn", Index: 3}, ref)

	sentence, found, err := replica.GetEntity(ctx, record.Sentences, record.SentenceKey("eng_Latn", 3))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "The quick brown fox.", sentence.Attributes.GetString(record.AttrContent))
	require.Equal(t, int64(2100), sentence.GeneratedAtTime)
	require.Equal(t, "oldi:seed/eng_Latn", sentence.WasQuotedFrom)
	require.Equal(t, record.ActivityKey{Type: record.ViewSentence, StartedAtTime: 2000}, sentence.WasGeneratedBy)

	stale, found, err := replica.GetEntity(ctx, record.Translations, record.TranslationKey("spa_Latn", 3, 3100))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(4100), stale.InvalidatedAtTime)
	require.NotNil(t, stale.WasInvalidatedBy)
	require.Equal(t, record.EditTranslation, stale.WasInvalidatedBy.Type)

	current, found, err := replica.GetEntity(ctx, record.Translations, record.TranslationKey("spa_Latn", 3, 4100))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "El zorro rápido", current.Attributes.GetString(record.AttrContent))
	require.Equal(t, int64(4200), current.Attributes.GetInt(record.AttrCompletedAtTime))
	require.True(t, current.WasRevisionOf.Equal(record.TranslationKey("spa_Latn", 3, 3100)))

	edit, found, err := replica.GetActivity(ctx, record.ActivityKey{Type: record.EditTranslation, StartedAtTime: 3000})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "spa_Latn", edit.TargetLanguage)
	require.Equal(t, int64(3), edit.Index)
	require.Equal(t, "Translator/uid-1", edit.WasAssociatedWith)
	require.Equal(t, []record.UsedEntity{
		{Entity: record.TargetLanguages, Key: record.LanguageKey("spa_Latn")},
	}, edit.Used)
	require.Equal(t, []record.ActivityKey{
		{Type: record.ViewSentence, StartedAtTime: 2000},
	}, edit.WasInformedBy)
}

func TestDeserialize_ReserializesIdentically(t *testing.T) {
	source := createTestStore(t)
	seedHistory(t, source)
	ctx := context.Background()

	doc, err := Serialize(ctx, source, "eng_Latn", "spa_Latn", 3, true)
	require.NoError(t, err)
	original, err := Encode(doc)
	require.NoError(t, err)

	parsed, err := ParseDocument(original)
	require.NoError(t, err)
	replica := createTestStore(t)
	_, ok, err := Deserialize(ctx, replica, parsed)
	require.NoError(t, err)
	require.True(t, ok)

	again, err := Serialize(ctx, replica, "eng_Latn", "spa_Latn", 3, true)
	require.NoError(t, err)
	reencoded, err := Encode(again)
	require.NoError(t, err)
	require.Equal(t, string(original), string(reencoded))
}

func TestDeserialize_EmptyDocument(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	_, ok, err := Deserialize(ctx, store, &Document{})
	require.NoError(t, err)
	require.False(t, ok)

	n, err := store.CountEntities(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestDeserialize_ExternalCitationsSkipped(t *testing.T) {
	source := createTestStore(t)
	seedHistory(t, source)
	ctx := context.Background()

	doc, err := Serialize(ctx, source, "eng_Latn", "spa_Latn", 3, true)
	require.NoError(t, err)

	replica := createTestStore(t)
	_, ok, err := Deserialize(ctx, replica, doc)
	require.NoError(t, err)
	require.True(t, ok)

	// The dataset citation appears in the document but never lands as a
	// local record.
	n, err := replica.CountEntities(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
}

func TestDeserialize_MissingStartTime(t *testing.T) {
	source := createTestStore(t)
	seedHistory(t, source)
	ctx := context.Background()

	doc, err := Serialize(ctx, source, "eng_Latn", "spa_Latn", 3, true)
	require.NoError(t, err)
	delete(doc.Activity["seed:activities/ViewSentence/2000"], "prov:startTime")

	replica := createTestStore(t)
	_, _, err = Deserialize(ctx, replica, doc)
	var docErr *DocumentError
	require.ErrorAs(t, err, &docErr)

	// Nothing persisted from the rejected document.
	n, countErr := replica.CountEntities(ctx)
	require.NoError(t, countErr)
	require.Zero(t, n)
}

func TestDeserialize_BadTimestampRejected(t *testing.T) {
	source := createTestStore(t)
	seedHistory(t, source)
	ctx := context.Background()

	doc, err := Serialize(ctx, source, "eng_Latn", "spa_Latn", 3, true)
	require.NoError(t, err)
	doc.Activity["seed:activities/ViewSentence/2000"]["prov:startTime"] = "not-a-time"

	replica := createTestStore(t)
	_, _, err = Deserialize(ctx, replica, doc)
	var docErr *DocumentError
	require.ErrorAs(t, err, &docErr)
}

func TestDeserialize_StringAttributeFallback(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	gb := map[string]Generation{
		"_:gb1": {
			Activity: "seed:activities/ViewSentence/2000",
			Entity:   "seed:sentences/eng_Latn/3",
			Time:     "1970-01-01T00:00:02.100Z",
		},
	}
	doc := &Document{
		Agent: map[string]Attributes{},
		Activity: map[string]Attributes{
			"seed:activities/ViewSentence/2000": {
				"prov:startTime":      "1970-01-01T00:00:02.000Z",
				"prov:type":           "seed:ViewSentence",
				"seed:index":          3,
				"seed:targetLanguage": "spa_Latn",
			},
		},
		Entity: map[string]Attributes{
			"seed:sentences/eng_Latn/3": {
				"prov:type": "seed:sentences",
				// Plain text that is not valid JSON stays a string.
				"seed:content": "He said: hello",
				// Encoded structures decode back to their array form.
				"seed:synonyms":       `["hi","hey"]`,
				"seed:index":          3,
				"seed:sourceLanguage": "eng_Latn",
			},
		},
		WasAssociatedWith: map[string]Association{
			"_:aw1": {Activity: "seed:activities/ViewSentence/2000", Agent: "seed:Translator/uid-1"},
		},
		WasGeneratedBy: gb,
	}

	_, ok, err := Deserialize(ctx, store, doc)
	require.NoError(t, err)
	require.True(t, ok)

	sentence, found, err := store.GetEntity(ctx, record.Sentences, record.SentenceKey("eng_Latn", 3))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "He said: hello", sentence.Attributes.GetString(record.AttrContent))
	require.Equal(t, []string{"hi", "hey"}, sentence.Attributes.GetStrings(record.AttrSynonyms))
	require.Equal(t, attr.Int(3), sentence.Attributes[record.AttrIndex])
}

func TestDeserialize_ForeignRecordsIgnored(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	doc := &Document{
		Agent: map[string]Attributes{},
		Activity: map[string]Attributes{
			// Untracked: no relations point at it.
			"ex:activities/Unknown/1000": {"prov:startTime": "1970-01-01T00:00:01.000Z"},
		},
		Entity: map[string]Attributes{
			"ex:widgets/1": {"prov:type": "ex:widget"},
		},
	}

	_, ok, err := Deserialize(ctx, store, doc)
	require.NoError(t, err)
	require.True(t, ok)

	n, err := store.CountEntities(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}
