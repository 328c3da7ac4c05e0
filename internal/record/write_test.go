package record

import (
	"context"
	"testing"

	"github.com/seedcat/seedprov/internal/attr"
)

func TestPutEntity_ComputesKey(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		entity Entity
		want   string
	}{
		{
			name: "target language",
			entity: Entity{
				Collection:      TargetLanguages,
				Attributes:      attr.Object{AttrName: attr.String("spa_Latn")},
				GeneratedAtTime: 100,
			},
			want: "spa_Latn",
		},
		{
			name: "sentence",
			entity: Entity{
				Collection: Sentences,
				Attributes: attr.Object{
					AttrSourceLanguage: attr.String("eng_Latn"),
					AttrIndex:          attr.Int(3),
					AttrContent:        attr.String("The quick brown fox."),
				},
				GeneratedAtTime: 100,
			},
			want: "eng_Latn/3",
		},
		{
			name:   "translation",
			entity: createTestTranslation("spa_Latn", 3, 200, 0, "El zorro."),
			want:   "spa_Latn/3/200",
		},
		{
			name: "wordnet query",
			entity: Entity{
				Collection: WordnetQueries,
				Attributes: attr.Object{
					AttrLemma: attr.String("fox"),
					AttrGloss: attr.String("alert carnivorous mammal"),
				},
				GeneratedAtTime: 300,
			},
			want: "fox/300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := s.PutEntity(ctx, tt.entity)
			if err != nil {
				t.Fatalf("PutEntity() failed: %v", err)
			}
			if key.String() != tt.want {
				t.Errorf("key = %q, want %q", key.String(), tt.want)
			}
		})
	}
}

func TestPutEntity_UnknownCollection(t *testing.T) {
	s := createTestStore(t)

	_, err := s.PutEntity(context.Background(), Entity{Collection: "mystery"})
	if err == nil {
		t.Error("expected error for unknown collection, got nil")
	}
}

func TestPutEntity_Overwrite(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestTranslation("spa_Latn", 1, 100, 0, "primera")
	key, err := s.PutEntity(ctx, first)
	if err != nil {
		t.Fatalf("PutEntity() failed: %v", err)
	}

	// Same key, invalidated in place.
	second := first
	second.Attributes = first.Attributes.Clone()
	second.InvalidatedAtTime = 500
	second.WasInvalidatedBy = &ActivityKey{Type: EditTranslation, StartedAtTime: 450}
	if _, err := s.PutEntity(ctx, second); err != nil {
		t.Fatalf("overwrite PutEntity() failed: %v", err)
	}

	got, ok, err := s.GetEntity(ctx, Translations, key)
	if err != nil || !ok {
		t.Fatalf("GetEntity() = ok=%v, err=%v", ok, err)
	}
	if got.InvalidatedAtTime != 500 {
		t.Errorf("InvalidatedAtTime = %d, want 500", got.InvalidatedAtTime)
	}
	if got.WasInvalidatedBy == nil || got.WasInvalidatedBy.StartedAtTime != 450 {
		t.Errorf("WasInvalidatedBy = %+v, want EditTranslation/450", got.WasInvalidatedBy)
	}

	versions, err := s.TranslationVersions(ctx, "spa_Latn", 1)
	if err != nil {
		t.Fatalf("TranslationVersions() failed: %v", err)
	}
	if len(versions) != 1 {
		t.Errorf("overwrite created %d rows, want 1", len(versions))
	}
}

func TestPutActivity_EndOverwrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := createTestActivity(ViewSentence, 100, "spa_Latn", 1)
	if err := s.PutActivity(ctx, a); err != nil {
		t.Fatalf("PutActivity() failed: %v", err)
	}

	a.EndedAtTime = 250
	if err := s.PutActivity(ctx, a); err != nil {
		t.Fatalf("second PutActivity() failed: %v", err)
	}

	got, ok, err := s.GetActivity(ctx, a.Key())
	if err != nil || !ok {
		t.Fatalf("GetActivity() = ok=%v, err=%v", ok, err)
	}
	if got.EndedAtTime != 250 {
		t.Errorf("EndedAtTime = %d, want 250", got.EndedAtTime)
	}
}

func TestPutActivity_RoundTripsEdges(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	a := createTestActivity(EditTranslation, 300, "spa_Latn", 2)
	a.Used = []UsedEntity{
		{Entity: TargetLanguages, Key: LanguageKey("spa_Latn")},
		{Entity: Translations, Key: TranslationKey("spa_Latn", 2, 100)},
	}
	a.WasInformedBy = []ActivityKey{
		{Type: ViewSentence, StartedAtTime: 50},
		{Type: MachineTranslate, StartedAtTime: 90},
	}
	if err := s.PutActivity(ctx, a); err != nil {
		t.Fatalf("PutActivity() failed: %v", err)
	}

	got, ok, err := s.GetActivity(ctx, a.Key())
	if err != nil || !ok {
		t.Fatalf("GetActivity() = ok=%v, err=%v", ok, err)
	}
	if len(got.Used) != 2 || got.Used[1].Key.String() != "spa_Latn/2/100" {
		t.Errorf("Used = %+v", got.Used)
	}
	if len(got.WasInformedBy) != 2 || got.WasInformedBy[0].Type != ViewSentence {
		t.Errorf("WasInformedBy = %+v", got.WasInformedBy)
	}
}

func TestImportBatch_Atomic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	good := createTestTranslation("spa_Latn", 1, 100, 0, "hola")
	bad := Entity{Collection: "mystery"}

	err := s.ImportBatch(ctx, []Entity{good, bad}, nil)
	if err == nil {
		t.Fatal("expected error for batch with unknown collection, got nil")
	}

	// Nothing from the failed batch may land.
	_, ok, err := s.GetEntity(ctx, Translations, TranslationKey("spa_Latn", 1, 100))
	if err != nil {
		t.Fatalf("GetEntity() failed: %v", err)
	}
	if ok {
		t.Error("failed import left a partial write behind")
	}
}

func TestImportBatch_WritesAll(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	entities := []Entity{
		{
			Collection:      TargetLanguages,
			Attributes:      attr.Object{AttrName: attr.String("spa_Latn")},
			GeneratedAtTime: 10,
		},
		createTestTranslation("spa_Latn", 1, 100, 0, "hola"),
	}
	activities := []Activity{
		createTestActivity(CreateTargetLanguage, 10, "spa_Latn", 0),
		createTestActivity(EditTranslation, 99, "spa_Latn", 1),
	}

	if err := s.ImportBatch(ctx, entities, activities); err != nil {
		t.Fatalf("ImportBatch() failed: %v", err)
	}

	if _, ok, _ := s.GetEntity(ctx, TargetLanguages, LanguageKey("spa_Latn")); !ok {
		t.Error("target language not written")
	}
	if _, ok, _ := s.GetActivity(ctx, ActivityKey{Type: EditTranslation, StartedAtTime: 99}); !ok {
		t.Error("activity not written")
	}
}
