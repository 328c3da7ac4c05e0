package record

import (
	"path/filepath"
	"testing"

	"github.com/seedcat/seedprov/internal/attr"
)

// createTestStore creates a temp-file store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestTranslation builds a translation entity with the given
// content and timestamps.
func createTestTranslation(language string, index, generatedAt, completedAt int64, content string) Entity {
	return Entity{
		Collection: Translations,
		Attributes: attr.Object{
			AttrTargetLanguage:  attr.String(language),
			AttrIndex:           attr.Int(index),
			AttrContent:         attr.String(content),
			AttrCompletedAtTime: attr.Int(completedAt),
		},
		GeneratedAtTime: generatedAt,
		WasGeneratedBy:  ActivityKey{Type: EditTranslation, StartedAtTime: generatedAt - 1},
	}
}

// createTestActivity builds a sentence-scoped activity.
func createTestActivity(typ ActivityType, startedAt int64, language string, index int64) Activity {
	return Activity{
		Type:              typ,
		StartedAtTime:     startedAt,
		TargetLanguage:    language,
		Index:             index,
		WasAssociatedWith: "Translator/test",
	}
}
