// Package export produces the two interchange artifacts of a
// translated dataset: the plain-text translation file and the
// per-sentence PROV-JSON provenance document.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/seedcat/seedprov/internal/provjson"
	"github.com/seedcat/seedprov/internal/record"
)

// Text renders the translation file for one target language: one line
// per 1-based sentence index up to sentenceCount, blank where no
// completed translation exists.
func Text(ctx context.Context, store *record.Store, targetLanguage string, sentenceCount int64) ([]byte, error) {
	completed, err := store.CompletedTranslations(ctx, targetLanguage)
	if err != nil {
		return nil, fmt.Errorf("export text: %w", err)
	}

	lines := make(map[int64]string, len(completed))
	for _, translation := range completed {
		index := translation.Attributes.GetInt(record.AttrIndex)
		lines[index] = translation.Attributes.GetString(record.AttrContent)
	}

	var buf bytes.Buffer
	for index := int64(1); index <= sentenceCount; index++ {
		buf.WriteString(lines[index])
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Prov renders the provenance document for one sentence, with full
// attributes for lossless re-import.
func Prov(ctx context.Context, store *record.Store, sourceLanguage, targetLanguage string, index int64) ([]byte, error) {
	doc, err := provjson.Serialize(ctx, store, sourceLanguage, targetLanguage, index, true)
	if err != nil {
		return nil, fmt.Errorf("export prov: %w", err)
	}
	encoded, err := provjson.Encode(doc)
	if err != nil {
		return nil, fmt.Errorf("export prov: %w", err)
	}
	return encoded, nil
}

// Import validates and replays a provenance document into the store,
// returning the sentence it covers. An empty document imports nothing
// and reports ok=false.
func Import(ctx context.Context, store *record.Store, data []byte) (provjson.Ref, bool, error) {
	doc, err := provjson.ParseDocument(data)
	if err != nil {
		return provjson.Ref{}, false, fmt.Errorf("import prov: %w", err)
	}
	ref, ok, err := provjson.Deserialize(ctx, store, doc)
	if err != nil {
		return provjson.Ref{}, false, fmt.Errorf("import prov: %w", err)
	}
	return ref, ok, nil
}
