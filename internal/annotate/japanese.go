package annotate

import (
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Japanese annotates Japanese text with the IPA dictionary. Tokens are
// morpheme surfaces; tags are the dictionary's part-of-speech
// features.
type Japanese struct {
	tokenizer *tokenizer.Tokenizer
}

// NewJapanese builds the dictionary-backed annotator. The dictionary
// loads once per annotator; share one instance.
func NewJapanese() (*Japanese, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("load japanese dictionary: %w", err)
	}
	return &Japanese{tokenizer: t}, nil
}

// Tokenize splits text into morpheme surfaces.
func (j *Japanese) Tokenize(text string) []string {
	morphemes := j.tokenizer.Tokenize(text)
	tokens := make([]string, 0, len(morphemes))
	for _, m := range morphemes {
		tokens = append(tokens, m.Surface)
	}
	return tokens
}

// Tag returns (surface, part-of-speech) pairs. Placeholder feature
// values are dropped from the tag.
func (j *Japanese) Tag(text string) [][2]string {
	morphemes := j.tokenizer.Tokenize(text)
	pairs := make([][2]string, 0, len(morphemes))
	for _, m := range morphemes {
		pairs = append(pairs, [2]string{m.Surface, joinPOS(m.POS())})
	}
	return pairs
}

func joinPOS(features []string) string {
	parts := make([]string, 0, len(features))
	for _, f := range features {
		if f == "" || f == "*" {
			continue
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, "-")
}
