// Package annotate provides local sentence annotators: tokenization
// and part-of-speech tagging for text the dataset service has no tags
// for.
package annotate

import (
	"strings"
	"unicode"
)

// Tokenizer splits a sentence into tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Tagger produces (token, tag) pairs for a sentence. A pair whose tag
// equals its token means the tagger had nothing to say about it.
type Tagger interface {
	Tag(text string) [][2]string
}

// Annotator combines both capabilities.
type Annotator interface {
	Tokenizer
	Tagger
}

// ForLanguage picks an annotator for a language code. Japanese text
// gets the dictionary-backed annotator; everything else falls back to
// the Latin-script tokenizer.
func ForLanguage(language string) (Annotator, error) {
	if strings.HasPrefix(language, "jpn_") {
		return NewJapanese()
	}
	return Latin{}, nil
}

// Latin tokenizes whitespace-delimited script: tokens are split on
// whitespace, with leading and trailing punctuation peeled off into
// tokens of their own.
type Latin struct{}

// Tokenize splits text into word and punctuation tokens.
func (Latin) Tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.FieldsFunc(text, unicode.IsSpace) {
		tokens = append(tokens, splitPunct(field)...)
	}
	if tokens == nil {
		tokens = []string{}
	}
	return tokens
}

// Tag returns untagged pairs: Latin has no lexicon, so every token
// tags as itself.
func (l Latin) Tag(text string) [][2]string {
	tokens := l.Tokenize(text)
	pairs := make([][2]string, len(tokens))
	for i, token := range tokens {
		pairs[i] = [2]string{token, token}
	}
	return pairs
}

func splitPunct(field string) []string {
	runes := []rune(field)

	start := 0
	for start < len(runes) && unicode.IsPunct(runes[start]) {
		start++
	}
	end := len(runes)
	for end > start && unicode.IsPunct(runes[end-1]) {
		end--
	}

	var out []string
	for _, r := range runes[:start] {
		out = append(out, string(r))
	}
	if start < end {
		out = append(out, string(runes[start:end]))
	}
	for _, r := range runes[end:] {
		out = append(out, string(r))
	}
	return out
}
