package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatinTokenize(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"The quick brown fox.", []string{"The", "quick", "brown", "fox", "."}},
		{"Hello, world!", []string{"Hello", ",", "world", "!"}},
		{`"quoted" text`, []string{`"`, "quoted", `"`, "text"}},
		{"no-punct", []string{"no-punct"}},
		{"", []string{}},
		{"  spaced   out  ", []string{"spaced", "out"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Latin{}.Tokenize(tc.text), "text %q", tc.text)
	}
}

func TestLatinTag_Untagged(t *testing.T) {
	pairs := Latin{}.Tag("Hi there.")
	assert.Equal(t, [][2]string{{"Hi", "Hi"}, {"there", "there"}, {".", "."}}, pairs)
}

func TestJapaneseTokenize(t *testing.T) {
	j, err := NewJapanese()
	require.NoError(t, err)

	tokens := j.Tokenize("すもももももももものうち")
	assert.Equal(t, []string{"すもも", "も", "もも", "も", "もも", "の", "うち"}, tokens)
}

func TestJapaneseTag(t *testing.T) {
	j, err := NewJapanese()
	require.NoError(t, err)

	pairs := j.Tag("猫が好き")
	require.NotEmpty(t, pairs)
	assert.Equal(t, "猫", pairs[0][0])
	assert.NotEmpty(t, pairs[0][1])
	assert.NotEqual(t, pairs[0][0], pairs[0][1])
}

func TestForLanguage(t *testing.T) {
	a, err := ForLanguage("eng_Latn")
	require.NoError(t, err)
	assert.IsType(t, Latin{}, a)

	a, err = ForLanguage("jpn_Jpan")
	require.NoError(t, err)
	assert.IsType(t, &Japanese{}, a)
}
