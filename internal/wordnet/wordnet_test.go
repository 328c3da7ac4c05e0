package wordnet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wordnet", r.URL.Path)
		assert.Equal(t, "fox", r.URL.Query().Get("term"))
		w.Write([]byte(`[
			{"lemma":"fox","pos":"n","gloss":"alert carnivorous mammal","synonyms":["fox","dodger"],"exp":["the fox ran"]},
			{"lemma":"fox","pos":"v","gloss":"deceive somebody","synonyms":["fox","fob"],"exp":[]}
		]`))
	}))
	defer server.Close()

	c := New(server.URL)
	records, err := c.Lookup(context.Background(), "fox")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "fox", records[0].Lemma)
	assert.Equal(t, "n", records[0].Pos)
	assert.Equal(t, []string{"fox", "dodger"}, records[0].Synonyms)
	assert.Equal(t, []string{"the fox ran"}, records[0].Examples)
	assert.Equal(t, "deceive somebody", records[1].Gloss)
}

func TestLookup_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(server.URL)
	records, err := c.Lookup(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestLookup_EscapesTerm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "quick brown", r.URL.Query().Get("term"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Lookup(context.Background(), "quick brown")
	require.NoError(t, err)
}
