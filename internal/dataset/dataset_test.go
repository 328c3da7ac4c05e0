package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oldi/eng_Latn/3", r.URL.Path)
		w.Write([]byte(`{"text":"The quick brown fox.","source":"wikipedia","tags":[["The","DT"],["fox","NN"]]}`))
	}))
	defer server.Close()

	c := New(server.URL)
	sentence, ok, err := c.Sentence(context.Background(), "eng_Latn", 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "The quick brown fox.", sentence.Text)
	assert.Equal(t, "wikipedia", sentence.Source)
	assert.Equal(t, [][2]string{{"The", "DT"}, {"fox", "NN"}}, sentence.Tags)
}

func TestSentence_Missing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := New(server.URL)
	_, ok, err := c.Sentence(context.Background(), "eng_Latn", 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSentence_Cached(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"text":"Hello.","source":"s","tags":[]}`))
	}))
	defer server.Close()

	c := New(server.URL)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, ok, err := c.Sentence(ctx, "eng_Latn", 1)
		require.NoError(t, err)
		require.True(t, ok)
	}
	assert.Equal(t, int64(1), calls.Load())
}

func TestLanguages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oldi/languages", r.URL.Path)
		w.Write([]byte(`[{"name":"eng_Latn"},{"name":"spa_Latn"}]`))
	}))
	defer server.Close()

	c := New(server.URL)
	languages, err := c.Languages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"eng_Latn", "spa_Latn"}, languages)
}

func TestSentenceCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oldi/spa_Latn/count", r.URL.Path)
		w.Write([]byte(`{"count":6193}`))
	}))
	defer server.Close()

	c := New(server.URL)
	count, err := c.SentenceCount(context.Background(), "spa_Latn")
	require.NoError(t, err)
	assert.Equal(t, int64(6193), count)
}

func TestSentence_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL)
	_, _, err := c.Sentence(context.Background(), "eng_Latn", 1)
	assert.Error(t, err)
}
