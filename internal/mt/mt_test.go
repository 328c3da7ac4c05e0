package mt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/translation", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "eng_Latn", req["source"])
		assert.Equal(t, "spa_Latn", req["target"])
		assert.Equal(t, "The quick brown fox.", req["query"])

		w.Write([]byte(`{"translation":"El zorro marrón rápido."}`))
	}))
	defer server.Close()

	c := New(server.URL)
	text, err := c.Translate(context.Background(), "eng_Latn", "spa_Latn", "The quick brown fox.")
	require.NoError(t, err)
	assert.Equal(t, "El zorro marrón rápido.", text)
}

func TestTranslate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Translate(context.Background(), "eng_Latn", "spa_Latn", "x")
	assert.Error(t, err)
}

func TestTranslate_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := New(server.URL)
	_, err := c.Translate(ctx, "eng_Latn", "spa_Latn", "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTranslateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stream=true", r.URL.RawQuery)
		w.Write([]byte(`{"translation":"El"}` + "\n"))
		w.Write([]byte(`{"translation":"El zorro"}` + "\n"))
		w.Write([]byte(`{"translation":"El zorro rápido."}` + "\n"))
	}))
	defer server.Close()

	var partials []string
	c := New(server.URL)
	text, err := c.TranslateStream(context.Background(), "eng_Latn", "spa_Latn", "The quick fox.", func(partial string) {
		partials = append(partials, partial)
	})
	require.NoError(t, err)
	assert.Equal(t, "El zorro rápido.", text)
	assert.Equal(t, []string{"El", "El zorro", "El zorro rápido."}, partials)
}
