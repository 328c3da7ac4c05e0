package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedcat/seedprov/internal/record"
)

// fakeBackend is the in-memory blob store behind the fake storage
// service.
type fakeBackend struct {
	mu    sync.Mutex
	blobs map[string]string
}

func (b *fakeBackend) put(artifactType, language, index, content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[artifactType+"/"+language+"/"+index] = content
}

func (b *fakeBackend) get(artifactType, language, index string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	content, ok := b.blobs[artifactType+"/"+language+"/"+index]
	return content, ok
}

// newFakeServices serves the dataset, translation, wordnet, and
// storage routes the CLI's clients talk to.
func newFakeServices(t *testing.T) (*httptest.Server, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{blobs: map[string]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /oldi/eng_Latn/3", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"source": "wikipedia",
			"tags": [][2]string{
				{"The", "DT"}, {"quick", "JJ"}, {"brown", "JJ"}, {"fox", "NN"}, {".", "."},
			},
			"text": "The quick brown fox.",
		})
	})
	mux.HandleFunc("POST /translation", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"translation": "El rápido zorro marrón."})
	})
	mux.HandleFunc("GET /wordnet", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("term") != "fox" {
			json.NewEncoder(w).Encode([]any{})
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{{
			"lemma":    "fox",
			"pos":      "noun",
			"gloss":    "alert carnivorous mammal",
			"synonyms": []string{"dodger"},
			"exp":      []string{"a sly fox"},
		}})
	})
	mux.HandleFunc("POST /storage", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content  string `json:"content"`
			Type     string `json:"type"`
			Language string `json:"language"`
			Index    int64  `json:"index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		backend.put(req.Type, req.Language, fmt.Sprint(req.Index), req.Content)
		json.NewEncoder(w).Encode(map[string]bool{"success": true})
	})
	mux.HandleFunc("GET /storage", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		content, ok := backend.get(q.Get("type"), q.Get("language"), q.Get("index"))
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(content))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, backend
}

// writeTestConfig writes a configuration file pointing the named
// services at serviceURL. Returns the config path and the store path.
func writeTestConfig(t *testing.T, serviceURL string, services ...string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	storePath := filepath.Join(dir, "store.db")

	var b strings.Builder
	fmt.Fprintf(&b, "store_path: %s\n", storePath)
	b.WriteString("sentence_count: 5\n")
	b.WriteString("translator_id: test-uid\n")
	if len(services) > 0 {
		b.WriteString("services:\n")
		for _, name := range services {
			fmt.Fprintf(&b, "  %s: %s\n", name, serviceURL)
		}
	}

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(b.String()), 0o644))
	return configPath, storePath
}

// runCLI executes the root command with the given arguments.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// openTestStore opens a store the CLI has already written to.
func openTestStore(t *testing.T, path string) *record.Store {
	t.Helper()
	store, err := record.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRootHelpListsCommands(t *testing.T) {
	output, err := runCLI(t, "--help")
	require.NoError(t, err)

	for _, name := range []string{"view", "annotate", "mt", "edit", "done", "reopen", "wordnet", "translations", "status", "export", "import", "backup"} {
		assert.Contains(t, output, name)
	}
}

func TestRootRejectsInvalidFormat(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")

	_, err := runCLI(t, "status", "-c", configPath, "-t", "spa_Latn", "--format", "yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootStoreFlagOverridesConfig(t *testing.T) {
	configPath, storePath := writeTestConfig(t, "")
	otherPath := filepath.Join(t.TempDir(), "other.db")

	_, err := runCLI(t, "status", "-c", configPath, "-t", "spa_Latn", "--store", otherPath)
	require.NoError(t, err)

	assert.FileExists(t, otherPath)
	assert.NoFileExists(t, storePath)
}

func TestStatusCommand(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")

	output, err := runCLI(t, "status", "-c", configPath, "-t", "spa_Latn")
	require.NoError(t, err)
	assert.Contains(t, output, "spa_Latn: 0/5 translations completed")
}

func TestStatusCommandJSON(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")

	output, err := runCLI(t, "status", "-c", configPath, "-t", "spa_Latn", "--format", "json")
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(output), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestStatusRequiresTarget(t *testing.T) {
	configPath, _ := writeTestConfig(t, "")

	_, err := runCLI(t, "status", "-c", configPath)

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "target language required")
}
