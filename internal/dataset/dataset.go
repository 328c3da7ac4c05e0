// Package dataset fetches source-corpus sentences from the dataset
// service. Responses are cached in process: the corpus is immutable,
// so a sentence fetched once never needs a second request.
package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Sentence is one corpus sentence with its provenance source and the
// part-of-speech tags the service computed for it. Tags are empty for
// languages the service has no tagger for.
type Sentence struct {
	Text   string      `json:"text"`
	Source string      `json:"source"`
	Tags   [][2]string `json:"tags"`
}

// Client talks to the dataset service.
type Client struct {
	base string
	http *http.Client

	mu        sync.Mutex
	sentences map[string]Sentence
	counts    map[string]int64
	languages []string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a dataset client for the given service base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base:      baseURL,
		http:      &http.Client{Timeout: 30 * time.Second},
		sentences: make(map[string]Sentence),
		counts:    make(map[string]int64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sentence fetches one sentence by language and 1-based index. A
// sentence the corpus does not have is reported as ok=false, not as an
// error.
func (c *Client) Sentence(ctx context.Context, language string, index int64) (Sentence, bool, error) {
	cacheKey := language + "/" + strconv.FormatInt(index, 10)
	c.mu.Lock()
	cached, hit := c.sentences[cacheKey]
	c.mu.Unlock()
	if hit {
		return cached, true, nil
	}

	var sentence Sentence
	found, err := c.getJSON(ctx, fmt.Sprintf("%s/oldi/%s/%d", c.base, language, index), &sentence)
	if err != nil {
		return Sentence{}, false, fmt.Errorf("fetch sentence %s/%d: %w", language, index, err)
	}
	if !found {
		return Sentence{}, false, nil
	}

	c.mu.Lock()
	c.sentences[cacheKey] = sentence
	c.mu.Unlock()
	return sentence, true, nil
}

// Languages lists the corpus languages.
func (c *Client) Languages(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	cached := c.languages
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	var entries []struct {
		Name string `json:"name"`
	}
	found, err := c.getJSON(ctx, c.base+"/oldi/languages", &entries)
	if err != nil || !found {
		return nil, fmt.Errorf("fetch language list: %w", orNotFound(err))
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name)
	}

	c.mu.Lock()
	c.languages = names
	c.mu.Unlock()
	return names, nil
}

// SentenceCount returns the number of sentences in one language.
func (c *Client) SentenceCount(ctx context.Context, language string) (int64, error) {
	c.mu.Lock()
	cached, hit := c.counts[language]
	c.mu.Unlock()
	if hit {
		return cached, nil
	}

	var payload struct {
		Count int64 `json:"count"`
	}
	found, err := c.getJSON(ctx, fmt.Sprintf("%s/oldi/%s/count", c.base, language), &payload)
	if err != nil || !found {
		return 0, fmt.Errorf("fetch sentence count for %s: %w", language, orNotFound(err))
	}

	c.mu.Lock()
	c.counts[language] = payload.Count
	c.mu.Unlock()
	return payload.Count, nil
}

// getJSON performs a GET and decodes the response. A 404 is reported
// as found=false with no error.
func (c *Client) getJSON(ctx context.Context, url string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if res.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %s", res.Status)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}

func orNotFound(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("not found")
}
