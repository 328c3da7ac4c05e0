// Package wordnet is the dictionary-lookup client. Lookups hit the
// wordnet service, which fronts the WordNet 3.1 database.
package wordnet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Record is one dictionary entry for a looked-up lemma. The json tags
// follow the service's wire form, where examples arrive as "exp".
type Record struct {
	Lemma    string   `json:"lemma"`
	Pos      string   `json:"pos"`
	Gloss    string   `json:"gloss"`
	Synonyms []string `json:"synonyms"`
	Examples []string `json:"exp"`
}

// Client talks to the wordnet service.
type Client struct {
	base string
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a wordnet client for the given service base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: baseURL,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches the dictionary records for a term. A term with no
// entry returns an empty slice, not an error.
func (c *Client) Lookup(ctx context.Context, term string) ([]Record, error) {
	lookupURL := c.base + "/wordnet?term=" + url.QueryEscape(term)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", term, err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", term, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup %q: unexpected status %s", term, res.Status)
	}

	records := []Record{}
	if err := json.NewDecoder(res.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("lookup %q: decode response: %w", term, err)
	}
	return records, nil
}
