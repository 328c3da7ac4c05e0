// Package mt is the machine-translation client. The model is a black
// box behind an HTTP endpoint: the client sends the source text and
// the language pair, the service answers with the translated text.
package mt

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the translation service.
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

// New creates a translation client for the given service base URL.
// Model inference can take a while; the default timeout is generous.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: baseURL,
		http: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type translationRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Query  string `json:"query"`
}

type translationResponse struct {
	Translation string `json:"translation"`
}

// Translate translates query from the source to the target language.
// Cancel the context to abandon an in-flight request; the caller is
// responsible for closing any open activity afterwards.
func (c *Client) Translate(ctx context.Context, source, target, query string) (string, error) {
	res, err := c.post(ctx, c.base+"/translation", translationRequest{
		Source: source,
		Target: target,
		Query:  query,
	})
	if err != nil {
		return "", fmt.Errorf("machine translate: %w", err)
	}
	defer res.Body.Close()

	var payload translationResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("machine translate: decode response: %w", err)
	}
	return payload.Translation, nil
}

// TranslateStream translates with partial updates: the service emits
// newline-delimited JSON objects, each carrying the translation so
// far, and onUpdate is called for every one. The returned string is
// the final translation.
func (c *Client) TranslateStream(ctx context.Context, source, target, query string, onUpdate func(partial string)) (string, error) {
	res, err := c.post(ctx, c.base+"/translation?stream=true", translationRequest{
		Source: source,
		Target: target,
		Query:  query,
	})
	if err != nil {
		return "", fmt.Errorf("machine translate stream: %w", err)
	}
	defer res.Body.Close()

	var last string
	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk translationResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", fmt.Errorf("machine translate stream: decode chunk: %w", err)
		}
		last = chunk.Translation
		if onUpdate != nil {
			onUpdate(last)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("machine translate stream: %w", err)
	}
	return last, nil
}

func (c *Client) post(ctx context.Context, url string, body any) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	return res, nil
}
