// Package backup mirrors finished work to the storage service. Each
// (target language, index) pair backs up as two blobs: the plain
// translation text and the full provenance document.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/seedcat/seedprov/internal/provjson"
	"github.com/seedcat/seedprov/internal/record"
)

// Artifact types accepted by the storage service.
const (
	TypeTranslation = "translation"
	TypeProv        = "prov"
)

// Client talks to the storage service.
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

// New creates a backup client for the given service base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: baseURL,
		http: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type uploadRequest struct {
	Content  string `json:"content"`
	Type     string `json:"type"`
	Language string `json:"language"`
	Index    int64  `json:"index"`
}

// Upload backs up one sentence's translation and provenance document.
// Nothing is uploaded unless a current translation with content
// exists; that case returns uploaded=false without an error.
func (c *Client) Upload(ctx context.Context, store *record.Store, sourceLanguage, targetLanguage string, index int64) (bool, error) {
	latest, found, err := store.LatestTranslation(ctx, targetLanguage, index)
	if err != nil {
		return false, fmt.Errorf("backup upload: %w", err)
	}
	if !found || latest.InvalidatedAtTime != 0 {
		return false, nil
	}
	content := latest.Attributes.GetString(record.AttrContent)
	if content == "" {
		return false, nil
	}

	doc, err := provjson.Serialize(ctx, store, sourceLanguage, targetLanguage, index, true)
	if err != nil {
		return false, fmt.Errorf("backup upload: %w", err)
	}
	encoded, err := provjson.Encode(doc)
	if err != nil {
		return false, fmt.Errorf("backup upload: %w", err)
	}

	if err := c.putBlob(ctx, TypeProv, targetLanguage, index, string(encoded)); err != nil {
		return false, fmt.Errorf("backup upload: %w", err)
	}
	if err := c.putBlob(ctx, TypeTranslation, targetLanguage, index, content); err != nil {
		return false, fmt.Errorf("backup upload: %w", err)
	}
	return true, nil
}

// Download fetches the backed-up provenance document for one sentence.
// A missing backup is reported as ok=false, not as an error.
func (c *Client) Download(ctx context.Context, targetLanguage string, index int64) (*provjson.Document, bool, error) {
	params := url.Values{
		"type":     {TypeProv},
		"language": {targetLanguage},
		"index":    {strconv.FormatInt(index, 10)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/storage?"+params.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("backup download: %w", err)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("backup download: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, false, nil
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(res.Body); err != nil {
		return nil, false, fmt.Errorf("backup download: %w", err)
	}
	doc, err := provjson.ParseDocument(buf.Bytes())
	if err != nil {
		return nil, false, fmt.Errorf("backup download: %w", err)
	}
	return doc, true, nil
}

func (c *Client) putBlob(ctx context.Context, artifactType, language string, index int64, content string) error {
	encoded, err := json.Marshal(uploadRequest{
		Content:  content,
		Type:     artifactType,
		Language: language,
		Index:    index,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/storage", bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("put %s blob: unexpected status %s", artifactType, res.Status)
	}
	return nil
}
