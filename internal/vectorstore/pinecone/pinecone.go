// Package pinecone is a minimal REST client to a Pinecone serverless index
// (cosine metric). Only the data-plane calls the pipelines need are
// implemented.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/UtshoDeyTech/pdfchat/internal/utils"
	"github.com/UtshoDeyTech/pdfchat/internal/vectorstore"
)

// listAllCap bounds the zero-vector query that approximates bulk listing.
// Pinecone has no native "list everything with metadata", so anything beyond
// this many records is invisible to ListAll; callers treat the result as a
// best-effort upper bound.
const listAllCap = 10000

type Config struct {
	Host      string // index host, e.g. https://pdf-vectors-xxxx.svc.us-east-1.pinecone.io
	APIKey    string
	Dimension int // embedding dimension, used for the neutral listing probe
	Timeout   time.Duration
}

type Client struct {
	host      string
	apiKey    string
	dimension int
	client    *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = 768 // text-embedding-004
	}
	return &Client{
		host:      cfg.Host,
		apiKey:    cfg.APIKey,
		dimension: dimension,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Close() error { return nil }

type upsertRequest struct {
	Vectors []vectorstore.Record `json:"vectors"`
}

func (c *Client) Upsert(ctx context.Context, records []vectorstore.Record) error {
	if len(records) == 0 {
		return nil
	}
	return c.postJSON(ctx, "/vectors/upsert", upsertRequest{Vectors: records}, nil)
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	IncludeValues   bool      `json:"includeValues,omitempty"`
}

type queryResponse struct {
	Matches []struct {
		ID       string               `json:"id"`
		Score    float32              `json:"score"`
		Values   []float32            `json:"values"`
		Metadata vectorstore.Metadata `json:"metadata"`
	} `json:"matches"`
}

func (c *Client) Query(ctx context.Context, embedding []float32, topK int) ([]vectorstore.Match, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	var resp queryResponse
	req := queryRequest{Vector: embedding, TopK: topK, IncludeMetadata: true}
	if err := c.postJSON(ctx, "/query", req, &resp); err != nil {
		return nil, err
	}

	matches := make([]vectorstore.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, vectorstore.Match{
			Record: vectorstore.Record{ID: m.ID, Values: m.Values, Metadata: m.Metadata},
			Score:  m.Score,
		})
	}
	return matches, nil
}

type deleteRequest struct {
	IDs []string `json:"ids"`
}

// Delete is idempotent: Pinecone does not report which of the IDs existed.
func (c *Client) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.postJSON(ctx, "/vectors/delete", deleteRequest{IDs: ids}, nil)
}

// ListAll approximates a full listing with a capped similarity query against
// a zero vector. See listAllCap for the completeness caveat.
func (c *Client) ListAll(ctx context.Context) ([]vectorstore.Record, error) {
	var resp queryResponse
	req := queryRequest{Vector: utils.ZeroVector(c.dimension), TopK: listAllCap, IncludeMetadata: true}
	if err := c.postJSON(ctx, "/query", req, &resp); err != nil {
		return nil, err
	}

	records := make([]vectorstore.Record, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		records = append(records, vectorstore.Record{ID: m.ID, Values: m.Values, Metadata: m.Metadata})
	}
	return records, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode pinecone request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build pinecone request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("pinecone POST %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("pinecone POST %s failed: %s", path, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode pinecone response: %w", err)
		}
	}
	return nil
}
