// Package docindex is the HTTP client for the document index
// collaborator service.
package docindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kailas-cloud/unisearch/internal/domain"
)

// Client calls the document index service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a document index client. timeout bounds each request at
// the transport level; callers enforce their own deadlines on top.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Results []struct {
		ID      string  `json:"id"`
		Title   string  `json:"title"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
	Error string `json:"error,omitempty"`
}

// Search queries the index and returns scored hits.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.IndexHit, error) {
	body, err := json.Marshal(searchRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("document index request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("document index returned status %d", resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("document index error: %s", out.Error)
	}

	hits := make([]domain.IndexHit, 0, len(out.Results))
	for _, r := range out.Results {
		hits = append(hits, domain.IndexHit{
			ID:      r.ID,
			Title:   r.Title,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return hits, nil
}

// HealthCheck verifies the index service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("document index health: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("document index health returned status %d", resp.StatusCode)
	}
	return nil
}
