// Package websearch is the HTTP client for the external web search
// provider gateway.
package websearch

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

// Client calls the web search gateway over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a web search client.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
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
	Citations []struct {
		URL     string  `json:"url"`
		Title   string  `json:"title"`
		Snippet string  `json:"snippet"`
		Score   float64 `json:"score,omitempty"`
	} `json:"citations"`
	Response string `json:"response"`
	Metadata struct {
		ExecutionTime float64 `json:"execution_time"`
		Cost          float64 `json:"cost"`
		Confidence    float64 `json:"confidence"`
		ProviderUsed  string  `json:"provider_used"`
	} `json:"metadata"`
}

// Search queries the gateway and returns citations plus provider
// execution metadata.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (domain.WebSearchResult, error) {
	body, err := json.Marshal(searchRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return domain.WebSearchResult{}, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return domain.WebSearchResult{}, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.WebSearchResult{}, fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.WebSearchResult{}, fmt.Errorf("web search returned status %d", resp.StatusCode)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.WebSearchResult{}, fmt.Errorf("decode search response: %w", err)
	}

	result := domain.WebSearchResult{
		Response:      out.Response,
		ExecutionTime: out.Metadata.ExecutionTime,
		Cost:          out.Metadata.Cost,
		Confidence:    out.Metadata.Confidence,
		Provider:      out.Metadata.ProviderUsed,
	}
	for _, c := range out.Citations {
		result.Citations = append(result.Citations, domain.WebCitation{
			URL:     c.URL,
			Title:   c.Title,
			Snippet: c.Snippet,
			Score:   c.Score,
		})
	}
	return result, nil
}

// HealthCheck verifies the gateway is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("web search health: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("web search health returned status %d", resp.StatusCode)
	}
	return nil
}
