// Package firecrawl is a client for the Firecrawl v1 REST API. The research
// workflow uses it to search the web and scrape pages as markdown.
package firecrawl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultBaseURL is the hosted Firecrawl API endpoint.
const DefaultBaseURL = "https://api.firecrawl.dev"

const (
	searchPath = "/v1/search"
	scrapePath = "/v1/scrape"
)

// Metadata carries page metadata returned with search and scrape results.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SourceURL   string `json:"sourceURL"`
	StatusCode  int    `json:"statusCode"`
}

// SearchResult is one hit from Search. Markdown is populated when the search
// request asks Firecrawl to scrape the hits.
type SearchResult struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Markdown    string   `json:"markdown"`
	Metadata    Metadata `json:"metadata"`
}

// Document is the scraped content of a single page.
type Document struct {
	Markdown string   `json:"markdown"`
	Metadata Metadata `json:"metadata"`
}

// Client talks to the Firecrawl API. Create one with New.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint (self-hosted
// Firecrawl, or a test server).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// New creates a Client authenticated with apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("firecrawl: api key is required")
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// --- wire types ---

type searchRequest struct {
	Query         string         `json:"query"`
	Limit         int            `json:"limit,omitempty"`
	ScrapeOptions *scrapeOptions `json:"scrapeOptions,omitempty"`
}

type scrapeOptions struct {
	Formats []string `json:"formats"`
}

type searchResponse struct {
	Success bool           `json:"success"`
	Data    []SearchResult `json:"data"`
	Warning string         `json:"warning,omitempty"`
}

type scrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

type scrapeResponse struct {
	Success bool     `json:"success"`
	Data    Document `json:"data"`
}

// Search runs a web search and returns up to limit results, each scraped as
// markdown.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	req := searchRequest{
		Query:         query,
		Limit:         limit,
		ScrapeOptions: &scrapeOptions{Formats: []string{"markdown"}},
	}

	var resp searchResponse
	if err := c.postJSON(ctx, searchPath, req, &resp); err != nil {
		return nil, fmt.Errorf("firecrawl: search: %w", err)
	}

	return resp.Data, nil
}

// Scrape fetches one page as markdown.
func (c *Client) Scrape(ctx context.Context, url string) (Document, error) {
	req := scrapeRequest{URL: url, Formats: []string{"markdown"}}

	var resp scrapeResponse
	if err := c.postJSON(ctx, scrapePath, req, &resp); err != nil {
		return Document{}, fmt.Errorf("firecrawl: scrape: %w", err)
	}

	return resp.Data, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
