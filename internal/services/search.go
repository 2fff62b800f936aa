package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// SearchHit is one structured result from the web-search capability.
type SearchHit struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchService returns ranked snippets for a query. Snippets holds the
// formatted text block used for prompt context; Hits carries the structured
// results when the backend provides them. Either may be empty.
type SearchService interface {
	Search(ctx context.Context, query string) (snippets string, hits []SearchHit, err error)
}

type tavilyService struct {
	apiKey     string
	maxResults int
	endpoint   string
	httpClient *http.Client
}

func NewTavilyService(apiKey string, maxResults int, timeout time.Duration) SearchService {
	return &tavilyService{
		apiKey:     apiKey,
		maxResults: maxResults,
		endpoint:   tavilyEndpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type tavilyRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	MaxResults    int    `json:"max_results"`
	IncludeAnswer bool   `json:"include_answer"`
}

type tavilyResponse struct {
	Results []SearchHit `json:"results"`
}

// Search implements SearchService.
func (t *tavilyService) Search(ctx context.Context, query string) (string, []SearchHit, error) {
	payload, err := json.Marshal(tavilyRequest{
		APIKey:      t.apiKey,
		Query:       query,
		SearchDepth: "basic",
		MaxResults:  t.maxResults,
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		// Some backends answer with plain text; pass it through as the
		// snippet block and let the caller mine it for links.
		return string(body), nil, nil
	}

	return FormatSearchSnippets(parsed.Results), parsed.Results, nil
}

// FormatSearchSnippets renders hits into the snippet block embedded in
// generation prompts.
func FormatSearchSnippets(hits []SearchHit) string {
	if len(hits) == 0 {
		return "No search results found."
	}

	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		parts = append(parts, fmt.Sprintf("Content: %s\nSource: %s", hit.Content, hit.URL))
	}
	return strings.Join(parts, "\n---\n")
}

// QueryTool binds a SearchService to a query template, e.g.
// "interview questions for %s". One capability type covers every flavor of
// search the pipeline performs.
type QueryTool struct {
	svc      SearchService
	template string
}

func NewQueryTool(svc SearchService, template string) *QueryTool {
	return &QueryTool{svc: svc, template: template}
}

func (q *QueryTool) Run(ctx context.Context, subject string) (string, []SearchHit, error) {
	return q.svc.Search(ctx, fmt.Sprintf(q.template, subject))
}
