package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"chatpipe/internal/models"
)

const (
	searchHTTPTimeout = 30 * time.Second

	tavilyEndpoint     = "https://api.tavily.com/search"
	perplexityEndpoint = "https://api.perplexity.ai/chat/completions"

	perplexityDefaultModel = "sonar"

	searchMaxResults = 8
)

// SearchProvider runs one web search and returns normalized results.
type SearchProvider interface {
	Search(ctx context.Context, query string) (*models.SearchData, error)
}

// summaryPaths are the known locations of a synthesized answer across the
// provider payload shapes we have seen.
var summaryPaths = []string{
	"choices.0.message.content",
	"answer",
	"generated_text.0",
	"output.0.content.0.text",
}

// citationPaths are the known locations of citation arrays. Elements may be
// plain URL strings or objects with nested title/snippet fields.
var citationPaths = []string{
	"results",
	"search_results",
	"citations",
	"choices.0.message.metadata.citations",
	"web_results",
}

// NormalizeSearchPayload extracts a summary and a deduplicated citation list
// from a raw provider response body. All shape-sniffing lives here.
func NormalizeSearchPayload(body []byte) *models.SearchData {
	data := &models.SearchData{Results: make([]models.SearchResult, 0, 4)}

	for _, path := range summaryPaths {
		if v := gjson.GetBytes(body, path); v.Exists() {
			if s := strings.TrimSpace(v.String()); s != "" {
				data.Summary = s
				break
			}
		}
	}

	seen := make(map[string]struct{})
	seenURL := make(map[string]struct{})
	for _, path := range citationPaths {
		arr := gjson.GetBytes(body, path)
		if !arr.IsArray() {
			continue
		}
		arr.ForEach(func(_, item gjson.Result) bool {
			res, ok := citationFromValue(item)
			if !ok {
				return true
			}
			key := res.URL + "\x00" + res.Title
			if _, dup := seen[key]; dup {
				return true
			}
			// a titleless citation adds nothing if its URL is already listed
			if res.Title == "" && res.URL != "" {
				if _, dup := seenURL[res.URL]; dup {
					return true
				}
			}
			seen[key] = struct{}{}
			if res.URL != "" {
				seenURL[res.URL] = struct{}{}
			}
			data.Results = append(data.Results, res)
			return true
		})
	}

	for i := range data.Results {
		if data.Results[i].Title == "" {
			data.Results[i].Title = deriveTitle(data.Results[i].URL, i+1)
		}
	}
	return data
}

func citationFromValue(item gjson.Result) (models.SearchResult, bool) {
	if item.Type == gjson.String {
		u := strings.TrimSpace(item.String())
		if u == "" {
			return models.SearchResult{}, false
		}
		return models.SearchResult{URL: u}, true
	}
	if !item.IsObject() {
		return models.SearchResult{}, false
	}
	res := models.SearchResult{
		Title: strings.TrimSpace(firstString(item, "title", "name")),
		URL:   strings.TrimSpace(firstString(item, "url", "link", "source.url")),
	}
	res.Snippet = strings.TrimSpace(firstString(item, "content", "snippet", "text", "source.snippet"))
	if res.Title == "" && res.URL == "" && res.Snippet == "" {
		return models.SearchResult{}, false
	}
	return res, true
}

func firstString(item gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := item.Get(p); v.Exists() && v.Type == gjson.String && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

// deriveTitle falls back to the URL hostname, then an ordinal placeholder.
func deriveTitle(rawURL string, ordinal int) string {
	if rawURL != "" {
		if parsed, err := url.Parse(rawURL); err == nil && parsed.Host != "" {
			return strings.TrimPrefix(parsed.Host, "www.")
		}
	}
	return fmt.Sprintf("Nguồn %d", ordinal)
}

// tavilySearcher calls the Tavily search API.
type tavilySearcher struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewTavilySearch(apiKey, baseURL string) SearchProvider {
	if baseURL == "" {
		baseURL = tavilyEndpoint
	}
	return &tavilySearcher{
		apiKey:     apiKey,
		endpoint:   baseURL,
		httpClient: &http.Client{Timeout: searchHTTPTimeout},
	}
}

func (t *tavilySearcher) Search(ctx context.Context, query string) (*models.SearchData, error) {
	if t.apiKey == "" {
		return nil, NewError(KindConfiguration, "tavily api key is not configured")
	}
	payload := map[string]any{
		"query":          query,
		"search_depth":   "basic",
		"include_answer": true,
		"max_results":    searchMaxResults,
	}
	body, err := postJSON(ctx, t.httpClient, t.endpoint, t.apiKey, payload)
	if err != nil {
		return nil, err
	}
	return NormalizeSearchPayload(body), nil
}

// perplexitySearcher drives the Perplexity chat completions API as a search
// backend; the synthesized answer arrives as the assistant message and
// citations ride along in provider metadata.
type perplexitySearcher struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

func NewPerplexitySearch(apiKey, baseURL, model string) SearchProvider {
	if baseURL == "" {
		baseURL = perplexityEndpoint
	}
	if model == "" {
		model = perplexityDefaultModel
	}
	return &perplexitySearcher{
		apiKey:     apiKey,
		endpoint:   baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: searchHTTPTimeout},
	}
}

func (p *perplexitySearcher) Search(ctx context.Context, query string) (*models.SearchData, error) {
	if p.apiKey == "" {
		return nil, NewError(KindConfiguration, "perplexity api key is not configured")
	}
	payload := map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "user", "content": query},
		},
	}
	body, err := postJSON(ctx, p.httpClient, p.endpoint, p.apiKey, payload)
	if err != nil {
		return nil, err
	}
	return NormalizeSearchPayload(body), nil
}

func postJSON(ctx context.Context, client *http.Client, endpoint, apiKey string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(KindUpstream, "marshal search request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, WrapError(KindUpstream, "build search request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, WrapError(KindNetwork, "search request failed", err)
	}
	defer resp.Body.Close()

	const maxBodySize = 1 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, WrapError(KindNetwork, "read search response", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, NewError(KindAuth, fmt.Sprintf("search provider rejected credentials (%s)", resp.Status))
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewError(KindRateLimit, "search provider rate limit reached")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(body))
		if len(detail) > 200 {
			detail = detail[:200]
		}
		return nil, NewError(KindUpstream, fmt.Sprintf("search provider returned %s: %s", resp.Status, detail))
	}
	return body, nil
}
