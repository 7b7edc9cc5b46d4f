package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

type SearchService interface {
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

type SearchResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type searxResponse struct {
	Results []SearchResult `json:"results"`
}

type searchService struct {
	endpoint   string
	httpClient *http.Client
}

// NewSearchService talks to a SearxNG instance at endpoint (e.g.
// http://localhost:8080/search).
func NewSearchService(endpoint string, timeout time.Duration) SearchService {
	return &searchService{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Search implements SearchService.
func (s *searchService) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	form := url.Values{
		"q":        {query},
		"format":   {"json"},
		"language": {"en"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "search: create request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "search: request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("search: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return nil, eris.Errorf("search: non-JSON response (%s)", ct)
	}

	var parsed searxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, eris.Wrap(err, "search: decode response")
	}

	results := make([]SearchResult, 0, limit)
	for _, r := range parsed.Results {
		if limit > 0 && len(results) == limit {
			break
		}
		if r.URL == "" {
			continue
		}
		results = append(results, r)
	}

	return results, nil
}
