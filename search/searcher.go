// Package search finds candidate product page URLs for a query on a single
// site, via a SerpAPI-compatible web-search backend.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sanjaypinna/price-fetcher/models"
)

// maxLinks caps how many links a single site search contributes.
const maxLinks = 5

// Searcher queries the web-search backend with a domain-scoped query.
// Search never fails the caller: a site that cannot be searched simply
// contributes nothing.
type Searcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewSearcher creates a Searcher. Pass a nil httpClient to use a default one;
// baseURL falls back to the production endpoint when empty.
func NewSearcher(httpClient *http.Client, baseURL, apiKey string) *Searcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if baseURL == "" {
		baseURL = "https://serpapi.com"
	}
	return &Searcher{httpClient: httpClient, baseURL: baseURL, apiKey: apiKey}
}

// searchResponse is the minimal search result shape we need.
type searchResponse struct {
	OrganicResults []struct {
		Link string `json:"link"`
	} `json:"organic_results"`
}

// Search returns up to 5 candidate links for the query on the given site,
// tagged with the site. Any backend error is logged and yields nil.
func (s *Searcher) Search(ctx context.Context, query, site string) []models.CandidateLink {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", fmt.Sprintf("%s site:%s", query, site))
	params.Set("api_key", s.apiKey)

	endpoint := strings.TrimRight(s.baseURL, "/") + "/search.json?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Warn("search request build failed", "site", site, "error", err)
		return nil
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Warn("search request failed", "site", site, "error", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Warn("search response read failed", "site", site, "error", err)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		slog.Warn("search backend returned error status", "site", site, "status", resp.StatusCode)
		return nil
	}

	var searchResp searchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		slog.Warn("search response malformed", "site", site, "error", err)
		return nil
	}

	links := make([]models.CandidateLink, 0, maxLinks)
	for _, r := range searchResp.OrganicResults {
		if r.Link == "" {
			continue
		}
		links = append(links, models.CandidateLink{URL: r.Link, Site: site})
		if len(links) == maxLinks {
			break
		}
	}
	return links
}
