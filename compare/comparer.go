// Package compare orchestrates the discovery → search → fetch+extract
// pipeline and aggregates per-page product records into one ordered result.
package compare

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sanjaypinna/price-fetcher/models"
)

// SiteDiscoverer resolves a country to candidate e-commerce domains.
type SiteDiscoverer interface {
	Discover(ctx context.Context, country string) ([]string, error)
}

// LinkSearcher finds candidate product pages for a query on one site.
// Implementations never fail the caller; an unsearchable site yields nil.
type LinkSearcher interface {
	Search(ctx context.Context, query, site string) []models.CandidateLink
}

// PageFetcher retrieves a page body.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor pulls a structured product record out of page markup.
// A nil result means the page carries no usable record.
type Extractor func(markup []byte, sourceURL string) *models.ProductRecord

// Options tunes the orchestrator's fan-out.
type Options struct {
	// FetchTimeout bounds each page fetch. A hang becomes an absent
	// result like any other fetch failure. Default: 15s.
	FetchTimeout time.Duration

	// MaxConcurrentFetches bounds in-flight page fetches. Default: 25,
	// the worst case of 5 sites x 5 links.
	MaxConcurrentFetches int
}

// Comparer runs one comparison request end to end. Everything below discovery
// is a soft failure: sites and links that yield nothing are skipped, and the
// request fails only on invalid input or a discovery failure.
type Comparer struct {
	discoverer SiteDiscoverer
	searcher   LinkSearcher
	fetcher    PageFetcher
	extract    Extractor

	fetchTimeout time.Duration
	fetchSlots   chan struct{}
}

// NewComparer wires the pipeline stages together.
func NewComparer(d SiteDiscoverer, s LinkSearcher, f PageFetcher, e Extractor, opts Options) *Comparer {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 15 * time.Second
	}
	if opts.MaxConcurrentFetches <= 0 {
		opts.MaxConcurrentFetches = 25
	}
	return &Comparer{
		discoverer:   d,
		searcher:     s,
		fetcher:      f,
		extract:      e,
		fetchTimeout: opts.FetchTimeout,
		fetchSlots:   make(chan struct{}, opts.MaxConcurrentFetches),
	}
}

// Result is the outcome of one comparison.
type Result struct {
	// Records holds one entry per successfully parsed page, ordered by
	// (site rank, link rank). May be empty.
	Records []models.ProductRecord

	// Sites is the discovered domain list in relevance order.
	Sites []string

	// DiscoveryDuration is how long site discovery took.
	DiscoveryDuration time.Duration
}

// Compare validates the request, discovers sites once, then fans out one task
// per site and one task per link. Records are ordered by (site rank, link
// rank) rather than completion time, so output is deterministic regardless of
// network timing.
func (c *Comparer) Compare(ctx context.Context, req models.CompareRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	discoveryStart := time.Now()
	sites, err := c.discoverer.Discover(ctx, req.Country)
	if err != nil {
		return nil, err
	}
	discoveryDuration := time.Since(discoveryStart)

	// Rank-indexed slots: each site goroutine owns exactly one slot, so no
	// locking is needed and site order survives concurrent completion.
	perSite := make([][]models.ProductRecord, len(sites))
	var wg sync.WaitGroup
	for i, site := range sites {
		wg.Add(1)
		go func(rank int, site string) {
			defer wg.Done()
			perSite[rank] = c.compareSite(ctx, req.Query, site)
		}(i, site)
	}
	wg.Wait()

	records := make([]models.ProductRecord, 0)
	for _, siteRecords := range perSite {
		records = append(records, siteRecords...)
	}

	slog.Info("comparison complete",
		"query", req.Query,
		"country", req.Country,
		"sites", len(sites),
		"records", len(records),
	)
	return &Result{
		Records:           records,
		Sites:             sites,
		DiscoveryDuration: discoveryDuration,
	}, nil
}

// compareSite searches one site and fans out over its links, preserving link
// order in the returned slice.
func (c *Comparer) compareSite(ctx context.Context, query, site string) []models.ProductRecord {
	links := c.searcher.Search(ctx, query, site)
	if len(links) == 0 {
		return nil
	}

	slots := make([]*models.ProductRecord, len(links))
	var wg sync.WaitGroup
	for i, link := range links {
		wg.Add(1)
		go func(rank int, link models.CandidateLink) {
			defer wg.Done()
			slots[rank] = c.extractFromLink(ctx, link)
		}(i, link)
	}
	wg.Wait()

	records := make([]models.ProductRecord, 0, len(links))
	for _, r := range slots {
		if r != nil {
			records = append(records, *r)
		}
	}
	return records
}

// extractFromLink fetches one page under the fetch semaphore and a per-fetch
// deadline, then extracts a record. All failures are absorbed here.
func (c *Comparer) extractFromLink(ctx context.Context, link models.CandidateLink) *models.ProductRecord {
	c.fetchSlots <- struct{}{}
	defer func() { <-c.fetchSlots }()

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	body, err := c.fetcher.Fetch(fetchCtx, link.URL)
	if err != nil {
		slog.Warn("page fetch failed", "site", link.Site, "link", link.URL, "error", err)
		return nil
	}

	record := c.extract(body, link.URL)
	if record == nil {
		slog.Debug("no product record on page", "site", link.Site, "link", link.URL)
	}
	return record
}
