// Package discovery resolves a target country to its leading e-commerce
// domains via a generative-language backend, with ranked credential fallback.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sanjaypinna/price-fetcher/models"
)

// maxSites caps how many candidate domains a discovery returns.
const maxSites = 5

// Discoverer turns a country into a ranked list of candidate e-commerce
// domains. Credentials are tried strictly in order: a capacity failure
// (429/503) advances to the next key, any other failure aborts immediately so
// an invalid key surfaces as an operator error instead of burning calls.
type Discoverer struct {
	client *Client
	keys   []string
}

// NewDiscoverer creates a Discoverer over the given client and ranked keys.
func NewDiscoverer(client *Client, keys []string) *Discoverer {
	return &Discoverer{client: client, keys: keys}
}

// Discover returns up to 5 candidate domains for the country, in model output
// order. The order is treated as a relevance ranking downstream.
func (d *Discoverer) Discover(ctx context.Context, country string) ([]string, error) {
	prompt := buildPrompt(country)

	for i, key := range d.keys {
		text, err := d.client.Generate(ctx, prompt, key)
		if err == nil {
			return parseDomains(text), nil
		}

		var be *backendError
		if errors.As(err, &be) && be.Transient() {
			slog.Warn("discovery credential rate-limited, trying next",
				"rank", i, "status", be.StatusCode)
			continue
		}

		// Invalid credential or unexpected failure: stop immediately,
		// remaining keys are never tried.
		return nil, models.NewCompareError(models.ErrCodeDiscoveryRejected,
			"site discovery credential rejected", err)
	}

	return nil, models.NewCompareError(models.ErrCodeDiscoveryExhausted,
		"all site discovery credentials exhausted", nil)
}

// buildPrompt asks for plain newline-separated domains so the response parses
// without any structured-output plumbing.
func buildPrompt(country string) string {
	return fmt.Sprintf("List 5 top e-commerce domains in %s for electronics and fashion (e.g., amazon.in). Return only plain domain names, one per line.", country)
}

// parseDomains splits the model output into lines, trims whitespace, keeps
// only domain-like lines (containing a dot) and caps the list at 5.
func parseDomains(text string) []string {
	lines := strings.Split(text, "\n")
	domains := make([]string, 0, maxSites)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.Contains(line, ".") {
			continue
		}
		domains = append(domains, line)
		if len(domains) == maxSites {
			break
		}
	}
	return domains
}
