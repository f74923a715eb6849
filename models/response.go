package models

// CandidateLink is a product page URL tagged with the site it was found on.
type CandidateLink struct {
	URL  string `json:"url"`
	Site string `json:"site"`
}

// ProductRecord is one structured product offer extracted from a page.
type ProductRecord struct {
	// ProductName is the declared product name.
	ProductName string `json:"product_name"`

	// Price is the offer price as declared on the page. Non-negative.
	Price float64 `json:"price"`

	// Currency is the 3-letter currency code; "USD" when the page
	// does not declare one.
	Currency string `json:"currency"`

	// Link is the page the record was extracted from.
	Link string `json:"link"`

	// SecondaryID is the brand name if declared, else the SKU, else empty.
	SecondaryID string `json:"secondary_id,omitempty"`
}

// CompareResponse is the response for POST /api/v1/compare.
type CompareResponse struct {
	// Success indicates whether the comparison completed without a fatal error.
	Success bool `json:"success"`

	// Sites lists the discovered candidate domains in relevance order.
	Sites []string `json:"sites,omitempty"`

	// Results holds one record per successfully parsed page, ordered by
	// (site rank, link rank). May be empty: no parsable offers found.
	Results []ProductRecord `json:"results"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// DiscoveryMs is the time spent resolving candidate sites.
	DiscoveryMs int64 `json:"discovery_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
