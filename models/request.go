package models

import "strings"

// CompareRequest is the payload for POST /api/v1/compare.
type CompareRequest struct {
	// Query is the product to look up, e.g. "iPhone 16 Pro". Required.
	Query string `json:"query" binding:"required"`

	// Country is the target market, e.g. "India". Required.
	// Site discovery is scoped to this country's leading e-commerce domains.
	Country string `json:"country" binding:"required"`
}

// Validate rejects requests whose fields are empty after trimming.
// Binding catches missing fields; this catches whitespace-only ones.
func (r *CompareRequest) Validate() *CompareError {
	if strings.TrimSpace(r.Query) == "" || strings.TrimSpace(r.Country) == "" {
		return NewCompareError(ErrCodeInvalidRequest, "query and country must be non-empty", nil)
	}
	return nil
}
