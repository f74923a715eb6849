// Package jsonld extracts schema.org Product records embedded in page markup
// as application/ld+json script blocks. Extraction is pure and never fails:
// a page without a usable record is the normal negative result.
package jsonld

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ysmood/gson"

	"github.com/sanjaypinna/price-fetcher/models"
)

// Extract scans the markup for ld+json blocks in document order and returns
// the first one that yields a valid Product record, or nil if none does.
//
// Blocks are located with a real HTML parser rather than a regex so nested or
// malformed markup cannot corrupt block boundaries. A block whose JSON fails
// to parse is skipped and the next block is tried.
func Extract(markup []byte, sourceURL string) *models.ProductRecord {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return nil
	}

	var record *models.ProductRecord
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var value any
		if err := json.Unmarshal([]byte(s.Text()), &value); err != nil {
			return true // malformed block, try the next one
		}
		if r := productRecord(value, sourceURL); r != nil {
			record = r
			return false
		}
		return true
	})
	return record
}

// productRecord converts one parsed ld+json value into a ProductRecord.
//
// A list selects its first element declared as a Product; a list with no
// Product-typed element yields nothing even if another element is plausible.
// A single object is used directly regardless of its declared type.
func productRecord(value any, sourceURL string) *models.ProductRecord {
	candidate := gson.New(value)

	if list, ok := value.([]any); ok {
		found := false
		for _, el := range list {
			g := gson.New(el)
			if typeName(g) == "Product" {
				candidate = g
				found = true
				break
			}
		}
		if !found {
			return nil
		}
	}

	name, ok := candidate.Get("name").Val().(string)
	if !ok || name == "" {
		return nil
	}

	offers := candidate.Get("offers")
	price, ok := coercePrice(offers.Get("price").Val())
	if !ok {
		return nil
	}

	currency := "USD"
	if c, ok := offers.Get("priceCurrency").Val().(string); ok && c != "" {
		currency = c
	}

	return &models.ProductRecord{
		ProductName: name,
		Price:       price,
		Currency:    currency,
		Link:        sourceURL,
		SecondaryID: secondaryID(candidate),
	}
}

// typeName returns the candidate's @type when it is a plain string.
func typeName(j gson.JSON) string {
	t, _ := j.Get("@type").Val().(string)
	return t
}

// coercePrice accepts the numeric and string price shapes seen in the wild.
// Negative and non-finite values are rejected.
func coercePrice(v any) (float64, bool) {
	var price float64
	switch p := v.(type) {
	case float64:
		price = p
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, false
		}
		price = parsed
	default:
		return 0, false
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return price, true
}

// secondaryID prefers the brand name, falls back to the SKU.
func secondaryID(candidate gson.JSON) string {
	if brand, ok := candidate.Get("brand.name").Val().(string); ok && brand != "" {
		return brand
	}
	if sku, ok := candidate.Get("sku").Val().(string); ok && sku != "" {
		return sku
	}
	return ""
}
