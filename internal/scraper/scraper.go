package scraper

import (
	"strings"
	"time"

	"PartWatch/internal/model"
)

// Retailer identifiers for the supported source websites.
const (
	RetailerMicrocenter = "microcenter"
	RetailerNewegg      = "newegg"
	RetailerShopBLT     = "shopblt"
)

// Scraper fetches a single product page and extracts a price record.
// Implementations are stateless between calls; a failed fetch returns a
// NetworkError, StatusError or ParseError.
type Scraper interface {
	Retailer() string
	Fetch(url string) (*model.PriceRecord, error)
}

// Registry builds one scraper per supported retailer, keyed by retailer
// id. Adding a retailer means adding a variant here, not changing any
// dispatch logic.
func Registry(opts Options) map[string]Scraper {
	return map[string]Scraper{
		RetailerMicrocenter: NewMicrocenter(opts),
		RetailerNewegg:      NewNewegg(opts),
		RetailerShopBLT:     NewShopBLT(opts),
	}
}

// RetailerForURL identifies which supported retailer a product URL
// belongs to by its domain. ok is false for URLs outside the supported
// sites.
func RetailerForURL(pageURL string) (string, bool) {
	switch {
	case strings.Contains(pageURL, "microcenter.com"):
		return RetailerMicrocenter, true
	case strings.Contains(pageURL, "newegg.com"):
		return RetailerNewegg, true
	case strings.Contains(pageURL, "shopblt.com"):
		return RetailerShopBLT, true
	}
	return "", false
}

// SupportedRetailer reports whether id names one of the built-in
// retailers.
func SupportedRetailer(id string) bool {
	switch id {
	case RetailerMicrocenter, RetailerNewegg, RetailerShopBLT:
		return true
	}
	return false
}

// ForURL returns the scraper whose retailer domain appears in the URL.
func ForURL(scrapers map[string]Scraper, pageURL string) (Scraper, bool) {
	id, ok := RetailerForURL(pageURL)
	if !ok {
		return nil, false
	}
	s, ok := scrapers[id]
	return s, ok
}

// Mock returns controllable fixed data for development and testing.
type Mock struct {
	Name     string
	Price    float64
	Currency string
	Brand    string
	Model    string
	Err      error
}

func (m *Mock) Retailer() string {
	if m.Name == "" {
		return "mock"
	}
	return m.Name
}

func (m *Mock) Fetch(_ string) (*model.PriceRecord, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	currency := m.Currency
	if currency == "" {
		currency = "USD"
	}
	return &model.PriceRecord{
		FetchedAt: time.Now(),
		Price:     m.Price,
		Currency:  currency,
		Retailer:  m.Retailer(),
		Brand:     m.Brand,
		Model:     m.Model,
	}, nil
}
