package model

import "time"

// PriceRecord is a single observed price for one product at one retailer.
// Records are append-only: once written to the history they are never
// mutated or deleted.
type PriceRecord struct {
	FetchedAt time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Retailer  string    `json:"retailer"`
	Brand     string    `json:"brand"`
	Model     string    `json:"model"`
}

// PriceHistory maps a product ID to its chronologically ordered records
// across all retailers. This is the logical schema of the persisted
// history document.
type PriceHistory map[string][]PriceRecord
