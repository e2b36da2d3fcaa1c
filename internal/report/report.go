package report

import (
	"errors"
	"sort"
	"time"

	"PartWatch/internal/model"
)

// ErrInsufficientData is returned when percent-change is requested for a
// product with fewer than two price snapshots. This is the expected
// steady state for a newly tracked product, not a failure.
var ErrInsufficientData = errors.New("fewer than two price snapshots")

// Point is one (time, price) pair of a plot series.
type Point struct {
	Time  time.Time
	Price float64
}

// Snapshot is the lowest price across all retailers at one refresh.
type Snapshot struct {
	Time     time.Time
	Price    float64
	Retailer string
}

// Series returns, for each retailer with data, the product's ordered
// (time, price) pairs exactly as stored. Recomputed from the history on
// every call, so it is safe to render repeatedly.
func Series(h model.PriceHistory, productID string) map[string][]Point {
	series := make(map[string][]Point)
	for _, rec := range chronological(h[productID]) {
		series[rec.Retailer] = append(series[rec.Retailer], Point{Time: rec.FetchedAt, Price: rec.Price})
	}
	return series
}

// PercentChange compares the two most recent snapshots and returns
// (new - old) / old * 100.
func PercentChange(h model.PriceHistory, productID string) (float64, error) {
	snaps := Snapshots(h[productID])
	if len(snaps) < 2 {
		return 0, ErrInsufficientData
	}
	old := snaps[len(snaps)-2].Price
	now := snaps[len(snaps)-1].Price
	if old == 0 {
		return 0, errors.New("prior snapshot price is zero")
	}
	return (now - old) / old * 100, nil
}

// Log returns every record for the product across all retailers,
// interleaved in chronological order.
func Log(h model.PriceHistory, productID string) []model.PriceRecord {
	return chronological(h[productID])
}

// Snapshots reduces a product's records to the lowest-price-across-
// retailers series, oldest first. Refreshes are aligned per retailer from
// the most recent backwards, so retailers added later simply drop out of
// older snapshots.
func Snapshots(records []model.PriceRecord) []Snapshot {
	byRetailer := make(map[string][]model.PriceRecord)
	maxDepth := 0
	for _, rec := range chronological(records) {
		byRetailer[rec.Retailer] = append(byRetailer[rec.Retailer], rec)
		if n := len(byRetailer[rec.Retailer]); n > maxDepth {
			maxDepth = n
		}
	}

	// Retailers are visited in name order so an equal-minimum tie
	// resolves to the same retailer on every call.
	names := make([]string, 0, len(byRetailer))
	for name := range byRetailer {
		names = append(names, name)
	}
	sort.Strings(names)

	snaps := make([]Snapshot, 0, maxDepth)
	for depth := maxDepth; depth >= 1; depth-- {
		var best model.PriceRecord
		found := false
		for _, name := range names {
			recs := byRetailer[name]
			if len(recs) < depth {
				continue
			}
			rec := recs[len(recs)-depth]
			if !found || rec.Price < best.Price {
				best = rec
				found = true
			}
		}
		if found {
			snaps = append(snaps, Snapshot{Time: best.FetchedAt, Price: best.Price, Retailer: best.Retailer})
		}
	}
	return snaps
}

func chronological(records []model.PriceRecord) []model.PriceRecord {
	out := make([]model.PriceRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FetchedAt.Before(out[j].FetchedAt) })
	return out
}
