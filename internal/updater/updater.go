package updater

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"PartWatch/internal/history"
	"PartWatch/internal/model"
	"PartWatch/internal/recorder"
	"PartWatch/internal/registry"
	"PartWatch/internal/scraper"
)

// Updater refreshes the history store for the registered products: one
// sequential scrape per (product, retailer) source, one document save at
// the end of the run.
type Updater struct {
	Registry *registry.Registry
	Store    *history.Store
	Scrapers map[string]scraper.Scraper
	Recorder recorder.Recorder
}

// SourceResult is the outcome of one (product, retailer) scrape.
type SourceResult struct {
	ProductID string
	Product   string
	Retailer  string
	URL       string
	Record    *model.PriceRecord
	Err       error
}

// Result summarizes one refresh run.
type Result struct {
	StartedAt time.Time
	Duration  time.Duration
	Products  int
	Fetched   int
	Failed    int
	Sources   []SourceResult
}

// New wires an Updater. A nil rec falls back to the noop recorder.
func New(reg *registry.Registry, store *history.Store, scrapers map[string]scraper.Scraper, rec recorder.Recorder) *Updater {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Updater{Registry: reg, Store: store, Scrapers: scrapers, Recorder: rec}
}

// Run refreshes all registered products, or only the given product IDs
// when any are passed. A failing source is logged and skipped; it never
// aborts the rest of the run. Every record appended by one run carries
// the run's start time, so a (product, retailer, timestamp) tuple is
// unique within the run. The history document is persisted once, after
// all products; a save failure is fatal and returned alongside the
// partial result.
func (u *Updater) Run(productIDs ...string) (*Result, error) {
	started := time.Now()
	products := u.selectProducts(productIDs)
	result := &Result{StartedAt: started, Products: len(products)}

	for _, p := range products {
		retailers := make([]string, 0, len(p.Sources))
		for retailer := range p.Sources {
			retailers = append(retailers, retailer)
		}
		sort.Strings(retailers)

		for _, retailer := range retailers {
			url := p.Sources[retailer]
			src := SourceResult{ProductID: p.ID, Product: p.Name, Retailer: retailer, URL: url}

			s, ok := u.Scrapers[retailer]
			if !ok {
				// Unkeyed retailer ids (e.g. registries written by hand)
				// still dispatch by the URL's domain.
				s, ok = scraper.ForURL(u.Scrapers, url)
			}
			if !ok {
				src.Err = fmt.Errorf("no scraper for retailer %q", retailer)
			} else {
				src.Record, src.Err = s.Fetch(url)
			}

			if src.Err != nil {
				result.Failed++
				log.Printf("[WARN] %s/%s: %v, skipping source for this run", p.Name, retailer, src.Err)
			} else {
				src.Record.FetchedAt = started
				u.Store.Append(p.ID, *src.Record)
				result.Fetched++
				log.Printf("[INFO] %s/%s: %.2f %s", p.Name, retailer, src.Record.Price, src.Record.Currency)
			}

			u.recordFetch(&src)
			result.Sources = append(result.Sources, src)
		}
	}

	result.Duration = time.Since(started)
	u.recordRun(result)

	if err := u.Store.Save(); err != nil {
		return result, fmt.Errorf("persist history: %w", err)
	}
	return result, nil
}

func (u *Updater) selectProducts(productIDs []string) []model.Product {
	if len(productIDs) == 0 {
		return u.Registry.Products()
	}
	var products []model.Product
	for _, id := range productIDs {
		p, ok := u.Registry.Get(id)
		if !ok {
			log.Printf("[WARN] unknown product id %q, skipping", id)
			continue
		}
		products = append(products, p)
	}
	return products
}

func (u *Updater) recordFetch(src *SourceResult) {
	evt := &recorder.FetchEvent{
		ProductID: src.ProductID,
		Retailer:  src.Retailer,
		URL:       src.URL,
		Outcome:   "OK",
	}
	if src.Err != nil {
		evt.Outcome = classify(src.Err)
		evt.Detail = src.Err.Error()
	} else {
		evt.Price = src.Record.Price
		evt.Currency = src.Record.Currency
	}
	if err := u.Recorder.RecordFetch(evt); err != nil {
		log.Printf("[ERROR] record fetch: %v", err)
	}
}

func (u *Updater) recordRun(result *Result) {
	if err := u.Recorder.RecordRun(&recorder.RunSummary{
		StartedAt: result.StartedAt,
		Duration:  result.Duration,
		Products:  result.Products,
		Fetched:   result.Fetched,
		Failed:    result.Failed,
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}
}

// classify maps a scrape error onto the recorder's outcome taxonomy.
func classify(err error) string {
	var netErr *scraper.NetworkError
	var statusErr *scraper.StatusError
	var parseErr *scraper.ParseError
	switch {
	case errors.As(err, &netErr):
		return "NETWORK"
	case errors.As(err, &statusErr):
		return "STATUS"
	case errors.As(err, &parseErr):
		return "PARSE"
	}
	return "ERROR"
}
