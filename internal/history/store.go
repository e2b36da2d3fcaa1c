package history

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"PartWatch/internal/model"
)

// Store owns the persisted price history: the whole JSON document is read
// into memory at load and rewritten wholesale on save. There is no
// partial or streaming I/O. In watch mode the cron task and the Telegram
// command handler reach the store from different goroutines, so every
// accessor holds the store mutex.
type Store struct {
	filePath string

	mu      sync.Mutex
	history model.PriceHistory
}

// Load reads the history document. A missing, unreadable or corrupt
// document is recovered as an empty history so a fresh deployment (or a
// damaged file) never blocks a refresh run.
func Load(filePath string) *Store {
	s := &Store{filePath: filePath, history: make(model.PriceHistory)}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[WARN] read history %s: %v, starting empty", filePath, err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.history); err != nil {
		log.Printf("[WARN] parse history %s: %v, starting empty", filePath, err)
		s.history = make(model.PriceHistory)
	}
	return s
}

// Save rewrites the whole history document, creating the parent
// directory on first use. A save failure is fatal to the update run and
// is returned to the caller.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}
	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Append adds one record to a product's history, keeping the sequence
// ordered by fetch time. Records normally arrive in order, so the
// insertion scan starts from the tail.
func (s *Store) Append(productID string, rec model.PriceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.history[productID]
	i := len(records)
	for i > 0 && records[i-1].FetchedAt.After(rec.FetchedAt) {
		i--
	}
	records = append(records, model.PriceRecord{})
	copy(records[i+1:], records[i:])
	records[i] = rec
	s.history[productID] = records
}

// History returns a copy of one product's ordered records.
func (s *Store) History(productID string) []model.PriceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.history[productID]
	out := make([]model.PriceRecord, len(records))
	copy(out, records)
	return out
}

// LatestByRetailer returns the most recent record per retailer for a
// product.
func (s *Store) LatestByRetailer(productID string) map[string]model.PriceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latestByRetailer(productID)
}

// MinLatest returns the lowest price across all retailers' most recent
// records. ok is false when the product has no history.
func (s *Store) MinLatest(productID string) (model.PriceRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best model.PriceRecord
	found := false
	for _, rec := range s.latestByRetailer(productID) {
		if !found || rec.Price < best.Price {
			best = rec
			found = true
		}
	}
	return best, found
}

// All returns a copy of the in-memory history document, safe to read
// while a refresh run appends.
func (s *Store) All() model.PriceHistory {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(model.PriceHistory, len(s.history))
	for id, records := range s.history {
		cp := make([]model.PriceRecord, len(records))
		copy(cp, records)
		out[id] = cp
	}
	return out
}

// latestByRetailer is the lock-free core shared by the accessors above;
// callers hold s.mu.
func (s *Store) latestByRetailer(productID string) map[string]model.PriceRecord {
	latest := make(map[string]model.PriceRecord)
	for _, rec := range s.history[productID] {
		prev, ok := latest[rec.Retailer]
		if !ok || !rec.FetchedAt.Before(prev.FetchedAt) {
			latest[rec.Retailer] = rec
		}
	}
	return latest
}
