package updater

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"PartWatch/internal/history"
	"PartWatch/internal/model"
	"PartWatch/internal/registry"
	"PartWatch/internal/scraper"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.Load(filepath.Join(t.TempDir(), "products.json"))
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

func addProduct(t *testing.T, reg *registry.Registry, id, name, retailer string) {
	t.Helper()
	_, err := reg.Add(model.Product{
		ID:       id,
		Category: model.CategoryRAM,
		Name:     name,
		Sources:  map[string]string{retailer: "https://example.com/" + id},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRunAppendsAndPersists(t *testing.T) {
	reg := testRegistry(t)
	addProduct(t, reg, "ram-1", "RAM kit", "mock")

	historyPath := filepath.Join(t.TempDir(), "history.json")
	store := history.Load(historyPath)
	scrapers := map[string]scraper.Scraper{
		"mock": &scraper.Mock{Name: "mock", Price: 359.99, Brand: "G.SKILL", Model: "F5"},
	}

	upd := New(reg, store, scrapers, nil)
	result, err := upd.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Fetched != 1 || result.Failed != 0 {
		t.Fatalf("fetched=%d failed=%d, want 1/0", result.Fetched, result.Failed)
	}

	records := store.History("ram-1")
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !records[0].FetchedAt.Equal(result.StartedAt) {
		t.Error("record should carry the run's start time")
	}

	// The document was persisted at the end of the run.
	reloaded := history.Load(historyPath)
	if len(reloaded.History("ram-1")) != 1 {
		t.Error("saved document missing appended record")
	}
}

func TestRunContinuesPastFailingSource(t *testing.T) {
	reg := testRegistry(t)
	addProduct(t, reg, "cpu-1", "CPU", "ok-a")
	addProduct(t, reg, "gpu-1", "GPU", "down")
	addProduct(t, reg, "ram-1", "RAM kit", "ok-b")

	historyPath := filepath.Join(t.TempDir(), "history.json")
	store := history.Load(historyPath)
	scrapers := map[string]scraper.Scraper{
		"ok-a": &scraper.Mock{Name: "ok-a", Price: 299.99},
		"ok-b": &scraper.Mock{Name: "ok-b", Price: 359.99},
		"down": &scraper.Mock{Name: "down", Err: &scraper.NetworkError{
			URL: "https://example.com/gpu-1", Err: errors.New("i/o timeout"),
		}},
	}

	result, err := New(reg, store, scrapers, nil).Run()
	if err != nil {
		t.Fatalf("run should survive a timing-out source: %v", err)
	}
	if result.Fetched != 2 || result.Failed != 1 {
		t.Fatalf("fetched=%d failed=%d, want 2/1", result.Fetched, result.Failed)
	}

	if len(store.History("gpu-1")) != 0 {
		t.Error("failed product's history must stay unmodified")
	}

	reloaded := history.Load(historyPath)
	if len(reloaded.History("cpu-1")) != 1 || len(reloaded.History("ram-1")) != 1 {
		t.Error("persisted document should reflect the two successful products")
	}
}

func TestRunStatusErrorLeavesHistoryUnmodified(t *testing.T) {
	reg := testRegistry(t)
	addProduct(t, reg, "cpu-1", "CPU", "gone")

	store := history.Load(filepath.Join(t.TempDir(), "history.json"))
	scrapers := map[string]scraper.Scraper{
		"gone": &scraper.Mock{Name: "gone", Err: &scraper.StatusError{
			URL: "https://example.com/cpu-1", Code: 404,
		}},
	}

	result, err := New(reg, store, scrapers, nil).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Failed != 1 {
		t.Fatalf("failed = %d, want 1", result.Failed)
	}
	if len(store.History("cpu-1")) != 0 {
		t.Error("history must be unmodified after a 404")
	}
}

func TestRunSelectedProduct(t *testing.T) {
	reg := testRegistry(t)
	addProduct(t, reg, "cpu-1", "CPU", "mock")
	addProduct(t, reg, "ram-1", "RAM kit", "mock")

	store := history.Load(filepath.Join(t.TempDir(), "history.json"))
	scrapers := map[string]scraper.Scraper{"mock": &scraper.Mock{Name: "mock", Price: 100}}

	result, err := New(reg, store, scrapers, nil).Run("ram-1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Products != 1 || result.Fetched != 1 {
		t.Fatalf("products=%d fetched=%d, want 1/1", result.Products, result.Fetched)
	}
	if len(store.History("cpu-1")) != 0 {
		t.Error("unselected product must not be refreshed")
	}
}

func TestRunDispatchesByURLDomain(t *testing.T) {
	// A hand-written registry may key a source by a display name instead
	// of the retailer id; the URL's domain still picks the scraper.
	path := filepath.Join(t.TempDir(), "products.json")
	doc := `[{"id":"cpu-1","category":"CPU","name":"CPU","sources":{"Micro Center":"https://www.microcenter.com/product/1"}}]`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	reg, err := registry.Load(path)
	if err != nil {
		t.Fatal(err)
	}

	store := history.Load(filepath.Join(t.TempDir(), "history.json"))
	scrapers := map[string]scraper.Scraper{
		scraper.RetailerMicrocenter: &scraper.Mock{Name: scraper.RetailerMicrocenter, Price: 329.99},
	}

	result, err := New(reg, store, scrapers, nil).Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Fetched != 1 || result.Failed != 0 {
		t.Fatalf("fetched=%d failed=%d, want 1/0", result.Fetched, result.Failed)
	}
	records := store.History("cpu-1")
	if len(records) != 1 || records[0].Retailer != scraper.RetailerMicrocenter {
		t.Fatalf("records = %+v, want one microcenter record", records)
	}
}

func TestRunSaveFailureIsFatal(t *testing.T) {
	reg := testRegistry(t)
	addProduct(t, reg, "cpu-1", "CPU", "mock")

	// A regular file blocks the history path's directory component, so
	// the end-of-run save cannot create it.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	store := history.Load(filepath.Join(blocker, "history.json"))
	scrapers := map[string]scraper.Scraper{"mock": &scraper.Mock{Name: "mock", Price: 100}}

	result, err := New(reg, store, scrapers, nil).Run()
	if err == nil {
		t.Fatal("expected save failure to surface")
	}
	if result == nil || result.Fetched != 1 {
		t.Error("partial result should still report the fetch")
	}
}

func TestRunIdenticalPriceStillAppends(t *testing.T) {
	reg := testRegistry(t)
	addProduct(t, reg, "cpu-1", "CPU", "mock")

	store := history.Load(filepath.Join(t.TempDir(), "history.json"))
	scrapers := map[string]scraper.Scraper{"mock": &scraper.Mock{Name: "mock", Price: 100}}
	upd := New(reg, store, scrapers, nil)

	for i := 0; i < 3; i++ {
		if _, err := upd.Run(); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	if n := len(store.History("cpu-1")); n != 3 {
		t.Fatalf("expected 3 records after 3 unchanged refreshes, got %d", n)
	}
}
