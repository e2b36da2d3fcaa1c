package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"PartWatch/internal/model"
	"PartWatch/internal/scraper"

	"github.com/google/uuid"
)

// Registry holds the set of tracked products, persisted as a single JSON
// document that is read wholesale at load and rewritten wholesale on save.
type Registry struct {
	filePath string
	products map[string]model.Product
}

// Load reads the registry document. A missing file yields an empty
// registry.
func Load(filePath string) (*Registry, error) {
	r := &Registry{filePath: filePath, products: make(map[string]model.Product)}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var list []model.Product
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	for _, p := range list {
		r.products[p.ID] = p
	}
	return r, nil
}

// Save rewrites the whole registry document.
func (r *Registry) Save() error {
	data, err := json.MarshalIndent(r.Products(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	if err := os.WriteFile(r.filePath, data, 0644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// Add validates and inserts a new product. An empty ID gets a generated
// UUID. Returns the stored product.
func (r *Registry) Add(p model.Product) (model.Product, error) {
	if p.Name == "" {
		return model.Product{}, fmt.Errorf("product name is required")
	}
	if !p.Category.Valid() {
		return model.Product{}, fmt.Errorf("invalid category %q", p.Category)
	}
	if len(p.Sources) == 0 {
		return model.Product{}, fmt.Errorf("product %q needs at least one source URL", p.Name)
	}
	for retailer, url := range p.Sources {
		if err := checkSource(retailer, url); err != nil {
			return model.Product{}, err
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := r.products[p.ID]; exists {
		return model.Product{}, fmt.Errorf("product id %q already exists", p.ID)
	}
	r.products[p.ID] = p
	return p, nil
}

// Remove deletes a product from the registry.
func (r *Registry) Remove(id string) error {
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("unknown product id %q", id)
	}
	delete(r.products, id)
	return nil
}

// SetSource adds or replaces one retailer URL on an existing product.
func (r *Registry) SetSource(id, retailer, url string) error {
	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("unknown product id %q", id)
	}
	if err := checkSource(retailer, url); err != nil {
		return err
	}
	if p.Sources == nil {
		p.Sources = make(map[string]string)
	}
	p.Sources[retailer] = url
	r.products[id] = p
	return nil
}

// checkSource rejects retailer/URL pairs that contradict each other: a
// URL on a supported retailer's domain must be filed under that
// retailer, and a supported retailer only accepts URLs on its own
// domain. Pairs outside the supported sites pass through unchecked.
func checkSource(retailer, url string) error {
	if retailer == "" || url == "" {
		return fmt.Errorf("retailer and url are required")
	}
	domain, known := scraper.RetailerForURL(url)
	if known && domain != retailer {
		return fmt.Errorf("url %q belongs to retailer %q, not %q", url, domain, retailer)
	}
	if !known && scraper.SupportedRetailer(retailer) {
		return fmt.Errorf("url %q is not a %s product page", url, retailer)
	}
	return nil
}

// Get returns one product by ID.
func (r *Registry) Get(id string) (model.Product, bool) {
	p, ok := r.products[id]
	return p, ok
}

// Products returns all products ordered by category then name for stable
// listings and serialization.
func (r *Registry) Products() []model.Product {
	list := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Category != list[j].Category {
			return list[i].Category < list[j].Category
		}
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list
}
