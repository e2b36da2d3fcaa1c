package model

import "fmt"

// Category is a PC part type.
type Category string

const (
	CategoryCPU         Category = "CPU"
	CategoryGPU         Category = "GPU"
	CategoryRAM         Category = "RAM"
	CategoryMotherboard Category = "Motherboard"
	CategoryCPUCooler   Category = "CPU Cooler"
	CategoryCase        Category = "Case"
	CategoryPSU         Category = "PSU"
)

// Categories lists every supported part type in menu order.
var Categories = []Category{
	CategoryCPU,
	CategoryGPU,
	CategoryRAM,
	CategoryMotherboard,
	CategoryCPUCooler,
	CategoryCase,
	CategoryPSU,
}

// Valid reports whether c is one of the supported part types.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory converts user input into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q (want one of %v)", s, Categories)
	}
	return c, nil
}

// Product is a tracked PC component with one source URL per retailer.
type Product struct {
	ID       string            `json:"id"`
	Category Category          `json:"category"`
	Name     string            `json:"name"`
	Sources  map[string]string `json:"sources"` // retailer id -> product page URL
}
