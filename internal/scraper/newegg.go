package scraper

import (
	"regexp"
	"strconv"
	"time"

	"PartWatch/internal/model"
)

// Newegg serves price and currency in a JSON-LD offer block; the brand
// also appears escaped inside the page's item properties blob.
var (
	neweggPriceRe = regexp.MustCompile(`"price"\s*:\s*"([0-9]+(?:\.[0-9]+)?)"\s*,\s*"priceCurrency"\s*:\s*"([A-Z]{3})"`)
	neweggBrandRe = regexp.MustCompile(`Key=\\"Brand\\"\s+Value=\\"([^\\"]+)\\"`)
	neweggModelRe = regexp.MustCompile(`"brand"\s*:\s*"[^"]+"[\s\S]*?"(?:model|Model|mpn)"\s*:\s*"([^"]+)"`)
)

// Newegg scrapes product pages on newegg.com.
type Newegg struct {
	client *client
}

func NewNewegg(opts Options) *Newegg {
	return &Newegg{client: newClient(opts, "https://www.newegg.com/")}
}

func (s *Newegg) Retailer() string { return RetailerNewegg }

func (s *Newegg) Fetch(url string) (*model.PriceRecord, error) {
	html, err := s.client.fetchHTML(url)
	if err != nil {
		return nil, err
	}

	m := neweggPriceRe.FindStringSubmatch(html)
	if m == nil {
		return nil, &ParseError{URL: url, Missing: "price"}
	}
	price, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, &ParseError{URL: url, Missing: "price"}
	}
	currency := m[2]

	m = neweggBrandRe.FindStringSubmatch(html)
	if m == nil {
		return nil, &ParseError{URL: url, Missing: "brand"}
	}
	brand := m[1]

	m = neweggModelRe.FindStringSubmatch(html)
	if m == nil {
		return nil, &ParseError{URL: url, Missing: "model"}
	}

	return &model.PriceRecord{
		FetchedAt: time.Now(),
		Price:     price,
		Currency:  currency,
		Retailer:  RetailerNewegg,
		Brand:     brand,
		Model:     m[1],
	}, nil
}
