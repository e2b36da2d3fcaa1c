package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"PartWatch/internal/model"
)

// Micro Center embeds its product data in an inline dataLayer script with
// single-quoted keys; priceCurrency comes from the JSON-LD block.
var (
	microcenterPriceRe    = regexp.MustCompile(`'productPrice'\s*:\s*'([\d,]+(?:\.\d+)?)'`)
	microcenterCurrencyRe = regexp.MustCompile(`"priceCurrency"\s*:\s*"([A-Z]{3})"`)
	microcenterBrandRe    = regexp.MustCompile(`'brand'\s*:\s*'([^']+)'`)
	microcenterModelRe    = regexp.MustCompile(`'mpn'\s*:\s*'([^']+)'`)
)

// Microcenter scrapes product pages on microcenter.com.
type Microcenter struct {
	client *client
}

func NewMicrocenter(opts Options) *Microcenter {
	return &Microcenter{client: newClient(opts, "https://www.microcenter.com/")}
}

func (s *Microcenter) Retailer() string { return RetailerMicrocenter }

func (s *Microcenter) Fetch(url string) (*model.PriceRecord, error) {
	html, err := s.client.fetchHTML(url)
	if err != nil {
		return nil, err
	}

	m := microcenterPriceRe.FindStringSubmatch(html)
	if m == nil {
		return nil, &ParseError{URL: url, Missing: "price"}
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return nil, &ParseError{URL: url, Missing: "price"}
	}

	m = microcenterCurrencyRe.FindStringSubmatch(html)
	if m == nil {
		return nil, &ParseError{URL: url, Missing: "currency"}
	}
	currency := m[1]

	m = microcenterBrandRe.FindStringSubmatch(html)
	if m == nil {
		return nil, &ParseError{URL: url, Missing: "brand"}
	}
	brand := m[1]

	m = microcenterModelRe.FindStringSubmatch(html)
	if m == nil {
		return nil, &ParseError{URL: url, Missing: "model"}
	}

	return &model.PriceRecord{
		FetchedAt: time.Now(),
		Price:     price,
		Currency:  currency,
		Retailer:  RetailerMicrocenter,
		Brand:     brand,
		Model:     m[1],
	}, nil
}
