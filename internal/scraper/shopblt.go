package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"PartWatch/internal/model"
)

// ShopBLT renders plain server-side HTML in a handful of layout
// variations, so each field tries several anchors in order.
var (
	shopbltPriceRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Your(?:\s|&nbsp;)*Price\s*:\s*(?:</?\w+[^>]*>\s*)*\$([0-9,]+\.\d{2})`),
		regexp.MustCompile(`(?i)Your(?:\s|&nbsp;)*Price[^$]*\$([0-9,]+\.\d{2})`),
	}
	shopbltBrandRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Manufacturer\s*:\s*(?:</?\w+[^>]*>\s*)*Mfg\.\s*:\s*(?:</?\w+[^>]*>\s*)*([^<\n\r]+)`),
		regexp.MustCompile(`(?i)Manufacturer\s*:\s*(?:</?\w+[^>]*>\s*)*([^<\n\r]+)`),
		regexp.MustCompile(`(?i)\bMfg\.\s*:\s*(?:</?\w+[^>]*>\s*)*([^<\n\r]+)`),
	}
	shopbltModelRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Mfg\.\s*Part\s*#\s*:\s*(?:</?\w+[^>]*>\s*)*([A-Za-z0-9._/-]+)`),
		regexp.MustCompile(`(?i)Mfg\s*Part\s*#\s*:\s*(?:</?\w+[^>]*>\s*)*([A-Za-z0-9._/-]+)`),
		regexp.MustCompile(`(?i)\bPart\s*#\s*:\s*(?:</?\w+[^>]*>\s*)*([A-Za-z0-9._/-]+)`),
	}
	shopbltSpaceRe = regexp.MustCompile(`\s+`)
)

// ShopBLT scrapes product pages on shopblt.com.
type ShopBLT struct {
	client *client
}

func NewShopBLT(opts Options) *ShopBLT {
	return &ShopBLT{client: newClient(opts, "https://www.shopblt.com/")}
}

func (s *ShopBLT) Retailer() string { return RetailerShopBLT }

func (s *ShopBLT) Fetch(url string) (*model.PriceRecord, error) {
	html, err := s.client.fetchHTML(url)
	if err != nil {
		return nil, err
	}

	var price float64
	found := false
	for _, re := range shopbltPriceRes {
		if m := re.FindStringSubmatch(html); m != nil {
			p, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
			if err != nil {
				continue
			}
			price = p
			found = true
			break
		}
	}
	if !found {
		return nil, &ParseError{URL: url, Missing: "price"}
	}

	// Brand and model are best-effort: the page sometimes omits them and
	// the listing is still usable with just a price.
	return &model.PriceRecord{
		FetchedAt: time.Now(),
		Price:     price,
		Currency:  "USD", // ShopBLT lists dollar amounts only
		Retailer:  RetailerShopBLT,
		Brand:     firstMatch(shopbltBrandRes, html),
		Model:     firstMatch(shopbltModelRes, html),
	}, nil
}

func firstMatch(res []*regexp.Regexp, html string) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(html); m != nil {
			return cleanText(m[1])
		}
	}
	return ""
}

// cleanText collapses whitespace and HTML non-breaking spaces left over
// from the markup.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(shopbltSpaceRe.ReplaceAllString(s, " "))
}
