package scraper

import (
	"compress/gzip"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const microcenterPage = `<html><head>
<script>dataLayer = [{'productPrice':'409.99', 'brand':'Corsair', 'mpn':'CMH32GX5M2M6000Z36'}];</script>
<script type="application/ld+json">{"offers":{"@type":"Offer","price":"409.99","priceCurrency":"USD"}}</script>
</head><body><h1>CORSAIR Vengeance RGB 32GB Kit</h1></body></html>`

const neweggPage = `<html><head>
<script type="application/ld+json">{"@type":"Product","brand":"G.SKILL","sku":"N82E16820374642","model":"F5-6000J3636F16GX2-RM5NRK","offers":{"price":"359.99","priceCurrency":"USD"}}</script>
</head><body>
<div>{\"ItemProperties\":[{Key=\"Brand\" Value=\"G.SKILL\"}]}</div>
</body></html>`

const shopbltPage = `<html><body>
<td>Manufacturer: <b>4XEM</b></td>
<td>Mfg. Part #: 4XSDHC32GB</td>
<td>Your&nbsp;Price: <strong>$37.05</strong></td>
</body></html>`

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestMicrocenterFetch(t *testing.T) {
	ts := serve(t, microcenterPage)
	rec, err := NewMicrocenter(Options{}).Fetch(ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Price != 409.99 {
		t.Errorf("price = %v, want 409.99", rec.Price)
	}
	if rec.Currency != "USD" {
		t.Errorf("currency = %q, want USD", rec.Currency)
	}
	if rec.Brand != "Corsair" {
		t.Errorf("brand = %q, want Corsair", rec.Brand)
	}
	if rec.Model != "CMH32GX5M2M6000Z36" {
		t.Errorf("model = %q", rec.Model)
	}
	if rec.Retailer != RetailerMicrocenter {
		t.Errorf("retailer = %q", rec.Retailer)
	}
	if rec.FetchedAt.IsZero() {
		t.Error("expected fetch timestamp to be set")
	}
}

func TestNeweggFetch(t *testing.T) {
	ts := serve(t, neweggPage)
	rec, err := NewNewegg(Options{}).Fetch(ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Price != 359.99 || rec.Currency != "USD" {
		t.Errorf("got %v %s, want 359.99 USD", rec.Price, rec.Currency)
	}
	if rec.Brand != "G.SKILL" {
		t.Errorf("brand = %q, want G.SKILL", rec.Brand)
	}
	if rec.Model != "F5-6000J3636F16GX2-RM5NRK" {
		t.Errorf("model = %q", rec.Model)
	}
}

func TestNeweggFetchGzip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") == "" {
			t.Error("expected Accept-Encoding header on request")
		}
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Content-Type", "text/html")
		gz := gzip.NewWriter(w)
		gz.Write([]byte(neweggPage))
		gz.Close()
	}))
	defer ts.Close()

	rec, err := NewNewegg(Options{}).Fetch(ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Price != 359.99 {
		t.Errorf("price = %v, want 359.99", rec.Price)
	}
}

func TestShopBLTFetch(t *testing.T) {
	ts := serve(t, shopbltPage)
	rec, err := NewShopBLT(Options{}).Fetch(ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Price != 37.05 || rec.Currency != "USD" {
		t.Errorf("got %v %s, want 37.05 USD", rec.Price, rec.Currency)
	}
	if rec.Brand != "4XEM" {
		t.Errorf("brand = %q, want 4XEM", rec.Brand)
	}
	if rec.Model != "4XSDHC32GB" {
		t.Errorf("model = %q, want 4XSDHC32GB", rec.Model)
	}
}

func TestFetchStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	_, err := NewMicrocenter(Options{}).Fetch(ts.URL)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T: %v", err, err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", statusErr.Code)
	}
}

func TestFetchParseError(t *testing.T) {
	// An out-of-stock page carries no price tags.
	ts := serve(t, `<html><body><h1>Out of stock</h1></body></html>`)

	for name, s := range Registry(Options{}) {
		_, err := s.Fetch(ts.URL)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("%s: expected ParseError, got %T: %v", name, err, err)
		}
	}
}

func TestFetchNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer ts.Close()

	_, err := NewShopBLT(Options{Timeout: 50 * time.Millisecond}).Fetch(ts.URL)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError on timeout, got %T: %v", err, err)
	}
}

func TestForURL(t *testing.T) {
	scrapers := Registry(Options{})

	cases := []struct {
		url  string
		want string
	}{
		{"https://www.microcenter.com/product/688526/corsair-vengeance", RetailerMicrocenter},
		{"https://www.newegg.com/p/N82E16820374642", RetailerNewegg},
		{"https://www.shopblt.com/cgi-bin/shop/shop.cgi?action=thispage", RetailerShopBLT},
	}
	for _, tc := range cases {
		s, ok := ForURL(scrapers, tc.url)
		if !ok || s.Retailer() != tc.want {
			t.Errorf("ForURL(%q) = %v, want %s", tc.url, s, tc.want)
		}
	}

	if _, ok := ForURL(scrapers, "https://www.amazon.com/dp/B0123"); ok {
		t.Error("expected no scraper for unsupported retailer")
	}
}
