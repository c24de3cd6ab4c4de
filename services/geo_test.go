package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGeoFromHeaders(t *testing.T) {
	g := NewGeoResolver(false)

	header := http.Header{}
	header.Set("CF-IPCountry", "CH")
	header.Set("X-Geo-City", "Zurich")
	header.Set("X-Geo-Latitude", "47.37")
	header.Set("X-Geo-Longitude", "8.54")

	loc := g.FromHeaders(header)
	if loc == nil {
		t.Fatal("expected location from headers")
	}
	if loc.Country != "CH" || loc.City != "Zurich" {
		t.Errorf("unexpected location: %+v", loc)
	}
	if loc.Latitude != 47.37 || loc.Longitude != 8.54 {
		t.Errorf("coordinates not parsed: %+v", loc)
	}
}

func TestGeoFromHeadersEmpty(t *testing.T) {
	g := NewGeoResolver(false)

	if loc := g.FromHeaders(http.Header{}); loc != nil {
		t.Errorf("expected nil for empty headers, got %+v", loc)
	}
}

func TestGeoLookupDisabledAndPrivate(t *testing.T) {
	g := NewGeoResolver(false)
	if loc := g.Lookup("8.8.8.8"); loc != nil {
		t.Error("disabled resolver must not look up")
	}

	g = NewGeoResolver(true)
	for _, ip := range []string{"", "127.0.0.1", "::1", "192.168.1.10", "10.0.0.5"} {
		if loc := g.Lookup(ip); loc != nil {
			t.Errorf("expected nil for private/empty IP %q", ip)
		}
	}
}

func TestGeoLookupParsesResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"city":"Bern","region":"BE","country":"CH","latitude":46.95,"longitude":7.45}`))
	}))
	defer server.Close()

	g := NewGeoResolver(true)
	g.lookupURL = server.URL + "/%s/json/"

	loc := g.Lookup("203.0.113.7")
	if loc == nil {
		t.Fatal("expected location")
	}
	if loc.Country != "CH" || loc.City != "Bern" || loc.Latitude != 46.95 {
		t.Errorf("unexpected location: %+v", loc)
	}
}

func TestGeoLookupDegradesToNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	g := NewGeoResolver(true)
	g.lookupURL = server.URL + "/%s/json/"

	if loc := g.Lookup("203.0.113.7"); loc != nil {
		t.Errorf("expected nil on upstream failure, got %+v", loc)
	}
}
