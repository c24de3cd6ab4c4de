package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"main/model"
)

// GeoResolver derives a best-effort location for a request. Proxy-supplied
// headers win; when absent, it falls back to a public IP geolocation
// lookup. Every failure degrades to nil, never to an error the ingestion
// path would have to care about.
type GeoResolver struct {
	httpClient *http.Client
	lookupURL  string
	enabled    bool
}

type geoIPResponse struct {
	City      string  `json:"city"`
	Region    string  `json:"region"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func NewGeoResolver(enableLookup bool) *GeoResolver {
	return &GeoResolver{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		lookupURL:  "https://ipapi.co/%s/json/",
		enabled:    enableLookup,
	}
}

// FromHeaders reads proxy geo headers (Cloudflare and generic X-Geo-*).
// Returns nil when no header carries anything useful.
func (g *GeoResolver) FromHeaders(header http.Header) *model.Location {
	loc := &model.Location{
		Country: firstHeader(header, "CF-IPCountry", "X-Geo-Country"),
		Region:  firstHeader(header, "X-Geo-Region"),
		City:    firstHeader(header, "X-Geo-City"),
	}
	if lat := header.Get("X-Geo-Latitude"); lat != "" {
		loc.Latitude, _ = strconv.ParseFloat(lat, 64)
	}
	if lon := header.Get("X-Geo-Longitude"); lon != "" {
		loc.Longitude, _ = strconv.ParseFloat(lon, 64)
	}
	if loc.Country == "" && loc.City == "" {
		return nil
	}
	return loc
}

// Lookup resolves an IP through ipapi.co. Local and private addresses are
// skipped outright.
func (g *GeoResolver) Lookup(ip string) *model.Location {
	if !g.enabled || ip == "" || isPrivateIP(ip) {
		return nil
	}

	resp, err := g.httpClient.Get(fmt.Sprintf(g.lookupURL, ip))
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var geo geoIPResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return nil
	}
	if geo.Country == "" {
		return nil
	}

	return &model.Location{
		Country:   geo.Country,
		Region:    geo.Region,
		City:      geo.City,
		Latitude:  geo.Latitude,
		Longitude: geo.Longitude,
	}
}

// Resolve prefers headers over lookup.
func (g *GeoResolver) Resolve(header http.Header, ip string) *model.Location {
	if loc := g.FromHeaders(header); loc != nil {
		return loc
	}
	return g.Lookup(ip)
}

func firstHeader(header http.Header, keys ...string) string {
	for _, key := range keys {
		if v := header.Get(key); v != "" {
			return v
		}
	}
	return ""
}

func isPrivateIP(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1" ||
		strings.HasPrefix(ip, "192.168.") ||
		strings.HasPrefix(ip, "10.") ||
		strings.HasPrefix(ip, "172.16.")
}
