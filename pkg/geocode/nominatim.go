package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kitapool/pkg/client"
)

// NominatimGeocoder resolves addresses against an OSM Nominatim
// instance. Results are best effort: a non-OK response or an empty
// result list yields (nil, nil).
type NominatimGeocoder struct {
	httpClient *client.HttpClient
}

func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration) *NominatimGeocoder {
	httpClient := client.NewHttpClient(strings.TrimRight(baseURL, "/"), timeout)
	httpClient.Headers = map[string]string{
		"User-Agent": userAgent,
	}
	return &NominatimGeocoder{httpClient: httpClient}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *NominatimGeocoder) Lookup(ctx context.Context, address, city, postalCode string) (*LatLon, error) {
	parts := make([]string, 0, 3)
	for _, p := range []string{address, postalCode, city} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	q.Set("q", strings.Join(parts, ", "))

	resp, err := g.httpClient.GET(ctx, "/search?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("geocode lookup failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var results []nominatimResult
	if err := resp.DecodeJSON(&results); err != nil {
		return nil, fmt.Errorf("geocode response malformed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, nil
	}

	return &LatLon{Latitude: lat, Longitude: lon}, nil
}
