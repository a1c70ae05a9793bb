package geocode

import "context"

type LatLon struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves a postal address to coordinates. A nil result with
// a nil error means the address could not be resolved; callers must
// treat that as "coordinates unknown" rather than a failure.
type Geocoder interface {
	Lookup(ctx context.Context, address, city, postalCode string) (*LatLon, error)
}

// Noop never resolves anything. Used when geocoding is disabled.
type Noop struct{}

func (Noop) Lookup(ctx context.Context, address, city, postalCode string) (*LatLon, error) {
	return nil, nil
}

// Static resolves every address to a fixed position. Test helper.
type Static struct {
	Result *LatLon
	Err    error
}

func (s Static) Lookup(ctx context.Context, address, city, postalCode string) (*LatLon, error) {
	return s.Result, s.Err
}
