package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardapiolabs/rota/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider geocodes through the Google Maps Geocoding API. It is the
// paid, authoritative option; the free Nominatim provider is the usual
// choice for development.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	region string          // region bias, e.g. "br"
	log    *slog.Logger    // log is the logger for logging operations
}

// GoogleAPIClient is the slice of *maps.Client the provider needs. Kept as
// an interface so tests can mock the upstream.
type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider initializes a GoogleProvider with the given client,
// region bias and logger.
func NewGoogleProvider(client GoogleAPIClient, region string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, region: region, log: log}
}

// Geocode resolves the address to WGS-84 coordinates. Zero results map to
// ErrAddressNotFound; transport or quota failures are wrapped in
// *models.ProviderError so callers can distinguish the two.
func (gp *GoogleProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "address", address)

	req := maps.GeocodingRequest{Address: address, Region: gp.region}
	results, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, &models.ProviderError{Err: fmt.Errorf("failed to geocode address: %w", err)}
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrAddressNotFound, address)
	}
	location := results[0].Geometry.Location

	return &models.Coordinates{Latitude: location.Lat, Longitude: location.Lng}, nil
}
