package distance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cardapiolabs/rota/internal/geodesy"
	"github.com/cardapiolabs/rota/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleMatrixProvider resolves road distances through the Google Distance
// Matrix API.
type GoogleMatrixProvider struct {
	client MatrixClient // client is the Google Maps API client
	log    *slog.Logger // log is the logger for logging operations
}

// MatrixClient is the slice of *maps.Client the provider needs, kept as an
// interface for test mocks.
type MatrixClient interface {
	DistanceMatrix(ctx context.Context, r *maps.DistanceMatrixRequest) (*maps.DistanceMatrixResponse, error)
}

// NewGoogleMatrixProvider initializes a GoogleMatrixProvider with the given
// client and logger.
func NewGoogleMatrixProvider(client MatrixClient, log *slog.Logger) *GoogleMatrixProvider {
	return &GoogleMatrixProvider{client: client, log: log}
}

// Distance queries a 1x1 distance matrix for the pair. Transport and quota
// failures come back as *models.ProviderError; an element-level ZERO_RESULTS
// maps to ErrNoRoute.
func (gp *GoogleMatrixProvider) Distance(
	ctx context.Context,
	origin, destination models.Coordinates,
) (float64, error) {
	gp.log.DebugContext(ctx, "Querying Google Distance Matrix",
		"origin", origin.Key(), "destination", destination.Key())

	req := &maps.DistanceMatrixRequest{
		Origins:      []string{origin.Key()},
		Destinations: []string{destination.Key()},
	}

	resp, err := gp.client.DistanceMatrix(ctx, req)
	if err != nil {
		return 0, &models.ProviderError{Err: fmt.Errorf("distance matrix request failed: %w", err)}
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, &models.ProviderError{Err: fmt.Errorf("distance matrix returned no elements")}
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		if element.Status == "ZERO_RESULTS" {
			return 0, ErrNoRoute
		}
		return 0, &models.ProviderError{Err: fmt.Errorf("distance matrix element status %q", element.Status)}
	}

	return geodesy.Round2(float64(element.Distance.Meters) / 1000), nil
}
