package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cardapiolabs/rota/internal/geodesy"
	"github.com/cardapiolabs/rota/internal/models"
	"golang.org/x/time/rate"
)

// OSRMBaseURL is the public OSRM demo server. Self-host for production
// volume; the demo server is best-effort only.
const OSRMBaseURL = "https://router.project-osrm.org"

// OSRMProvider resolves road distances through an OSRM routing server.
// Free alternative to the Google Distance Matrix for development and
// low-volume deployments.
type OSRMProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL of the OSRM server
	limiter *rate.Limiter // Rate limiter
	log     *slog.Logger  // Logger for logging operations
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// osrmResponse is the subset of the OSRM /route answer the provider reads.
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
	} `json:"routes"`
}

// NewOSRMProvider creates a provider against the public OSRM demo server.
func NewOSRMProvider(rateLimit int, log *slog.Logger) *OSRMProvider {
	const timeout = 10 * time.Second
	return NewOSRMProviderWithClient(
		&http.Client{Timeout: timeout},
		OSRMBaseURL,
		rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
		log,
	)
}

// NewOSRMProviderWithClient allows injecting a custom HTTP client, base URL
// and limiter. Useful for testing and self-hosted servers.
func NewOSRMProviderWithClient(
	client HTTPClient,
	baseURL string,
	limiter *rate.Limiter,
	log *slog.Logger,
) *OSRMProvider {
	return &OSRMProvider{client: client, baseURL: baseURL, limiter: limiter, log: log}
}

// Distance queries the OSRM route service for the driving distance between
// the points. OSRM wants lon,lat order in the path.
func (op *OSRMProvider) Distance(
	ctx context.Context,
	origin, destination models.Coordinates,
) (float64, error) {
	if op.limiter != nil {
		if err := op.limiter.Wait(ctx); err != nil {
			return 0, &models.ProviderError{Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	reqURL := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		op.baseURL,
		origin.Longitude, origin.Latitude,
		destination.Longitude, destination.Latitude,
	)

	op.log.DebugContext(ctx, "Querying OSRM", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := op.client.Do(req)
	if err != nil {
		return 0, &models.ProviderError{Err: fmt.Errorf("failed to execute route request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &models.ProviderError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		op.log.ErrorContext(ctx, "OSRM API error", "status", resp.StatusCode, "body", string(body))
		return 0, &models.ProviderError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("OSRM returned status %d", resp.StatusCode),
		}
	}

	var route osrmResponse
	if err = json.Unmarshal(body, &route); err != nil {
		return 0, &models.ProviderError{Err: fmt.Errorf("failed to decode OSRM response: %w", err)}
	}

	if route.Code != "Ok" || len(route.Routes) == 0 {
		return 0, fmt.Errorf("%w: OSRM code %q", ErrNoRoute, route.Code)
	}

	return geodesy.Round2(route.Routes[0].Distance / 1000), nil
}
