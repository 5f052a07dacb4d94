package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cardapiolabs/rota/internal/models"
	"golang.org/x/time/rate"
)

// NominatimProvider implements Provider using OpenStreetMap's Nominatim
// API. Free, but fair use limits it to 1 request/second, so every call goes
// through a rate limiter.
type NominatimProvider struct {
	client  HTTPClient    // HTTP client for making requests
	baseURL string        // Base URL for the Nominatim API
	limiter *rate.Limiter // Fair-use rate limiter
	log     *slog.Logger  // Logger for logging operations
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// nominatimResponse represents the JSON response from Nominatim API.
type nominatimResponse struct {
	Lat string `json:"lat"` // Latitude as string
	Lon string `json:"lon"` // Longitude as string
}

const nominatimBaseURL = "https://nominatim.openstreetmap.org/search"

// NewNominatimProvider creates a Nominatim geocoding provider using the
// public endpoint and its fair-use rate limit of one request per second.
func NewNominatimProvider(log *slog.Logger) *NominatimProvider {
	const timeout = 10 * time.Second
	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout},
		rate.NewLimiter(rate.Limit(1), 1),
		log,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom
// HTTP client and limiter. Useful for testing.
func NewNominatimProviderWithClient(client HTTPClient, limiter *rate.Limiter, log *slog.Logger) *NominatimProvider {
	return &NominatimProvider{
		client:  client,
		baseURL: nominatimBaseURL,
		limiter: limiter,
		log:     log,
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent: "Rota-Delivery-Engine/1.0 (https://github.com/cardapiolabs/rota)",
	}
}

// Geocode resolves an address via the Nominatim search endpoint. Empty
// result sets map to ErrAddressNotFound, everything upstream-shaped to
// *models.ProviderError.
func (np *NominatimProvider) Geocode(ctx context.Context, address string) (*models.Coordinates, error) {
	if np.limiter != nil {
		if err := np.limiter.Wait(ctx); err != nil {
			return nil, &models.ProviderError{Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	np.log.DebugContext(ctx, "Geocoding using Nominatim", "address", address)

	reqURL, err := url.Parse(np.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1") // Only need the top result
	query.Set("accept-language", "pt-BR,en")
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", np.userAgent)

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, &models.ProviderError{Err: fmt.Errorf("failed to execute geocoding request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.ProviderError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, &models.ProviderError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("nominatim API returned status %d", resp.StatusCode),
		}
	}

	var results []nominatimResponse
	if err = json.Unmarshal(body, &results); err != nil {
		return nil, &models.ProviderError{Err: fmt.Errorf("failed to decode nominatim response: %w", err)}
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrAddressNotFound, address)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, &models.ProviderError{Err: fmt.Errorf("invalid latitude %q: %w", results[0].Lat, err)}
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, &models.ProviderError{Err: fmt.Errorf("invalid longitude %q: %w", results[0].Lon, err)}
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
