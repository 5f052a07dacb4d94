package distance

import (
	"errors"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"
)

// ProviderType represents the type of distance provider.
type ProviderType string

const (
	// ProviderTypeGoogle represents the Google Distance Matrix provider.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeOSRM represents the OSRM routing provider.
	ProviderTypeOSRM ProviderType = "osrm"
)

// ProviderConfig holds configuration for creating a distance provider.
type ProviderConfig struct {
	Type      ProviderType // Type of provider to create
	APIKey    string       // API key (used by Google provider)
	RateLimit int          // Requests per second
	Logger    *slog.Logger // Logger for the provider
}

// NewProvider creates a distance provider based on the configuration.
//
// Supported provider types:
// - "google": Google Distance Matrix API (requires API key)
// - "osrm": OSRM routing server (free, no API key required)
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeGoogle:
		return newGoogleMatrixProvider(config)
	case ProviderTypeOSRM:
		rateLimit := config.RateLimit
		if rateLimit == 0 {
			rateLimit = 1
			config.Logger.Warn("Rate limit for OSRM not set, using a default value", "value", rateLimit)
		}
		return NewOSRMProvider(rateLimit, config.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported distance provider type: %s", config.Type)
	}
}

func newGoogleMatrixProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.APIKey),
	}
	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleMatrixProvider(client, config.Logger), nil
}
