package geocoding

import (
	"context"
	"errors"

	"github.com/cardapiolabs/rota/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding coordinates and an error if any occurs.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// ErrAddressNotFound is returned when the provider answered but had zero
// results for a syntactically valid address. It propagates to the caller
// for user-facing "address not recognized" handling, unlike transport
// failures which are wrapped in *models.ProviderError.
var ErrAddressNotFound = errors.New("address not found")
