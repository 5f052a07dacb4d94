package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/cardapiolabs/rota/internal/geocoding"
	"github.com/cardapiolabs/rota/internal/models"
	"github.com/cardapiolabs/rota/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleGeocode(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, "br", slog.Default())
	ctx := t.Context()

	t.Run("api returns error", func(t *testing.T) {
		address := "some invalid place"
		req := &maps.GeocodingRequest{Address: address, Region: "br"}

		mockClient.On("Geocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.Geocode(ctx, address)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)

		var provErr *models.ProviderError
		require.ErrorAs(t, err, &provErr)
		mockClient.AssertExpectations(t)
	})

	t.Run("api returns empty response", func(t *testing.T) {
		address := "nonexistent street, nowhere"
		req := &maps.GeocodingRequest{Address: address, Region: "br"}

		mockClient.On("Geocode", ctx, req).Return(nil, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrAddressNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("successful geocoding", func(t *testing.T) {
		address := "Av. Paulista, 1578, São Paulo"
		req := &maps.GeocodingRequest{Address: address, Region: "br"}
		mockResponse := []maps.GeocodingResult{
			{Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: -23.5614, Lng: -46.6559}}},
		}

		mockClient.On("Geocode", ctx, req).Return(mockResponse, nil).Once()

		coords, err := provider.Geocode(ctx, address)

		require.NoError(t, err)
		require.NotNil(t, coords)
		require.InEpsilon(t, -23.5614, coords.Latitude, 0.01)
		require.InEpsilon(t, -46.6559, coords.Longitude, 0.01)
		mockClient.AssertExpectations(t)
	})
}
