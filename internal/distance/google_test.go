package distance_test

import (
	"log/slog"
	"testing"

	"github.com/cardapiolabs/rota/internal/distance"
	"github.com/cardapiolabs/rota/internal/models"
	"github.com/cardapiolabs/rota/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestGoogleMatrixDistance(t *testing.T) {
	origin := models.Coordinates{Latitude: -22.9068, Longitude: -47.0622}
	destination := models.Coordinates{Latitude: -23.5505, Longitude: -46.6333}
	req := &maps.DistanceMatrixRequest{
		Origins:      []string{origin.Key()},
		Destinations: []string{destination.Key()},
	}

	t.Run("successful request converts meters to km", func(t *testing.T) {
		mockClient := mocks.NewMatrixClient(t)
		provider := distance.NewGoogleMatrixProvider(mockClient, slog.Default())
		ctx := t.Context()

		resp := &maps.DistanceMatrixResponse{
			Rows: []maps.DistanceMatrixElementsRow{
				{Elements: []*maps.DistanceMatrixElement{
					{Status: "OK", Distance: maps.Distance{Meters: 96540}},
				}},
			},
		}
		mockClient.On("DistanceMatrix", ctx, req).Return(resp, nil).Once()

		km, err := provider.Distance(ctx, origin, destination)

		require.NoError(t, err)
		assert.InEpsilon(t, 96.54, km, 1e-9)
		mockClient.AssertExpectations(t)
	})

	t.Run("api error wraps as provider error", func(t *testing.T) {
		mockClient := mocks.NewMatrixClient(t)
		provider := distance.NewGoogleMatrixProvider(mockClient, slog.Default())
		ctx := t.Context()

		mockClient.On("DistanceMatrix", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.Distance(ctx, origin, destination)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)

		var provErr *models.ProviderError
		require.ErrorAs(t, err, &provErr)
		mockClient.AssertExpectations(t)
	})

	t.Run("zero results maps to no route", func(t *testing.T) {
		mockClient := mocks.NewMatrixClient(t)
		provider := distance.NewGoogleMatrixProvider(mockClient, slog.Default())
		ctx := t.Context()

		resp := &maps.DistanceMatrixResponse{
			Rows: []maps.DistanceMatrixElementsRow{
				{Elements: []*maps.DistanceMatrixElement{{Status: "ZERO_RESULTS"}}},
			},
		}
		mockClient.On("DistanceMatrix", ctx, req).Return(resp, nil).Once()

		_, err := provider.Distance(ctx, origin, destination)

		require.ErrorIs(t, err, distance.ErrNoRoute)
		mockClient.AssertExpectations(t)
	})

	t.Run("empty matrix is a provider error", func(t *testing.T) {
		mockClient := mocks.NewMatrixClient(t)
		provider := distance.NewGoogleMatrixProvider(mockClient, slog.Default())
		ctx := t.Context()

		mockClient.On("DistanceMatrix", ctx, req).Return(&maps.DistanceMatrixResponse{}, nil).Once()

		_, err := provider.Distance(ctx, origin, destination)

		require.Error(t, err)

		var provErr *models.ProviderError
		require.ErrorAs(t, err, &provErr)
		mockClient.AssertExpectations(t)
	})
}
