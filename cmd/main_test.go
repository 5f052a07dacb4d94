package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cardapiolabs/rota/internal/geocache"
	"github.com/cardapiolabs/rota/internal/geocoding"
	"github.com/cardapiolabs/rota/internal/metrics"
	"github.com/cardapiolabs/rota/internal/models"
	"github.com/cardapiolabs/rota/internal/service"
	"github.com/cardapiolabs/rota/test/mocks"
)

const restaurantAddress = "Rua Augusta, 100, São Paulo"

var restaurantCoords = models.Coordinates{Latitude: -23.5505, Longitude: -46.6333}

func newQuoteHandler(t *testing.T) (*mocks.Interface, *mocks.GeocodingProvider, http.HandlerFunc) {
	t.Helper()

	repo := mocks.NewInterface(t)
	geocoder := mocks.NewGeocodingProvider(t)

	orchestrator, err := service.NewOrchestrator(
		slog.Default(),
		geocache.New[models.Coordinates](time.Hour, nil, slog.Default()),
		geocache.New[float64](time.Hour, nil, slog.Default()),
		geocoder,
		mocks.NewDistanceProvider(t),
		metrics.NewMetrics(prometheus.NewRegistry()),
		service.DefaultDistanceConfig(),
	)
	require.NoError(t, err)

	handler := func(writer http.ResponseWriter, req *http.Request) {
		handleQuote(writer, req, slog.Default(), repo, orchestrator)
	}

	return repo, geocoder, handler
}

func TestHandleQuote(t *testing.T) {
	t.Run("successful quote", func(t *testing.T) {
		repo, geocoder, handler := newQuoteHandler(t)

		repo.On("FetchRestaurantAddress", mock.Anything, int64(42)).
			Return(restaurantAddress, nil).Once()
		repo.On("FetchDeliveryZones", mock.Anything, int64(42)).
			Return([]models.DeliveryZone{
				{ID: 1, MinDistanceKm: 0, MaxDistanceKm: 3, FeeCents: 500, EstimatedTime: "30-45 min", Active: true},
				{ID: 2, MinDistanceKm: 3, MaxDistanceKm: 8, FeeCents: 900, EstimatedTime: "45-60 min", Active: true},
			}, nil).Once()
		geocoder.On("Geocode", mock.Anything, restaurantAddress).
			Return(&restaurantCoords, nil).Once()

		// Destination 5.2km south of the restaurant, inside the second band.
		req := httptest.NewRequest(http.MethodGet,
			"/quote?restaurant_id=42&lat=-23.5973&lng=-46.6333", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var quote models.DeliveryQuote
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
		assert.True(t, quote.Deliverable)
		assert.Equal(t, int64(900), quote.FeeCents)
		assert.Equal(t, "45-60 min", quote.EstimatedTime)
		assert.InEpsilon(t, 5.2, quote.DistanceKm, 0.01)
	})

	t.Run("missing restaurant_id", func(t *testing.T) {
		_, _, handler := newQuoteHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/quote?address=anywhere", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing destination", func(t *testing.T) {
		_, _, handler := newQuoteHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/quote?restaurant_id=42", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown restaurant", func(t *testing.T) {
		repo, _, handler := newQuoteHandler(t)

		repo.On("FetchRestaurantAddress", mock.Anything, int64(999)).
			Return("", assert.AnError).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/quote?restaurant_id=999&lat=-23.5973&lng=-46.6333", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("zone fetch failure", func(t *testing.T) {
		repo, _, handler := newQuoteHandler(t)

		repo.On("FetchRestaurantAddress", mock.Anything, int64(42)).
			Return(restaurantAddress, nil).Once()
		repo.On("FetchDeliveryZones", mock.Anything, int64(42)).
			Return(nil, assert.AnError).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/quote?restaurant_id=42&lat=-23.5973&lng=-46.6333", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("unrecognized origin address", func(t *testing.T) {
		repo, geocoder, handler := newQuoteHandler(t)

		repo.On("FetchRestaurantAddress", mock.Anything, int64(42)).
			Return(restaurantAddress, nil).Once()
		repo.On("FetchDeliveryZones", mock.Anything, int64(42)).
			Return([]models.DeliveryZone{}, nil).Once()
		geocoder.On("Geocode", mock.Anything, restaurantAddress).
			Return(nil, geocoding.ErrAddressNotFound).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/quote?restaurant_id=42&lat=-23.5973&lng=-46.6333", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestParseDestination(t *testing.T) {
	t.Run("free-text address", func(t *testing.T) {
		dest, err := parseDestination("Av. Paulista, 1578", "", "")

		require.NoError(t, err)
		assert.Equal(t, "Av. Paulista, 1578", dest.Text())
	})

	t.Run("coordinate pair", func(t *testing.T) {
		dest, err := parseDestination("", "-23.5505", "-46.6333")

		require.NoError(t, err)
		coords, ok := dest.Coords()
		require.True(t, ok)
		assert.InEpsilon(t, -23.5505, coords.Latitude, 1e-9)
	})

	t.Run("neither address nor pair", func(t *testing.T) {
		_, err := parseDestination("", "", "")
		require.Error(t, err)

		_, err = parseDestination("", "-23.5505", "")
		require.Error(t, err)
	})

	t.Run("malformed coordinates", func(t *testing.T) {
		_, err := parseDestination("", "north", "-46.6333")
		require.Error(t, err)

		_, err = parseDestination("", "-23.5505", "west")
		require.Error(t, err)
	})
}

// fakePinger stands in for the connection pool in health check tests.
type fakePinger struct {
	pingFunc func(ctx context.Context) error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.pingFunc(ctx) }

func TestHandleHealthz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		db := &fakePinger{pingFunc: func(context.Context) error { return nil }}

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()

		handleHealthz(rec, req, slog.Default(), db)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("database unreachable", func(t *testing.T) {
		db := &fakePinger{pingFunc: func(context.Context) error { return assert.AnError }}

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()

		handleHealthz(rec, req, slog.Default(), db)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("ping is bounded by the request context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		db := &fakePinger{pingFunc: func(ctx context.Context) error { return ctx.Err() }}

		req := httptest.NewRequest(http.MethodGet, "/healthz", nil).WithContext(ctx)
		rec := httptest.NewRecorder()

		handleHealthz(rec, req, slog.Default(), db)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
