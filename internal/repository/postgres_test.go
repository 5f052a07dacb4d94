package repository_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/cardapiolabs/rota/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchDeliveryZones(t *testing.T) {
	ctx := context.Background()

	t.Run("returns zones in table order", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		rows := pgxmock.NewRows([]string{
			"zone_id", "min_distance_km", "max_distance_km", "fee_cents", "estimated_time", "active",
		}).
			AddRow(int64(1), 0.0, 3.0, int64(500), "30-45 min", true).
			AddRow(int64(2), 3.0, 8.0, int64(900), "45-60 min", true).
			AddRow(int64(3), 8.0, 15.0, int64(1500), "60-90 min", false)

		mockPool.ExpectQuery("SELECT zone_id, min_distance_km, max_distance_km, fee_cents, estimated_time, active").
			WithArgs(int64(42)).
			WillReturnRows(rows)

		repo := repository.NewRepository(mockPool, slog.Default())

		zones, err := repo.FetchDeliveryZones(ctx, 42)

		require.NoError(t, err)
		require.Len(t, zones, 3)
		assert.Equal(t, int64(1), zones[0].ID)
		assert.Equal(t, int64(500), zones[0].FeeCents)
		assert.Equal(t, "45-60 min", zones[1].EstimatedTime)
		assert.False(t, zones[2].Active)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("no zones configured", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery("SELECT zone_id, min_distance_km, max_distance_km").
			WithArgs(int64(7)).
			WillReturnRows(pgxmock.NewRows([]string{
				"zone_id", "min_distance_km", "max_distance_km", "fee_cents", "estimated_time", "active",
			}))

		repo := repository.NewRepository(mockPool, slog.Default())

		zones, err := repo.FetchDeliveryZones(ctx, 7)

		require.NoError(t, err)
		assert.Empty(t, zones)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery("SELECT zone_id, min_distance_km, max_distance_km").
			WithArgs(int64(42)).
			WillReturnError(assert.AnError)

		repo := repository.NewRepository(mockPool, slog.Default())

		_, err = repo.FetchDeliveryZones(ctx, 42)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query delivery zones")
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("scan error", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		rows := pgxmock.NewRows([]string{
			"zone_id", "min_distance_km", "max_distance_km", "fee_cents", "estimated_time", "active",
		}).AddRow("not-an-id", 0.0, 3.0, int64(500), "30-45 min", true)

		mockPool.ExpectQuery("SELECT zone_id, min_distance_km, max_distance_km").
			WithArgs(int64(42)).
			WillReturnRows(rows)

		repo := repository.NewRepository(mockPool, slog.Default())

		_, err = repo.FetchDeliveryZones(ctx, 42)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to scan delivery zone")
	})
}

func TestFetchRestaurantAddress(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored address", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery("SELECT address").
			WithArgs(int64(42)).
			WillReturnRows(pgxmock.NewRows([]string{"address"}).AddRow("Rua Augusta, 100, São Paulo"))

		repo := repository.NewRepository(mockPool, slog.Default())

		address, err := repo.FetchRestaurantAddress(ctx, 42)

		require.NoError(t, err)
		assert.Equal(t, "Rua Augusta, 100, São Paulo", address)
		require.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("unknown restaurant", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		mockPool.ExpectQuery("SELECT address").
			WithArgs(int64(999)).
			WillReturnError(pgx.ErrNoRows)

		repo := repository.NewRepository(mockPool, slog.Default())

		_, err = repo.FetchRestaurantAddress(ctx, 999)

		require.Error(t, err)
		require.ErrorIs(t, err, pgx.ErrNoRows)
	})
}
