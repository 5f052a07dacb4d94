package repository

import (
	"context"
	"fmt"

	"github.com/cardapiolabs/rota/internal/models"
)

// FetchDeliveryZones retrieves a restaurant's delivery-zone table in its
// operator-defined order. Ordering matters: the resolver is first-match-wins
// and operators use position to express overrides, so the query must not
// reorder the bands. Inactive zones are returned too (the resolver filters
// them) so the admin surface can show the full table.
func (r *Repository) FetchDeliveryZones(ctx context.Context, restaurantID int64) ([]models.DeliveryZone, error) {
	var zones []models.DeliveryZone
	query := `
		SELECT zone_id, min_distance_km, max_distance_km, fee_cents, estimated_time, active
		FROM delivery_zones
		WHERE restaurant_id = $1
		ORDER BY position ASC;
	`

	rows, err := r.db.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery zones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var zone models.DeliveryZone
		if errScan := rows.Scan(
			&zone.ID, &zone.MinDistanceKm, &zone.MaxDistanceKm,
			&zone.FeeCents, &zone.EstimatedTime, &zone.Active,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan delivery zone: %w", errScan)
		}
		zones = append(zones, zone)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return zones, nil
}

// FetchRestaurantAddress returns the street address a restaurant delivers
// from, the origin of every quote.
func (r *Repository) FetchRestaurantAddress(ctx context.Context, restaurantID int64) (string, error) {
	query := `
		SELECT address
		FROM restaurants
		WHERE restaurant_id = $1;
	`

	var address string
	if err := r.db.QueryRow(ctx, query, restaurantID).Scan(&address); err != nil {
		return "", fmt.Errorf("failed to query restaurant address: %w", err)
	}

	return address, nil
}
