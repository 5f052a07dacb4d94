// Package zones maps a computed distance onto a restaurant's delivery-zone
// table. Pure functions; the zone list is read-only input owned by
// restaurant configuration.
package zones

import "github.com/cardapiolabs/rota/internal/models"

// Resolve returns the first active zone (in supplied order) whose band
// contains distanceKm, and false when none does. First-match-wins is
// deliberate: operators rely on zone ordering to express overrides, so the
// resolver never searches for the cheapest or narrowest band. No match is a
// normal not-deliverable outcome, not an error.
func Resolve(distanceKm float64, zoneList []models.DeliveryZone) (models.DeliveryZone, bool) {
	for _, zone := range zoneList {
		if !zone.Active {
			continue
		}
		if zone.Contains(distanceKm) {
			return zone, true
		}
	}

	return models.DeliveryZone{}, false
}
