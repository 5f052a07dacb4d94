package models

// DeliveryZone is a distance band with an associated fee and estimated
// delivery time. Zones are owned by restaurant configuration; the engine
// only reads them.
type DeliveryZone struct {
	ID            int64
	MinDistanceKm float64
	MaxDistanceKm float64
	FeeCents      int64  // Delivery fee in cents of the restaurant currency.
	EstimatedTime string // Operator-facing label, e.g. "30-45 min".
	Active        bool
}

// Contains reports whether the distance falls inside the band. Both bounds
// are inclusive; a distance exactly on the upper bound still matches.
func (z DeliveryZone) Contains(distanceKm float64) bool {
	return distanceKm >= z.MinDistanceKm && distanceKm <= z.MaxDistanceKm
}

// DeliveryQuote is the outcome of a fee resolution. Deliverable=false is a
// normal outcome, not an error: it means no active zone covers the distance.
type DeliveryQuote struct {
	Deliverable   bool    `json:"deliverable"`
	FeeCents      int64   `json:"fee_cents,omitempty"`
	EstimatedTime string  `json:"estimated_time,omitempty"`
	DistanceKm    float64 `json:"distance_km"`
}
