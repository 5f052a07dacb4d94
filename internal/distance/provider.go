// Package distance wraps the external road-distance providers. The
// orchestrator treats them as an untrusted, rate-limited, possibly-failing
// oracle: every failure here has a local-algorithm fallback upstream.
package distance

import (
	"context"
	"errors"

	"github.com/cardapiolabs/rota/internal/models"
)

// Provider returns the road distance in kilometers between two coordinate
// pairs, rounded to two decimals.
type Provider interface {
	Distance(ctx context.Context, origin, destination models.Coordinates) (float64, error)
}

// ErrNoRoute is returned when the provider answered but found no route
// between the points (e.g. an island destination).
var ErrNoRoute = errors.New("no route between points")
