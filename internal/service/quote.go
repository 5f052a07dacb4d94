package service

import (
	"context"

	"github.com/cardapiolabs/rota/internal/models"
	"github.com/cardapiolabs/rota/internal/zones"
)

// Quote composes distance resolution with zone matching: the outward-facing
// delivery fee query. A distance no active zone covers yields a quote with
// Deliverable=false and a nil error; only resolution failures (bad input,
// unresolvable address) are errors.
func (o *Orchestrator) Quote(
	ctx context.Context,
	origin, destination models.AddressInput,
	zoneList []models.DeliveryZone,
) (models.DeliveryQuote, error) {
	km, err := o.ResolveDistance(ctx, origin, destination)
	if err != nil {
		return models.DeliveryQuote{}, err
	}

	zone, ok := zones.Resolve(km, zoneList)
	if !ok {
		o.metrics.Quotes.WithLabelValues("rejected").Inc()
		return models.DeliveryQuote{Deliverable: false, DistanceKm: km}, nil
	}

	o.metrics.Quotes.WithLabelValues("accepted").Inc()

	return models.DeliveryQuote{
		Deliverable:   true,
		FeeCents:      zone.FeeCents,
		EstimatedTime: zone.EstimatedTime,
		DistanceKm:    km,
	}, nil
}
