// Package service implements the distance resolution policy: when to trust
// the free local algorithms and when to pay for the external provider, and
// how to adjudicate disagreement between the two.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/cardapiolabs/rota/internal/distance"
	"github.com/cardapiolabs/rota/internal/geocache"
	"github.com/cardapiolabs/rota/internal/geocoding"
	"github.com/cardapiolabs/rota/internal/geodesy"
	"github.com/cardapiolabs/rota/internal/metrics"
	"github.com/cardapiolabs/rota/internal/models"
)

// DistanceConfig is the runtime-tunable resolution policy. It is read on
// every call and may be rewritten through SetConfig from an admin surface;
// reads always observe a complete snapshot.
type DistanceConfig struct {
	// UseLocalAlgorithms enables the local geodesic computation. When false
	// every resolution pays for a provider call.
	UseLocalAlgorithms bool `json:"use_local_algorithms"`
	// MaxLocalOnlyKm is the distance up to which a local result is trusted
	// without provider confirmation.
	MaxLocalOnlyKm float64 `json:"max_local_only_km"`
	// UseProviderConfirmation validates every local result against the
	// external provider.
	UseProviderConfirmation bool `json:"use_provider_confirmation"`
	// MaxDifferenceKm is the tolerated local-vs-provider disagreement
	// before the provider value overrides the local one.
	MaxDifferenceKm float64 `json:"max_difference_km"`
}

// Validate rejects negative thresholds.
func (c DistanceConfig) Validate() error {
	if c.MaxLocalOnlyKm < 0 {
		return fmt.Errorf("%w: max_local_only_km must not be negative", models.ErrInvalidInput)
	}
	if c.MaxDifferenceKm < 0 {
		return fmt.Errorf("%w: max_difference_km must not be negative", models.ErrInvalidInput)
	}
	return nil
}

// DefaultDistanceConfig trusts local math up to 10km and confirms nothing:
// most delivery radii are short, making the common case cache- and CPU-only
// with zero external dependency.
func DefaultDistanceConfig() DistanceConfig {
	return DistanceConfig{
		UseLocalAlgorithms:      true,
		MaxLocalOnlyKm:          10,
		UseProviderConfirmation: false,
		MaxDifferenceKm:         0.5,
	}
}

// Cache names used in metric labels.
const (
	cacheCoordinates = "coordinates"
	cacheDistances   = "distances"
)

// Reconciliation outcomes used in metric labels.
const (
	outcomeLocalConfirmed   = "local_confirmed"
	outcomeRemoteOverride   = "remote_override"
	outcomeProviderFallback = "provider_fallback"
)

// Orchestrator resolves the single distance value the rest of the system
// trusts, consulting the caches, the geocoder and conditionally the
// external distance provider.
type Orchestrator struct {
	log       *slog.Logger
	coords    *geocache.Cache[models.Coordinates]
	distances *geocache.Cache[float64]
	geocoder  geocoding.Provider
	provider  distance.Provider
	metrics   *metrics.Metrics

	mu  sync.RWMutex
	cfg DistanceConfig
}

// NewOrchestrator wires the caches, collaborators and initial policy.
func NewOrchestrator(
	log *slog.Logger,
	coords *geocache.Cache[models.Coordinates],
	distances *geocache.Cache[float64],
	geocoder geocoding.Provider,
	provider distance.Provider,
	appMetrics *metrics.Metrics,
	cfg DistanceConfig,
) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Orchestrator{
		log:       log,
		coords:    coords,
		distances: distances,
		geocoder:  geocoder,
		provider:  provider,
		metrics:   appMetrics,
		cfg:       cfg,
	}, nil
}

// Config returns the current policy snapshot.
func (o *Orchestrator) Config() DistanceConfig {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.cfg
}

// SetConfig replaces the policy. Invalid configs are rejected and the
// previous policy stays in effect.
func (o *Orchestrator) SetConfig(cfg DistanceConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.mu.Lock()
	o.cfg = cfg
	o.mu.Unlock()

	return nil
}

// CoordinateCacheSize and DistanceCacheSize expose the cache sizes for the
// admin surface.
func (o *Orchestrator) CoordinateCacheSize() int { return o.coords.Size() }
func (o *Orchestrator) DistanceCacheSize() int   { return o.distances.Size() }

// ClearCoordinateCache and ClearDistanceCache back the operator-triggered
// invalidation actions.
func (o *Orchestrator) ClearCoordinateCache() { o.coords.Clear() }
func (o *Orchestrator) ClearDistanceCache()   { o.distances.Clear() }

// ResolveDistance produces the distance in kilometers between origin and
// destination.
//
// The distance cache has absolute authority: a hit returns immediately with
// no re-validation. On a miss both endpoints are resolved to coordinates
// (through the coordinate cache, then the geocoder), the policy decides
// between local computation and the external provider, and the chosen value
// is cached before returning. Provider failures inside the confirmation
// path are absorbed: the local algorithm is always an acceptable degraded
// answer, never a hard failure.
func (o *Orchestrator) ResolveDistance(
	ctx context.Context,
	origin, destination models.AddressInput,
) (float64, error) {
	if err := origin.Validate(); err != nil {
		return 0, fmt.Errorf("origin: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return 0, fmt.Errorf("destination: %w", err)
	}

	pairKey := models.PairKey(origin, destination)
	if km, ok := o.distances.Get(pairKey); ok {
		o.metrics.CacheLookups.WithLabelValues(cacheDistances, "hit").Inc()
		return km, nil
	}
	o.metrics.CacheLookups.WithLabelValues(cacheDistances, "miss").Inc()

	from, err := o.resolveCoordinates(ctx, origin)
	if err != nil {
		return 0, fmt.Errorf("origin: %w", err)
	}
	to, err := o.resolveCoordinates(ctx, destination)
	if err != nil {
		return 0, fmt.Errorf("destination: %w", err)
	}

	cfg := o.Config()

	if !cfg.UseLocalAlgorithms {
		remote, err := o.remoteDistance(ctx, from, to)
		if err != nil {
			return 0, err
		}
		o.distances.Set(pairKey, remote)
		return remote, nil
	}

	local := geodesy.Optimal(from, to)
	final := local

	switch {
	case cfg.UseProviderConfirmation:
		remote, err := o.remoteDistance(ctx, from, to)
		switch {
		case err != nil:
			// Degraded but never fatal: the checkout flow must not crash
			// because a distance vendor is down.
			o.log.WarnContext(ctx, "Distance provider unavailable, keeping local estimate",
				"local_km", local, "error", err)
			o.metrics.Reconciliations.WithLabelValues(outcomeProviderFallback).Inc()
		case math.Abs(local-remote) > cfg.MaxDifferenceKm:
			o.log.InfoContext(ctx, "Provider disagrees with local estimate beyond tolerance",
				"local_km", local, "remote_km", remote, "tolerance_km", cfg.MaxDifferenceKm)
			o.metrics.Reconciliations.WithLabelValues(outcomeRemoteOverride).Inc()
			final = remote
		default:
			// Within tolerance the local value wins: cheaper to recompute
			// on future cache misses.
			o.metrics.Reconciliations.WithLabelValues(outcomeLocalConfirmed).Inc()
		}
	case local <= cfg.MaxLocalOnlyKm:
		// Short range, confirmation off: local value stands.
	default:
		// Over the local-only threshold with confirmation disabled the
		// local value is still the best answer available.
		o.log.DebugContext(ctx, "Local distance exceeds local-only threshold, confirmation disabled",
			"local_km", local, "threshold_km", cfg.MaxLocalOnlyKm)
	}

	o.distances.Set(pairKey, final)

	return final, nil
}

// resolveCoordinates turns an address input into coordinates: the
// coordinate variant passes through, the text variant goes through the
// coordinate cache and then the geocoder. Geocoder failures propagate; a
// silent default coordinate would poison the distance cache.
func (o *Orchestrator) resolveCoordinates(
	ctx context.Context,
	input models.AddressInput,
) (models.Coordinates, error) {
	if coords, ok := input.Coords(); ok {
		return coords, nil
	}

	key := input.Key()
	if coords, ok := o.coords.Get(key); ok {
		o.metrics.CacheLookups.WithLabelValues(cacheCoordinates, "hit").Inc()
		return coords, nil
	}
	o.metrics.CacheLookups.WithLabelValues(cacheCoordinates, "miss").Inc()

	start := time.Now()
	coords, err := o.geocoder.Geocode(ctx, input.Text())
	o.metrics.ProviderSeconds.WithLabelValues("geocode").Observe(time.Since(start).Seconds())

	if err != nil {
		o.metrics.ProviderErrors.Inc()
		return models.Coordinates{}, fmt.Errorf("failed to geocode address: %w", err)
	}

	o.coords.Set(key, *coords)

	return *coords, nil
}

// remoteDistance calls the external provider with request timing.
func (o *Orchestrator) remoteDistance(
	ctx context.Context,
	from, to models.Coordinates,
) (float64, error) {
	start := time.Now()
	km, err := o.provider.Distance(ctx, from, to)
	o.metrics.ProviderSeconds.WithLabelValues("distance").Observe(time.Since(start).Seconds())

	if err != nil {
		o.metrics.ProviderErrors.Inc()
		return 0, fmt.Errorf("distance provider: %w", err)
	}

	return km, nil
}
