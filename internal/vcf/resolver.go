package vcf

import (
	"context"
	"fmt"
	"time"

	"oil-tonnage/internal/domain"
)

const notFoundMessage = "VCF data not found for given parameters"

// ReferenceStore is the read side of the VCF reference table.
//
// ClosestDensity and ClosestTemperature must break ties towards the lower
// value. The bool result reports whether anything was found. Generation
// changes whenever the table contents change.
type ReferenceStore interface {
	ExactVCF(ctx context.Context, density, temperature float64) (domain.VCFEntry, bool, error)
	ClosestDensity(ctx context.Context, density float64) (float64, bool, error)
	ClosestTemperature(ctx context.Context, density, temperature float64) (domain.VCFEntry, bool, error)
	Generation(ctx context.Context) (int64, error)
}

// Cache stores resolutions keyed by table generation and rounded grid point.
type Cache interface {
	GetResolution(ctx context.Context, generation int64, density, temperature float64) (domain.Resolution, bool, error)
	SetResolution(ctx context.Context, generation int64, density, temperature float64, res domain.Resolution, ttl time.Duration) error
}

type Resolver struct {
	store    ReferenceStore
	cache    Cache
	cacheTTL time.Duration
}

type Option func(*Resolver)

// WithCache puts a read-through cache in front of the reference store.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = cache
		r.cacheTTL = ttl
	}
}

func NewResolver(store ReferenceStore, opts ...Option) *Resolver {
	r := &Resolver{store: store}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds the VCF for a raw (density, temperature) pair.
func (r *Resolver) Resolve(ctx context.Context, density, temperature float64) (domain.Resolution, error) {
	const operation = "vcf.Resolve"

	roundedDensity := RoundDensity(density)
	roundedTemperature := RoundTemperature(temperature)

	var (
		generation int64
		useCache   bool
	)
	if r.cache != nil {
		// Without a generation the cache cannot be keyed; resolve uncached.
		if gen, err := r.store.Generation(ctx); err == nil {
			generation, useCache = gen, true
		}
	}

	if useCache {
		// Cache failures fall through to the store.
		if res, ok, err := r.cache.GetResolution(ctx, generation, roundedDensity, roundedTemperature); err == nil && ok {
			return res, nil
		}
	}

	res, err := r.lookup(ctx, roundedDensity, roundedTemperature)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("%s: %w", operation, err)
	}

	if useCache {
		_ = r.cache.SetResolution(ctx, generation, roundedDensity, roundedTemperature, res, r.cacheTTL)
	}
	return res, nil
}

func (r *Resolver) lookup(ctx context.Context, density, temperature float64) (domain.Resolution, error) {
	entry, ok, err := r.store.ExactVCF(ctx, density, temperature)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("exact lookup: %w", err)
	}
	if ok {
		return toResolution(entry), nil
	}

	closestDensity, ok, err := r.store.ClosestDensity(ctx, density)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("closest density: %w", err)
	}
	if !ok {
		return domain.Resolution{}, &domain.NotFoundError{Message: notFoundMessage}
	}

	entry, ok, err = r.store.ClosestTemperature(ctx, closestDensity, temperature)
	if err != nil {
		return domain.Resolution{}, fmt.Errorf("closest temperature: %w", err)
	}
	if !ok {
		return domain.Resolution{}, &domain.NotFoundError{Message: notFoundMessage}
	}
	return toResolution(entry), nil
}

func toResolution(e domain.VCFEntry) domain.Resolution {
	return domain.Resolution{
		VCF:             e.VCF,
		UsedDensity:     e.Density,
		UsedTemperature: e.Temperature,
	}
}
