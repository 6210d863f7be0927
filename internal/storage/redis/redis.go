package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"oil-tonnage/internal/domain"
	"oil-tonnage/internal/vcf"
	"oil-tonnage/pkg/redis"
)

var _ vcf.Cache = (*Storage)(nil)

// Storage keeps resolved VCF values and rate limit counters in Redis.
type Storage struct {
	client *redis.Client
}

func New(client *redis.Client) *Storage {
	return &Storage{client: client}
}

// GetResolution returns the cached resolution for a rounded grid point of
// one reference table generation.
func (s *Storage) GetResolution(ctx context.Context, generation int64, density, temperature float64) (domain.Resolution, bool, error) {
	data, err := s.client.Get(ctx, buildResolutionKey(generation, density, temperature))
	if errors.Is(err, redis.ErrMiss) {
		return domain.Resolution{}, false, nil
	}
	if err != nil {
		return domain.Resolution{}, false, fmt.Errorf("get resolution: %w", err)
	}

	var cached cachedResolution
	if err := json.Unmarshal(data, &cached); err != nil {
		return domain.Resolution{}, false, fmt.Errorf("unmarshal failure: %w", err)
	}
	return domain.Resolution{
		VCF:             cached.VCF,
		UsedDensity:     cached.UsedDensity,
		UsedTemperature: cached.UsedTemperature,
	}, true, nil
}

func (s *Storage) SetResolution(ctx context.Context, generation int64, density, temperature float64, res domain.Resolution, ttl time.Duration) error {
	data, err := json.Marshal(cachedResolution{
		VCF:             res.VCF,
		UsedDensity:     res.UsedDensity,
		UsedTemperature: res.UsedTemperature,
	})
	if err != nil {
		return fmt.Errorf("marshal resolution: %w", err)
	}

	return s.client.Set(ctx, buildResolutionKey(generation, density, temperature), data, ttl)
}

// Keys of older generations are never read again and expire with their TTL.
func buildResolutionKey(generation int64, density, temperature float64) string {
	return fmt.Sprintf("vcf:%d:%.2f:%.2f", generation, density, temperature)
}
