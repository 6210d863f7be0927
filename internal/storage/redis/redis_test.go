package redis

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oil-tonnage/internal/config"
	"oil-tonnage/internal/domain"
	"oil-tonnage/internal/storage"
	"oil-tonnage/internal/vcf"
	"oil-tonnage/pkg/redis"
)

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.New(mr.Addr(), "", 0, time.Hour)
	t.Cleanup(client.Close)
	return New(client), mr
}

func TestResolutionCache(t *testing.T) {
	s, mr := newTestStorage(t)
	ctx := context.Background()

	_, ok, err := s.GetResolution(ctx, 1, 890, 30)
	require.NoError(t, err)
	assert.False(t, ok)

	res := domain.Resolution{VCF: 0.9801, UsedDensity: 890, UsedTemperature: 30}
	require.NoError(t, s.SetResolution(ctx, 1, 890, 30, res, 10*time.Minute))
	assert.True(t, mr.Exists("vcf:1:890.00:30.00"))
	assert.Equal(t, 10*time.Minute, mr.TTL("vcf:1:890.00:30.00"))

	got, ok, err := s.GetResolution(ctx, 1, 890, 30)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res, got)

	_, ok, err = s.GetResolution(ctx, 2, 890, 30)
	require.NoError(t, err)
	assert.False(t, ok, "other generations do not share entries")
}

func TestResolutionCacheCorruptValue(t *testing.T) {
	s, mr := newTestStorage(t)
	require.NoError(t, mr.Set("vcf:1:850.00:15.25", "not json"))

	_, ok, err := s.GetResolution(context.Background(), 1, 850, 15.25)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestResolverWithRedisCache(t *testing.T) {
	s, mr := newTestStorage(t)
	table := vcf.NewTable(domain.VCFEntry{Density: 900, Temperature: 15, VCF: 0.99})
	r := vcf.NewResolver(table, vcf.WithCache(s, time.Hour))

	res, err := r.Resolve(context.Background(), 899.9, 15.1)
	require.NoError(t, err)
	assert.Equal(t, 0.99, res.VCF)
	assert.True(t, mr.Exists("vcf:0:900.00:15.00"))

	// A nearest-match result is cached under the requested grid point.
	_, err = r.Resolve(context.Background(), 880, 20)
	require.NoError(t, err)
	assert.True(t, mr.Exists("vcf:0:880.00:20.00"))
}

func TestReimportRetiresCachedResolutions(t *testing.T) {
	cache, _ := newTestStorage(t)
	ctx := context.Background()

	store, err := storage.Open(ctx, config.DatabaseConfig{
		Driver:         config.DriverSQLite,
		Path:           filepath.Join(t.TempDir(), "reference.db"),
		MaxOpenConns:   4,
		MaxIdleConns:   2,
		QueryTimeout:   5 * time.Second,
		ConnectTimeout: time.Second,
		AutoMigrate:    true,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.ImportVCFEntries(ctx, []domain.VCFEntry{{Density: 850, Temperature: 15, VCF: 0.95}}, false))

	r := vcf.NewResolver(store, vcf.WithCache(cache, time.Hour))

	res, err := r.Resolve(ctx, 890, 30)
	require.NoError(t, err)
	require.Equal(t, domain.Resolution{VCF: 0.95, UsedDensity: 850, UsedTemperature: 15}, res)

	require.NoError(t, store.ImportVCFEntries(ctx, []domain.VCFEntry{{Density: 890, Temperature: 30, VCF: 0.9801}}, true))

	res, err = r.Resolve(ctx, 890, 30)
	require.NoError(t, err)
	assert.Equal(t, domain.Resolution{VCF: 0.9801, UsedDensity: 890, UsedTemperature: 30}, res)

	// An upsert of the same point is picked up as well.
	require.NoError(t, store.ImportVCFEntries(ctx, []domain.VCFEntry{{Density: 890, Temperature: 30, VCF: 0.9805}}, false))

	res, err = r.Resolve(ctx, 890, 30)
	require.NoError(t, err)
	assert.Equal(t, 0.9805, res.VCF)
}

func TestCheckRateLimit(t *testing.T) {
	s, mr := newTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		exceeded, err := s.CheckRateLimit(ctx, "10.0.0.1", "api", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, exceeded, "hit %d", i+1)
	}

	exceeded, err := s.CheckRateLimit(ctx, "10.0.0.1", "api", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, exceeded)

	exceeded, err = s.CheckRateLimit(ctx, "10.0.0.2", "api", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, exceeded, "limits are per client")

	mr.FastForward(time.Minute + time.Second)
	exceeded, err = s.CheckRateLimit(ctx, "10.0.0.1", "api", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, exceeded, "window resets")
}
