package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oil-tonnage/internal/config"
	"oil-tonnage/internal/domain"
)

var baseTime = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

// createTestStorage opens a migrated sqlite database in a temp dir. Inserted
// records get timestamps baseTime, baseTime+1s, ...
func createTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := Open(context.Background(), config.DatabaseConfig{
		Driver:         config.DriverSQLite,
		Path:           filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:   4,
		MaxIdleConns:   2,
		QueryTimeout:   5 * time.Second,
		ConnectTimeout: time.Second,
		AutoMigrate:    true,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tick := 0
	s.now = func() time.Time {
		ts := baseTime.Add(time.Duration(tick) * time.Second)
		tick++
		return ts
	}
	return s
}

func seedReference(t *testing.T, s *Storage, entries ...domain.VCFEntry) {
	t.Helper()
	require.NoError(t, s.ImportVCFEntries(context.Background(), entries, false))
}

func record(volume, density, temperature, vcfValue float64) domain.CalculationRecord {
	return domain.CalculationRecord{
		Volume:          volume,
		Density:         density,
		Temperature:     temperature,
		VCF:             vcfValue,
		UsedDensity:     density,
		UsedTemperature: temperature,
		Tonnage:         volume * density * vcfValue / 1_000_000,
	}
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
