package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oil-tonnage/internal/domain"
	"oil-tonnage/internal/vcf"
)

func TestExactVCF(t *testing.T) {
	s := createTestStorage(t)
	seedReference(t, s,
		domain.VCFEntry{Density: 890.0, Temperature: 30.0, VCF: 0.9801},
		domain.VCFEntry{Density: 890.5, Temperature: 30.0, VCF: 0.9804},
	)

	entry, ok, err := s.ExactVCF(context.Background(), 890.5, 30.0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.VCFEntry{Density: 890.5, Temperature: 30.0, VCF: 0.9804}, entry)

	_, ok, err = s.ExactVCF(context.Background(), 890.5, 30.25)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClosestLookupsBreakTiesLow(t *testing.T) {
	s := createTestStorage(t)
	seedReference(t, s,
		domain.VCFEntry{Density: 850, Temperature: 10, VCF: 0.91},
		domain.VCFEntry{Density: 850, Temperature: 20, VCF: 0.92},
		domain.VCFEntry{Density: 860, Temperature: 10, VCF: 0.93},
		domain.VCFEntry{Density: 860, Temperature: 20, VCF: 0.94},
	)
	ctx := context.Background()

	d, ok, err := s.ClosestDensity(ctx, 855)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 850.0, d)

	d, _, err = s.ClosestDensity(ctx, 858.5)
	require.NoError(t, err)
	assert.Equal(t, 860.0, d)

	entry, ok, err := s.ClosestTemperature(ctx, 860, 15)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.VCFEntry{Density: 860, Temperature: 10, VCF: 0.93}, entry)

	entry, _, err = s.ClosestTemperature(ctx, 850, 45)
	require.NoError(t, err)
	assert.Equal(t, 20.0, entry.Temperature)

	_, ok, err = s.ClosestTemperature(ctx, 870, 15)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClosestDensityEmptyTable(t *testing.T) {
	s := createTestStorage(t)

	_, ok, err := s.ClosestDensity(context.Background(), 850)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolverOverStorage(t *testing.T) {
	s := createTestStorage(t)
	seedReference(t, s,
		domain.VCFEntry{Density: 890.0, Temperature: 30.0, VCF: 0.9801},
		domain.VCFEntry{Density: 890.5, Temperature: 30.0, VCF: 0.9804},
		domain.VCFEntry{Density: 900.0, Temperature: 15.0, VCF: 0.9900},
	)
	r := vcf.NewResolver(s)

	res, err := r.Resolve(context.Background(), 890.2, 29.9)
	require.NoError(t, err)
	assert.Equal(t, domain.Resolution{VCF: 0.9801, UsedDensity: 890.0, UsedTemperature: 30.0}, res)

	res, err = r.Resolve(context.Background(), 897, 40)
	require.NoError(t, err)
	assert.Equal(t, domain.Resolution{VCF: 0.99, UsedDensity: 900.0, UsedTemperature: 15.0}, res)
}

func TestImportVCFEntries(t *testing.T) {
	s := createTestStorage(t)
	ctx := context.Background()

	seedReference(t, s,
		domain.VCFEntry{Density: 850, Temperature: 10, VCF: 0.91},
		domain.VCFEntry{Density: 850, Temperature: 20, VCF: 0.92},
	)

	t.Run("upsert overwrites vcf", func(t *testing.T) {
		require.NoError(t, s.ImportVCFEntries(ctx, []domain.VCFEntry{{Density: 850, Temperature: 10, VCF: 0.95}}, false))

		entry, ok, err := s.ExactVCF(ctx, 850, 10)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 0.95, entry.VCF)

		count, err := s.CountVCFEntries(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("invalid row writes nothing", func(t *testing.T) {
		err := s.ImportVCFEntries(ctx, []domain.VCFEntry{
			{Density: 870, Temperature: 10, VCF: 0.9},
			{Density: 870, Temperature: 20, VCF: 0},
		}, false)
		assert.ErrorContains(t, err, "entry 2")

		count, err := s.CountVCFEntries(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("replace empties table first", func(t *testing.T) {
		require.NoError(t, s.ImportVCFEntries(ctx, []domain.VCFEntry{{Density: 900, Temperature: 15, VCF: 0.99}}, true))

		count, err := s.CountVCFEntries(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestImportBumpsGeneration(t *testing.T) {
	s := createTestStorage(t)
	ctx := context.Background()

	initial, err := s.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), initial)

	seedReference(t, s, domain.VCFEntry{Density: 850, Temperature: 15, VCF: 0.95})
	afterSeed, err := s.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, initial+1, afterSeed)

	require.NoError(t, s.ImportVCFEntries(ctx, []domain.VCFEntry{{Density: 890, Temperature: 30, VCF: 0.9801}}, true))
	afterReplace, err := s.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, afterSeed+1, afterReplace)

	err = s.ImportVCFEntries(ctx, []domain.VCFEntry{{Density: 890, Temperature: 30, VCF: -1}}, false)
	require.Error(t, err)
	unchanged, err := s.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, afterReplace, unchanged, "a rejected import keeps the generation")
}

func TestReadVCFCSV(t *testing.T) {
	entries, err := ReadVCFCSV(strings.NewReader("density,temperature,vcf\n890.0, 30.0, 0.9801\n\n900,15,0.99\n"))
	require.NoError(t, err)
	assert.Equal(t, []domain.VCFEntry{
		{Density: 890, Temperature: 30, VCF: 0.9801},
		{Density: 900, Temperature: 15, VCF: 0.99},
	}, entries)

	_, err = ReadVCFCSV(strings.NewReader("density,temperature,vcf\n"))
	assert.ErrorContains(t, err, "no reference rows")

	_, err = ReadVCFCSV(strings.NewReader("890,abc,0.98\n"))
	assert.ErrorContains(t, err, "row 1 column 2")
}
