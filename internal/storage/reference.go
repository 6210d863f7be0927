package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"oil-tonnage/internal/domain"
	"oil-tonnage/internal/vcf"
)

var _ vcf.ReferenceStore = (*Storage)(nil)

func (s *Storage) ExactVCF(ctx context.Context, density, temperature float64) (domain.VCFEntry, bool, error) {
	const operation = "storage.ExactVCF"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := s.db.Rebind(`
		SELECT density, temperature, vcf
		FROM vcf_table
		WHERE density = ? AND temperature = ?
	`)

	var entry domain.VCFEntry
	err := s.db.GetContext(ctx, &entry, query, density, temperature)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.VCFEntry{}, false, nil
	}
	if err != nil {
		return domain.VCFEntry{}, false, unavailable(operation, err)
	}
	return entry, true, nil
}

// ClosestDensity returns the stored density nearest to density. Ties resolve
// to the lower density.
func (s *Storage) ClosestDensity(ctx context.Context, density float64) (float64, bool, error) {
	const operation = "storage.ClosestDensity"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := s.db.Rebind(`
		SELECT density
		FROM vcf_table
		ORDER BY ABS(density - ?), density
		LIMIT 1
	`)

	var closest float64
	err := s.db.GetContext(ctx, &closest, query, density)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, unavailable(operation, err)
	}
	return closest, true, nil
}

// ClosestTemperature returns the entry at density whose temperature is
// nearest to temperature. Ties resolve to the lower temperature.
func (s *Storage) ClosestTemperature(ctx context.Context, density, temperature float64) (domain.VCFEntry, bool, error) {
	const operation = "storage.ClosestTemperature"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := s.db.Rebind(`
		SELECT density, temperature, vcf
		FROM vcf_table
		WHERE density = ?
		ORDER BY ABS(temperature - ?), temperature
		LIMIT 1
	`)

	var entry domain.VCFEntry
	err := s.db.GetContext(ctx, &entry, query, density, temperature)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.VCFEntry{}, false, nil
	}
	if err != nil {
		return domain.VCFEntry{}, false, unavailable(operation, err)
	}
	return entry, true, nil
}

// Generation identifies the current contents of the reference table. It
// grows with every import.
func (s *Storage) Generation(ctx context.Context) (int64, error) {
	const operation = "storage.Generation"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var generation int64
	err := s.db.GetContext(ctx, &generation, `SELECT generation FROM vcf_meta WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, unavailable(operation, err)
	}
	return generation, nil
}

func (s *Storage) CountVCFEntries(ctx context.Context) (int, error) {
	const operation = "storage.CountVCFEntries"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM vcf_table`); err != nil {
		return 0, unavailable(operation, err)
	}
	return count, nil
}

// ImportVCFEntries upserts reference rows in a single transaction. When
// replace is set the table is emptied first. Nothing is written if any row
// is invalid.
func (s *Storage) ImportVCFEntries(ctx context.Context, entries []domain.VCFEntry, replace bool) (err error) {
	const operation = "storage.ImportVCFEntries"

	for i, e := range entries {
		if err := validateEntry(e); err != nil {
			return fmt.Errorf("%s: entry %d: %w", operation, i+1, err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return unavailable(operation, fmt.Errorf("begin: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if replace {
		if _, err = tx.ExecContext(ctx, `DELETE FROM vcf_table`); err != nil {
			return unavailable(operation, fmt.Errorf("truncate: %w", err))
		}
	}

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO vcf_table (density, temperature, vcf)
		VALUES (:density, :temperature, :vcf)
		ON CONFLICT (density, temperature) DO UPDATE SET vcf = excluded.vcf
	`)
	if err != nil {
		return unavailable(operation, fmt.Errorf("prepare: %w", err))
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err = stmt.ExecContext(ctx, e); err != nil {
			return unavailable(operation, fmt.Errorf("upsert (%v, %v): %w", e.Density, e.Temperature, err))
		}
	}

	// Cached resolutions are keyed by generation; bumping it retires them.
	if _, err = tx.ExecContext(ctx, `UPDATE vcf_meta SET generation = generation + 1 WHERE id = 1`); err != nil {
		return unavailable(operation, fmt.Errorf("bump generation: %w", err))
	}

	if err = tx.Commit(); err != nil {
		return unavailable(operation, fmt.Errorf("commit: %w", err))
	}
	return nil
}

func validateEntry(e domain.VCFEntry) error {
	for _, v := range []float64{e.Density, e.Temperature, e.VCF} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("values must be finite numbers")
		}
	}
	if e.VCF <= 0 {
		return fmt.Errorf("vcf must be positive, got %v", e.VCF)
	}
	if e.Density <= 0 {
		return fmt.Errorf("density must be positive, got %v", e.Density)
	}
	return nil
}
