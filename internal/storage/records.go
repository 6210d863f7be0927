package storage

import (
	"context"
	"fmt"
	"time"

	"oil-tonnage/internal/domain"
)

const recordColumns = `id, volume, density, temperature, vcf, used_density, used_temperature, tonnage, created_at`

// InsertCalculation stores a new record and returns its generated id and
// creation time. ID and CreatedAt on rec are ignored.
func (s *Storage) InsertCalculation(ctx context.Context, rec domain.CalculationRecord) (int64, time.Time, error) {
	const operation = "storage.InsertCalculation"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	createdAt := s.now().UTC().Truncate(time.Microsecond)

	query := s.db.Rebind(`
		INSERT INTO calculations (
			volume, density, temperature, vcf,
			used_density, used_temperature, tonnage, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	var id int64
	err := s.db.QueryRowxContext(ctx, query,
		rec.Volume,
		rec.Density,
		rec.Temperature,
		rec.VCF,
		rec.UsedDensity,
		rec.UsedTemperature,
		rec.Tonnage,
		createdAt,
	).Scan(&id)
	if err != nil {
		return 0, time.Time{}, unavailable(operation, fmt.Errorf("failed to save calculation: %w", err))
	}

	return id, createdAt, nil
}

// ListCalculations returns one page of history plus the number of rows
// matching the search.
func (s *Storage) ListCalculations(ctx context.Context, q domain.ListQuery) (domain.ListResult, error) {
	const operation = "storage.ListCalculations"

	q = q.Normalize()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := s.dialect.where(q.Search)

	var total int
	countQuery := s.db.Rebind(`SELECT COUNT(*) FROM calculations` + where)
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return domain.ListResult{}, unavailable(operation, fmt.Errorf("failed to count calculations: %w", err))
	}

	rowsQuery := s.db.Rebind(`SELECT ` + recordColumns + ` FROM calculations` + where + orderBy(q) + ` LIMIT ? OFFSET ?`)
	rows := make([]domain.CalculationRecord, 0, q.Limit)
	if err := s.db.SelectContext(ctx, &rows, rowsQuery, append(args, q.Limit, q.Offset())...); err != nil {
		return domain.ListResult{}, unavailable(operation, fmt.Errorf("failed to get calculations: %w", err))
	}

	for i := range rows {
		rows[i].CreatedAt = rows[i].CreatedAt.UTC()
	}

	return domain.ListResult{Rows: rows, Total: total}, nil
}

// DeleteCalculation removes one record and reports whether it existed.
func (s *Storage) DeleteCalculation(ctx context.Context, id int64) (bool, error) {
	const operation = "storage.DeleteCalculation"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM calculations WHERE id = ?`), id)
	if err != nil {
		return false, unavailable(operation, fmt.Errorf("failed to delete calculation: %w", err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, unavailable(operation, err)
	}
	return affected > 0, nil
}

// ClearCalculations removes every record.
func (s *Storage) ClearCalculations(ctx context.Context) error {
	const operation = "storage.ClearCalculations"

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM calculations`); err != nil {
		return unavailable(operation, fmt.Errorf("failed to clear calculations: %w", err))
	}
	return nil
}
