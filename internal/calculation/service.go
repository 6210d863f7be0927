package calculation

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"oil-tonnage/internal/calculators"
	"oil-tonnage/internal/domain"
)

// Resolver finds the VCF for a raw (density, temperature) pair.
type Resolver interface {
	Resolve(ctx context.Context, density, temperature float64) (domain.Resolution, error)
}

// Store is the calculation history.
type Store interface {
	InsertCalculation(ctx context.Context, rec domain.CalculationRecord) (int64, time.Time, error)
	ListCalculations(ctx context.Context, q domain.ListQuery) (domain.ListResult, error)
	DeleteCalculation(ctx context.Context, id int64) (bool, error)
	ClearCalculations(ctx context.Context) error
	ExportCalculations(ctx context.Context, w io.Writer, q domain.ListQuery) error
	Ping(ctx context.Context) error
}

type Service struct {
	resolver    Resolver
	store       Store
	maxPageSize int
}

func NewService(resolver Resolver, store Store, maxPageSize int) *Service {
	return &Service{
		resolver:    resolver,
		store:       store,
		maxPageSize: maxPageSize,
	}
}

// Calculate resolves the VCF, computes tonnage and records the result.
// Inputs are expected to be validated already.
func (s *Service) Calculate(ctx context.Context, volume, density, temperature float64) (domain.CalculationRecord, error) {
	const operation = "calculation.Calculate"

	res, err := s.resolver.Resolve(ctx, density, temperature)
	if err != nil {
		return domain.CalculationRecord{}, fmt.Errorf("%s: %w", operation, err)
	}

	rec := domain.CalculationRecord{
		Volume:          volume,
		Density:         density,
		Temperature:     temperature,
		VCF:             res.VCF,
		UsedDensity:     res.UsedDensity,
		UsedTemperature: res.UsedTemperature,
		// Tonnage uses the measured density, not the table density.
		Tonnage: calculators.ComputeTonnage(volume, density, res.VCF),
	}

	if math.IsInf(rec.Tonnage, 0) || math.IsNaN(rec.Tonnage) {
		return domain.CalculationRecord{}, fmt.Errorf("%s: tonnage for volume %g: %w", operation, volume, domain.ErrOutOfRange)
	}

	id, createdAt, err := s.store.InsertCalculation(ctx, rec)
	if err != nil {
		return domain.CalculationRecord{}, fmt.Errorf("%s: %w", operation, err)
	}
	rec.ID = id
	rec.CreatedAt = createdAt

	return rec, nil
}

// List returns one page of history. The query is normalized and its limit
// capped at the configured maximum.
func (s *Service) List(ctx context.Context, q domain.ListQuery) (domain.ListQuery, domain.ListResult, error) {
	q = s.normalize(q)

	result, err := s.store.ListCalculations(ctx, q)
	if err != nil {
		return q, domain.ListResult{}, fmt.Errorf("calculation.List: %w", err)
	}
	return q, result, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.store.DeleteCalculation(ctx, id)
	if err != nil {
		return fmt.Errorf("calculation.Delete: %w", err)
	}
	if !deleted {
		return domain.NewNotFoundError("Calculation not found")
	}
	return nil
}

func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.ClearCalculations(ctx); err != nil {
		return fmt.Errorf("calculation.Clear: %w", err)
	}
	return nil
}

// Export writes every record matching q as an XLSX workbook. Paging is ignored.
func (s *Service) Export(ctx context.Context, w io.Writer, q domain.ListQuery) error {
	if err := s.store.ExportCalculations(ctx, w, s.normalize(q)); err != nil {
		return fmt.Errorf("calculation.Export: %w", err)
	}
	return nil
}

func (s *Service) Health(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) normalize(q domain.ListQuery) domain.ListQuery {
	q = q.Normalize()
	if s.maxPageSize > 0 && q.Limit > s.maxPageSize {
		q.Limit = s.maxPageSize
	}
	return q
}
