package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"oil-tonnage/internal/domain"
)

const exportSheet = "Calculations"

var exportHeaders = []string{
	"ID", "Volume", "Density", "Temperature", "VCF",
	"Used Density", "Used Temperature", "Tonnage", "Created At",
}

// ExportCalculations writes every record matching q's search, in q's order,
// as an XLSX workbook. Paging fields of q are ignored.
func (s *Storage) ExportCalculations(ctx context.Context, w io.Writer, q domain.ListQuery) error {
	const operation = "storage.ExportCalculations"

	q = q.Normalize()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	where, args := s.dialect.where(q.Search)
	query := s.db.Rebind(`SELECT ` + recordColumns + ` FROM calculations` + where + orderBy(q))

	var records []domain.CalculationRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return unavailable(operation, fmt.Errorf("failed to fetch calculations: %w", err))
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("%s: failed to create sheet: %w", operation, err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("%s: failed to drop default sheet: %w", operation, err)
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(exportSheet, cell, header)
	}

	for row, rec := range records {
		data := []interface{}{
			rec.ID,
			rec.Volume,
			rec.Density,
			rec.Temperature,
			rec.VCF,
			rec.UsedDensity,
			rec.UsedTemperature,
			rec.Tonnage,
			rec.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		for col, value := range data {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(exportSheet, cell, value)
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		f.SetCellStyle(exportSheet, "A1", "I1", style)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%s: failed to write workbook: %w", operation, err)
	}
	return nil
}
