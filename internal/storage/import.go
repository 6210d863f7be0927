package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"oil-tonnage/internal/domain"
)

// ReadVCFWorkbook parses reference rows from an XLSX workbook. An empty sheet
// name selects the first sheet. The first row is treated as a header when
// its first cell is not a number.
func ReadVCFWorkbook(r io.Reader, sheet string) ([]domain.VCFEntry, error) {
	const operation = "storage.ReadVCFWorkbook"

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open workbook: %w", operation, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read sheet %q: %w", operation, sheet, err)
	}

	entries, err := parseVCFRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return entries, nil
}

// ReadVCFCSV parses reference rows from comma separated density,temperature,vcf.
func ReadVCFCSV(r io.Reader) ([]domain.VCFEntry, error) {
	const operation = "storage.ReadVCFCSV"

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read csv: %w", operation, err)
	}

	entries, err := parseVCFRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return entries, nil
}

func parseVCFRows(rows [][]string) ([]domain.VCFEntry, error) {
	entries := make([]domain.VCFEntry, 0, len(rows))
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if i == 0 && !isNumber(row[0]) {
			continue
		}
		if len(row) < 3 {
			return nil, fmt.Errorf("row %d: expected density, temperature, vcf", i+1)
		}

		var values [3]float64
		for col := range values {
			v, err := parseDecimal(row[col])
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i+1, col+1, err)
			}
			values[col] = v
		}

		entries = append(entries, domain.VCFEntry{
			Density:     values[0],
			Temperature: values[1],
			VCF:         values[2],
		})
	}

	if len(entries) == 0 {
		return nil, errors.New("no reference rows found")
	}
	return entries, nil
}

// parseDecimal accepts both '.' and ',' as decimal separator.
func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

func isNumber(s string) bool {
	_, err := parseDecimal(s)
	return err == nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
