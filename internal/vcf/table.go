package vcf

import (
	"context"
	"math"

	"oil-tonnage/internal/domain"
)

// Table is an in-memory ReferenceStore. It is safe for concurrent reads
// once built; it is never mutated after NewTable.
type Table struct {
	entries []domain.VCFEntry
}

var _ ReferenceStore = (*Table)(nil)

func NewTable(entries ...domain.VCFEntry) *Table {
	cp := make([]domain.VCFEntry, len(entries))
	copy(cp, entries)
	return &Table{entries: cp}
}

// Generation is constant since a Table never changes.
func (t *Table) Generation(context.Context) (int64, error) {
	return 0, nil
}

func (t *Table) ExactVCF(_ context.Context, density, temperature float64) (domain.VCFEntry, bool, error) {
	for _, e := range t.entries {
		if e.Density == density && e.Temperature == temperature {
			return e, true, nil
		}
	}
	return domain.VCFEntry{}, false, nil
}

func (t *Table) ClosestDensity(_ context.Context, density float64) (float64, bool, error) {
	best, found := 0.0, false
	for _, e := range t.entries {
		if !found || closer(e.Density, best, density) {
			best, found = e.Density, true
		}
	}
	return best, found, nil
}

func (t *Table) ClosestTemperature(_ context.Context, density, temperature float64) (domain.VCFEntry, bool, error) {
	var best domain.VCFEntry
	found := false
	for _, e := range t.entries {
		if e.Density != density {
			continue
		}
		if !found || closer(e.Temperature, best.Temperature, temperature) {
			best, found = e, true
		}
	}
	return best, found, nil
}

// closer reports whether candidate beats current as the value nearest target.
// Ties go to the lower value.
func closer(candidate, current, target float64) bool {
	dc, dx := math.Abs(candidate-target), math.Abs(current-target)
	if dc != dx {
		return dc < dx
	}
	return candidate < current
}
