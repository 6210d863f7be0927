package domain

import (
	"strings"
	"time"
)

// VCFEntry is one row of the reference table: (density, temperature) -> vcf.
type VCFEntry struct {
	Density     float64 `db:"density" json:"density"`
	Temperature float64 `db:"temperature" json:"temperature"`
	VCF         float64 `db:"vcf" json:"vcf"`
}

// Resolution is the outcome of a VCF lookup together with the reference
// coordinates that were actually used.
type Resolution struct {
	VCF             float64 `json:"vcf"`
	UsedDensity     float64 `json:"used_density"`
	UsedTemperature float64 `json:"used_temperature"`
}

type CalculationRecord struct {
	ID              int64     `db:"id" json:"id"`
	Volume          float64   `db:"volume" json:"volume"`
	Density         float64   `db:"density" json:"density"`
	Temperature     float64   `db:"temperature" json:"temperature"`
	VCF             float64   `db:"vcf" json:"vcf"`
	UsedDensity     float64   `db:"used_density" json:"usedDensity"`
	UsedTemperature float64   `db:"used_temperature" json:"usedTemperature"`
	Tonnage         float64   `db:"tonnage" json:"tonnage"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// Sort columns accepted by ListQuery. Anything else falls back to SortCreatedAt.
const (
	SortCreatedAt   = "createdAt"
	SortVolume      = "volume"
	SortDensity     = "density"
	SortTemperature = "temperature"
	SortTonnage     = "tonnage"
)

const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
)

// ListQuery describes one page of calculation history.
type ListQuery struct {
	Page       int
	Limit      int
	Search     string
	SortColumn string
	SortOrder  string
}

// Normalize applies defaults and folds sort options onto their allowed values.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	switch q.SortColumn {
	case SortCreatedAt, SortVolume, SortDensity, SortTemperature, SortTonnage:
	default:
		q.SortColumn = SortCreatedAt
	}
	if strings.EqualFold(q.SortOrder, OrderAsc) {
		q.SortOrder = OrderAsc
	} else {
		q.SortOrder = OrderDesc
	}
	return q
}

// Offset is the number of rows skipped before the requested page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type ListResult struct {
	Rows  []CalculationRecord
	Total int
}

// Pages returns ceil(total/limit).
func (r ListResult) Pages(limit int) int {
	if limit < 1 || r.Total == 0 {
		return 0
	}
	return (r.Total + limit - 1) / limit
}
