package storage

import (
	"fmt"
	"strings"

	"oil-tonnage/internal/config"
	"oil-tonnage/internal/domain"
)

// dialect holds the SQL fragments that differ between drivers. Queries are
// written with '?' placeholders and rebound by sqlx for the active driver.
type dialect struct {
	// searchClause matches one pattern against the textual form of every
	// searchable column. It contains exactly searchArgs placeholders.
	searchClause string
}

const searchArgs = 5

var postgresDialect = dialect{
	searchClause: `volume::text LIKE ? ESCAPE '\'` +
		` OR density::text LIKE ? ESCAPE '\'` +
		` OR temperature::text LIKE ? ESCAPE '\'` +
		` OR tonnage::text LIKE ? ESCAPE '\'` +
		` OR to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD HH24:MI:SS') LIKE ? ESCAPE '\'`,
}

var sqliteDialect = dialect{
	searchClause: `CAST(volume AS TEXT) LIKE ? ESCAPE '\'` +
		` OR CAST(density AS TEXT) LIKE ? ESCAPE '\'` +
		` OR CAST(temperature AS TEXT) LIKE ? ESCAPE '\'` +
		` OR CAST(tonnage AS TEXT) LIKE ? ESCAPE '\'` +
		` OR strftime('%Y-%m-%d %H:%M:%S', created_at) LIKE ? ESCAPE '\'`,
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return postgresDialect, nil
	case config.DriverSQLite:
		return sqliteDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
}

// sortColumns maps the public sort keys onto fixed column identifiers.
// Client input never reaches the ORDER BY clause.
var sortColumns = map[string]string{
	domain.SortCreatedAt:   "created_at",
	domain.SortVolume:      "volume",
	domain.SortDensity:     "density",
	domain.SortTemperature: "temperature",
	domain.SortTonnage:     "tonnage",
}

// orderBy renders the ORDER BY clause for a normalized query.
func orderBy(q domain.ListQuery) string {
	column, ok := sortColumns[q.SortColumn]
	if !ok {
		column = sortColumns[domain.SortCreatedAt]
	}
	order := domain.OrderDesc
	if q.SortOrder == domain.OrderAsc {
		order = domain.OrderAsc
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", column, order, order)
}

// where renders the search filter and its arguments. An empty search matches
// every row.
func (d dialect) where(search string) (string, []any) {
	if search == "" {
		return "", nil
	}
	pattern := "%" + escapeLike(search) + "%"
	args := make([]any, searchArgs)
	for i := range args {
		args[i] = pattern
	}
	return " WHERE " + d.searchClause, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes search match as a literal substring.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
