// Package marker maps resolved rows into placemark records.
package marker

import (
	"fmt"
	"strings"

	"github.com/Houeta/csv2kml/internal/models"
)

// Options names the columns consumed by the marker roles. Empty fields mean
// the role is not in use; consumed columns never appear in the attributes.
type Options struct {
	AddressColumn string // Actual address column present in the header, or ""
	NameColumn    string // Explicit name column, or ""
	LatColumn     string // Latitude column (coordinate path), or ""
	LonColumn     string // Longitude column (coordinate path), or ""
}

// FindAddressColumn resolves the configured address column against the
// header. When the configured name is absent verbatim, the first header
// containing "address" case-insensitively is used instead. Failing both,
// the error lists the available columns.
func FindAddressColumn(header []string, configured string) (string, error) {
	if contains(header, configured) {
		return configured, nil
	}

	for _, column := range header {
		if strings.Contains(strings.ToLower(column), "address") {
			return column, nil
		}
	}

	return "", fmt.Errorf("%w: %q not in CSV, available columns: %s",
		ErrColumnNotFound, configured, strings.Join(header, ", "))
}

// Build creates a placemark from a row and its resolved coordinates.
// idx is the 1-based row position, used for the positional name fallback.
//
// Name precedence: explicit name column value, then the address value, then
// "Point {idx}". Description is the address value when an address column is
// in play. Attributes keep every remaining non-empty column in header order.
func Build(row models.Row, idx int, coords models.Coordinates, opts Options) models.Placemark {
	address := ""
	if opts.AddressColumn != "" {
		address = row.Get(opts.AddressColumn)
	}

	name := ""
	if opts.NameColumn != "" && contains(row.Header, opts.NameColumn) {
		name = row.Get(opts.NameColumn)
	}
	if name == "" {
		name = address
	}
	if name == "" {
		name = fmt.Sprintf("Point %d", idx)
	}

	consumed := map[string]bool{}
	for _, column := range []string{opts.AddressColumn, opts.NameColumn, opts.LatColumn, opts.LonColumn} {
		if column != "" {
			consumed[column] = true
		}
	}

	var attributes []models.Attribute
	for _, column := range row.Header {
		if consumed[column] {
			continue
		}
		if value := row.Get(column); value != "" {
			attributes = append(attributes, models.Attribute{Key: column, Value: value})
		}
	}

	return models.Placemark{
		Name:        name,
		Coordinates: coords,
		Description: address,
		Attributes:  attributes,
	}
}
