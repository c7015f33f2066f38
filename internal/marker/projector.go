package marker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Houeta/csv2kml/internal/models"
)

// ErrColumnNotFound is returned when a required column is absent from the header.
var ErrColumnNotFound = errors.New("column not found")

// ValidateCoordinateColumns checks once, before any per-row processing, that
// both coordinate columns exist in the header.
func ValidateCoordinateColumns(header []string, latColumn, lonColumn string) error {
	if !contains(header, latColumn) {
		return fmt.Errorf("%w: latitude column %q", ErrColumnNotFound, latColumn)
	}
	if !contains(header, lonColumn) {
		return fmt.Errorf("%w: longitude column %q", ErrColumnNotFound, lonColumn)
	}
	return nil
}

// Project reads literal latitude/longitude values from a row. A missing or
// unparsable value is a per-row error: the caller logs it and skips the row.
// Values are passed through verbatim, with no range validation.
func Project(row models.Row, latColumn, lonColumn string) (*models.Coordinates, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(row.Get(latColumn)), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", row.Get(latColumn), err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(row.Get(lonColumn)), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", row.Get(lonColumn), err)
	}

	return &models.Coordinates{Longitude: lon, Latitude: lat}, nil
}

func contains(header []string, column string) bool {
	for _, candidate := range header {
		if candidate == column {
			return true
		}
	}
	return false
}
