// Package csvfile parses delimited tabular input into ordered rows.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Houeta/csv2kml/internal/models"
)

// Common errors for the CSV parser.
var (
	// ErrEmptyInput is returned when the input contains no data rows.
	ErrEmptyInput = errors.New("no data rows found in input")
	// ErrDuplicateColumn is returned when the header repeats a column name.
	ErrDuplicateColumn = errors.New("duplicate column name in header")
)

// Parse reads a CSV document with a header row and returns one Row per data
// record plus the ordered header. Structural problems (unterminated quotes,
// inconsistent field counts) surface as wrapped csv errors. An input with a
// header but zero data rows fails with ErrEmptyInput.
func Parse(r io.Reader) ([]models.Row, []string, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, ErrEmptyInput
		}
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	seen := make(map[string]bool, len(header))
	for _, column := range header {
		if seen[column] {
			return nil, nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, column)
		}
		seen[column] = true
	}

	var rows []models.Row
	for {
		record, errRead := reader.Read()
		if errors.Is(errRead, io.EOF) {
			break
		}
		if errRead != nil {
			return nil, nil, fmt.Errorf("failed to read record: %w", errRead)
		}

		values := make(map[string]string, len(header))
		for idx, column := range header {
			values[column] = record[idx]
		}
		rows = append(rows, models.Row{Header: header, Values: values})
	}

	if len(rows) == 0 {
		return nil, nil, ErrEmptyInput
	}

	return rows, header, nil
}

// ParseFile opens the file at path and parses it with Parse.
func ParseFile(path string) ([]models.Row, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}
