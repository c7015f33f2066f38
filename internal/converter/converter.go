// Package converter runs the CSV to KML pipeline end to end.
package converter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Houeta/csv2kml/internal/csvfile"
	"github.com/Houeta/csv2kml/internal/kml"
	"github.com/Houeta/csv2kml/internal/marker"
	"github.com/Houeta/csv2kml/internal/models"
	"github.com/Houeta/csv2kml/internal/resolver"
)

// Options selects the input, output and column roles for one conversion run.
type Options struct {
	InputPath     string // Path to the CSV input file.
	OutputPath    string // Output path; empty means input base name + ".kml".
	AddressColumn string // Address column name (default "Address").
	NameColumn    string // Optional explicit name column.
	SkipGeocoding bool   // Use literal coordinate columns instead of geocoding.
	LatColumn     string // Latitude column (required with SkipGeocoding).
	LonColumn     string // Longitude column (required with SkipGeocoding).
	DocumentName  string // Document title; empty means input base name.
}

const outputPerm = 0o644

// Converter wires the parsing, resolution and serialization stages together.
type Converter struct {
	log      *slog.Logger
	resolver *resolver.Resolver
}

// New creates a Converter. The resolver may be nil when only the
// coordinate-column path will be used.
func New(log *slog.Logger, res *resolver.Resolver) *Converter {
	return &Converter{log: log, resolver: res}
}

// Run executes the full pipeline: parse the CSV, resolve coordinates via the
// geocoder or the literal columns, build placemarks, render the KML document
// and write it out. Per-row failures are logged and skipped; the returned
// result counts how many rows made it into the document.
func (c *Converter) Run(ctx context.Context, opts Options) (*models.ConversionResult, error) {
	c.log.InfoContext(ctx, "Parsing CSV file", "path", opts.InputPath)

	rows, header, err := csvfile.ParseFile(opts.InputPath)
	if err != nil {
		return nil, err
	}
	c.log.InfoContext(ctx, "Parsed CSV file", "rows", len(rows))

	var placemarks []models.Placemark
	if opts.SkipGeocoding {
		placemarks, err = c.projectRows(ctx, rows, header, opts)
	} else {
		placemarks, err = c.resolveRows(ctx, rows, header, opts)
	}
	if err != nil {
		return nil, err
	}

	documentName := opts.DocumentName
	if documentName == "" {
		documentName = baseName(opts.InputPath)
	}

	c.log.InfoContext(ctx, "Generating KML document", "placemarks", len(placemarks))
	rendered, err := kml.Marshal(kml.Document{Name: documentName, Placemarks: placemarks})
	if err != nil {
		return nil, err
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = baseName(opts.InputPath) + ".kml"
	}

	if err = os.WriteFile(outputPath, rendered, outputPerm); err != nil {
		return nil, fmt.Errorf("failed to write output file: %w", err)
	}

	c.log.InfoContext(ctx, "Conversion complete",
		"resolved", len(placemarks), "total", len(rows), "output", outputPath)

	return &models.ConversionResult{
		Total:      len(rows),
		Resolved:   len(placemarks),
		OutputPath: outputPath,
		KML:        rendered,
	}, nil
}

// resolveRows geocodes the address column and maps results back per row.
func (c *Converter) resolveRows(
	ctx context.Context,
	rows []models.Row,
	header []string,
	opts Options,
) ([]models.Placemark, error) {
	addressColumn, err := marker.FindAddressColumn(header, opts.AddressColumn)
	if err != nil {
		return nil, err
	}

	addresses := make([]string, 0, len(rows))
	for _, row := range rows {
		addresses = append(addresses, row.Get(addressColumn))
	}

	resolved, err := c.resolve(ctx, addresses)
	if err != nil {
		return nil, err
	}

	buildOpts := marker.Options{
		AddressColumn: addressColumn,
		NameColumn:    opts.NameColumn,
	}

	var placemarks []models.Placemark
	for idx, row := range rows {
		address := row.Get(addressColumn)
		coords := resolved[address]
		if coords == nil {
			c.log.WarnContext(ctx, "Could not geocode address, skipping row",
				"row", idx+1, "address", address)
			continue
		}
		placemarks = append(placemarks, marker.Build(row, idx+1, *coords, buildOpts))
	}

	return placemarks, nil
}

// projectRows reads literal coordinate columns, skipping unparsable rows.
func (c *Converter) projectRows(
	ctx context.Context,
	rows []models.Row,
	header []string,
	opts Options,
) ([]models.Placemark, error) {
	if err := marker.ValidateCoordinateColumns(header, opts.LatColumn, opts.LonColumn); err != nil {
		return nil, err
	}

	c.log.InfoContext(ctx, "Using coordinate columns from CSV",
		"lat_column", opts.LatColumn, "lon_column", opts.LonColumn)

	buildOpts := marker.Options{
		NameColumn: opts.NameColumn,
		LatColumn:  opts.LatColumn,
		LonColumn:  opts.LonColumn,
	}
	// The address column, if present, still feeds name/description and is
	// excluded from the attributes.
	for _, column := range header {
		if column == opts.AddressColumn {
			buildOpts.AddressColumn = column
			break
		}
	}

	var placemarks []models.Placemark
	for idx, row := range rows {
		coords, err := marker.Project(row, opts.LatColumn, opts.LonColumn)
		if err != nil {
			c.log.WarnContext(ctx, "Skipping row with invalid coordinates", "row", idx+1, "error", err)
			continue
		}
		placemarks = append(placemarks, marker.Build(row, idx+1, *coords, buildOpts))
	}

	return placemarks, nil
}

func (c *Converter) resolve(ctx context.Context, addresses []string) (map[string]*models.Coordinates, error) {
	if c.resolver == nil {
		return nil, resolver.ErrResolverUnavailable
	}
	return c.resolver.Resolve(ctx, addresses)
}

// baseName strips the directory and extension from a path.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
