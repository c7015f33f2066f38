package models

// ConversionResult summarizes a single conversion run.
type ConversionResult struct {
	Total      int    // Total is the number of data rows parsed from the input.
	Resolved   int    // Resolved is the number of rows that produced a placemark.
	OutputPath string // OutputPath is where the rendered document was written.
	KML        []byte // KML holds the rendered document text.
}
