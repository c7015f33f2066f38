package geocoding

import (
	"context"
	"errors"

	"github.com/Houeta/csv2kml/internal/models"
)

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding coordinates and an error if any occurs.
type Provider interface {
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// ErrNoResult marks lookups that completed but matched no location.
// Provider-specific empty-response errors wrap it so callers can tell
// "address unknown" apart from a provider failure.
var ErrNoResult = errors.New("no geocoding result")

// Outcome classifies the result of a single geocoding call.
type Outcome int

const (
	// OutcomeFound means the provider returned coordinates.
	OutcomeFound Outcome = iota
	// OutcomeNotFound means the provider answered but matched nothing.
	OutcomeNotFound
	// OutcomeProviderError means the call failed: timeout, service error,
	// malformed response or any other unexpected condition.
	OutcomeProviderError
)

// Classify maps a Geocode error to an Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeFound
	case errors.Is(err, ErrNoResult):
		return OutcomeNotFound
	default:
		return OutcomeProviderError
	}
}
