// Package resolver turns free-text addresses into coordinates through a
// geocoding provider, with per-run caching and rate limiting.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Houeta/csv2kml/internal/cache"
	"github.com/Houeta/csv2kml/internal/geocoding"
	"github.com/Houeta/csv2kml/internal/metrics"
	"github.com/Houeta/csv2kml/internal/models"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

// ErrResolverUnavailable is returned when geocoding is requested but no
// provider was configured for this run.
var ErrResolverUnavailable = errors.New("geocoding provider is not available")

// previewLimit caps the address length echoed in progress output.
const previewLimit = 50

const percentScale = 100

// Resolver resolves addresses sequentially: each distinct address is looked
// up through the provider at most once per run, with a mandatory delay
// elapsing before every outbound call.
type Resolver struct {
	log          *slog.Logger       // Logger for progress and diagnostics
	provider     geocoding.Provider // Geocoding collaborator; nil means unavailable
	providerName string             // Provider name for metrics labeling
	cache        *cache.Cache       // Per-run geocode cache
	metrics      *metrics.Metrics   // Counters for lookups, cache hits and errors
	limiter      *rate.Limiter      // Enforces the inter-call delay
	timeout      time.Duration      // Per-call timeout passed to the provider
}

// New creates a Resolver. A nil provider declares the collaborator
// unavailable; Resolve then fails with ErrResolverUnavailable. The delay
// elapses before every outbound call, including the first one. A delay of
// zero disables pacing (used by tests).
func New(
	log *slog.Logger,
	provider geocoding.Provider,
	providerName string,
	geocache *cache.Cache,
	appMetrics *metrics.Metrics,
	delay time.Duration,
	timeout time.Duration,
) *Resolver {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if delay > 0 {
		limiter = rate.NewLimiter(rate.Every(delay), 1)
		// Drain the initial token so the delay also precedes the first call.
		limiter.Allow()
	}

	return &Resolver{
		log:          log,
		provider:     provider,
		providerName: providerName,
		cache:        geocache,
		metrics:      appMetrics,
		limiter:      limiter,
		timeout:      timeout,
	}
}

// Resolve maps every distinct non-empty address in the input to coordinates,
// or to nil when resolution failed. Duplicate addresses share one lookup;
// empty and whitespace-only strings are excluded up front. Individual lookup
// failures are logged and recorded as nil, never returned as errors.
func (r *Resolver) Resolve(ctx context.Context, addresses []string) (map[string]*models.Coordinates, error) {
	if r.provider == nil {
		return nil, ErrResolverUnavailable
	}

	distinct := dedupe(addresses)
	results := make(map[string]*models.Coordinates, len(distinct))

	var bar *progressbar.ProgressBar
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(distinct),
			progressbar.OptionSetDescription("Geocoding"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for idx, address := range distinct {
		preview := truncate(address, previewLimit)
		percent := float64(idx+1) / float64(len(distinct)) * percentScale

		r.log.InfoContext(ctx, "Geocoding address",
			"index", idx+1,
			"total", len(distinct),
			"percent", fmt.Sprintf("%.1f", percent),
			"address", preview,
		)
		if bar != nil {
			bar.Describe("Geocoding " + preview)
		}

		results[address] = r.lookup(ctx, address)

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return results, nil
}

// lookup resolves one address through the cache or the provider. Every
// failure is cached as nil so the address is not retried within the run.
func (r *Resolver) lookup(ctx context.Context, address string) *models.Coordinates {
	if coords, ok := r.cache.Get(address); ok {
		r.metrics.CacheHits.Inc()
		return coords
	}

	// Rate-limiting contract: the delay must fully elapse before each
	// outbound call, whether or not the result ends up cached.
	if err := r.limiter.Wait(ctx); err != nil {
		r.log.WarnContext(ctx, "Rate limiter interrupted", "address", address, "error", err)
		r.cache.Put(address, nil)
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	startTime := time.Now()
	coords, err := r.provider.Geocode(callCtx, address)
	r.metrics.RequestSeconds.WithLabelValues(r.providerName).Observe(time.Since(startTime).Seconds())

	switch geocoding.Classify(err) {
	case geocoding.OutcomeFound:
		r.metrics.Lookups.WithLabelValues("found").Inc()
		r.cache.Put(address, coords)
		return coords
	case geocoding.OutcomeNotFound:
		r.log.WarnContext(ctx, "No geocoding result for address", "address", address)
		r.metrics.Lookups.WithLabelValues("not_found").Inc()
		r.cache.Put(address, nil)
		return nil
	default:
		r.log.WarnContext(ctx, "Failed to geocode address", "address", address, "error", err)
		r.metrics.Lookups.WithLabelValues("error").Inc()
		r.metrics.APIErrors.Inc()
		r.cache.Put(address, nil)
		return nil
	}
}

// dedupe keeps the first occurrence of every non-empty address, in input order.
func dedupe(addresses []string) []string {
	seen := make(map[string]bool, len(addresses))
	distinct := make([]string, 0, len(addresses))
	for _, address := range addresses {
		if strings.TrimSpace(address) == "" || seen[address] {
			continue
		}
		seen[address] = true
		distinct = append(distinct, address)
	}
	return distinct
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
