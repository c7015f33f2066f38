package resolver_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/Houeta/csv2kml/internal/cache"
	"github.com/Houeta/csv2kml/internal/geocoding"
	"github.com/Houeta/csv2kml/internal/metrics"
	"github.com/Houeta/csv2kml/internal/models"
	"github.com/Houeta/csv2kml/internal/resolver"
	"github.com/Houeta/csv2kml/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T, provider geocoding.Provider, geocache *cache.Cache) *resolver.Resolver {
	t.Helper()
	logger := slog.Default()
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	return resolver.New(logger, provider, "test", geocache, appMetrics, 0, time.Second)
}

func TestResolve(t *testing.T) {
	ctx := t.Context()

	t.Run("duplicate addresses incur one provider call", func(t *testing.T) {
		mockProvider := mocks.NewProvider(t)
		coords := &models.Coordinates{Longitude: -71.05, Latitude: 42.36}
		mockProvider.On("Geocode", mock.Anything, "1 Main St, City").Return(coords, nil).Once()

		res := newResolver(t, mockProvider, cache.New())
		results, err := res.Resolve(ctx, []string{
			"1 Main St, City", "1 Main St, City", "1 Main St, City",
		})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, coords, results["1 Main St, City"])
		mockProvider.AssertNumberOfCalls(t, "Geocode", 1)
	})

	t.Run("empty and whitespace addresses are never submitted", func(t *testing.T) {
		mockProvider := mocks.NewProvider(t)
		coords := &models.Coordinates{Longitude: 30.52, Latitude: 50.45}
		mockProvider.On("Geocode", mock.Anything, "Kyiv").Return(coords, nil).Once()

		res := newResolver(t, mockProvider, cache.New())
		results, err := res.Resolve(ctx, []string{"", "   ", "Kyiv", "\t"})

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, coords, results["Kyiv"])
	})

	t.Run("provider failure is non-fatal and recorded as nil", func(t *testing.T) {
		mockProvider := mocks.NewProvider(t)
		coords := &models.Coordinates{Longitude: 1, Latitude: 2}
		mockProvider.On("Geocode", mock.Anything, "bad place").Return(nil, assert.AnError).Once()
		mockProvider.On("Geocode", mock.Anything, "good place").Return(coords, nil).Once()

		res := newResolver(t, mockProvider, cache.New())
		results, err := res.Resolve(ctx, []string{"bad place", "good place"})

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Nil(t, results["bad place"])
		assert.Equal(t, coords, results["good place"])
	})

	t.Run("not-found result is recorded as nil", func(t *testing.T) {
		mockProvider := mocks.NewProvider(t)
		mockProvider.On("Geocode", mock.Anything, "nowhere").
			Return(nil, geocoding.ErrNoResult).Once()

		res := newResolver(t, mockProvider, cache.New())
		results, err := res.Resolve(ctx, []string{"nowhere"})

		require.NoError(t, err)
		assert.Nil(t, results["nowhere"])
	})

	t.Run("failed lookup is cached and not retried", func(t *testing.T) {
		mockProvider := mocks.NewProvider(t)
		mockProvider.On("Geocode", mock.Anything, "bad place").Return(nil, assert.AnError).Once()

		geocache := cache.New()
		res := newResolver(t, mockProvider, geocache)

		_, err := res.Resolve(ctx, []string{"bad place"})
		require.NoError(t, err)

		// Second resolve within the same run must be answered from the cache.
		results, err := res.Resolve(ctx, []string{"bad place"})
		require.NoError(t, err)
		assert.Nil(t, results["bad place"])
		mockProvider.AssertNumberOfCalls(t, "Geocode", 1)
	})

	t.Run("case-sensitive caching means two lookups", func(t *testing.T) {
		mockProvider := mocks.NewProvider(t)
		coords := &models.Coordinates{Longitude: 1, Latitude: 2}
		mockProvider.On("Geocode", mock.Anything, "Main St").Return(coords, nil).Once()
		mockProvider.On("Geocode", mock.Anything, "main st").Return(coords, nil).Once()

		res := newResolver(t, mockProvider, cache.New())
		results, err := res.Resolve(ctx, []string{"Main St", "main st"})

		require.NoError(t, err)
		require.Len(t, results, 2)
		mockProvider.AssertNumberOfCalls(t, "Geocode", 2)
	})

	t.Run("nil provider means resolver unavailable", func(t *testing.T) {
		res := newResolver(t, nil, cache.New())

		results, err := res.Resolve(ctx, []string{"1 Main St"})

		require.ErrorIs(t, err, resolver.ErrResolverUnavailable)
		assert.Nil(t, results)
	})
}

func TestResolveDelay(t *testing.T) {
	mockProvider := mocks.NewProvider(t)
	coords := &models.Coordinates{Longitude: 1, Latitude: 2}
	mockProvider.On("Geocode", mock.Anything, mock.Anything).Return(coords, nil).Twice()

	logger := slog.Default()
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	delay := 20 * time.Millisecond

	start := time.Now()
	res := resolver.New(logger, mockProvider, "test", cache.New(), appMetrics, delay, time.Second)
	_, err := res.Resolve(t.Context(), []string{"a", "b"})
	elapsed := time.Since(start)

	require.NoError(t, err)
	// The delay must elapse before every outbound call, including the first.
	assert.GreaterOrEqual(t, elapsed, 2*delay)
}
