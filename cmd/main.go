package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Houeta/csv2kml/internal/cache"
	"github.com/Houeta/csv2kml/internal/config"
	"github.com/Houeta/csv2kml/internal/converter"
	"github.com/Houeta/csv2kml/internal/geocoding"
	"github.com/Houeta/csv2kml/internal/metrics"
	"github.com/Houeta/csv2kml/internal/resolver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := converter.Options{}

	cmd := &cobra.Command{
		Use:   "csv2kml <input.csv>",
		Short: "Convert CSV files with addresses or coordinates to KML",
		Long: `csv2kml converts tabular CSV data into a KML marker document.

Addresses are resolved through a geocoding provider (Nominatim by default,
selectable via CSV2KML_PROVIDER_TYPE), or literal latitude/longitude columns
can be used instead with --skip-geocoding.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if opts.SkipGeocoding && (opts.LatColumn == "" || opts.LonColumn == "") {
				return errors.New("--lat-column and --lon-column are required when --skip-geocoding is used")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.InputPath = args[0]
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "",
		"output KML file path (default: input base name + .kml)")
	cmd.Flags().StringVarP(&opts.AddressColumn, "address-column", "a", "Address",
		"name of the address column")
	cmd.Flags().StringVarP(&opts.NameColumn, "name-column", "n", "",
		"column to use for placemark names (default: uses address)")
	cmd.Flags().BoolVar(&opts.SkipGeocoding, "skip-geocoding", false,
		"skip geocoding and use lat/lon columns from CSV")
	cmd.Flags().StringVar(&opts.LatColumn, "lat-column", "",
		"latitude column name (when --skip-geocoding is used)")
	cmd.Flags().StringVar(&opts.LonColumn, "lon-column", "",
		"longitude column name (when --skip-geocoding is used)")

	return cmd
}

// run assembles the pipeline from the environment configuration and executes it.
func run(ctx context.Context, opts converter.Options) error {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)

	var res *resolver.Resolver
	if !opts.SkipGeocoding {
		// The provider is decided once at startup; "none" yields a nil
		// provider and the resolver reports itself unavailable.
		provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
			Type:    geocoding.ProviderType(cfg.ProviderType),
			APIKey:  cfg.APIKey,
			Timeout: cfg.GeocodeTimeout,
			Logger:  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create geocoding provider: %w", err)
		}
		if provider == nil {
			return fmt.Errorf("%w: set CSV2KML_PROVIDER_TYPE or use --skip-geocoding",
				resolver.ErrResolverUnavailable)
		}
		logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.ProviderType)

		res = resolver.New(
			logger, provider, cfg.ProviderType,
			cache.New(), appMetrics,
			cfg.GeocodeDelay, cfg.GeocodeTimeout,
		)
	}

	result, err := converter.New(logger, res).Run(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Printf("Successfully converted %d/%d rows. KML file saved as: %s\n",
		result.Resolved, result.Total, result.OutputPath)
	return nil
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelWarn,
			}),
		)

		log.Warn(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
