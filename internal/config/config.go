package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the environment-driven settings for a conversion run.
// Per-file options (paths, column names) live on the command line instead.
//
// Fields:
// - Env: The current environment (local, development, production).
// - ProviderType: Which geocoding provider to use (google, nominatim, none).
// - APIKey: The API key for the provider (required for Google).
// - GeocodeDelay: The mandatory delay before each outbound geocoding call.
// - GeocodeTimeout: The per-call timeout passed to the provider.
type Config struct {
	Env            string        // Env is the current environment: local, development, production.
	ProviderType   string        // ProviderType specifies which geocoding provider to use.
	APIKey         string        // The API key for accessing external services.
	GeocodeDelay   time.Duration // Minimum delay before each geocoding call.
	GeocodeTimeout time.Duration // Timeout for a single geocoding call.
}

// MustLoad loads the configuration from the environment (and an optional
// .env file) and returns a Config struct. It panics on unparsable values.
func MustLoad() *Config {
	_ = godotenv.Load()

	vpr := viper.New()
	vpr.SetEnvPrefix("CSV2KML")
	vpr.AutomaticEnv()
	vpr.SetDefault("env", "production")
	vpr.SetDefault("provider_type", "nominatim")
	vpr.SetDefault("geocode_delay", "1s")
	vpr.SetDefault("geocode_timeout", "10s")

	delay, err := time.ParseDuration(vpr.GetString("geocode_delay"))
	if err != nil {
		panic("failed to parse geocode delay from configuration")
	}

	timeout, err := time.ParseDuration(vpr.GetString("geocode_timeout"))
	if err != nil {
		panic("failed to parse geocode timeout from configuration")
	}

	return &Config{
		Env:            vpr.GetString("env"),
		ProviderType:   vpr.GetString("provider_type"),
		APIKey:         vpr.GetString("provider_key"),
		GeocodeDelay:   delay,
		GeocodeTimeout: timeout,
	}
}
