package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the delivery distance engine:
// environment, monitoring port, provider selection and credentials, cache
// TTLs and persistence, the initial resolution policy, and the database the
// zone tables live in.
type Config struct {
	Env      string         `mapstructure:"env"`      // Env is the current environment: local, development, production.
	Port     int            `mapstructure:"port"`     // Port is the monitoring/admin server port.
	Geocoder ProviderConfig `mapstructure:"geocoder"` // Geocoding provider selection and credentials.
	Distance ProviderConfig `mapstructure:"distance"` // Distance provider selection and credentials.
	Policy   PolicyConfig   `mapstructure:"policy"`   // Initial distance resolution policy.
	Cache    CacheConfig    `mapstructure:"cache"`    // Cache TTLs and persistence.
	Database PostgresConfig `mapstructure:"postgres"` // Database holds the postgres configuration.
}

// ProviderConfig selects and parameterizes an external provider.
type ProviderConfig struct {
	Type      string `mapstructure:"type"`       // Provider type: google, nominatim, osrm.
	APIKey    string `mapstructure:"api_key"`    // API key for paid providers.
	Region    string `mapstructure:"region"`     // Region bias for geocoding, e.g. "br".
	RateLimit int    `mapstructure:"rate_limit"` // Requests per second.
}

// PolicyConfig is the startup value of the runtime-tunable DistanceConfig.
type PolicyConfig struct {
	UseLocalAlgorithms      bool    `mapstructure:"use_local_algorithms"`
	MaxLocalOnlyKm          float64 `mapstructure:"max_local_only_km"`
	UseProviderConfirmation bool    `mapstructure:"use_provider_confirmation"`
	MaxDifferenceKm         float64 `mapstructure:"max_difference_km"`
}

// CacheConfig holds per-cache TTLs and the optional persistence backends.
// Coordinates live long (geocoding results are durable); distances shorter
// (zone config and traffic patterns change more often).
type CacheConfig struct {
	CoordinatesTTL time.Duration `mapstructure:"coordinates_ttl"`
	DistancesTTL   time.Duration `mapstructure:"distances_ttl"`
	Dir            string        `mapstructure:"dir"`         // Snapshot directory for file persistence; empty disables it.
	ValkeyAddr     string        `mapstructure:"valkey_addr"` // Valkey address; set, it takes precedence over Dir.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`     // Host is the database server address.
	Port     string `mapstructure:"port"`     // Port is the database server port.
	User     string `mapstructure:"user"`     // User is the database user.
	Password string `mapstructure:"password"` // Password is the database user's password.
	Name     string `mapstructure:"db_name"`  // Name is the name of the database.
}

// Load reads configuration from an optional .env file, a config.yaml and
// ROTA_* environment variables (e.g. ROTA_GEOCODER_TYPE -> geocoder.type).
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("env", "production")
	v.SetDefault("port", 8080)
	v.SetDefault("geocoder.type", "nominatim")
	v.SetDefault("geocoder.region", "br")
	v.SetDefault("geocoder.rate_limit", 1)
	v.SetDefault("distance.type", "osrm")
	v.SetDefault("distance.rate_limit", 1)
	v.SetDefault("policy.use_local_algorithms", true)
	v.SetDefault("policy.max_local_only_km", 10.0)
	v.SetDefault("policy.use_provider_confirmation", false)
	v.SetDefault("policy.max_difference_km", 0.5)
	v.SetDefault("cache.coordinates_ttl", 30*24*time.Hour)
	v.SetDefault("cache.distances_ttl", 7*24*time.Hour)
	v.SetDefault("postgres.port", "5432")

	// viper only reads env vars for keys it already knows, so every key
	// needs a default even when it is an empty string. Without these the
	// ROTA_* overrides for credentials would be silently dropped.
	v.SetDefault("geocoder.api_key", "")
	v.SetDefault("distance.api_key", "")
	v.SetDefault("cache.dir", "")
	v.SetDefault("cache.valkey_addr", "")
	v.SetDefault("postgres.host", "")
	v.SetDefault("postgres.user", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db_name", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	v.SetEnvPrefix("ROTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port must be 1-65535, got %d", c.Port))
	}
	if c.Geocoder.Type == "" {
		errs = append(errs, "geocoder.type is required")
	}
	if c.Distance.Type == "" {
		errs = append(errs, "distance.type is required")
	}
	if c.Policy.MaxLocalOnlyKm < 0 {
		errs = append(errs, "policy.max_local_only_km must not be negative")
	}
	if c.Policy.MaxDifferenceKm < 0 {
		errs = append(errs, "policy.max_difference_km must not be negative")
	}
	if c.Cache.CoordinatesTTL <= 0 {
		errs = append(errs, "cache.coordinates_ttl must be positive")
	}
	if c.Cache.DistancesTTL <= 0 {
		errs = append(errs, "cache.distances_ttl must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
