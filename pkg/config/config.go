package config

import "time"

// Config is the root configuration structure for the catalog data service.
type Config struct {
	Service       ServiceConfig
	Database      DatabaseConfig
	Catalog       CatalogConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
}

// ServiceConfig configures service identity metadata.
type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig configures the MongoDB connection.
type DatabaseConfig struct {
	URL              string        `mapstructure:"url"`
	Namespace        string        `mapstructure:"namespace"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// CatalogConfig configures catalog query behavior.
type CatalogConfig struct {
	// PageSize is the default number of movies per page when the caller
	// does not specify one.
	PageSize int `mapstructure:"page_size"`
}

// AuthConfig configures session token minting.
type AuthConfig struct {
	// SigningKey signs session tokens (HS256). Required only for login.
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// DefaultConfig returns the baseline configuration before file and
// environment overrides are applied.
func DefaultConfig() Config {
	return Config{
		Service: ServiceConfig{
			Name:        "screenbase",
			Environment: "development",
		},
		Database: DatabaseConfig{
			URL:              "mongodb://localhost:27017",
			Namespace:        "sample_mflix",
			ConnectTimeout:   5 * time.Second,
			OperationTimeout: 30 * time.Second,
		},
		Catalog: CatalogConfig{
			PageSize: 20,
		},
		Auth: AuthConfig{
			TokenTTL: 4 * time.Hour,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}
