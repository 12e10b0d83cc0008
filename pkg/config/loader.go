package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Loader defines the interface for loading configuration
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using Viper for configuration management
type ViperLoader struct {
	configFile string
	envPrefix  string
}

// NewViperLoader creates a new ViperLoader.
// configFile: path to configuration file (optional, can be empty)
// envPrefix: prefix for environment variables (e.g., "SCREENBASE")
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
	}
}

// Load loads configuration with precedence: ENV > file > defaults
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	l.setDefaults(v, defaults)

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified but couldn't be read
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	// Environment variables override file config through explicit bindings.
	v.SetEnvPrefix(l.envPrefix)
	l.bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// bindEnvVars explicitly binds environment variables for nested structs
func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("service.name", l.prefixedEnv("SERVICE_NAME"))
	v.BindEnv("service.environment", l.prefixedEnv("SERVICE_ENVIRONMENT"), l.prefixedEnv("ENVIRONMENT"))

	v.BindEnv("database.url", l.prefixedEnv("DATABASE_URL"))
	v.BindEnv("database.namespace", l.prefixedEnv("DATABASE_NAMESPACE"), l.prefixedEnv("NS"))
	v.BindEnv("database.connect_timeout", l.prefixedEnv("DATABASE_CONNECT_TIMEOUT"))
	v.BindEnv("database.operation_timeout", l.prefixedEnv("DATABASE_OPERATION_TIMEOUT"))

	v.BindEnv("catalog.page_size", l.prefixedEnv("CATALOG_PAGE_SIZE"))

	v.BindEnv("auth.signing_key", l.prefixedEnv("AUTH_SIGNING_KEY"))
	v.BindEnv("auth.token_ttl", l.prefixedEnv("AUTH_TOKEN_TTL"))

	v.BindEnv("observability.log_level", l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("observability.log_format", l.prefixedEnv("LOG_FORMAT"))
}

func (l *ViperLoader) prefixedEnv(key string) string {
	if l.envPrefix == "" {
		return key
	}
	return l.envPrefix + "_" + key
}

func (l *ViperLoader) setDefaults(v *viper.Viper, defaults Config) {
	v.SetDefault("service.name", defaults.Service.Name)
	v.SetDefault("service.environment", defaults.Service.Environment)

	v.SetDefault("database.url", defaults.Database.URL)
	v.SetDefault("database.namespace", defaults.Database.Namespace)
	v.SetDefault("database.connect_timeout", defaults.Database.ConnectTimeout)
	v.SetDefault("database.operation_timeout", defaults.Database.OperationTimeout)

	v.SetDefault("catalog.page_size", defaults.Catalog.PageSize)

	v.SetDefault("auth.token_ttl", defaults.Auth.TokenTTL)

	v.SetDefault("observability.log_level", defaults.Observability.LogLevel)
	v.SetDefault("observability.log_format", defaults.Observability.LogFormat)
}

// Validate checks the configuration for values the service cannot start
// without.
func (l *ViperLoader) Validate(cfg *Config) error {
	var problems []string

	if strings.TrimSpace(cfg.Service.Name) == "" {
		problems = append(problems, "service.name must not be empty")
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		problems = append(problems, "database.url must not be empty")
	}
	if strings.TrimSpace(cfg.Database.Namespace) == "" {
		problems = append(problems, "database.namespace must not be empty")
	}
	if cfg.Catalog.PageSize <= 0 {
		problems = append(problems, "catalog.page_size must be greater than zero")
	}
	if cfg.Auth.TokenTTL <= 0 {
		problems = append(problems, "auth.token_ttl must be greater than zero")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
