package config

import (
	"reflect"
	"strings"
	"time"

	"visit-tracker/core/database"
	"visit-tracker/core/lock"
	"visit-tracker/core/logger"
	"visit-tracker/core/server"
	"visit-tracker/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the snapshot archive bucket.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the visit store.
	Database database.Config `mapstructure:"database"`
	// Lock holds configuration for per-user serialization.
	Lock lock.Config `mapstructure:"lock"`
	// Visits holds configuration for the reconciliation service.
	Visits VisitsConfig `mapstructure:"visits"`
}

// VisitsConfig holds settings of the reconciliation service.
type VisitsConfig struct {
	// CacheTTLSeconds is how long read projections are cached. 0 disables the cache.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"30"`
	// StoreTimeoutSeconds bounds each visit store load or replace.
	StoreTimeoutSeconds int `mapstructure:"store_timeout_seconds" default:"10"`
}

// CacheTTL returns the read cache TTL.
func (c VisitsConfig) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// StoreTimeout returns the store I/O timeout, defaulting to 10s.
func (c VisitsConfig) StoreTimeout() time.Duration {
	if c.StoreTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.StoreTimeoutSeconds) * time.Second
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
