package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitKB caps the size of an ingestion request body.
	BodyLimitKB int `mapstructure:"body_limit_kb" default:"4096"`
	// ShutdownSeconds bounds graceful shutdown.
	ShutdownSeconds int `mapstructure:"shutdown_seconds" default:"10"`
}

// BodyLimit returns the body limit in bytes, defaulting to 4 MiB.
func (c Config) BodyLimit() int {
	if c.BodyLimitKB <= 0 {
		return 4096 * 1024
	}
	return c.BodyLimitKB * 1024
}

// ShutdownTimeout returns the graceful shutdown timeout, defaulting to 10s.
func (c Config) ShutdownTimeout() time.Duration {
	if c.ShutdownSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ShutdownSeconds) * time.Second
}
