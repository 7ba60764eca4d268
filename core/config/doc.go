// Package config provides configuration management for the visit tracker.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file. Defaults come from `default` struct tags.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, body limit, shutdown timeout
//   - Database: visit store connection (mysql or sqlite)
//   - Storage: S3/MinIO credentials and the snapshot archive switch
//   - Lock: per-user lock driver (local or redis)
//   - Visits: read cache TTL and store timeout
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
