// Package config provides configuration management for giftlist-tools.
//
// It uses Viper to load configuration from environment variables and an optional
// .env file. Defaults come from the `default` struct tags; every key is also read
// from the environment with dots replaced by underscores (sync.primary is
// SYNC_PRIMARY).
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and the environment the process runs in
//   - AWS: region, endpoint, cross-account role name, rate limit and timeout
//   - Tables, Sync: the notfound and lists tables, the primary and update environments
//   - Environments: per-environment products table and account, or a YAML file
//   - Local, Audit, Database, Storage, Metrics: optional backends and outputs
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	envs, err := cfg.EnvironmentList()
package config
