// Package config loads service configuration.
//
// Viper reads a YAML file named by WithConfigFile or <SERVICE>_CONFIG, or
// found under ./cmd/<service>/config.yml, ./config/config.yml or
// ./config.yml (also one and two directories up). Any key can then be
// overridden from the environment by upper-casing it and joining with
// underscores, so GATE_MAX_CONCURRENT sets gate.max_concurrent. A .env
// file is loaded with godotenv first and never overrides variables that
// are already set.
//
//	var cfg Config
//	if err := config.Load("chunkscribe", &cfg); err != nil { ... }
package config
