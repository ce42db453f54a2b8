// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for baatcheet.
//
// Supports TOML, JSON and YAML configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - APIConfig: Backend URL, per-class timeouts, throttle and breaker
//   - CredentialsConfig: Credential store backend (memory, file, sqlite)
//   - LoggingConfig: Log level and format
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (BAATCHEET_*)
//   - ~/.baatcheet/config.toml
//   - ~/.baatcheet/config.json
//   - ~/.baatcheet/config.yaml
//   - Built-in defaults
//
// BAATCHEET_HOME replaces ~/.baatcheet.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	timeout := cfg.API.TimeoutSecs
package config
