// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/baatcheet/baatcheet-cli/internal/util"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete baatcheet configuration.
type Config struct {
	Version string `toml:"version" json:"version" yaml:"version"`

	// Backend connection
	API APIConfig `toml:"api" json:"api" yaml:"api"`

	// Where the bearer token and cached user live
	Credentials CredentialsConfig `toml:"credentials" json:"credentials" yaml:"credentials"`

	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	Chat ChatConfig `toml:"chat" json:"chat" yaml:"chat"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the scheme and host of the backend, without the API prefix
	BaseURL string `toml:"base_url" json:"base_url" yaml:"base_url"`
	// APIPrefix is prepended to every endpoint path
	APIPrefix string `toml:"api_prefix" json:"api_prefix" yaml:"api_prefix"`
	// TimeoutSecs applies to ordinary calls
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" yaml:"timeout_secs"`
	// UploadTimeoutSecs applies to multipart uploads
	UploadTimeoutSecs int `toml:"upload_timeout_secs" json:"upload_timeout_secs" yaml:"upload_timeout_secs"`
	// ImageTimeoutSecs applies to image generation
	ImageTimeoutSecs int `toml:"image_timeout_secs" json:"image_timeout_secs" yaml:"image_timeout_secs"`
	// MaxRequestsPerSecond throttles outgoing calls (0 = unlimited)
	MaxRequestsPerSecond float64 `toml:"max_requests_per_second" json:"max_requests_per_second" yaml:"max_requests_per_second"`
	UserAgent            string  `toml:"user_agent" json:"user_agent" yaml:"user_agent"`

	Breaker BreakerConfig `toml:"breaker" json:"breaker" yaml:"breaker"`
}

// BreakerConfig configures the transport circuit breaker.
type BreakerConfig struct {
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`
	// FailureRatio trips the breaker once reached (0.0-1.0)
	FailureRatio float64 `toml:"failure_ratio" json:"failure_ratio" yaml:"failure_ratio"`
	// MinRequests is the sample size before the ratio is considered
	MinRequests int `toml:"min_requests" json:"min_requests" yaml:"min_requests"`
	// OpenSecs is how long the breaker stays open before probing again
	OpenSecs int `toml:"open_secs" json:"open_secs" yaml:"open_secs"`
}

// CredentialsConfig selects the credential store backend.
type CredentialsConfig struct {
	// Backend is one of "memory", "file", "sqlite"
	Backend string `toml:"backend" json:"backend" yaml:"backend"`
	// Path is the store location (empty = default under ~/.baatcheet)
	Path string `toml:"path" json:"path" yaml:"path"`
	// PassphraseEnv names the environment variable holding the store
	// passphrase. When unset or empty a random key file is used.
	PassphraseEnv string `toml:"passphrase_env" json:"passphrase_env" yaml:"passphrase_env"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error"
	Level string `toml:"level" json:"level" yaml:"level"`
	// Format is "console" or "json"
	Format string `toml:"format" json:"format" yaml:"format"`
}

// ChatConfig contains interactive chat settings.
type ChatConfig struct {
	// DefaultMode is the AI mode used when none is selected (empty = backend default)
	DefaultMode string `toml:"default_mode" json:"default_mode" yaml:"default_mode"`
	// HistoryFile keeps the REPL input history (empty = default under ~/.baatcheet)
	HistoryFile string `toml:"history_file" json:"history_file" yaml:"history_file"`
}

// Credential store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Default returns a configuration with built-in defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		API: APIConfig{
			BaseURL:           "https://api.baatcheet.app",
			APIPrefix:         "/api/v1",
			TimeoutSecs:       30,
			UploadTimeoutSecs: 120,
			ImageTimeoutSecs:  180,
			UserAgent:         "baatcheet-cli",
			Breaker: BreakerConfig{
				Enabled:      true,
				FailureRatio: 0.8,
				MinRequests:  5,
				OpenSecs:     60,
			},
		},
		Credentials: CredentialsConfig{
			Backend:       BackendFile,
			PassphraseEnv: "BAATCHEET_PASSPHRASE",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the baatcheet configuration directory path.
// BAATCHEET_HOME overrides the default ~/.baatcheet.
func ConfigDir() (string, error) {
	if dir := os.Getenv("BAATCHEET_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".baatcheet"), nil
}

func configPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) { return configPath("config.toml") }

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) { return configPath("config.json") }

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) { return configPath("config.yaml") }

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

type loader struct {
	path func() (string, error)
	load func(*Config, string) error
	kind string
}

var loaders = []loader{
	{ConfigPathTOML, LoadTOML, "TOML"},
	{ConfigPathJSON, LoadJSON, "JSON"},
	{ConfigPathYAML, LoadYAML, "YAML"},
}

// Load loads configuration from the config directory.
// Tries TOML, then JSON, then YAML, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	var loadErr error

	for _, l := range loaders {
		path, err := l.path()
		if err != nil {
			break
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg := Default()
		if err := l.load(cfg, path); err != nil {
			loadErr = fmt.Errorf("failed to load %s config: %w", l.kind, err)
			continue
		}
		return finish(cfg)
	}

	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}
	// Defaults, with any load error for informational purposes
	return cfg, loadErr
}

// finish applies env overrides, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	warnPermissions(path)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	warnPermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadYAML loads configuration from a YAML file.
func LoadYAML(cfg *Config, path string) error {
	warnPermissions(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return nil
}

func warnPermissions(path string) {
	// Permissions might not be fixable on all systems
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
}

// LoadFromPath loads configuration from a specific file with full validation.
// The format follows the extension; anything unrecognized is read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = LoadJSON(cfg, path)
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Config files are written 0600.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# baatcheet configuration file\n")
	b.WriteString("# Generated by baatcheet - edit with care\n\n")
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return write(path, []byte(b.String()))
}

// SaveJSON saves the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return write(path, data)
}

// SaveYAML saves the configuration to a YAML file.
func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return write(path, data)
}

// RELIABILITY: Atomic write with fsync prevents data loss on crash
func write(path string, data []byte) error {
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// ==========================================================================
	// API
	// ==========================================================================

	u, err := url.Parse(c.API.BaseURL)
	switch {
	case err != nil:
		add("api.base_url", "invalid URL: %v", err)
	case u.Scheme != "http" && u.Scheme != "https":
		add("api.base_url", "scheme must be http or https, got '%s'", u.Scheme)
	case u.Host == "":
		add("api.base_url", "missing host")
	}

	if c.API.APIPrefix != "" && !strings.HasPrefix(c.API.APIPrefix, "/") {
		add("api.api_prefix", "must start with '/', got '%s'", c.API.APIPrefix)
	}

	timeouts := []struct {
		field string
		secs  int
	}{
		{"api.timeout_secs", c.API.TimeoutSecs},
		{"api.upload_timeout_secs", c.API.UploadTimeoutSecs},
		{"api.image_timeout_secs", c.API.ImageTimeoutSecs},
	}
	for _, t := range timeouts {
		if t.secs < 1 || t.secs > 3600 {
			add(t.field, "must be 1-3600, got %d", t.secs)
		}
	}

	if c.API.MaxRequestsPerSecond < 0 {
		add("api.max_requests_per_second", "cannot be negative")
	}

	if b := c.API.Breaker; b.Enabled {
		if b.FailureRatio <= 0 || b.FailureRatio > 1 {
			add("api.breaker.failure_ratio", "must be in (0.0, 1.0], got %g", b.FailureRatio)
		}
		if b.MinRequests < 1 {
			add("api.breaker.min_requests", "must be at least 1, got %d", b.MinRequests)
		}
		if b.OpenSecs < 1 {
			add("api.breaker.open_secs", "must be at least 1, got %d", b.OpenSecs)
		}
	}

	// ==========================================================================
	// Credentials
	// ==========================================================================

	switch c.Credentials.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
	default:
		add("credentials.backend", "invalid backend '%s', must be one of: memory, file, sqlite", c.Credentials.Backend)
	}

	// ==========================================================================
	// Logging
	// ==========================================================================

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("logging.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		add("logging.format", "invalid format '%s', must be one of: console, json", c.Logging.Format)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills missing or zero-value fields from Default and derives
// per-backend paths.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	if c.API.APIPrefix == "" {
		c.API.APIPrefix = d.API.APIPrefix
	}
	if c.API.TimeoutSecs == 0 {
		c.API.TimeoutSecs = d.API.TimeoutSecs
	}
	if c.API.UploadTimeoutSecs == 0 {
		c.API.UploadTimeoutSecs = d.API.UploadTimeoutSecs
	}
	if c.API.ImageTimeoutSecs == 0 {
		c.API.ImageTimeoutSecs = d.API.ImageTimeoutSecs
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = d.API.UserAgent
	}
	if c.API.Breaker.FailureRatio == 0 {
		c.API.Breaker.FailureRatio = d.API.Breaker.FailureRatio
	}
	if c.API.Breaker.MinRequests == 0 {
		c.API.Breaker.MinRequests = d.API.Breaker.MinRequests
	}
	if c.API.Breaker.OpenSecs == 0 {
		c.API.Breaker.OpenSecs = d.API.Breaker.OpenSecs
	}

	if c.Credentials.Backend == "" {
		c.Credentials.Backend = d.Credentials.Backend
	}
	c.Credentials.Backend = strings.ToLower(c.Credentials.Backend)
	if c.Credentials.Path == "" {
		switch c.Credentials.Backend {
		case BackendFile:
			c.Credentials.Path = defaultPath("credentials.json")
		case BackendSQLite:
			c.Credentials.Path = defaultPath("credentials.db")
		}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}

	if c.Chat.HistoryFile == "" {
		c.Chat.HistoryFile = defaultPath("history")
	}
}

func defaultPath(name string) string {
	p, err := configPath(name)
	if err != nil {
		return name
	}
	return p
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - BAATCHEET_BASE_URL: overrides api.base_url
//   - BAATCHEET_API_PREFIX: overrides api.api_prefix
//   - BAATCHEET_TIMEOUT: overrides api.timeout_secs
//   - BAATCHEET_CREDENTIALS: overrides credentials.backend
//   - BAATCHEET_CREDENTIALS_PATH: overrides credentials.path
//   - BAATCHEET_LOG_LEVEL: overrides logging.level
//   - BAATCHEET_LOG_FORMAT: overrides logging.format
//   - BAATCHEET_MODE: overrides chat.default_mode
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("BAATCHEET_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("BAATCHEET_API_PREFIX"); v != "" {
		c.API.APIPrefix = v
	}
	if v := os.Getenv("BAATCHEET_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.API.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("BAATCHEET_CREDENTIALS"); v != "" {
		c.Credentials.Backend = v
	}
	if v := os.Getenv("BAATCHEET_CREDENTIALS_PATH"); v != "" {
		c.Credentials.Path = v
	}
	if v := os.Getenv("BAATCHEET_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("BAATCHEET_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("BAATCHEET_MODE"); v != "" {
		c.Chat.DefaultMode = v
	}
}

// Passphrase returns the credential store passphrase from the configured
// environment variable, or "" when none is set.
func (c *Config) Passphrase() string {
	if c.Credentials.PassphraseEnv == "" {
		return ""
	}
	return os.Getenv(c.Credentials.PassphraseEnv)
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "api.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "logging.level").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the struct by toml tag.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(lower == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"api.base_url",
		"api.api_prefix",
		"api.timeout_secs",
		"api.upload_timeout_secs",
		"api.image_timeout_secs",
		"api.max_requests_per_second",
		"api.user_agent",
		"api.breaker.enabled",
		"api.breaker.failure_ratio",
		"api.breaker.min_requests",
		"api.breaker.open_secs",
		"credentials.backend",
		"credentials.path",
		"credentials.passphrase_env",
		"logging.level",
		"logging.format",
		"chat.default_mode",
		"chat.history_file",
	}
}

// Clone returns a copy of the configuration. Config holds no reference
// types, so a value copy is deep.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as indented JSON for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
