package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Config represents the application configuration
type Config struct {
	Profile ProfileConfig `json:"profile"`
	Strava  StravaConfig  `json:"strava"`
	Sync    SyncConfig    `json:"sync"`
	Logging LoggingConfig `json:"logging"`
}

// ProfileConfig holds the user's personal info
type ProfileConfig struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Gender       string  `json:"gender,omitempty"`
	Age          int     `json:"age,omitempty"`
	HeightInches int     `json:"height_inches,omitempty"`
	WeightPounds float64 `json:"weight_pounds"`
}

// StravaConfig holds Strava API credentials. Leave both empty to run without a sensor.
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Enabled reports whether sensor import is configured
func (s StravaConfig) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// SyncConfig points at the remote account archived shoe periods are sent to
type SyncConfig struct {
	Endpoint string `json:"endpoint"`
	Token    string `json:"token,omitempty"`
}

// Enabled reports whether archive sync is configured
func (s SyncConfig) Enabled() bool {
	return s.Endpoint != ""
}

// LoggingConfig controls the log file
type LoggingConfig struct {
	Level    string `json:"level"`
	File     string `json:"file"`
	ToStdout bool   `json:"to_stdout"`
	JSON     bool   `json:"json,omitempty"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

const (
	placeholderClientID     = "YOUR_CLIENT_ID"
	placeholderClientSecret = "YOUR_CLIENT_SECRET"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration from ~/.getsneaks/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.getsneaks/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to path
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	// holds API secrets
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists.
// It reports whether a file was written.
func CreateExample() (bool, error) {
	path, err := getConfigPath()
	if err != nil {
		return false, err
	}
	return CreateExampleAt(path)
}

// CreateExampleAt is CreateExample for an explicit path
func CreateExampleAt(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Profile = ProfileConfig{
		Name:         "Your Name",
		Email:        "you@example.com",
		WeightPounds: 150,
	}
	example.Strava = StravaConfig{
		ClientID:     placeholderClientID,
		ClientSecret: placeholderClientSecret,
	}

	return true, SaveTo(path, &example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Profile.Name) == "" {
		return errors.New("profile.name is required")
	}
	if c.Profile.WeightPounds <= 0 {
		return fmt.Errorf("profile.weight_pounds must be greater than 0, got %v", c.Profile.WeightPounds)
	}
	if c.Profile.Age < 0 || c.Profile.HeightInches < 0 {
		return errors.New("profile.age and profile.height_inches cannot be negative")
	}

	if c.Strava.ClientID == placeholderClientID || c.Strava.ClientSecret == placeholderClientSecret {
		return errors.New("strava credentials are still placeholders - set them from https://www.strava.com/settings/api or remove them to run without Strava")
	}
	if (c.Strava.ClientID == "") != (c.Strava.ClientSecret == "") {
		return errors.New("strava.client_id and strava.client_secret must be set together")
	}

	if c.Sync.Endpoint != "" {
		u, err := url.Parse(c.Sync.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("sync.endpoint must be an absolute http(s) URL, got %q", c.Sync.Endpoint)
		}
	}

	if c.Logging.Level != "" && !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("logging.level must be one of %s, got %q", strings.Join(logLevels, ", "), c.Logging.Level)
	}

	return nil
}

// LogFile returns the configured log file, defaulting to ~/.getsneaks/getsneaks.log
func (c *Config) LogFile() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "getsneaks.log"), nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".getsneaks"), nil
}
