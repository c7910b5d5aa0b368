package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by LoadFromEnv
const EnvPrefix = "IGSDK_"

// Config holds the settings an application needs to drive the Instagram client
type Config struct {
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`
	HTTP      HTTPConfig      `yaml:"http" json:"http"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// InstagramConfig holds the app credentials and the optional session.
// Empty Scope or MediaFields leave the client defaults in place.
type InstagramConfig struct {
	AppID       string   `yaml:"app_id" json:"app_id"`
	AppSecret   string   `yaml:"app_secret" json:"app_secret"`
	RedirectURI string   `yaml:"redirect_uri" json:"redirect_uri"`
	Scope       []string `yaml:"scope,omitempty" json:"scope,omitempty"`
	MediaFields []string `yaml:"media_fields,omitempty" json:"media_fields,omitempty"`
	AccessToken string   `yaml:"access_token,omitempty" json:"access_token,omitempty"`
	UserID      string   `yaml:"user_id,omitempty" json:"user_id,omitempty"`
}

// HTTPConfig holds transport settings
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// LoadFromEnv loads configuration from IGSDK_* environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv(EnvPrefix + "APP_ID"); v != "" {
		c.Instagram.AppID = v
	}
	if v := os.Getenv(EnvPrefix + "APP_SECRET"); v != "" {
		c.Instagram.AppSecret = v
	}
	if v := os.Getenv(EnvPrefix + "REDIRECT_URI"); v != "" {
		c.Instagram.RedirectURI = v
	}
	if v := os.Getenv(EnvPrefix + "SCOPE"); v != "" {
		c.Instagram.Scope = splitList(v)
	}
	if v := os.Getenv(EnvPrefix + "MEDIA_FIELDS"); v != "" {
		c.Instagram.MediaFields = splitList(v)
	}
	if v := os.Getenv(EnvPrefix + "ACCESS_TOKEN"); v != "" {
		c.Instagram.AccessToken = v
	}
	if v := os.Getenv(EnvPrefix + "USER_ID"); v != "" {
		c.Instagram.UserID = v
	}

	if v := os.Getenv(EnvPrefix + "HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sHTTP_TIMEOUT: %w", EnvPrefix, err)
		}
		c.HTTP.Timeout = d
	}

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "igsdk", "config.yaml")
}

func findConfigFile() string {
	locations := []string{
		".igsdk.yaml",
		".igsdk.yml",
		DefaultPath(),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// Validate checks settings every command depends on
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// RequireApp checks that the app credentials needed by the OAuth calls are set
func (c *Config) RequireApp() error {
	var errs []error
	if c.Instagram.AppID == "" {
		errs = append(errs, errors.New("instagram app_id is required"))
	}
	if c.Instagram.AppSecret == "" {
		errs = append(errs, errors.New("instagram app_secret is required"))
	}
	if c.Instagram.RedirectURI == "" {
		errs = append(errs, errors.New("instagram redirect_uri is required"))
	}
	return errors.Join(errs...)
}

// Sanitized returns a copy with secrets masked, for display
func (c *Config) Sanitized() *Config {
	out := *c
	out.Instagram.Scope = append([]string(nil), c.Instagram.Scope...)
	out.Instagram.MediaFields = append([]string(nil), c.Instagram.MediaFields...)
	out.Instagram.AppSecret = mask(c.Instagram.AppSecret)
	out.Instagram.AccessToken = mask(c.Instagram.AccessToken)
	return &out
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["app-id"].(string); ok && v != "" {
		c.Instagram.AppID = v
	}
	if v, ok := flags["app-secret"].(string); ok && v != "" {
		c.Instagram.AppSecret = v
	}
	if v, ok := flags["redirect-uri"].(string); ok && v != "" {
		c.Instagram.RedirectURI = v
	}
	if v, ok := flags["access-token"].(string); ok && v != "" {
		c.Instagram.AccessToken = v
	}
	if v, ok := flags["user-id"].(string); ok && v != "" {
		c.Instagram.UserID = v
	}
	if v, ok := flags["scope"].([]string); ok && len(v) > 0 {
		c.Instagram.Scope = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v > 0 {
		c.HTTP.Timeout = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igsdk.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
