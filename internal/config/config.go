// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the CLI reads, e.g. HIREDOOR_API_URL.
const EnvPrefix = "HIREDOOR"

const (
	DefaultAPIURL            = "http://localhost:3030"
	DefaultRedirectPort      = 53682
	DefaultRequestsPerSecond = 5.0
	DefaultBurst             = 5
	defaultDataDirName       = ".hiredoor"
)

// AuthConfig holds the OAuth client settings of the identity provider.
type AuthConfig struct {
	ClientID     string   `mapstructure:"client_id"`     // OAuth client ID
	AuthURL      string   `mapstructure:"auth_url"`      // Authorization endpoint
	TokenURL     string   `mapstructure:"token_url"`     // Token endpoint
	RedirectPort int      `mapstructure:"redirect_port"` // Loopback port for the sign-in callback
	Scopes       []string `mapstructure:"scopes"`
}

// Config represents the CLI configuration.
// Values come from flags, HIREDOOR_* environment variables, an optional config file
// and the defaults, in that order of priority.
type Config struct {
	APIURL  string     `mapstructure:"api_url"`  // Backend base URL
	DataDir string     `mapstructure:"data_dir"` // Directory holding the local preferences database
	Auth    AuthConfig `mapstructure:"auth"`

	// Limits
	RequestsPerSecond float64 `mapstructure:"requests_per_second"` // Outbound API rate
	Burst             int     `mapstructure:"burst"`

	Verbose bool `mapstructure:"verbose"` // Print detailed debug information
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	dataDir := defaultDataDirName
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, defaultDataDirName)
	}
	return Config{
		APIURL:  DefaultAPIURL,
		DataDir: dataDir,
		Auth: AuthConfig{
			RedirectPort: DefaultRedirectPort,
			Scopes:       []string{"openid", "email", "profile"},
		},
		RequestsPerSecond: DefaultRequestsPerSecond,
		Burst:             DefaultBurst,
	}
}

// SetDefaults registers the built-in values on v so that unset keys still resolve.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("api_url", d.APIURL)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("auth.client_id", "")
	v.SetDefault("auth.auth_url", "")
	v.SetDefault("auth.token_url", "")
	v.SetDefault("auth.redirect_port", d.Auth.RedirectPort)
	v.SetDefault("auth.scopes", d.Auth.Scopes)
	v.SetDefault("requests_per_second", d.RequestsPerSecond)
	v.SetDefault("burst", d.Burst)
	v.SetDefault("verbose", false)
}

// NewViper returns a viper instance reading HIREDOOR_* variables, with nested keys
// mapped by underscore (auth.client_id is HIREDOOR_AUTH_CLIENT_ID).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// ReadFile merges a JSON or YAML config file into v. A missing default file is not an error
// when path is empty.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigName(".hiredoor")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				return nil
			}
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// Load decodes the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Missing auth settings are allowed here and reported when sign-in is attempted.
func (c *Config) Validate() error {
	if err := validateHTTPURL("api_url", c.APIURL); err != nil {
		return err
	}
	if c.Auth.AuthURL != "" {
		if err := validateHTTPURL("auth.auth_url", c.Auth.AuthURL); err != nil {
			return err
		}
	}
	if c.Auth.TokenURL != "" {
		if err := validateHTTPURL("auth.token_url", c.Auth.TokenURL); err != nil {
			return err
		}
	}

	if c.Auth.RedirectPort < 0 || c.Auth.RedirectPort > 65535 {
		return fmt.Errorf("config error: 'auth.redirect_port' must be between 0 and 65535")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("config error: 'requests_per_second' must be non-negative")
	}
	if c.Burst < 0 {
		return fmt.Errorf("config error: 'burst' must be non-negative")
	}
	if c.DataDir == "" {
		return fmt.Errorf("config error: 'data_dir' must be set")
	}

	return nil
}

// ValidateAuth reports whether sign-in can be attempted.
func (c *Config) ValidateAuth() error {
	var missing []string
	if c.Auth.ClientID == "" {
		missing = append(missing, "auth.client_id")
	}
	if c.Auth.AuthURL == "" {
		missing = append(missing, "auth.auth_url")
	}
	if c.Auth.TokenURL == "" {
		missing = append(missing, "auth.token_url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config error: sign-in requires %s", strings.Join(missing, ", "))
	}
	return nil
}

func validateHTTPURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("config error: '%s' must be an absolute URL: %q", key, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config error: '%s' must use http or https: %q", key, raw)
	}
	return nil
}
