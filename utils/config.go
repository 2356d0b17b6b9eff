package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ModeEmbedded  = "embedded"
	ModeDelegated = "delegated"

	// IndexFile is the embedded index, relative to the base path.
	IndexFile = "index.json"

	EnvPrefix = "SITE_SEARCH"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the configuration for the application
type Config struct {
	Site         string        `mapstructure:"site"`          // Origin of the site, e.g. https://example.com
	BasePath     string        `mapstructure:"base_path"`     // Where the site is served from
	Mode         string        `mapstructure:"mode"`          // embedded or delegated
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"` // Bound on every remote fetch
	Opener       string        `mapstructure:"opener"`        // Command to open a result URL with
	LogFile      string        `mapstructure:"log_file"`
	LogLevel     string        `mapstructure:"log_level"`
	PageURL      string        `mapstructure:"page_url"` // Search page URL; its q parameter seeds the widget
}

// ConfigDir is ~/.config/site_search.
func ConfigDir() string {
	homedir, _ := os.UserHomeDir()
	return path.Join(homedir, ".config", "site_search")
}

// SetDefaults registers every key so env variables and flags can
// override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("site", "")
	v.SetDefault("base_path", "/")
	v.SetDefault("mode", ModeEmbedded)
	v.SetDefault("fetch_timeout", 10*time.Second)
	v.SetDefault("opener", "xdg-open")
	v.SetDefault("log_file", path.Join(ConfigDir(), "debug.log"))
	v.SetDefault("log_level", "info")
	v.SetDefault("page_url", "")
}

// NewConfig reads the config file at configPath, if it exists, layered
// under SITE_SEARCH_* environment variables and any bound flags.
func NewConfig(v *viper.Viper, configPath string) (*Config, error) {
	if configPath == "" {
		configPath = path.Join(ConfigDir(), "config.yaml")
	}
	v.SetConfigFile(configPath)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to parse the config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings that have no usable fallback.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeEmbedded, ModeDelegated:
	default:
		return fmt.Errorf("%w: mode must be %q or %q, got %q", ErrInvalidConfig, ModeEmbedded, ModeDelegated, c.Mode)
	}

	if _, err := c.BaseURL(); err != nil {
		return err
	}
	return nil
}

// BaseURL resolves the base path against the site. The result always
// ends in a slash. An absolute base path is used as is.
func (c *Config) BaseURL() (string, error) {
	site, err := url.Parse(c.Site)
	if err != nil || site.Host == "" || (site.Scheme != "http" && site.Scheme != "https") {
		return "", fmt.Errorf("%w: site must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.Site)
	}

	base := c.BasePath
	if base == "" {
		base = "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	ref, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("%w: base_path %q: %v", ErrInvalidConfig, c.BasePath, err)
	}
	return site.ResolveReference(ref).String(), nil
}

// IndexURL is where the embedded index is fetched from.
func (c *Config) IndexURL() (string, error) {
	base, err := c.BaseURL()
	if err != nil {
		return "", err
	}
	return base + IndexFile, nil
}
