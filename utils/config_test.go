package utils

import (
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := path.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestNewConfig_ReadsFile(t *testing.T) {
	p := writeConfig(t, strings.Join([]string{
		"site: https://example.com",
		"base_path: /blog",
		"mode: delegated",
		"fetch_timeout: 3s",
		"opener: open",
		"page_url: https://example.com/blog/search/?q=go",
	}, "\n"))

	cfg, err := NewConfig(viper.New(), p)

	require.NoError(t, err)
	assert.Equal(t, "https://example.com", cfg.Site)
	assert.Equal(t, ModeDelegated, cfg.Mode)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "open", cfg.Opener)
	assert.Equal(t, "https://example.com/blog/search/?q=go", cfg.PageURL)

	base, err := cfg.BaseURL()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/blog/", base)
}

func TestNewConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SITE_SEARCH_SITE", "https://example.com")

	cfg, err := NewConfig(viper.New(), path.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "/", cfg.BasePath)
	assert.Equal(t, ModeEmbedded, cfg.Mode)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNewConfig_EnvOverridesFile(t *testing.T) {
	p := writeConfig(t, "site: https://example.com\nmode: delegated\n")
	t.Setenv("SITE_SEARCH_MODE", "embedded")
	t.Setenv("SITE_SEARCH_FETCH_TIMEOUT", "250ms")

	cfg, err := NewConfig(viper.New(), p)

	require.NoError(t, err)
	assert.Equal(t, ModeEmbedded, cfg.Mode)
	assert.Equal(t, 250*time.Millisecond, cfg.FetchTimeout)
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown mode", content: "site: https://example.com\nmode: remote\n"},
		{name: "missing site", content: "mode: embedded\n"},
		{name: "relative site", content: "site: example.com\n"},
		{name: "non-http site", content: "site: ftp://example.com\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(viper.New(), writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewConfig_UnreadableFile(t *testing.T) {
	p := writeConfig(t, "site: [unterminated\n")

	_, err := NewConfig(viper.New(), p)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_BaseURL(t *testing.T) {
	tests := []struct {
		site, basePath, want string
	}{
		{"https://example.com", "", "https://example.com/"},
		{"https://example.com", "/", "https://example.com/"},
		{"https://example.com", "/blog", "https://example.com/blog/"},
		{"https://example.com", "/blog/", "https://example.com/blog/"},
		{"https://example.com/", "docs", "https://example.com/docs/"},
		{"https://example.com/site/", "docs/", "https://example.com/site/docs/"},
		{"https://example.com", "https://cdn.example.com/search", "https://cdn.example.com/search/"},
	}
	for _, tt := range tests {
		t.Run(tt.site+" "+tt.basePath, func(t *testing.T) {
			cfg := &Config{Site: tt.site, BasePath: tt.basePath}

			got, err := cfg.BaseURL()

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_IndexURL(t *testing.T) {
	cfg := &Config{Site: "https://example.com", BasePath: "/blog"}

	got, err := cfg.IndexURL()

	require.NoError(t, err)
	assert.Equal(t, "https://example.com/blog/index.json", got)

	_, err = (&Config{}).IndexURL()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewLogger(t *testing.T) {
	logFile := path.Join(t.TempDir(), "logs", "debug.log")

	logger, err := NewLogger(logFile, "debug")
	require.NoError(t, err)
	logger.Debug("index loaded")
	_ = logger.Sync()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"index loaded"`)
	assert.Contains(t, string(data), `"level":"debug"`)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(path.Join(t.TempDir(), "debug.log"), "loud")
	assert.Error(t, err)
}
