package internal

import (
	"fmt"
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/analyzer"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Site     SiteConfig        `yaml:"site"`
	Docs     DocsConfig        `yaml:"docs"`
	Suggest  SuggestConfig     `yaml:"suggest"`
	Analyzer analyzer.Limits   `yaml:"analyzer"`
	Sitemap  SitemapConfig     `yaml:"sitemap"`
	Robots   RobotsConfig      `yaml:"robots"`
	Cache    CacheConfig       `yaml:"cache"`
	Serve    ServeConfig       `yaml:"serve"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Docs.Validate(); err != nil {
		return err
	}
	if err := c.Suggest.Validate(); err != nil {
		return err
	}
	return c.Serve.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// Workers bounds concurrent document processing in batch runs.
	Workers int `yaml:"workers"`
}

// SiteConfig identifies the documentation site the artifacts are built for.
type SiteConfig struct {
	// URL is the site base URL, e.g. https://docs.example.com.
	URL    string `yaml:"url"`
	Author string `yaml:"author"`
	// Locales lists the non-default locales that get their own sitemap
	// entries (e.g. ["zh-Hans", "ja"]).
	Locales []string `yaml:"locales"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
	)
}

// DocsConfig holds the documentation tree layout and keyword rules.
type DocsConfig struct {
	// Path is the root of the Markdown tree.
	Path string `yaml:"path"`
	// StaticPath receives sitemap_index.xml and robots.txt.
	StaticPath string `yaml:"static_path"`
	// OutputPath receives analysis and run reports.
	OutputPath string `yaml:"output_path"`
	// GlossaryDirs are directories whose documents are terminology entries
	// (structuredData type DefinedTerm instead of Article).
	GlossaryDirs []string `yaml:"glossary_dirs"`
	// DirectoryKeywords maps a directory name to keywords every document
	// below it inherits.
	DirectoryKeywords map[string][]string `yaml:"directory_keywords"`
	// BaseKeywords are appended to every document's keyword candidates.
	BaseKeywords []string `yaml:"base_keywords"`
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.StaticPath, validation.Required),
		validation.Field(&c.OutputPath, validation.Required),
	)
}

// SuggestConfig holds the remote metadata suggester settings.
//
// APIKeyEnv names the environment variable holding the key, so the config
// file itself never carries a secret.
type SuggestConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxAttempts    int    `yaml:"max_attempts"`
}

// Validate validates the suggest configuration.
func (c *SuggestConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoint, validation.Required),
		validation.Field(&c.APIKeyEnv, validation.Required),
	)
}

// APIKey resolves the key from the configured environment variable.
func (c *SuggestConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// SitemapConfig controls sitemap index generation.
type SitemapConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RobotsConfig controls robots.txt generation.
type RobotsConfig struct {
	Enabled       bool     `yaml:"enabled"`
	AllowAll      bool     `yaml:"allow_all"`
	DisallowPaths []string `yaml:"disallow_paths"`
}

// CacheConfig holds the suggestion cache database location. An empty path
// disables the cache and run history.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// ServeConfig holds the report server settings.
type ServeConfig struct {
	HTTP HTTPConfig `yaml:"http"`
	Auth AuthConfig `yaml:"auth"`
}

// Validate validates the serve configuration.
func (c *ServeConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// AuthConfig holds authentication configuration for the report server.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			Workers:  4,
		},
		Site: SiteConfig{
			URL: "https://docs.example.com",
		},
		Docs: DocsConfig{
			Path:       "./docs",
			StaticPath: "./static",
			OutputPath: "./output",
		},
		Suggest: SuggestConfig{
			Model:          "gpt-4o",
			APIKeyEnv:      "OPENAI_API_KEY",
			TimeoutSeconds: 60,
			MaxAttempts:    3,
		},
		Analyzer: analyzer.DefaultLimits(),
		Sitemap:  SitemapConfig{Enabled: true},
		Robots:   RobotsConfig{Enabled: true, AllowAll: true},
		Cache: CacheConfig{
			Path: "./ansuz.db",
		},
		Serve: ServeConfig{
			HTTP: HTTPConfig{Port: 8080},
			Auth: AuthConfig{Mode: AuthModeDisabled},
		},
	}
}
