package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/livetemplate/runblock"
	"gopkg.in/yaml.v3"
)

// Config represents the runblock configuration
type Config struct {
	Title     string          `yaml:"title"`
	Server    ServerConfig    `yaml:"server"`
	Highlight HighlightConfig `yaml:"highlight"`
	Features  FeaturesConfig  `yaml:"features"`
	API       *APIConfig      `yaml:"api,omitempty"`
	Ignore    []string        `yaml:"ignore"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port  int    `yaml:"port"`
	Host  string `yaml:"host"`
	Debug bool   `yaml:"debug"`
}

// HighlightConfig controls code block highlighting
type HighlightConfig struct {
	Style       string `yaml:"style"`        // chroma style name (e.g. "onedark", "dracula")
	LineNumbers bool   `yaml:"line_numbers"` // show line numbers in code blocks
	TabWidth    int    `yaml:"tab_width"`    // tab expansion width (default: 4)
}

// FeaturesConfig holds feature flags
type FeaturesConfig struct {
	HotReload   bool `yaml:"hot_reload"`  // re-render pages when .md files change
	Minify      bool `yaml:"minify"`      // minify embedded client assets
	Compression bool `yaml:"compression"` // gzip responses
}

// APIConfig holds JSON API configuration
type APIConfig struct {
	Enabled   bool             `yaml:"enabled"` // Enable /api endpoints (default: false)
	CORS      *CORSConfig      `yaml:"cors,omitempty"`
	RateLimit *RateLimitConfig `yaml:"rate_limit,omitempty"`
}

// CORSConfig holds CORS configuration for the API
type CORSConfig struct {
	Origins []string `yaml:"origins,omitempty"` // Allowed origins (e.g., ["http://localhost:3000", "*"])
}

// RateLimitConfig holds rate limiting configuration for the API
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"` // Rate limit in requests per second (default: 10)
	Burst             int     `yaml:"burst,omitempty"`               // Burst size (default: 20)
	MaxTrackedIPs     int     `yaml:"max_tracked_ips,omitempty"`     // LRU capacity of per-IP limiters (default: 10000)
}

// GetCORSOrigins returns the configured CORS origins, or nil if not configured
func (c *APIConfig) GetCORSOrigins() []string {
	if c == nil || c.CORS == nil {
		return nil
	}
	return c.CORS.Origins
}

// GetRateLimitRPS returns the rate limit in requests per second (default: 10)
func (c *APIConfig) GetRateLimitRPS() float64 {
	if c == nil || c.RateLimit == nil || c.RateLimit.RequestsPerSecond <= 0 {
		return 10
	}
	return c.RateLimit.RequestsPerSecond
}

// GetRateLimitBurst returns the burst size (default: 20)
func (c *APIConfig) GetRateLimitBurst() int {
	if c == nil || c.RateLimit == nil || c.RateLimit.Burst <= 0 {
		return 20
	}
	return c.RateLimit.Burst
}

// GetMaxTrackedIPs returns how many client IPs the rate limiter tracks (default: 10000)
func (c *APIConfig) GetMaxTrackedIPs() int {
	if c == nil || c.RateLimit == nil || c.RateLimit.MaxTrackedIPs <= 0 {
		return 10000
	}
	return c.RateLimit.MaxTrackedIPs
}

// IsAPIEnabled returns whether the API is enabled
func (c *Config) IsAPIEnabled() bool {
	return c.API != nil && c.API.Enabled
}

// RenderConfig converts the highlight section into renderer settings.
func (c *Config) RenderConfig() runblock.RenderConfig {
	cfg := runblock.DefaultRenderConfig()
	if c.Highlight.Style != "" {
		cfg.Style = c.Highlight.Style
	}
	cfg.LineNumbers = c.Highlight.LineNumbers
	if c.Highlight.TabWidth > 0 {
		cfg.TabWidth = c.Highlight.TabWidth
	}
	return cfg
}

// IsIgnored reports whether a path relative to the site root matches one of
// the ignore globs. A trailing "/**" matches everything below that directory.
func (c *Config) IsIgnored(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.Ignore {
		if dir, ok := strings.CutSuffix(pattern, "/**"); ok {
			if rel == dir || strings.HasPrefix(rel, dir+"/") {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		// Patterns without a slash also match the base name.
		if !strings.Contains(pattern, "/") {
			if ok, _ := filepath.Match(pattern, filepath.Base(rel)); ok {
				return true
			}
		}
	}
	return false
}

// Validate checks values that would otherwise fail late, at serve time.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Highlight.Style != "" {
		if _, ok := styles.Registry[strings.ToLower(c.Highlight.Style)]; !ok {
			return fmt.Errorf("highlight.style: unknown chroma style %q", c.Highlight.Style)
		}
	}
	if c.Highlight.TabWidth < 0 {
		return fmt.Errorf("highlight.tab_width cannot be negative")
	}
	for _, pattern := range c.Ignore {
		if _, err := filepath.Match(strings.TrimSuffix(pattern, "/**"), ""); err != nil {
			return fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Title: "Runblock",
		Server: ServerConfig{
			Port:  8080,
			Host:  "localhost",
			Debug: false,
		},
		Highlight: HighlightConfig{
			Style:    runblock.DefaultStyle,
			TabWidth: 4,
		},
		Features: FeaturesConfig{
			HotReload:   true,
			Minify:      true,
			Compression: true,
		},
		Ignore: []string{
			"drafts/**",
			"_*.md",
		},
	}
}

// Load loads configuration from a YAML file
// If the file doesn't exist, returns the default configuration
func Load(configPath string) (*Config, error) {
	// If no config path provided, use default
	if configPath == "" {
		return DefaultConfig(), nil
	}

	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	// Read the config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	config := DefaultConfig() // Start with defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return config, nil
}

// LoadFromDir looks for runblock.yaml, then rb.yaml (short form), in the
// given directory. If neither is found, returns the default configuration
func LoadFromDir(dir string) (*Config, error) {
	runblockPath := filepath.Join(dir, "runblock.yaml")
	if _, err := os.Stat(runblockPath); err == nil {
		return Load(runblockPath)
	}

	return Load(filepath.Join(dir, "rb.yaml"))
}

// Save writes the configuration to a YAML file
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
