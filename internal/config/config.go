// Package config loads process settings and detector thresholds from YAML
// and NOTECOLOR_* environment variables.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"github.com/ironsheep/notecolor-mcp/internal/detection"
)

// EnvPrefix prefixes every environment override, e.g.
// NOTECOLOR_DETECTOR_INK_CUTOFF=150 or NOTECOLOR_SERVER_LOG_MODE=production.
const EnvPrefix = "NOTECOLOR"

type Config struct {
	Server   ServerConfig     `mapstructure:"server"`
	Detector detection.Params `mapstructure:"detector"`
	Pages    PagesConfig      `mapstructure:"pages"`
}

type ServerConfig struct {
	LogMode string `mapstructure:"log_mode"` // "development" or "production"
}

type PagesConfig struct {
	Workers   int `mapstructure:"workers"`    // parallel pages, 0 = GOMAXPROCS
	CacheSize int `mapstructure:"cache_size"` // decoded pages kept, 0 = unbounded
}

// Load reads the YAML file at path, applies defaults for every key and
// environment overrides on top. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault is Load for the command line. A file named by path must
// load: on failure the Config is nil. Without a file, settings that fail to
// load (a bad environment override) fall back to Default, and the failure is
// returned alongside so the caller can report it.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil || path != "" {
		return cfg, err
	}
	return Default(), err
}

// Default returns the built-in settings without reading a file or the
// environment.
func Default() *Config {
	return &Config{
		Server:   ServerConfig{LogMode: "development"},
		Detector: detection.DefaultParams(),
		Pages:    PagesConfig{Workers: 0, CacheSize: 16},
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Server.LogMode {
	case "development", "production":
	default:
		return fmt.Errorf("server.log_mode %q: want development or production", c.Server.LogMode)
	}
	if c.Pages.Workers < 0 || c.Pages.CacheSize < 0 {
		return fmt.Errorf("pages: workers (%d) and cache_size (%d) must not be negative", c.Pages.Workers, c.Pages.CacheSize)
	}
	d := c.Detector
	if d.InkCutoff == 0 {
		return fmt.Errorf("detector.ink_cutoff must be positive")
	}
	if d.MinSpacing <= 0 || d.StaffTargetWidth <= 0 || len(d.StaffThresholds) == 0 {
		return fmt.Errorf("detector: min_spacing, staff_target_width and staff_thresholds are required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("server.log_mode", def.Server.LogMode)
	v.SetDefault("pages.workers", def.Pages.Workers)
	v.SetDefault("pages.cache_size", def.Pages.CacheSize)

	// One default per detector threshold, keyed by its mapstructure tag, so
	// every threshold can be overridden from the environment.
	rv := reflect.ValueOf(def.Detector)
	rt := rv.Type()
	for i := range rt.NumField() {
		tag := rt.Field(i).Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		v.SetDefault("detector."+tag, rv.Field(i).Interface())
	}
}
