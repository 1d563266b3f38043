// Package config loads triathlon-updates settings from defaults, an optional config
// file, TRIUPDATES_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eugeniobenito/Triathlon-Updates/internal/scraper"
	"github.com/spf13/viper"
)

const EnvPrefix = "TRIUPDATES"

// Keys shared by viper, the config file and flag bindings
const (
	KeyBaseURL       = "base_url"
	KeyYear          = "year"
	KeyDistance      = "distance"
	KeyDivision      = "division"
	KeyTrackedFile   = "tracked_file"
	KeyOutputDir     = "output_dir"
	KeyNewRacesFile  = "new_races_file"
	KeyUserAgent     = "user_agent"
	KeyTimeout       = "timeout"
	KeyWorkers       = "workers"
	KeyStrictPoints  = "strict_points"
	KeyUpdateTracked = "update_tracked"
	KeyNotify        = "notify"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
	KeyMetricsFile   = "metrics_file"
)

// Notifier names accepted by the notify key
const (
	NotifyNone     = ""
	NotifyDryRun   = "dry-run"
	NotifyTwitter  = "twitter"
	NotifyTelegram = "telegram"
)

// Config holds every runtime setting
type Config struct {
	BaseURL       string        `mapstructure:"base_url"`
	Year          int           `mapstructure:"year"`
	Distance      string        `mapstructure:"distance"`
	Division      string        `mapstructure:"division"`
	TrackedFile   string        `mapstructure:"tracked_file"`
	OutputDir     string        `mapstructure:"output_dir"`
	NewRacesFile  string        `mapstructure:"new_races_file"`
	UserAgent     string        `mapstructure:"user_agent"`
	Timeout       time.Duration `mapstructure:"timeout"`
	Workers       int           `mapstructure:"workers"`
	StrictPoints  bool          `mapstructure:"strict_points"`
	UpdateTracked bool          `mapstructure:"update_tracked"`
	Notify        string        `mapstructure:"notify"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
	MetricsFile   string        `mapstructure:"metrics_file"`
}

// New returns a viper instance with defaults and environment lookup configured
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyBaseURL, scraper.DefaultBaseURL)
	v.SetDefault(KeyYear, time.Now().Year())
	v.SetDefault(KeyDistance, "")
	v.SetDefault(KeyDivision, "BOTH")
	v.SetDefault(KeyTrackedFile, "tracked_races.json")
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyNewRacesFile, "new_races.json")
	v.SetDefault(KeyUserAgent, scraper.UserAgent)
	v.SetDefault(KeyTimeout, scraper.Timeout)
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyStrictPoints, false)
	v.SetDefault(KeyUpdateTracked, false)
	v.SetDefault(KeyNotify, NotifyNone)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyMetricsFile, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file and decodes v into a validated Config
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the values that cannot be defaulted silently
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base_url must not be empty")
	}
	if c.Year < 1900 {
		return fmt.Errorf("invalid year: %d", c.Year)
	}
	if c.TrackedFile == "" {
		return errors.New("tracked_file must not be empty")
	}
	if c.NewRacesFile == "" {
		return errors.New("new_races_file must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}

	switch c.Notify {
	case NotifyNone, NotifyDryRun, NotifyTwitter, NotifyTelegram:
	default:
		return fmt.Errorf("invalid notify: %s (must be dry-run, twitter or telegram)", c.Notify)
	}

	return nil
}

// ResultsIndexURL returns the results index page for the configured season
func (c *Config) ResultsIndexURL() string {
	return scraper.ResultsIndexURL(c.BaseURL, c.Year, c.Distance, c.Division)
}

// ScraperConfig returns the fetch and parse settings
func (c *Config) ScraperConfig() scraper.Config {
	return scraper.Config{
		BaseURL:      c.BaseURL,
		UserAgent:    c.UserAgent,
		Timeout:      c.Timeout,
		StrictPoints: c.StrictPoints,
	}
}
