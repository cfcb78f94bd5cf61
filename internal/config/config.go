package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Insights   InsightsConfig   `yaml:"insights" mapstructure:"insights"`
	Resilience ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
	Postal     PostalConfig     `yaml:"postal" mapstructure:"postal"`
}

// StoreConfig configures the marketplace read store.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int    `yaml:"max_conns" mapstructure:"max_conns"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DiscoveryConfig configures proximity search defaults and tier ordering.
type DiscoveryConfig struct {
	DefaultRadiusMiles float64 `yaml:"default_radius_miles" mapstructure:"default_radius_miles"`
	MaxRadiusMiles     float64 `yaml:"max_radius_miles" mapstructure:"max_radius_miles"`
	DefaultLimit       int     `yaml:"default_limit" mapstructure:"default_limit"`
	MaxLimit           int     `yaml:"max_limit" mapstructure:"max_limit"`

	// TierPriority maps vertical -> display tier -> priority (lower is shown first).
	// Verticals without an entry use the "default" mapping.
	TierPriority map[string]map[string]int `yaml:"tier_priority" mapstructure:"tier_priority"`
}

// InsightsConfig configures the tiered location analytics.
type InsightsConfig struct {
	DefaultLookbackDays  int     `yaml:"default_lookback_days" mapstructure:"default_lookback_days"`
	BasicMaxLookbackDays int     `yaml:"basic_max_lookback_days" mapstructure:"basic_max_lookback_days"`
	ProMaxLookbackDays   int     `yaml:"pro_max_lookback_days" mapstructure:"pro_max_lookback_days"`
	MissingMarketsMiles  float64 `yaml:"missing_markets_miles" mapstructure:"missing_markets_miles"`
	MissingMarketsLimit  int     `yaml:"missing_markets_limit" mapstructure:"missing_markets_limit"`
	CoverageGapDays      int     `yaml:"coverage_gap_days" mapstructure:"coverage_gap_days"`
	CoverageGapLimit     int     `yaml:"coverage_gap_limit" mapstructure:"coverage_gap_limit"`
	RatePerSec           float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst                int     `yaml:"burst" mapstructure:"burst"`
}

// ResilienceConfig configures the circuit breaker on the spatial index and
// retries on enrichment fetches.
type ResilienceConfig struct {
	FailureThreshold int     `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int     `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// PostalConfig configures the postal-code directory backend.
type PostalConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VENDORGEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("discovery.default_radius_miles", 25.0)
	v.SetDefault("discovery.max_radius_miles", 100.0)
	v.SetDefault("discovery.default_limit", 20)
	v.SetDefault("discovery.max_limit", 100)
	v.SetDefault("discovery.tier_priority", map[string]map[string]int{
		"default": {"featured": 1, "premium": 2, "standard": 3},
	})
	v.SetDefault("insights.default_lookback_days", 30)
	v.SetDefault("insights.basic_max_lookback_days", 30)
	v.SetDefault("insights.pro_max_lookback_days", 90)
	v.SetDefault("insights.missing_markets_miles", 25.0)
	v.SetDefault("insights.missing_markets_limit", 10)
	v.SetDefault("insights.coverage_gap_days", 30)
	v.SetDefault("insights.coverage_gap_limit", 10)
	v.SetDefault("insights.rate_per_sec", 5.0)
	v.SetDefault("insights.burst", 10)
	v.SetDefault("resilience.failure_threshold", 5)
	v.SetDefault("resilience.reset_timeout_secs", 30)
	v.SetDefault("resilience.max_attempts", 2)
	v.SetDefault("resilience.initial_backoff_ms", 100)
	v.SetDefault("resilience.max_backoff_ms", 1000)
	v.SetDefault("resilience.multiplier", 2.0)
	v.SetDefault("resilience.jitter_fraction", 0.25)
	v.SetDefault("postal.driver", "sqlite")
	v.SetDefault("postal.path", "postal.db")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for the given run mode ("serve", "search",
// "insights" or "postal") and reports every problem at once.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "serve", "search", "insights":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	case "postal":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if mode == "serve" && c.Server.Port <= 0 {
		errs = append(errs, "server.port must be > 0")
	}
	if mode == "serve" || mode == "insights" || mode == "postal" {
		switch c.Postal.Driver {
		case "sqlite":
			if c.Postal.Path == "" {
				errs = append(errs, "postal.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" && mode == "postal" {
				errs = append(errs, "store.database_url is required for the postgres postal driver")
			}
		default:
			errs = append(errs, fmt.Sprintf("postal.driver must be sqlite or postgres, got %q", c.Postal.Driver))
		}
	}

	d := c.Discovery
	if d.DefaultRadiusMiles <= 0 || d.DefaultRadiusMiles > d.MaxRadiusMiles {
		errs = append(errs, "discovery.default_radius_miles must be > 0 and <= max_radius_miles")
	}
	if d.DefaultLimit <= 0 || d.DefaultLimit > d.MaxLimit {
		errs = append(errs, "discovery.default_limit must be > 0 and <= max_limit")
	}

	in := c.Insights
	if in.BasicMaxLookbackDays <= 0 || in.ProMaxLookbackDays < in.BasicMaxLookbackDays {
		errs = append(errs, "insights lookback caps must satisfy 0 < basic <= pro")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
