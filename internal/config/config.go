package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	PageSpeed PageSpeedConfig `yaml:"pagespeed" mapstructure:"pagespeed"`
	OpenAI    OpenAIConfig    `yaml:"openai" mapstructure:"openai"`
	Insight   InsightConfig   `yaml:"insight" mapstructure:"insight"`
	Profile   ProfileConfig   `yaml:"profile" mapstructure:"profile"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PageSpeedConfig holds PageSpeed Insights API settings. An empty key
// disables performance scoring entirely.
type PageSpeedConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// OpenAIConfig holds the text-generation service settings.
type OpenAIConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// InsightConfig configures insight prompt construction. CategoryPrompts
// maps a business primary category to a full prompt template that
// replaces the default prompt for that category.
type InsightConfig struct {
	CategoryPrompts map[string]string `yaml:"category_prompts" mapstructure:"category_prompts"`
}

// ProfileConfig describes the operator running the searches; it biases
// the insight prompt toward their services.
type ProfileConfig struct {
	BusinessType string   `yaml:"business_type" mapstructure:"business_type"`
	ServiceAreas []string `yaml:"service_areas" mapstructure:"service_areas"`
}

// EnrichConfig configures the enrichment worker pool and the inspector.
type EnrichConfig struct {
	Concurrency     int `yaml:"concurrency" mapstructure:"concurrency"`
	MaxRetries      int `yaml:"max_retries" mapstructure:"max_retries"`
	NavTimeoutSecs  int `yaml:"nav_timeout_secs" mapstructure:"nav_timeout_secs"`
	TLSTimeoutSecs  int `yaml:"tls_timeout_secs" mapstructure:"tls_timeout_secs"`
	CallTimeoutSecs int `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
}

// SearchConfig configures discovery pagination.
type SearchConfig struct {
	DefaultCount  int     `yaml:"default_count" mapstructure:"default_count"`
	PageDelaySecs float64 `yaml:"page_delay_secs" mapstructure:"page_delay_secs"`
	MaxPages      int     `yaml:"max_pages" mapstructure:"max_pages"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadgen.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("pagespeed.base_url", "https://www.googleapis.com/pagespeedonline/v5")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4o-mini-search-preview")
	v.SetDefault("openai.max_tokens", 1500)
	v.SetDefault("profile.business_type", "Digital Marketer")
	v.SetDefault("enrich.concurrency", 5)
	v.SetDefault("enrich.max_retries", 2)
	v.SetDefault("enrich.nav_timeout_secs", 20)
	v.SetDefault("enrich.tls_timeout_secs", 10)
	v.SetDefault("enrich.call_timeout_secs", 60)
	v.SetDefault("search.default_count", 2)
	v.SetDefault("search.page_delay_secs", 2.0)
	v.SetDefault("search.max_pages", 3)

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
