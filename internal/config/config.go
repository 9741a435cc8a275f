package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is built once at
// process start and passed explicitly into every component that needs it.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Places     PlacesConfig     `yaml:"places" mapstructure:"places"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the job store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite | postgres | notion
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	PageDelaySecs int    `yaml:"page_delay_secs" mapstructure:"page_delay_secs"`
}

// NotionConfig holds the Notion integration token and database IDs for the
// notion-backed job store.
type NotionConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	JobsDB    string `yaml:"jobs_db" mapstructure:"jobs_db"`
	ResultsDB string `yaml:"results_db" mapstructure:"results_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings for lead export.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// ScrapeConfig configures the website contact scraper.
type ScrapeConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// BatchConfig configures the batch orchestrator.
type BatchConfig struct {
	Limit           int `yaml:"limit" mapstructure:"limit"`
	JobIntervalSecs int `yaml:"job_interval_secs" mapstructure:"job_interval_secs"`
	MaxCandidates   int `yaml:"max_candidates" mapstructure:"max_candidates"`
	MaxNewJobs      int `yaml:"max_new_jobs" mapstructure:"max_new_jobs"`
}

// ServerConfig configures the HTTP trigger server.
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
	v.SetDefault("store.path", "leadgen.db")
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("places.page_delay_secs", 2)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("scrape.timeout_secs", 8)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0")
	v.SetDefault("batch.limit", 5)
	v.SetDefault("batch.job_interval_secs", 1)
	v.SetDefault("batch.max_candidates", 60)
	v.SetDefault("batch.max_new_jobs", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

// Validate checks that the credentials required for pipeline commands are
// present. It runs at the operation boundary, before any provider call.
func (c *Config) Validate() error {
	if c.Places.Key == "" {
		return eris.New("config: places API key is required (LEADGEN_PLACES_KEY)")
	}
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return eris.New("config: store path is required for the sqlite driver")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return eris.New("config: store database URL is required for the postgres driver (LEADGEN_STORE_DATABASE_URL)")
		}
	case "notion":
		if c.Notion.Token == "" || c.Notion.JobsDB == "" || c.Notion.ResultsDB == "" {
			return eris.New("config: notion token, jobs_db and results_db are required for the notion driver")
		}
	default:
		return eris.Errorf("config: unknown store driver %q (valid: sqlite, postgres, notion)", c.Store.Driver)
	}
	return nil
}

// ValidateSalesforce checks the credentials needed for CRM export.
func (c *Config) ValidateSalesforce() error {
	if c.Salesforce.ClientID == "" || c.Salesforce.Username == "" || c.Salesforce.KeyPath == "" {
		return eris.New("config: salesforce client_id, username and key_path are required for export")
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
