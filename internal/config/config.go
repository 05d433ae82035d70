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
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Brave   BraveConfig   `yaml:"brave" mapstructure:"brave"`
	Search  SearchConfig  `yaml:"search" mapstructure:"search"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Scoring ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Lists   ListsConfig   `yaml:"lists" mapstructure:"lists"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Sheet   SheetConfig   `yaml:"sheet" mapstructure:"sheet"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`

	Monitoring MonitoringConfig `yaml:"monitoring" mapstructure:"monitoring"`
}

// BraveConfig holds Brave Search API settings.
type BraveConfig struct {
	Key        string  `yaml:"key" mapstructure:"key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	Count      int     `yaml:"count" mapstructure:"count"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	MaxRetries int     `yaml:"max_retries" mapstructure:"max_retries"`
}

// SearchConfig controls which query patterns run for each company.
type SearchConfig struct {
	Patterns []string          `yaml:"patterns" mapstructure:"patterns"`
	Custom   map[string]string `yaml:"custom" mapstructure:"custom"`
}

// FetchConfig configures outbound page fetches and liveness probes.
type FetchConfig struct {
	UserAgent         string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ProbeTimeoutSecs  int     `yaml:"probe_timeout_secs" mapstructure:"probe_timeout_secs"`
	MaxInFlight       int     `yaml:"max_in_flight" mapstructure:"max_in_flight"`
	PerHostRPS        float64 `yaml:"per_host_rps" mapstructure:"per_host_rps"`
	MaxBodyBytes      int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	ContactPageLimit  int     `yaml:"contact_page_limit" mapstructure:"contact_page_limit"`
	DisableProbe      bool    `yaml:"disable_probe" mapstructure:"disable_probe"`
	DisableExtraction bool    `yaml:"disable_extraction" mapstructure:"disable_extraction"`
}

// ScoringConfig holds contribution weights and judgment thresholds.
// Penalties are stored as negative values.
type ScoringConfig struct {
	TopPageBonus               int     `yaml:"top_page_bonus" mapstructure:"top_page_bonus"`
	DomainExactBonus           int     `yaml:"domain_exact_bonus" mapstructure:"domain_exact_bonus"`
	DomainSimilarBonus         int     `yaml:"domain_similar_bonus" mapstructure:"domain_similar_bonus"`
	DomainExactThreshold       float64 `yaml:"domain_exact_threshold" mapstructure:"domain_exact_threshold"`
	DomainSimilarThreshold     float64 `yaml:"domain_similar_threshold" mapstructure:"domain_similar_threshold"`
	LowTrustTLDPenalty         int     `yaml:"low_trust_tld_penalty" mapstructure:"low_trust_tld_penalty"`
	OfficialKeywordBonus       int     `yaml:"official_keyword_bonus" mapstructure:"official_keyword_bonus"`
	SearchRankBonus            int     `yaml:"search_rank_bonus" mapstructure:"search_rank_bonus"`
	SearchRankMax              int     `yaml:"search_rank_max" mapstructure:"search_rank_max"`
	PathPenalty                int     `yaml:"path_penalty" mapstructure:"path_penalty"`
	LocalityRegionBonus        int     `yaml:"locality_region_bonus" mapstructure:"locality_region_bonus"`
	LocalityPhoneBonus         int     `yaml:"locality_phone_bonus" mapstructure:"locality_phone_bonus"`
	LocalityOtherRegionPenalty int     `yaml:"locality_other_region_penalty" mapstructure:"locality_other_region_penalty"`
	LocalityFallbackHigh       int     `yaml:"locality_fallback_high" mapstructure:"locality_fallback_high"`
	LocalityFallbackMedium     int     `yaml:"locality_fallback_medium" mapstructure:"locality_fallback_medium"`
	LocalityFallbackLow        int     `yaml:"locality_fallback_low" mapstructure:"locality_fallback_low"`
	PortalPenalty              int     `yaml:"portal_penalty" mapstructure:"portal_penalty"`
	ReachabilityPenalty        int     `yaml:"reachability_penalty" mapstructure:"reachability_penalty"`
	GeoMismatchHigh            int     `yaml:"geo_mismatch_high" mapstructure:"geo_mismatch_high"`
	GeoMismatchMedium          int     `yaml:"geo_mismatch_medium" mapstructure:"geo_mismatch_medium"`
	GeoMismatchLow             int     `yaml:"geo_mismatch_low" mapstructure:"geo_mismatch_low"`
	GenericWordPenalty         int     `yaml:"generic_word_penalty" mapstructure:"generic_word_penalty"`
	HeadMatchBonus             int     `yaml:"head_match_bonus" mapstructure:"head_match_bonus"`
	HeadMatchPortalBonus       int     `yaml:"head_match_portal_bonus" mapstructure:"head_match_portal_bonus"`
	HeadMissPortalPenalty      int     `yaml:"head_miss_portal_penalty" mapstructure:"head_miss_portal_penalty"`
	HeadMissPenalty            int     `yaml:"head_miss_penalty" mapstructure:"head_miss_penalty"`
	AutoAdoptThreshold         int     `yaml:"auto_adopt_threshold" mapstructure:"auto_adopt_threshold"`
	NeedsReviewThreshold       int     `yaml:"needs_review_threshold" mapstructure:"needs_review_threshold"`
	Concurrency                int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// ListsConfig points at an optional curated-list override file.
type ListsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentCompanies int  `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
	CacheLocations         bool `yaml:"cache_locations" mapstructure:"cache_locations"`
	Limit                  int  `yaml:"limit" mapstructure:"limit"`
}

// StoreConfig configures the result store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SheetConfig configures spreadsheet input and output.
type SheetConfig struct {
	SheetName     string `yaml:"sheet_name" mapstructure:"sheet_name"`
	SheetIndex    int    `yaml:"sheet_index" mapstructure:"sheet_index"`
	Encoding      string `yaml:"encoding" mapstructure:"encoding"`
	StartRow      int    `yaml:"start_row" mapstructure:"start_row"`
	IDCol         string `yaml:"id_col" mapstructure:"id_col"`
	PrefectureCol string `yaml:"prefecture_col" mapstructure:"prefecture_col"`
	IndustryCol   string `yaml:"industry_col" mapstructure:"industry_col"`
	NameCol       string `yaml:"name_col" mapstructure:"name_col"`
	OutputCol     string `yaml:"output_col" mapstructure:"output_col"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins     []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ShutdownTimeoutSec int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// MonitoringConfig holds post-run alerting thresholds.
type MonitoringConfig struct {
	WebhookURL         string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	ErrorRateThreshold float64 `yaml:"error_rate_threshold" mapstructure:"error_rate_threshold"`
	MinAdoptionRate    float64 `yaml:"min_adoption_rate" mapstructure:"min_adoption_rate"`
	MinCompanies       int     `yaml:"min_companies" mapstructure:"min_companies"`
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
	v.SetEnvPrefix("HPFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("brave.base_url", "https://api.search.brave.com")
	v.SetDefault("brave.count", 10)
	v.SetDefault("brave.rate_limit", 1.0)
	v.SetDefault("brave.max_retries", 3)
	v.SetDefault("search.patterns", []string{"basic", "official", "domain"})
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; hpfinder/1.0)")
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.probe_timeout_secs", 5)
	v.SetDefault("fetch.max_in_flight", 16)
	v.SetDefault("fetch.per_host_rps", 2.0)
	v.SetDefault("fetch.max_body_bytes", 1<<20)
	v.SetDefault("fetch.contact_page_limit", 3)
	v.SetDefault("scoring.top_page_bonus", 5)
	v.SetDefault("scoring.domain_exact_bonus", 5)
	v.SetDefault("scoring.domain_similar_bonus", 3)
	v.SetDefault("scoring.domain_exact_threshold", 95.0)
	v.SetDefault("scoring.domain_similar_threshold", 80.0)
	v.SetDefault("scoring.low_trust_tld_penalty", -3)
	v.SetDefault("scoring.official_keyword_bonus", 2)
	v.SetDefault("scoring.search_rank_bonus", 3)
	v.SetDefault("scoring.search_rank_max", 3)
	v.SetDefault("scoring.path_penalty", -2)
	v.SetDefault("scoring.locality_region_bonus", 2)
	v.SetDefault("scoring.locality_phone_bonus", 3)
	v.SetDefault("scoring.locality_other_region_penalty", -10)
	v.SetDefault("scoring.locality_fallback_high", 4)
	v.SetDefault("scoring.locality_fallback_medium", 3)
	v.SetDefault("scoring.locality_fallback_low", 2)
	v.SetDefault("scoring.portal_penalty", -100)
	v.SetDefault("scoring.reachability_penalty", -5)
	v.SetDefault("scoring.geo_mismatch_high", -30)
	v.SetDefault("scoring.geo_mismatch_medium", -20)
	v.SetDefault("scoring.geo_mismatch_low", -10)
	v.SetDefault("scoring.generic_word_penalty", -4)
	v.SetDefault("scoring.head_match_bonus", 5)
	v.SetDefault("scoring.head_match_portal_bonus", 2)
	v.SetDefault("scoring.head_miss_portal_penalty", -1)
	v.SetDefault("scoring.head_miss_penalty", -3)
	v.SetDefault("scoring.auto_adopt_threshold", 9)
	v.SetDefault("scoring.needs_review_threshold", 6)
	v.SetDefault("scoring.concurrency", 4)
	v.SetDefault("batch.max_concurrent_companies", 5)
	v.SetDefault("batch.cache_locations", true)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "hpfinder.db")
	v.SetDefault("sheet.sheet_index", 0)
	v.SetDefault("sheet.encoding", "utf-8")
	v.SetDefault("sheet.start_row", 2)
	v.SetDefault("sheet.id_col", "A")
	v.SetDefault("sheet.prefecture_col", "B")
	v.SetDefault("sheet.industry_col", "C")
	v.SetDefault("sheet.name_col", "D")
	v.SetDefault("sheet.output_col", "E")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("monitoring.error_rate_threshold", 0.2)
	v.SetDefault("monitoring.min_adoption_rate", 0.0)
	v.SetDefault("monitoring.min_companies", 10)

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

// Validate checks the settings a command depends on. Unknown commands only
// get the shared checks.
func (c *Config) Validate(command string) error {
	var errs []string

	if c.Batch.MaxConcurrentCompanies < 1 {
		errs = append(errs, "batch.max_concurrent_companies must be >= 1")
	}

	switch c.Store.Driver {
	case "sqlite", "postgres", "none":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be one of sqlite, postgres, none (got %q)", c.Store.Driver))
	}
	if c.Store.Driver != "none" && c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	switch command {
	case "run", "find":
		if c.Brave.Key == "" {
			errs = append(errs, "brave.key is required")
		}
		if c.Brave.Count < 1 || c.Brave.Count > 20 {
			errs = append(errs, "brave.count must be between 1 and 20")
		}
	case "serve":
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be between 1 and 65535")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
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
