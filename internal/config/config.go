package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	AI         AIConfig         `yaml:"ai" mapstructure:"ai"`
	Security   SecurityConfig   `yaml:"security" mapstructure:"security"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the lead database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	HaikuModel  string `yaml:"haiku_model" mapstructure:"haiku_model"`
	SonnetModel string `yaml:"sonnet_model" mapstructure:"sonnet_model"`
}

// AIConfig configures the model-backed extraction pipeline.
type AIConfig struct {
	BatchSize       int     `yaml:"batch_size" mapstructure:"batch_size"`
	MaxTokens       int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	CostThreshold   float64 `yaml:"cost_threshold" mapstructure:"cost_threshold"`
	EnableFallback  bool    `yaml:"enable_fallback" mapstructure:"enable_fallback"`
	EnableCaching   bool    `yaml:"enable_caching" mapstructure:"enable_caching"`
	RequestTimeout  int     `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	BatchIntervalMS int     `yaml:"batch_interval_ms" mapstructure:"batch_interval_ms"`
	CacheTTLMinutes int     `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
}

// RequestTimeoutDuration returns the per-request timeout.
func (c AIConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// BatchInterval returns the fixed delay between extraction batches.
func (c AIConfig) BatchInterval() time.Duration {
	return time.Duration(c.BatchIntervalMS) * time.Millisecond
}

// CacheTTL returns the result-cache time to live.
func (c AIConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// SecurityConfig configures the input validation gate and audit log.
type SecurityConfig struct {
	MaxInputBytes      int     `yaml:"max_input_bytes" mapstructure:"max_input_bytes"`
	MaxLineLength      int     `yaml:"max_line_length" mapstructure:"max_line_length"`
	ControlCharRatio   float64 `yaml:"control_char_ratio" mapstructure:"control_char_ratio"`
	AuditRetentionDays int     `yaml:"audit_retention_days" mapstructure:"audit_retention_days"`
}

// AuditRetention returns the audit-log retention window.
func (c SecurityConfig) AuditRetention() time.Duration {
	return time.Duration(c.AuditRetentionDays) * 24 * time.Hour
}

// SalesforceConfig holds Salesforce JWT auth settings for lead export.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// ServerConfig configures the intake HTTP server.
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
	v.SetEnvPrefix("LEADINTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.haiku_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.sonnet_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("ai.batch_size", 25)
	v.SetDefault("ai.max_tokens", 4096)
	v.SetDefault("ai.cost_threshold", 1.00)
	v.SetDefault("ai.enable_fallback", true)
	v.SetDefault("ai.enable_caching", true)
	v.SetDefault("ai.request_timeout_secs", 60)
	v.SetDefault("ai.batch_interval_ms", 1000)
	v.SetDefault("ai.cache_ttl_minutes", 30)
	v.SetDefault("security.max_input_bytes", 1<<20)
	v.SetDefault("security.max_line_length", 10000)
	v.SetDefault("security.control_char_ratio", 0.10)
	v.SetDefault("security.audit_retention_days", 90)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")

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
