package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"portfolio_reporter/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config/config.yml"

	DefaultBirdeyeBaseURL = "https://public-api.birdeye.so"
	DefaultCodexEndpoint  = "https://graph.codex.io/graphql"
	DefaultSOLAddress     = "So11111111111111111111111111111111111111112"
)

// ServerConfig holds the HTTP server configuration. Timeouts are in seconds.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// BirdeyeConfig holds the configuration for the Birdeye client.
type BirdeyeConfig struct {
	BaseURL string `yaml:"baseURL"`
}

// CodexConfig holds the configuration for the Codex GraphQL client.
type CodexConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// PortfolioConfig selects the balance provider used for valuation.
type PortfolioConfig struct {
	Provider string `yaml:"provider"` // "birdeye" or "codex"
}

// HTTPClientConfig holds configuration for the outbound retry client.
type HTTPClientConfig struct {
	MaxAttempts  int     `yaml:"maxAttempts"`
	RetryDelayMs int64   `yaml:"retryDelayMs"`
	TimeoutMs    int64   `yaml:"timeoutMs"`
	RateLimit    float64 `yaml:"rateLimit"` // requests per second, 0 disables limiting
	BurstLimit   int     `yaml:"burstLimit"`
}

// CacheConfig holds configuration for the TTL cache.
type CacheConfig struct {
	DefaultTTLSeconds      int `yaml:"defaultTTLSeconds"`
	SnapshotTTLSeconds     int `yaml:"snapshotTTLSeconds"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"` // 0 keeps eviction lazy
}

// ReferenceAssetsConfig holds the token addresses of the assets whose prices are reported.
// SOL_ADDRESS, BTC_ADDRESS and ETH_ADDRESS in the environment take precedence.
type ReferenceAssetsConfig struct {
	SOL string `yaml:"sol"`
	BTC string `yaml:"btc"`
	ETH string `yaml:"eth"`
}

// ReportConfig holds report presentation settings.
type ReportConfig struct {
	Title string `yaml:"title"`
}

// WalletsConfig points at the wallet list used for batch reports.
type WalletsConfig struct {
	File string `yaml:"file"`
}

// Config holds the overall configuration for the application.
type Config struct {
	Server          ServerConfig          `yaml:"server"`
	Network         string                `yaml:"network"` // network identifier, e.g. "solana"
	Logging         LoggingConfig         `yaml:"logging"`
	Birdeye         BirdeyeConfig         `yaml:"birdeye"`
	Codex           CodexConfig           `yaml:"codex"`
	Portfolio       PortfolioConfig       `yaml:"portfolio"`
	HTTPClient      HTTPClientConfig      `yaml:"httpClient"`
	Cache           CacheConfig           `yaml:"cache"`
	ReferenceAssets ReferenceAssetsConfig `yaml:"referenceAssets"`
	Report          ReportConfig          `yaml:"report"`
	Wallets         WalletsConfig         `yaml:"wallets"`
	Settings        map[string]string     `yaml:"settings"`
}

// Load reads the YAML configuration at path and applies defaults.
// A missing file is not an error: the defaults are used and a warning is logged.
func Load(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults", path)
	case err != nil:
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		logrus.Errorf("Invalid configuration in %s: %v", path, err)
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 60
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Network == "" {
		cfg.Network = "solana"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Birdeye.BaseURL == "" {
		cfg.Birdeye.BaseURL = DefaultBirdeyeBaseURL
		logrus.Infof("Birdeye.BaseURL not set, defaulting to %s", cfg.Birdeye.BaseURL)
	}
	if cfg.Codex.Endpoint == "" {
		cfg.Codex.Endpoint = DefaultCodexEndpoint
		logrus.Infof("Codex.Endpoint not set, defaulting to %s", cfg.Codex.Endpoint)
	}
	if cfg.Portfolio.Provider == "" {
		cfg.Portfolio.Provider = "birdeye"
		logrus.Infof("Portfolio.Provider not set, defaulting to %s", cfg.Portfolio.Provider)
	}
	cfg.Portfolio.Provider = strings.ToLower(strings.TrimSpace(cfg.Portfolio.Provider))
	if cfg.HTTPClient.MaxAttempts <= 0 {
		cfg.HTTPClient.MaxAttempts = 3
		logrus.Infof("HTTPClient.MaxAttempts not set, defaulting to %d", cfg.HTTPClient.MaxAttempts)
	}
	if cfg.HTTPClient.RetryDelayMs <= 0 {
		cfg.HTTPClient.RetryDelayMs = 2000
		logrus.Infof("HTTPClient.RetryDelayMs not set, defaulting to %d ms", cfg.HTTPClient.RetryDelayMs)
	}
	if cfg.HTTPClient.TimeoutMs <= 0 {
		cfg.HTTPClient.TimeoutMs = 10000
		logrus.Infof("HTTPClient.TimeoutMs not set, defaulting to %d ms", cfg.HTTPClient.TimeoutMs)
	}
	if cfg.HTTPClient.RateLimit > 0 && cfg.HTTPClient.BurstLimit <= 0 {
		cfg.HTTPClient.BurstLimit = 1
	}
	if cfg.Cache.DefaultTTLSeconds <= 0 {
		cfg.Cache.DefaultTTLSeconds = 300
		logrus.Infof("Cache.DefaultTTLSeconds not set, defaulting to %d seconds", cfg.Cache.DefaultTTLSeconds)
	}
	if cfg.Cache.SnapshotTTLSeconds <= 0 {
		cfg.Cache.SnapshotTTLSeconds = 60
		logrus.Infof("Cache.SnapshotTTLSeconds not set, defaulting to %d seconds", cfg.Cache.SnapshotTTLSeconds)
	}
	if cfg.Cache.CleanupIntervalMinutes < 0 {
		cfg.Cache.CleanupIntervalMinutes = 0
	}
	if cfg.ReferenceAssets.SOL == "" {
		cfg.ReferenceAssets.SOL = DefaultSOLAddress
	}
	if cfg.Wallets.File == "" {
		cfg.Wallets.File = "data/wallets.txt"
	}
	if cfg.Settings == nil {
		cfg.Settings = map[string]string{}
	}
}

func applyEnvOverrides(cfg *Config) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"SOL_ADDRESS", &cfg.ReferenceAssets.SOL},
		{"BTC_ADDRESS", &cfg.ReferenceAssets.BTC},
		{"ETH_ADDRESS", &cfg.ReferenceAssets.ETH},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.env)); v != "" {
			*o.target = v
			logrus.Infof("%s set from environment", o.env)
		}
	}
	if cfg.ReferenceAssets.BTC == "" {
		logrus.Warn("BTC_ADDRESS is not configured, BTC price will be reported as zero")
	}
	if cfg.ReferenceAssets.ETH == "" {
		logrus.Warn("ETH_ADDRESS is not configured, ETH price will be reported as zero")
	}
}

// Validate reports configuration values that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Portfolio.Provider {
	case "birdeye", "codex":
	default:
		return fmt.Errorf("portfolio.provider must be \"birdeye\" or \"codex\", got %q", c.Portfolio.Provider)
	}
	if c.HTTPClient.RateLimit < 0 {
		return fmt.Errorf("httpClient.rateLimit must not be negative")
	}
	return nil
}

// RetryDelay returns the delay after the first failed attempt.
func (c HTTPClientConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// Timeout returns the per-attempt timeout.
func (c HTTPClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// DefaultTTL returns the TTL of shared cache entries.
func (c CacheConfig) DefaultTTL() time.Duration {
	return time.Duration(c.DefaultTTLSeconds) * time.Second
}

// SnapshotTTL returns the TTL of Codex portfolio snapshots.
func (c CacheConfig) SnapshotTTL() time.Duration {
	return time.Duration(c.SnapshotTTLSeconds) * time.Second
}

// CleanupInterval returns how often expired entries are purged; zero disables the janitor.
func (c CacheConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalMinutes) * time.Minute
}

// Addresses maps each reference asset to its configured token address.
func (c ReferenceAssetsConfig) Addresses() map[entity.ReferenceAsset]string {
	return map[entity.ReferenceAsset]string{
		entity.AssetSolana:   c.SOL,
		entity.AssetBitcoin:  c.BTC,
		entity.AssetEthereum: c.ETH,
	}
}
