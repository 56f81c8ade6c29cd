package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Razorpay RazorpayConfig `mapstructure:"razorpay"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// RazorpayConfig holds credentials for the Razorpay REST API and the
// shared secret used to verify inbound webhooks.
type RazorpayConfig struct {
	KeyID             string        `mapstructure:"key_id"`
	KeySecret         string        `mapstructure:"key_secret"`
	WebhookSecret     string        `mapstructure:"webhook_secret"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	SkipWebhookVerify bool          `mapstructure:"skip_webhook_verify"` // debug mode only
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	JWTExpiry time.Duration `mapstructure:"jwt_expiry"`
	JWTIssuer string        `mapstructure:"jwt_issuer"`
	AdminKey  string        `mapstructure:"admin_key"`
}

type WalletConfig struct {
	DefaultCurrency string `mapstructure:"default_currency"`
	QueueSize       int    `mapstructure:"queue_size"` // webhook event queue buffer
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: MPL_ (MarketPlace Ledger).
// Nested keys use underscore: MPL_DATABASE_HOST, MPL_RAZORPAY_WEBHOOK_SECRET, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "marketplace_payments")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("razorpay.key_id", "")
	v.SetDefault("razorpay.key_secret", "")
	v.SetDefault("razorpay.webhook_secret", "")
	v.SetDefault("razorpay.base_url", "https://api.razorpay.com/v1")
	v.SetDefault("razorpay.timeout", "10s")
	v.SetDefault("razorpay.skip_webhook_verify", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_expiry", "24h")
	v.SetDefault("auth.jwt_issuer", "marketplace-payments")
	v.SetDefault("auth.admin_key", "")
	v.SetDefault("wallet.default_currency", "INR")
	v.SetDefault("wallet.queue_size", 256)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: MPL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("MPL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate enforces constraints that must hold before the process may serve
// traffic. A missing webhook secret is fatal outside debug mode: running with
// signature verification silently disabled would accept forged credits.
func (c *Config) Validate() error {
	if c.Razorpay.WebhookSecret == "" {
		if !c.Razorpay.SkipWebhookVerify {
			return fmt.Errorf("razorpay.webhook_secret is required (set razorpay.skip_webhook_verify only for local debugging)")
		}
		if c.Server.Mode != "debug" {
			return fmt.Errorf("razorpay.skip_webhook_verify is not allowed in %q mode", c.Server.Mode)
		}
	}
	if c.Wallet.QueueSize <= 0 {
		return fmt.Errorf("wallet.queue_size must be positive")
	}
	return nil
}
