package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// AuthConfig holds bearer token settings
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// CatalogConfig points at a voucher type catalog. An empty path selects
// the built-in catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// SeedConfig controls the staff directory seeded at startup
type SeedConfig struct {
	Users bool `mapstructure:"users"`
}

// Load loads configuration from an optional file, a .env file next to the
// working directory and environment variables, in increasing precedence.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(configPath); !errors.Is(statErr, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("database.path", "data/vouchers.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")

	v.SetDefault("auth.issuer", "voucher-flow")
	v.SetDefault("auth.token_ttl", 12*time.Hour)

	v.SetDefault("catalog.path", "")
	v.SetDefault("seed.users", true)
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"auth.jwt_secret": "VOUCHER_JWT_SECRET",
		"database.path":   "VOUCHER_DB_PATH",
		"server.port":     "VOUCHER_PORT",
		"logger.level":    "VOUCHER_LOG_LEVEL",
		"catalog.path":    "VOUCHER_CATALOG_PATH",
		"seed.users":      "VOUCHER_SEED_USERS",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 characters")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}
	return nil
}
