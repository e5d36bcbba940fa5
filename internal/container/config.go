// Package container provides dependency injection and lifecycle management
// for the voucher service following Clean Architecture principles.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Auth configures bearer token issuance
	Auth AuthConfig

	// CatalogPath is a voucher type catalog YAML; empty uses the built-in one
	CatalogPath string

	// SeedUsers stores the default staff directory on start
	SeedUsers bool

	// Server configuration
	Server ServerConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration
}

// AuthConfig holds token settings.
type AuthConfig struct {
	Secret   string
	Issuer   string
	TokenTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind to
	Host string

	// Port to listen on
	Port int

	// ReadTimeout for HTTP server
	ReadTimeout time.Duration

	// WriteTimeout for HTTP server
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "data/vouchers.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Auth: AuthConfig{
			Issuer:   "voucher-flow",
			TokenTTL: 12 * time.Hour,
		},
		SeedUsers: true,
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required")
	}
	return nil
}
