package config

import (
	"github.com/garyjia/voucher-flow/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Auth: container.AuthConfig{
			Secret:   c.Auth.JWTSecret,
			Issuer:   c.Auth.Issuer,
			TokenTTL: c.Auth.TokenTTL,
		},
		CatalogPath: c.Catalog.Path,
		SeedUsers:   c.Seed.Users,
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
	}
}
