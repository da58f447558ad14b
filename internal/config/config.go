package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config interface {
	EnvConfig
	CorsConfig
	JWTConfig
	DatabaseConfig
	StoreConfig
	FederatedConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	JWT
	Database
	Store
	Federated
	Security
}

// New reads the process environment once. The returned Config is immutable.
func New() (Config, error) {
	c := mainConfig{}
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("[config.New] parse env: %w", err)
	}
	if c.JWT.Secret == "" {
		return nil, fmt.Errorf("[config.New] JWT_SECRET is required")
	}
	if c.JWT.Issuer == "" {
		return nil, fmt.Errorf("[config.New] JWT_ISSUER is required")
	}
	return c, nil
}
