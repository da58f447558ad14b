package config

import (
	"fmt"
	"net/url"
)

type DatabaseConfig interface {
	GetDatabaseDSN() string
	GetDatabaseSchema() string
}

type Database struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_DATABASE"`
	Schema   string `env:"DB_SCHEMA" envDefault:"public"`
}

var _ DatabaseConfig = Database{}

// GetDatabaseDSN builds a postgres URL with search_path set to the schema.
func (d Database) GetDatabaseDSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	if d.Schema != "" {
		q.Set("search_path", d.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (d Database) GetDatabaseSchema() string {
	return d.Schema
}
