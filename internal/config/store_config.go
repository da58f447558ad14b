package config

import "fmt"

// StoreConfig selects the backing store for refresh records, the revocation list
// and the used-code guard. An empty host selects the in-memory stores.
type StoreConfig interface {
	UseRedis() bool
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDatabase() int
	GetRedisKeyPrefix() string
}

type Store struct {
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDatabase int    `env:"REDIS_DATABASE" envDefault:"0"`
	KeyPrefix     string `env:"REDIS_KEY_PREFIX" envDefault:"auth:"`
}

var _ StoreConfig = Store{}

func (s Store) UseRedis() bool {
	return s.RedisHost != ""
}

func (s Store) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", s.RedisHost, s.RedisPort)
}

func (s Store) GetRedisPassword() string {
	return s.RedisPassword
}

func (s Store) GetRedisDatabase() int {
	return s.RedisDatabase
}

func (s Store) GetRedisKeyPrefix() string {
	return s.KeyPrefix
}
