package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config armazena todas as configurações do Store Manager, lidas do ambiente.
// DATABASE_URL, REDIS_ADDR e KAFKA_BROKERS vazios ativam as implementações locais
// (repositórios em memória, cache desligado, eventos descartados).
type Config struct {
	// Geral
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Banco de Dados (PostgreSQL)
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DBTimeoutSec   int    `envconfig:"DB_TIMEOUT_SEC" default:"5"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`

	// Cache (Redis)
	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	CacheTTLSec   int    `envconfig:"CACHE_TTL_SEC" default:"300"`

	// Rate Limiting (só com Redis)
	RateLimitMaxRequests int `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"100"`
	RateLimitPeriodSec   int `envconfig:"RATE_LIMIT_PERIOD_SEC" default:"60"`

	// Eventos (Kafka)
	KafkaBrokers    []string `envconfig:"KAFKA_BROKERS"`
	KafkaSalesTopic string   `envconfig:"KAFKA_SALES_TOPIC" default:"sales-events"`
}

// LoadConfig carrega as configurações a partir das variáveis de ambiente.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) DBTimeout() time.Duration       { return time.Duration(c.DBTimeoutSec) * time.Second }
func (c *Config) CacheTTL() time.Duration        { return time.Duration(c.CacheTTLSec) * time.Second }
func (c *Config) RateLimitPeriod() time.Duration { return time.Duration(c.RateLimitPeriodSec) * time.Second }
