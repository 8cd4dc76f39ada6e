// Package config reads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `env:"RENTAL_DB_HOST" envDefault:"localhost"`
	Port     int    `env:"RENTAL_DB_PORT" envDefault:"5432"`
	User     string `env:"RENTAL_DB_USER" envDefault:"rental"`
	Password string `env:"RENTAL_DB_PASSWORD"`
	Name     string `env:"RENTAL_DB_NAME" envDefault:"rental"`
	SSLMode  string `env:"RENTAL_DB_SSLMODE" envDefault:"disable"`
}

// DSN returns the GORM/pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// KafkaConfig holds broker addresses and the consumer group prefix.
type KafkaConfig struct {
	Brokers     []string `env:"RENTAL_KAFKA_BROKERS" envDefault:"localhost:9092"`
	GroupPrefix string   `env:"RENTAL_KAFKA_GROUP_PREFIX" envDefault:"rental-"`
}

// Config holds all configuration for the rental service.
type Config struct {
	Port      string `env:"RENTAL_SERVICE_PORT" envDefault:":8080"`
	AppEnv    string `env:"RENTAL_APP_ENV" envDefault:"development"`
	JWTSecret string `env:"RENTAL_JWT_SECRET,required"`
	DB        DatabaseConfig
	Kafka     KafkaConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
