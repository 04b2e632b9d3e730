// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// KeyTableName is the environment variable naming the products table.
const KeyTableName = "DYNAMO_TABLE_NAME"

// Config holds the settings read at startup. The table name is not cached
// here; TableName reads it on every call.
type Config struct {
	AppPort     string `validate:"required"`
	StoreDriver string `validate:"oneof=memory sqlite postgres redis"`
	DatabaseDSN string `validate:"required_if=StoreDriver sqlite,required_if=StoreDriver postgres"`
	RedisAddr   string `validate:"required_if=StoreDriver redis"`
	RabbitMQURL string
	LogLevel    string
	LogPretty   bool

	v *viper.Viper
}

// Load reads the configuration. A .env file in the working directory is
// loaded first when present; real environment variables win over it.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Warn().Err(err).Msg("error loading .env file")
		}
	}
	return FromViper(viper.New())
}

// FromViper builds a Config on top of v, applying defaults and binding the
// environment.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault(KeyTableName, "products")
	v.SetDefault("STORE_DRIVER", DriverMemory)
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:     v.GetString("APP_PORT"),
		StoreDriver: v.GetString("STORE_DRIVER"),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		RedisAddr:   v.GetString("REDIS_ADDR"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogPretty:   v.GetBool("LOG_PRETTY"),
		v:           v,
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// TableName returns the current value of DYNAMO_TABLE_NAME.
func (c *Config) TableName() string {
	return c.v.GetString(KeyTableName)
}
