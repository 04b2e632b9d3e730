package config_test

import (
	"testing"

	"products/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, config.DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "products", cfg.TableName())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", "file::memory:")
	t.Setenv("DYNAMO_TABLE_NAME", "catalog")

	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "file::memory:", cfg.DatabaseDSN)
	assert.Equal(t, "catalog", cfg.TableName())
}

func TestTableName_ReadOnEveryCall(t *testing.T) {
	t.Setenv("DYNAMO_TABLE_NAME", "first")
	cfg, err := config.FromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "first", cfg.TableName())

	t.Setenv("DYNAMO_TABLE_NAME", "second")
	assert.Equal(t, "second", cfg.TableName())
}

func TestFromViper_Invalid(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")
	_, err := config.FromViper(viper.New())
	assert.Error(t, err)
}

func TestFromViper_PostgresNeedsDSN(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	_, err := config.FromViper(viper.New())
	assert.Error(t, err)
}
