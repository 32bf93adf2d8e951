package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:            "development",
		DBDriver:       DriverPostgres,
		DBHost:         "localhost",
		DBName:         "snapgram",
		DBPassword:     "secure-password",
		DBSSLMode:      "require",
		DBSchemaMode:   "hybrid",
		DBMaxOpenConns: 10,
		DBMaxIdleConns: 5,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"valid development", func(c *Config) {}, false},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.DBDriver = DriverSQLite }, true},
		{"sqlite with path", func(c *Config) { c.DBDriver = DriverSQLite; c.DBSQLitePath = "x.db" }, false},
		{"unknown schema mode", func(c *Config) { c.DBSchemaMode = "magic" }, true},
		{"idle above open", func(c *Config) { c.DBMaxIdleConns = 20 }, true},
		{"negative cache ttl", func(c *Config) { c.UserCacheTTLSeconds = -1 }, true},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"debug log level", func(c *Config) { c.LogLevel = "debug" }, false},
		{"unknown tracing exporter", func(c *Config) { c.TracingExporter = "jaeger" }, true},
		{"otlp tracing exporter", func(c *Config) { c.TracingExporter = "otlp" }, false},
		{"sampler ratio above one", func(c *Config) { c.TracingSamplerRatio = 1.5 }, true},
		{"production default password", func(c *Config) { c.Env = "production"; c.DBPassword = "password" }, true},
		{"production ssl disabled", func(c *Config) { c.Env = "prod"; c.DBSSLMode = "disable" }, true},
		{"production sqlite", func(c *Config) { c.Env = "production"; c.DBDriver = DriverSQLite; c.DBSQLitePath = "x.db" }, true},
		{"production ok", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("DB_SQLITE_PATH", "/tmp/snapgram-test.db")
	t.Setenv("DB_SCHEMA_MODE", "AUTO")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, DriverSQLite, c.DBDriver)
	assert.Equal(t, "/tmp/snapgram-test.db", c.DBSQLitePath)
	assert.Equal(t, "auto", c.DBSchemaMode)
	assert.Equal(t, 25, c.DBMaxOpenConns)
	assert.Equal(t, 300, c.UserCacheTTLSeconds)
	assert.Equal(t, "stdout", c.TracingExporter)
	assert.Equal(t, 1.0, c.TracingSamplerRatio)
}

func TestLoadConfig_RejectsUnknownLogLevel(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}
