package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "sage-connector", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 30, cfg.Sage.TimeoutSeconds)
	assert.Equal(t, "00", cfg.Defaults.DivisionNo)
	assert.Equal(t, "memory", cfg.Export.MessageBuffer)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "connector.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestApplyDefaults_SalespersonDivisionFollowsDivision(t *testing.T) {
	cfg := &Config{}
	cfg.Defaults.DivisionNo = "05"
	applyDefaults(cfg)

	assert.Equal(t, "05", cfg.Defaults.SalespersonDivisionNo)
}

func TestApplyDefaults_DoesNotOverrideSetValues(t *testing.T) {
	cfg := &Config{}
	cfg.Sage.TimeoutSeconds = 5
	cfg.Database.Driver = "postgres"
	cfg.Defaults.SalespersonDivisionNo = "09"
	applyDefaults(cfg)

	assert.Equal(t, 5, cfg.Sage.TimeoutSeconds)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "09", cfg.Defaults.SalespersonDivisionNo)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"defaults are valid",
			func(cfg *Config) {},
			"",
		},
		{
			"unknown database driver",
			func(cfg *Config) { cfg.Database.Driver = "mysql" },
			"database.driver",
		},
		{
			"unknown message buffer",
			func(cfg *Config) { cfg.Export.MessageBuffer = "kafka" },
			"export.message_buffer",
		},
		{
			"idle conns exceed open conns",
			func(cfg *Config) {
				cfg.Database.MaxOpenConns = 2
				cfg.Database.MaxIdleConns = 10
			},
			"max_idle_conns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ProductionRules(t *testing.T) {
	production := func(mutate func(*Config)) *Config {
		cfg := validConfig()
		cfg.App.Env = "production"
		cfg.Sage.Endpoint = "https://erp.example.com/soap"
		cfg.Sage.Password = "secret"
		mutate(cfg)
		return cfg
	}

	t.Run("complete production config passes", func(t *testing.T) {
		assert.NoError(t, production(func(cfg *Config) {}).validate())
	})

	t.Run("endpoint required", func(t *testing.T) {
		cfg := production(func(cfg *Config) { cfg.Sage.Endpoint = "" })
		assert.ErrorContains(t, cfg.validate(), "sage.endpoint")
	})

	t.Run("password required", func(t *testing.T) {
		cfg := production(func(cfg *Config) { cfg.Sage.Password = "" })
		assert.ErrorContains(t, cfg.validate(), "sage.password")
	})

	t.Run("test mode forbidden", func(t *testing.T) {
		cfg := production(func(cfg *Config) { cfg.Export.TestMode = true })
		assert.ErrorContains(t, cfg.validate(), "test_mode")
	})

	t.Run("postgres requires ssl", func(t *testing.T) {
		cfg := production(func(cfg *Config) {
			cfg.Database.Driver = "postgres"
			cfg.Database.SSLMode = "disable"
		})
		assert.ErrorContains(t, cfg.validate(), "sslmode")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "connector",
		Password: "p@ss/word",
		DBName:   "orders",
		SSLMode:  "require",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "db.internal:5433")
	assert.Contains(t, dsn, "sslmode=require")
	// Password is URL-escaped, never raw
	assert.NotContains(t, dsn, "p@ss/word")
	assert.Contains(t, dsn, "p%40ss%2Fword")
}
