package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all connector configuration
type Config struct {
	App       AppConfig
	Sage      SageConfig
	Defaults  DefaultsConfig
	Export    ExportConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// SageConfig holds connection settings for the ERP web services
type SageConfig struct {
	// Endpoint is the eBusiness Web Services URL
	Endpoint string
	Username string
	Password string
	// CompanyCode identifies the company orders are imported into
	CompanyCode string
	// ExtendedEndpoint is the optional extended API URL used for postal code
	// registration; empty disables remediation
	ExtendedEndpoint string
	// ExtendedAPIKey authenticates against the extended API
	ExtendedAPIKey string
	TimeoutSeconds int
}

// DefaultsConfig holds the ERP-side defaults stamped onto exported records
// when the source data carries none
type DefaultsConfig struct {
	DivisionNo            string
	SalespersonNo         string
	SalespersonDivisionNo string
	PriceLevel            string
}

// ExportConfig holds export pipeline behavior settings
type ExportConfig struct {
	// TestMode permits destructive reversal operations; exports that are
	// reversed in production would orphan remote records
	TestMode bool
	// RestrictStatuses limits exports to orders in the listed statuses;
	// empty means all statuses are exportable
	RestrictStatuses []string
	// MessageBuffer selects where operator messages accumulate: "memory"
	// or "redis"
	MessageBuffer string
}

// DatabaseConfig holds database connection settings. Driver selects the
// backing store: "sqlite" for a single-file deployment, "postgres" for a
// shared one.
type DatabaseConfig struct {
	Driver          string
	Path            string // sqlite file path
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string // OTEL Collector endpoint (e.g., "localhost:4317")
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SAGE_ prefix (e.g., SAGE_SAGE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/sage-connector")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Sage: SageConfig{
			Endpoint:         v.GetString("sage.endpoint"),
			Username:         v.GetString("sage.username"),
			Password:         v.GetString("sage.password"),
			CompanyCode:      v.GetString("sage.company_code"),
			ExtendedEndpoint: v.GetString("sage.extended_endpoint"),
			ExtendedAPIKey:   v.GetString("sage.extended_api_key"),
			TimeoutSeconds:   v.GetInt("sage.timeout_seconds"),
		},
		Defaults: DefaultsConfig{
			DivisionNo:            v.GetString("defaults.division_no"),
			SalespersonNo:         v.GetString("defaults.salesperson_no"),
			SalespersonDivisionNo: v.GetString("defaults.salesperson_division_no"),
			PriceLevel:            v.GetString("defaults.price_level"),
		},
		Export: ExportConfig{
			TestMode:         v.GetBool("export.test_mode"),
			RestrictStatuses: v.GetStringSlice("export.restrict_statuses"),
			MessageBuffer:    v.GetString("export.message_buffer"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Path:            v.GetString("database.path"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sage-connector"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Sage.TimeoutSeconds == 0 {
		cfg.Sage.TimeoutSeconds = 30
	}
	if cfg.Defaults.DivisionNo == "" {
		cfg.Defaults.DivisionNo = "00"
	}
	if cfg.Defaults.SalespersonDivisionNo == "" {
		cfg.Defaults.SalespersonDivisionNo = cfg.Defaults.DivisionNo
	}
	if cfg.Export.MessageBuffer == "" {
		cfg.Export.MessageBuffer = "memory"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "connector.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "connector"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "sage-connector"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be 'sqlite' or 'postgres', got %q", c.Database.Driver)
	}

	switch c.Export.MessageBuffer {
	case "memory", "redis":
	default:
		return fmt.Errorf("export.message_buffer must be 'memory' or 'redis', got %q", c.Export.MessageBuffer)
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Sage.Endpoint == "" {
			return fmt.Errorf("sage.endpoint is required in production")
		}
		if c.Sage.Password == "" {
			return fmt.Errorf("sage.password is required in production")
		}
		if c.Export.TestMode {
			return fmt.Errorf("export.test_mode must be false in production (reversal orphans remote records)")
		}
		if c.Database.Driver == "postgres" && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the postgres connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
