// Package config loads the schema registry runtime configuration and opens
// the backing bun database.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SCHEMA_REGISTRY_STORE_DSN.
const EnvPrefix = "SCHEMA_REGISTRY"

// Supported store drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds all configuration options for the registry runtime.
type Config struct {
	Store StoreConfig `mapstructure:"store"`
	Log   LogConfig   `mapstructure:"log"`
}

// StoreConfig describes the backing database. It also satisfies the
// go-persistence-bun Config contract so the same values drive migrations.
type StoreConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	Debug           bool          `mapstructure:"debug"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
	DefaultPageSize int           `mapstructure:"default_page_size"`
	MaxPageSize     int           `mapstructure:"max_page_size"`
	PageSize        int           `mapstructure:"page_size"`
}

// LogConfig controls the CLI logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

func (c StoreConfig) GetDebug() bool                { return c.Debug }
func (c StoreConfig) GetDriver() string             { return c.Driver }
func (c StoreConfig) GetServer() string             { return c.DSN }
func (c StoreConfig) GetPingTimeout() time.Duration { return c.PingTimeout }
func (c StoreConfig) GetOtelIdentifier() string     { return "schema-registry" }

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Store: StoreConfig{
			Driver:          DriverSQLite,
			DSN:             "file:schema-registry.db?cache=shared&_fk=1",
			PingTimeout:     5 * time.Second,
			DefaultPageSize: 10,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// SetDefaults registers Defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("store.debug", d.Store.Debug)
	v.SetDefault("store.ping_timeout", d.Store.PingTimeout)
	v.SetDefault("store.default_page_size", d.Store.DefaultPageSize)
	v.SetDefault("store.max_page_size", d.Store.MaxPageSize)
	v.SetDefault("store.page_size", d.Store.PageSize)
	v.SetDefault("log.level", d.Log.Level)
}

// Load reads configuration into a Config. Values resolve, highest first:
// flags bound on v, SCHEMA_REGISTRY_* environment variables, the YAML file
// at path (optional), then defaults.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Store.Driver = normalizeDriver(cfg.Store.Driver)
	return cfg, cfg.Validate()
}

// Validate checks the loaded values.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unsupported store driver %q", c.Store.Driver)
	}
	if strings.TrimSpace(c.Store.DSN) == "" {
		return errors.New("config: store dsn required")
	}
	if c.Store.DefaultPageSize < 0 || c.Store.MaxPageSize < 0 || c.Store.PageSize < 0 {
		return errors.New("config: page sizes must not be negative")
	}
	return nil
}

func normalizeDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite", "sqlite3":
		return DriverSQLite
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres
	default:
		return driver
	}
}
