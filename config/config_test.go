package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: postgresql
  dsn: postgres://localhost/schemas
  default_page_size: 25
log:
  level: debug
`), 0o600))
	t.Setenv("SCHEMA_REGISTRY_STORE_MAX_PAGE_SIZE", "50")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, DriverPostgres, cfg.Store.Driver)
	require.Equal(t, "postgres://localhost/schemas", cfg.Store.DSN)
	require.Equal(t, 25, cfg.Store.DefaultPageSize)
	require.Equal(t, 50, cfg.Store.MaxPageSize)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, cfg.Store.DSN, cfg.Store.GetServer())
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	v := viper.New()
	v.Set("store.driver", "mongodb")
	_, err := Load(v, "")
	require.ErrorContains(t, err, "unsupported store driver")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestOpen_SQLiteMemory(t *testing.T) {
	db, err := Open(context.Background(), StoreConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var one int
	require.NoError(t, db.NewSelect().ColumnExpr("1").Scan(context.Background(), &one))
	require.Equal(t, 1, one)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, glog.Debug, ParseLevel("DEBUG"))
	require.Equal(t, glog.Trace, ParseLevel("trace"))
	require.Equal(t, glog.Warn, ParseLevel(" warning "))
	require.Equal(t, glog.Error, ParseLevel("error"))
	require.Equal(t, glog.Info, ParseLevel("verbose"))
	require.Equal(t, glog.Info, ParseLevel(""))
}

func TestNewLogger_AcceptsRichErrors(t *testing.T) {
	logger := NewLogger("test", "error")
	require.NotNil(t, logger)

	rich := goerrors.New("schema missing", goerrors.CategoryNotFound).WithTextCode("SCHEMA_NOT_FOUND")
	require.NotPanics(t, func() {
		logger.Debug("hidden")
		logger.Info("hidden", "namespace", "ns://a")
		logger.Error("lookup failed", rich, "namespace", "ns://a")
		logger.Error("no error", nil)
	})
}
