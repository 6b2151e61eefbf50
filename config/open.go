package config

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// OpenSQL opens the raw database handle and returns the bun dialect to use
// with it.
func OpenSQL(cfg StoreConfig) (*sql.DB, schema.Dialect, error) {
	switch normalizeDriver(cfg.Driver) {
	case DriverSQLite:
		sqldb, err := sql.Open("sqlite3", cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		// A single writer keeps in-memory databases on one connection.
		sqldb.SetMaxOpenConns(1)
		return sqldb, sqlitedialect.New(), nil
	case DriverPostgres:
		sqldb, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return sqldb, pgdialect.New(), nil
	default:
		return nil, nil, fmt.Errorf("config: unsupported store driver %q", cfg.Driver)
	}
}

// Open opens the bun database described by cfg and pings it.
func Open(ctx context.Context, cfg StoreConfig) (*bun.DB, error) {
	sqldb, dialect, err := OpenSQL(cfg)
	if err != nil {
		return nil, err
	}
	db := bun.NewDB(sqldb, dialect)
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if cfg.PingTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.PingTimeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("config: ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}
