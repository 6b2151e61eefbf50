package migrations_test

import (
	"context"
	"database/sql"
	"io/fs"
	"path"
	"sort"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-schema-registry/migrations"
	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/goliatone/go-schema-registry/store"
)

func TestMigrationsApplyToSQLite(t *testing.T) {
	ctx := context.Background()
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqldb.Close()
	})

	registered := migrations.Filesystems()
	require.NotEmpty(t, registered)
	for _, fsys := range registered {
		require.NoError(t, applyFilesystem(ctx, sqldb, fsys))
	}

	var tableName string
	require.NoError(t, sqldb.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name='object_schemas'").Scan(&tableName))
	require.Equal(t, store.TableName, tableName)

	// The migrated table must accept the bun model used by the store.
	st, err := store.New(store.Config{DB: bun.NewDB(sqldb, sqlitedialect.New())})
	require.NoError(t, err)
	rec := store.FromDocument(types.SchemaDocument{Namespace: "ns://a", Version: "1.0.0"})
	_, err = st.Create(ctx, rec)
	require.NoError(t, err)
	got, err := st.Get(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, "ns://a", got.Namespace)
}

func TestSQLiteOverridesReplaceRootFiles(t *testing.T) {
	for _, fsys := range migrations.Filesystems() {
		pg, err := upFiles(fsys, migrations.DialectPostgres)
		require.NoError(t, err)
		require.Equal(t, []string{"00001_object_schemas.up.sql"}, pg)

		lite, err := upFiles(fsys, migrations.DialectSQLite)
		require.NoError(t, err)
		require.Equal(t, []string{"sqlite/00001_object_schemas.up.sql"}, lite)
	}
}

func TestSplitStatements(t *testing.T) {
	require.Equal(t, []string{"SELECT 1", "SELECT 2"}, splitStatements(" SELECT 1;\n\n SELECT 2 ;\n"))
	require.Empty(t, splitStatements(" ; \n"))
}

func applyFilesystem(ctx context.Context, db *sql.DB, filesystem fs.FS) error {
	files, err := upFiles(filesystem, migrations.DialectSQLite)
	if err != nil {
		return err
	}
	for _, file := range files {
		sqlBytes, err := fs.ReadFile(filesystem, file)
		if err != nil {
			return err
		}
		for _, stmt := range splitStatements(string(sqlBytes)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

// upFiles lists the up migrations for dialect in apply order. A dialect
// subdirectory replaces root files with the same name.
func upFiles(fsys fs.FS, dialect string) ([]string, error) {
	root, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	byName := make(map[string]string, len(root))
	for _, file := range root {
		byName[file] = file
	}
	if dialect != migrations.DialectPostgres {
		overrides, err := fs.Glob(fsys, path.Join(dialect, "*.up.sql"))
		if err != nil {
			return nil, err
		}
		for _, file := range overrides {
			byName[path.Base(file)] = file
		}
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, byName[name])
	}
	return out, nil
}

func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
