package main

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-schema-registry/config"
	"github.com/goliatone/go-schema-registry/migrations"
	"github.com/goliatone/go-schema-registry/service"
	"github.com/goliatone/go-schema-registry/store"
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Declare the schema collection and its indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withService(cmd.Context(), func(svc *service.Service) error {
				if err := svc.EnsureMapping(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "collection %s ready\n", store.TableName)
				return nil
			})
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			sqldb, dialect, err := config.OpenSQL(a.cfg.Store)
			if err != nil {
				return err
			}
			defer sqldb.Close()

			persistence.RegisterModel((*store.Record)(nil))
			client, err := persistence.New(a.cfg.Store, sqldb, dialect)
			if err != nil {
				return err
			}

			for _, migrationsFS := range migrations.Filesystems() {
				client.RegisterDialectMigrations(
					migrationsFS,
					persistence.WithDialectSourceLabel("."),
					persistence.WithValidationTargets(migrations.DialectPostgres, migrations.DialectSQLite),
				)
			}
			if err := client.ValidateDialects(ctx); err != nil {
				a.logger.Error("dialect validation failed", err)
			}
			if err := client.Migrate(ctx); err != nil {
				return err
			}
			if report := client.Report(); report != nil && !report.IsZero() {
				fmt.Fprintf(a.out, "report: %s\n", report.String())
			}
			fmt.Fprintln(a.out, "migrations applied")
			return nil
		},
	}
}
