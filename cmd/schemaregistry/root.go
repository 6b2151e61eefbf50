package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-schema-registry/config"
	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/goliatone/go-schema-registry/registry"
	"github.com/goliatone/go-schema-registry/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  types.Logger
	out     io.Writer
	errOut  io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "schemaregistry",
		Short:         "Manage versioned schema documents",
		Long:          `schemaregistry stores schema documents keyed by namespace and semantic version, and lists versions and namespaces.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = config.NewLogger("schemaregistry", cfg.Log.Level)
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (YAML)")
	flags.String("driver", "", "store driver (sqlite3|postgres)")
	flags.String("dsn", "", "store data source name")
	flags.Bool("debug", false, "log SQL queries")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	_ = a.v.BindPFlag("store.driver", flags.Lookup("driver"))
	_ = a.v.BindPFlag("store.dsn", flags.Lookup("dsn"))
	_ = a.v.BindPFlag("store.debug", flags.Lookup("debug"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))

	root.AddCommand(
		newInitCmd(a),
		newMigrateCmd(a),
		newCreateCmd(a),
		newSetCmd(a),
		newGetCmd(a),
		newVersionsCmd(a),
		newLatestCmd(a),
		newNamespacesCmd(a),
		newDeleteCmd(a),
		newTypeCmd(a),
		newSearchCmd(a),
	)
	return root
}

// withService opens the store, builds the service and hands it to fn. The
// database is closed when fn returns.
func (a *app) withService(ctx context.Context, fn func(*service.Service) error) error {
	db, err := config.Open(ctx, a.cfg.Store)
	if err != nil {
		return err
	}
	defer func(db *bun.DB) {
		if err := db.Close(); err != nil {
			a.logger.Error("close store", err)
		}
	}(db)

	svc := service.New(service.Config{
		DB:              db,
		DefaultPageSize: a.cfg.Store.DefaultPageSize,
		MaxPageSize:     a.cfg.Store.MaxPageSize,
		PageSize:        a.cfg.Store.PageSize,
		Logger:          a.logger,
		Tracer:          otel.Tracer("github.com/goliatone/go-schema-registry/cmd/schemaregistry"),
	})
	if err := svc.HealthCheck(ctx); err != nil {
		return err
	}
	return fn(svc)
}

// Exit codes let scripts tell retryable conflicts from bad input.
const (
	exitFailure   = 1
	exitInvalid   = 2
	exitNotFound  = 3
	exitConflict  = 4
	exitDuplicate = 5
)

func exitCode(err error) int {
	switch {
	case registry.IsInvalidArgument(err), errors.Is(err, errArgs):
		return exitInvalid
	case registry.IsDuplicateSchema(err):
		return exitDuplicate
	case registry.IsConcurrencyConflict(err):
		return exitConflict
	case registry.IsNotFound(err):
		return exitNotFound
	default:
		return exitFailure
	}
}

var errArgs = errors.New("schemaregistry: invalid arguments")

func argsError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errArgs, fmt.Sprintf(format, args...))
}
