package service

import (
	"context"

	"github.com/goliatone/go-schema-registry/command"
	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/goliatone/go-schema-registry/query"
	"github.com/goliatone/go-schema-registry/registry"
	"github.com/goliatone/go-schema-registry/store"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Service is the entry point for the schema registry. It wires the store
// adapter, the consistency layer and the command/query facades supplied by
// the host application.
type Service struct {
	cfg      Config
	store    *store.Store
	registry types.Registry
	commands Commands
	queries  Queries
}

// Commands exposes the service command handlers.
type Commands struct {
	CreateSchema  *command.CreateSchemaCommand
	SetSchema     *command.SetSchemaCommand
	DeleteSchema  *command.DeleteSchemaCommand
	DeleteSchemas *command.DeleteSchemasCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	SchemaDetail      *query.SchemaDetailQuery
	SchemaBatch       *query.SchemaBatchQuery
	SchemaType        *query.SchemaTypeQuery
	FieldSearch       *query.FieldSearchQuery
	NamespaceVersions *query.NamespaceVersionsQuery
	LatestVersion     *query.LatestVersionQuery
	NamespaceSummary  *query.NamespaceSummaryQuery
}

// Config captures the dependencies of the service. Either Registry or DB must
// be supplied; with DB the default bun store and registry are built and
// share the same store instance.
type Config struct {
	Registry types.Registry
	DB       *bun.DB
	// DefaultPageSize and MaxPageSize configure the default store.
	DefaultPageSize int
	MaxPageSize     int
	// PageSize sizes the first request of a version listing.
	PageSize int
	Hooks    types.Hooks
	Clock    types.Clock
	Logger   types.Logger
	Tracer   trace.Tracer
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)
	s := &Service{cfg: norm, registry: norm.Registry}

	if s.registry == nil && norm.DB != nil {
		st, err := store.New(store.Config{
			DB:              norm.DB,
			DefaultPageSize: norm.DefaultPageSize,
			MaxPageSize:     norm.MaxPageSize,
			Clock:           norm.Clock,
			Logger:          norm.Logger,
		})
		if err != nil {
			norm.Logger.Error("schema-registry: store initialization failed", err)
		} else {
			s.store = st
			reg, err := registry.New(registry.Config{
				Store:    st,
				PageSize: norm.PageSize,
				Clock:    norm.Clock,
				Hooks:    norm.Hooks,
				Logger:   norm.Logger,
				Tracer:   norm.Tracer,
			})
			if err != nil {
				norm.Logger.Error("schema-registry: registry initialization failed", err)
			} else {
				s.registry = reg
			}
		}
	}

	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	return cfg
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Registry returns the consistency layer backing the facades.
func (s *Service) Registry() types.Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

// EnsureMapping declares the backing collection and indexes. It only applies
// when the service built its own store from a DB.
func (s *Service) EnsureMapping(ctx context.Context) error {
	if s == nil || s.store == nil {
		return types.ErrServiceNotReady
	}
	return s.store.EnsureMapping(ctx)
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s != nil && s.registry != nil
}

// HealthCheck surfaces missing configuration and, when the service owns the
// DB handle, pings it.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	if s.registry == nil {
		return types.ErrMissingRegistry
	}
	if s.cfg.DB != nil {
		return s.cfg.DB.PingContext(ctx)
	}
	return nil
}

func (s *Service) buildCommands() Commands {
	return Commands{
		CreateSchema:  command.NewCreateSchemaCommand(s.registry, s.cfg.Logger),
		SetSchema:     command.NewSetSchemaCommand(s.registry, s.cfg.Logger),
		DeleteSchema:  command.NewDeleteSchemaCommand(s.registry, s.cfg.Logger),
		DeleteSchemas: command.NewDeleteSchemasCommand(s.registry, s.cfg.Logger),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		SchemaDetail:      query.NewSchemaDetailQuery(s.registry),
		SchemaBatch:       query.NewSchemaBatchQuery(s.registry),
		SchemaType:        query.NewSchemaTypeQuery(s.registry),
		FieldSearch:       query.NewFieldSearchQuery(s.registry),
		NamespaceVersions: query.NewNamespaceVersionsQuery(s.registry),
		LatestVersion:     query.NewLatestVersionQuery(s.registry),
		NamespaceSummary:  query.NewNamespaceSummaryQuery(s.registry),
	}
}
