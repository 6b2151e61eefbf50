package schemaregistry

import "github.com/goliatone/go-schema-registry/service"

// Re-export the service package entry point so consumers can do
// `schemaregistry.New(...)` without importing internal wiring helpers.
type (
	Service  = service.Service
	Config   = service.Config
	Commands = service.Commands
	Queries  = service.Queries
)

// New constructs the schema registry runtime using the provided configuration.
func New(cfg Config) *Service {
	return service.New(cfg)
}
