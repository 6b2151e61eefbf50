package command

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-schema-registry/pkg/types"
)

// CreateSchemaInput registers a new (namespace, version) pair.
type CreateSchemaInput struct {
	Schema types.SchemaDocument
	Result *types.SchemaDocument
}

// Type implements gocommand.Message.
func (CreateSchemaInput) Type() string {
	return "command.schema.create"
}

// Validate implements gocommand.Message.
func (input CreateSchemaInput) Validate() error {
	return input.Schema.Key().Validate()
}

// CreateSchemaCommand invokes the registry create protocol.
type CreateSchemaCommand struct {
	registry types.Registry
	logger   types.Logger
}

// NewCreateSchemaCommand wires a schema creation handler.
func NewCreateSchemaCommand(registry types.Registry, logger types.Logger) *CreateSchemaCommand {
	return &CreateSchemaCommand{
		registry: registry,
		logger:   safeLogger(logger),
	}
}

var _ gocommand.Commander[CreateSchemaInput] = (*CreateSchemaCommand)(nil)

// Execute validates and forwards the document to the registry. A duplicate
// (namespace, version) surfaces as the registry's DUPLICATE_SCHEMA error.
func (c *CreateSchemaCommand) Execute(ctx context.Context, input CreateSchemaInput) error {
	if c.registry == nil {
		return types.ErrMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return err
	}
	created, err := c.registry.CreateSchema(ctx, input.Schema)
	if err != nil {
		return err
	}
	c.logger.Info("schema created", "id", created.ID, "namespace", created.Namespace, "version", created.Version)
	if input.Result != nil && created != nil {
		*input.Result = *created
	}
	return nil
}
