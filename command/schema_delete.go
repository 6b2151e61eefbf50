package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/google/uuid"
)

// DeleteSchemaInput removes a single schema document, addressed by id or by
// namespace and version. The id wins when both are set.
type DeleteSchemaInput struct {
	SchemaID  uuid.UUID
	Namespace string
	Version   string
	Result    *types.DeleteResult
}

// Type implements gocommand.Message.
func (DeleteSchemaInput) Type() string {
	return "command.schema.delete"
}

// Validate implements gocommand.Message.
func (input DeleteSchemaInput) Validate() error {
	if input.SchemaID != uuid.Nil {
		return nil
	}
	namespace := strings.TrimSpace(input.Namespace)
	version := strings.TrimSpace(input.Version)
	switch {
	case namespace == "" && version == "":
		return ErrSchemaIDRequired
	case namespace == "":
		return ErrNamespaceRequired
	case version == "":
		return ErrVersionRequired
	}
	return nil
}

// target resolves the id to delete, deriving it from the natural key when
// no id was given.
func (input DeleteSchemaInput) target() uuid.UUID {
	if input.SchemaID != uuid.Nil {
		return input.SchemaID
	}
	return types.SchemaID(input.Namespace, input.Version)
}

// DeleteSchemaCommand deletes schemas through the registry.
type DeleteSchemaCommand struct {
	registry types.Registry
	logger   types.Logger
}

// NewDeleteSchemaCommand constructs the handler.
func NewDeleteSchemaCommand(registry types.Registry, logger types.Logger) *DeleteSchemaCommand {
	return &DeleteSchemaCommand{
		registry: registry,
		logger:   safeLogger(logger),
	}
}

var _ gocommand.Commander[DeleteSchemaInput] = (*DeleteSchemaCommand)(nil)

// Execute deletes the requested schema. A missing id is not an error; the
// result reports Deleted=false.
func (c *DeleteSchemaCommand) Execute(ctx context.Context, input DeleteSchemaInput) error {
	if c.registry == nil {
		return types.ErrMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return err
	}
	id := input.target()
	result, err := c.registry.DeleteSchema(ctx, id)
	if err != nil {
		return err
	}
	if !result.Deleted {
		c.logger.Debug("schema delete was a no-op", "id", id)
	}
	if input.Result != nil {
		*input.Result = result
	}
	return nil
}

// DeleteSchemasInput removes several schema documents.
type DeleteSchemasInput struct {
	SchemaIDs []uuid.UUID
	Result    *types.BulkDeleteResult
}

// Type implements gocommand.Message.
func (DeleteSchemasInput) Type() string {
	return "command.schema.delete_many"
}

// Validate implements gocommand.Message.
func (input DeleteSchemasInput) Validate() error {
	return validateSchemaIDs(input.SchemaIDs)
}

// DeleteSchemasCommand deletes several schemas in one registry call.
type DeleteSchemasCommand struct {
	registry types.Registry
	logger   types.Logger
}

// NewDeleteSchemasCommand constructs the bulk handler.
func NewDeleteSchemasCommand(registry types.Registry, logger types.Logger) *DeleteSchemasCommand {
	return &DeleteSchemasCommand{
		registry: registry,
		logger:   safeLogger(logger),
	}
}

var _ gocommand.Commander[DeleteSchemasInput] = (*DeleteSchemasCommand)(nil)

// Execute removes every existing id and reports the absent ones.
func (c *DeleteSchemasCommand) Execute(ctx context.Context, input DeleteSchemasInput) error {
	if c.registry == nil {
		return types.ErrMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return err
	}
	result, err := c.registry.DeleteSchemas(ctx, input.SchemaIDs)
	if err != nil {
		return err
	}
	c.logger.Info("schemas deleted", "deleted", len(result.Deleted), "missing", len(result.Missing))
	if input.Result != nil {
		*input.Result = result
	}
	return nil
}
