package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-schema-registry/pkg/types"
)

// SetSchemaInput writes a schema document, creating it when absent.
// ExpectedRevision turns the write into a guarded update.
type SetSchemaInput struct {
	Schema           types.SchemaDocument
	ExpectedRevision *types.Revision
	UpdatedBy        string
	Result           *types.SchemaDocument
}

// Type implements gocommand.Message.
func (SetSchemaInput) Type() string {
	return "command.schema.set"
}

// Validate implements gocommand.Message.
func (input SetSchemaInput) Validate() error {
	return input.Schema.Key().Validate()
}

// SetSchemaCommand invokes the registry optimistic update protocol.
type SetSchemaCommand struct {
	registry types.Registry
	logger   types.Logger
}

// NewSetSchemaCommand wires a schema update handler.
func NewSetSchemaCommand(registry types.Registry, logger types.Logger) *SetSchemaCommand {
	return &SetSchemaCommand{
		registry: registry,
		logger:   safeLogger(logger),
	}
}

var _ gocommand.Commander[SetSchemaInput] = (*SetSchemaCommand)(nil)

// Execute forwards the write. Concurrency conflicts are returned as-is so the
// caller can re-read and retry.
func (c *SetSchemaCommand) Execute(ctx context.Context, input SetSchemaInput) error {
	if c.registry == nil {
		return types.ErrMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return err
	}
	saved, err := c.registry.SetSchema(ctx, input.Schema, types.SetOptions{
		ExpectedRevision: input.ExpectedRevision,
		UpdatedBy:        strings.TrimSpace(input.UpdatedBy),
	})
	if err != nil {
		return err
	}
	c.logger.Info("schema saved", "id", saved.ID, "revision", saved.Revision)
	if input.Result != nil && saved != nil {
		*input.Result = *saved
	}
	return nil
}
