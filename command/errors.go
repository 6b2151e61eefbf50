package command

import (
	"errors"

	"github.com/goliatone/go-schema-registry/pkg/types"
)

var (
	// ErrSchemaIDRequired indicates a delete omitted the schema id.
	ErrSchemaIDRequired = types.ErrSchemaIDRequired
	// ErrSchemaIDsRequired occurs when bulk handlers are invoked without targets.
	ErrSchemaIDsRequired = errors.New("schema-registry: schema ids required")
	// ErrNamespaceRequired indicates the schema namespace was missing.
	ErrNamespaceRequired = types.ErrNamespaceRequired
	// ErrVersionRequired indicates the schema version was missing.
	ErrVersionRequired = types.ErrVersionRequired
)
