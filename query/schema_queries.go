package query

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/google/uuid"
)

var (
	errSchemaLookupRequired = errors.New("schema-registry: schema id or namespace and version required")
	errSchemaIDsRequired    = errors.New("schema-registry: schema ids required")
)

// SchemaDetailInput fetches a schema either by id or by natural key. When
// SchemaID is set the key fields are ignored.
type SchemaDetailInput struct {
	SchemaID  uuid.UUID
	Namespace string
	Version   string
}

// Type implements gocommand.Message.
func (SchemaDetailInput) Type() string {
	return "query.schema.detail"
}

// Validate implements gocommand.Message. Blank key parts are left for the
// registry to reject so callers receive its INVALID_ARGUMENT error.
func (input SchemaDetailInput) Validate() error {
	if input.SchemaID == uuid.Nil && strings.TrimSpace(input.Namespace) == "" && strings.TrimSpace(input.Version) == "" {
		return errSchemaLookupRequired
	}
	return nil
}

// SchemaDetailQuery loads a single schema document.
type SchemaDetailQuery struct {
	registry types.Registry
}

// NewSchemaDetailQuery constructs the detail query.
func NewSchemaDetailQuery(registry types.Registry) *SchemaDetailQuery {
	return &SchemaDetailQuery{registry: registry}
}

var _ gocommand.Querier[SchemaDetailInput, *types.SchemaDocument] = (*SchemaDetailQuery)(nil)

// Query fetches schema detail.
func (q *SchemaDetailQuery) Query(ctx context.Context, input SchemaDetailInput) (*types.SchemaDocument, error) {
	if q.registry == nil {
		return nil, types.ErrMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if input.SchemaID != uuid.Nil {
		return q.registry.GetSchema(ctx, input.SchemaID)
	}
	return q.registry.FindByNamespaceVersion(ctx, input.Namespace, input.Version)
}

// SchemaBatchInput fetches several schemas at once.
type SchemaBatchInput struct {
	SchemaIDs []uuid.UUID
}

// Type implements gocommand.Message.
func (SchemaBatchInput) Type() string {
	return "query.schema.batch"
}

// Validate implements gocommand.Message.
func (input SchemaBatchInput) Validate() error {
	if len(input.SchemaIDs) == 0 {
		return errSchemaIDsRequired
	}
	return nil
}

// SchemaBatchQuery loads several documents; missing ids are omitted.
type SchemaBatchQuery struct {
	registry types.Registry
}

// NewSchemaBatchQuery constructs the batch query.
func NewSchemaBatchQuery(registry types.Registry) *SchemaBatchQuery {
	return &SchemaBatchQuery{registry: registry}
}

var _ gocommand.Querier[SchemaBatchInput, map[uuid.UUID]types.SchemaDocument] = (*SchemaBatchQuery)(nil)

// Query forwards to the registry.
func (q *SchemaBatchQuery) Query(ctx context.Context, input SchemaBatchInput) (map[uuid.UUID]types.SchemaDocument, error) {
	if q.registry == nil {
		return nil, types.ErrMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return q.registry.GetSchemas(ctx, input.SchemaIDs)
}

// SchemaTypeInput fetches one named type definition from a schema.
type SchemaTypeInput struct {
	Namespace string
	Version   string
	TypeName  string
}

// Type implements gocommand.Message.
func (SchemaTypeInput) Type() string {
	return "query.schema.type"
}

// Validate implements gocommand.Message.
func (SchemaTypeInput) Validate() error {
	return nil
}

// SchemaTypeQuery resolves a type definition.
type SchemaTypeQuery struct {
	registry types.Registry
}

// NewSchemaTypeQuery constructs the type query.
func NewSchemaTypeQuery(registry types.Registry) *SchemaTypeQuery {
	return &SchemaTypeQuery{registry: registry}
}

var _ gocommand.Querier[SchemaTypeInput, types.TypeDefinition] = (*SchemaTypeQuery)(nil)

// Query forwards to the registry.
func (q *SchemaTypeQuery) Query(ctx context.Context, input SchemaTypeInput) (types.TypeDefinition, error) {
	if q.registry == nil {
		return nil, types.ErrMissingRegistry
	}
	return q.registry.GetSchemaType(ctx, input.Namespace, input.Version, input.TypeName)
}

// FieldSearchInput runs a paged equality search on a single indexed field.
type FieldSearchInput struct {
	Field string
	Value string
	Page  types.Page
}

// Type implements gocommand.Message.
func (FieldSearchInput) Type() string {
	return "query.schema.field_search"
}

// Validate implements gocommand.Message.
func (input FieldSearchInput) Validate() error {
	if input.Page.Offset < 0 || input.Page.Size < 0 {
		return errors.New("schema-registry: page offset and size must not be negative")
	}
	return nil
}

// FieldSearchQuery pages through schemas matching a field value.
type FieldSearchQuery struct {
	registry types.Registry
}

// NewFieldSearchQuery constructs the search query.
func NewFieldSearchQuery(registry types.Registry) *FieldSearchQuery {
	return &FieldSearchQuery{registry: registry}
}

var _ gocommand.Querier[FieldSearchInput, types.SchemaPage] = (*FieldSearchQuery)(nil)

// Query forwards to the registry.
func (q *FieldSearchQuery) Query(ctx context.Context, input FieldSearchInput) (types.SchemaPage, error) {
	if q.registry == nil {
		return types.SchemaPage{}, types.ErrMissingRegistry
	}
	if err := input.Validate(); err != nil {
		return types.SchemaPage{}, err
	}
	return q.registry.FindSchemasByField(ctx, input.Field, input.Value, input.Page)
}
