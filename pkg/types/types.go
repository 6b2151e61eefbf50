package types

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Revision is the optimistic-concurrency token the store hands out on read
// and checks on guarded writes. Callers should treat it as opaque.
type Revision int64

// RevisionPtr returns a pointer to the supplied revision so callers can build
// guarded writes inline.
func RevisionPtr(rev Revision) *Revision {
	return &rev
}

// TypeDefinition is an opaque type definition owned by the schema object
// model. The registry stores it verbatim and never inspects it.
type TypeDefinition map[string]any

// SchemaDocument is the unit of storage in the registry.
type SchemaDocument struct {
	ID          uuid.UUID
	Namespace   string
	Version     string
	Description string
	Types       map[string]TypeDefinition
	CreatedOn   time.Time
	UpdatedOn   time.Time
	UpdatedBy   string
	Revision    Revision
}

// Key returns the natural key of the document.
func (d SchemaDocument) Key() SchemaKey {
	return SchemaKey{Namespace: d.Namespace, Version: d.Version}
}

// Type returns the named type definition when present.
func (d SchemaDocument) Type(name string) (TypeDefinition, bool) {
	if len(d.Types) == 0 {
		return nil, false
	}
	def, ok := d.Types[name]
	return def, ok
}

// AddType sets the named type definition, replacing any previous entry.
func (d *SchemaDocument) AddType(name string, def TypeDefinition) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrTypeNameRequired
	}
	if d.Types == nil {
		d.Types = make(map[string]TypeDefinition)
	}
	d.Types[name] = CloneTypeDefinition(def)
	return nil
}

// Clone returns a deep copy of the type map so callers can mutate safely.
func (d SchemaDocument) Clone() SchemaDocument {
	clone := d
	clone.Types = CloneTypes(d.Types)
	return clone
}

// SchemaKey is the (namespace, version) natural key.
type SchemaKey struct {
	Namespace string
	Version   string
}

// Validate reports ErrNamespaceRequired or ErrVersionRequired for blank parts.
func (k SchemaKey) Validate() error {
	switch {
	case strings.TrimSpace(k.Namespace) == "":
		return ErrNamespaceRequired
	case strings.TrimSpace(k.Version) == "":
		return ErrVersionRequired
	default:
		return nil
	}
}

// ID derives the stable document identifier for the key.
func (k SchemaKey) ID() uuid.UUID {
	return SchemaID(k.Namespace, k.Version)
}

// Page describes an offset/size window over a search.
type Page struct {
	Offset int
	Size   int
}

// SetOptions carries the optional guards of an update.
type SetOptions struct {
	// ExpectedRevision rejects the write with a concurrency conflict when the
	// stored revision no longer matches. Nil means an unguarded upsert.
	ExpectedRevision *Revision
	UpdatedBy        string
}

// DeleteResult reports the outcome of deleting a single document.
type DeleteResult struct {
	ID      uuid.UUID
	Deleted bool
}

// BulkDeleteResult aggregates the outcome of deleting several documents.
type BulkDeleteResult struct {
	Deleted []uuid.UUID
	Missing []uuid.UUID
}

// SchemaPage is a page of documents matching a field search.
type SchemaPage struct {
	Schemas []SchemaDocument
	Total   int
}

// Registry is the contract exposed to the service facade.
type Registry interface {
	CreateSchema(ctx context.Context, doc SchemaDocument) (*SchemaDocument, error)
	GetSchema(ctx context.Context, id uuid.UUID) (*SchemaDocument, error)
	FindByNamespaceVersion(ctx context.Context, namespace, version string) (*SchemaDocument, error)
	SetSchema(ctx context.Context, doc SchemaDocument, opts SetOptions) (*SchemaDocument, error)
	GetSchemas(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]SchemaDocument, error)
	DeleteSchema(ctx context.Context, id uuid.UUID) (DeleteResult, error)
	DeleteSchemas(ctx context.Context, ids []uuid.UUID) (BulkDeleteResult, error)
	GetVersionsForNamespace(ctx context.Context, namespace string) ([]string, error)
	GetLatestVersion(ctx context.Context, namespace string) (string, error)
	GetNamespaceSummary(ctx context.Context) (map[string]int, error)
	FindSchemasByField(ctx context.Context, field, value string, page Page) (SchemaPage, error)
	GetSchemaType(ctx context.Context, namespace, version, typeName string) (TypeDefinition, error)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// Logger captures basic logging hooks used by the registry.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

// CloneTypes deep copies a type map one level into each definition.
func CloneTypes(src map[string]TypeDefinition) map[string]TypeDefinition {
	if src == nil {
		return nil
	}
	out := make(map[string]TypeDefinition, len(src))
	for name, def := range src {
		out[name] = CloneTypeDefinition(def)
	}
	return out
}

// CloneTypeDefinition copies the top level of a definition.
func CloneTypeDefinition(def TypeDefinition) TypeDefinition {
	if def == nil {
		return nil
	}
	out := make(TypeDefinition, len(def))
	for k, v := range def {
		out[k] = v
	}
	return out
}

var (
	// ErrNamespaceRequired indicates a blank or missing namespace.
	ErrNamespaceRequired = errors.New("schema-registry: namespace required")
	// ErrVersionRequired indicates a blank or missing version.
	ErrVersionRequired = errors.New("schema-registry: version required")
	// ErrInvalidVersion indicates the version is not a semantic version.
	ErrInvalidVersion = errors.New("schema-registry: version must be a semantic version")
	// ErrSchemaIDRequired indicates a lookup was issued without an id.
	ErrSchemaIDRequired = errors.New("schema-registry: schema id required")
	// ErrTypeNameRequired indicates a type lookup or mutation omitted the name.
	ErrTypeNameRequired = errors.New("schema-registry: type name required")
	// ErrUnknownField indicates a search or aggregation on a field the store does not index.
	ErrUnknownField = errors.New("schema-registry: unknown field")
	// ErrSchemaNotFound indicates no document exists for the id.
	ErrSchemaNotFound = errors.New("schema-registry: schema not found")
	// ErrSchemaTypeNotFound indicates the schema does not define the requested type.
	ErrSchemaTypeNotFound = errors.New("schema-registry: schema type not found")
	// ErrDuplicateSchema indicates the (namespace, version) pair is already registered.
	ErrDuplicateSchema = errors.New("schema-registry: schema already exists")
	// ErrConcurrencyConflict indicates the expected revision no longer matches the store.
	ErrConcurrencyConflict = errors.New("schema-registry: revision conflict")
	// ErrMissingRegistry occurs when the service was built without a registry.
	ErrMissingRegistry = errors.New("schema-registry: missing registry")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("schema-registry: service not ready")
)

// SchemaEvent is emitted after a schema document is written or removed.
type SchemaEvent struct {
	SchemaID   uuid.UUID
	Namespace  string
	Version    string
	Action     string
	Revision   Revision
	UpdatedBy  string
	OccurredAt time.Time
}

// Schema event actions.
const (
	SchemaActionCreated = "created"
	SchemaActionUpdated = "updated"
	SchemaActionDeleted = "deleted"
)

// Hooks groups optional callbacks invoked after registry writes complete.
type Hooks struct {
	AfterSchemaChange func(context.Context, SchemaEvent)
}
