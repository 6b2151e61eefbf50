package registry

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/goliatone/go-schema-registry/store"
	"github.com/google/uuid"
)

// Text codes attached to registry failures so transports can map them
// without inspecting messages.
const (
	TextCodeInvalidArgument     = "INVALID_ARGUMENT"
	TextCodeDuplicateSchema     = "DUPLICATE_SCHEMA"
	TextCodeSchemaNotFound      = "SCHEMA_NOT_FOUND"
	TextCodeSchemaTypeNotFound  = "SCHEMA_TYPE_NOT_FOUND"
	TextCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

const metadataSchemaKey = "schema"

func invalidArgument(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeInvalidArgument)
}

func duplicateSchema(existing types.SchemaDocument) error {
	return goerrors.New("schema already registered for namespace and version", goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeDuplicateSchema).
		WithMetadata(map[string]any{
			"id":              existing.ID.String(),
			"namespace":       existing.Namespace,
			"version":         existing.Version,
			metadataSchemaKey: existing.Clone(),
		})
}

func schemaNotFound(err error, id uuid.UUID) error {
	return goerrors.Wrap(err, goerrors.CategoryNotFound, "schema not found").
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeSchemaNotFound).
		WithMetadata(map[string]any{"id": id.String()})
}

func schemaTypeNotFound(key types.SchemaKey, typeName string) error {
	return goerrors.Wrap(types.ErrSchemaTypeNotFound, goerrors.CategoryNotFound, "schema type not found").
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeSchemaTypeNotFound).
		WithMetadata(map[string]any{
			"namespace": key.Namespace,
			"version":   key.Version,
			"type":      typeName,
		})
}

func concurrencyConflict(err error, id uuid.UUID) error {
	return goerrors.Wrap(err, goerrors.CategoryConflict, "schema was modified concurrently").
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeConcurrencyConflict).
		WithMetadata(map[string]any{"id": id.String()})
}

// mapStoreError lifts the adapter sentinels into rich registry errors.
// Anything unrecognised is a transport failure and is returned unchanged.
func mapStoreError(err error, id uuid.UUID) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, types.ErrSchemaNotFound):
		return schemaNotFound(err, id)
	case errors.Is(err, types.ErrConcurrencyConflict):
		return concurrencyConflict(err, id)
	case errors.Is(err, types.ErrUnknownField):
		return invalidArgument(err)
	default:
		return err
	}
}

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if !errors.As(err, &rich) || rich == nil {
		return false
	}
	return rich.TextCode == code
}

// IsInvalidArgument reports whether err rejected caller input before any I/O.
func IsInvalidArgument(err error) bool {
	return hasTextCode(err, TextCodeInvalidArgument)
}

// IsDuplicateSchema reports whether err rejected a create for an existing
// namespace and version.
func IsDuplicateSchema(err error) bool {
	return hasTextCode(err, TextCodeDuplicateSchema) || errors.Is(err, store.ErrDuplicateID)
}

// IsNotFound reports whether err is a missing schema or a missing type.
func IsNotFound(err error) bool {
	return hasTextCode(err, TextCodeSchemaNotFound) ||
		hasTextCode(err, TextCodeSchemaTypeNotFound) ||
		errors.Is(err, types.ErrSchemaNotFound)
}

// IsConcurrencyConflict reports whether a guarded write lost to another writer.
// Callers re-read and retry.
func IsConcurrencyConflict(err error) bool {
	return hasTextCode(err, TextCodeConcurrencyConflict) || errors.Is(err, types.ErrConcurrencyConflict)
}

// ConflictingSchema returns the document carried by a DUPLICATE_SCHEMA error.
func ConflictingSchema(err error) (types.SchemaDocument, bool) {
	var rich *goerrors.Error
	if !errors.As(err, &rich) || rich == nil || rich.TextCode != TextCodeDuplicateSchema {
		return types.SchemaDocument{}, false
	}
	doc, ok := rich.Metadata[metadataSchemaKey].(types.SchemaDocument)
	return doc, ok
}

func namespaceNotFound(namespace string) error {
	return goerrors.Wrap(types.ErrSchemaNotFound, goerrors.CategoryNotFound, "no schema registered for namespace").
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeSchemaNotFound).
		WithMetadata(map[string]any{"namespace": namespace})
}
