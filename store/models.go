package store

import (
	"time"

	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TableName is the collection that holds schema documents.
const TableName = "object_schemas"

// Record models the persisted object_schemas row.
type Record struct {
	bun.BaseModel `bun:"table:object_schemas"`

	ID          uuid.UUID                 `bun:"id,pk,type:uuid"`
	Namespace   string                    `bun:"namespace,notnull"`
	Version     string                    `bun:"version,notnull"`
	Description string                    `bun:"description"`
	Types       map[string]map[string]any `bun:"types,type:jsonb"`
	Revision    int64                     `bun:"revision,notnull,default:1"`
	CreatedOn   time.Time                 `bun:"created_on,notnull"`
	UpdatedOn   time.Time                 `bun:"updated_on,notnull"`
	UpdatedBy   string                    `bun:"updated_by"`
}

// FromDocument converts a domain document into the bun model. The id is
// always re-derived from the natural key.
func FromDocument(doc types.SchemaDocument) *Record {
	rec := &Record{
		ID:          types.SchemaID(doc.Namespace, doc.Version),
		Namespace:   doc.Namespace,
		Version:     doc.Version,
		Description: doc.Description,
		Revision:    int64(doc.Revision),
		CreatedOn:   doc.CreatedOn,
		UpdatedOn:   doc.UpdatedOn,
		UpdatedBy:   doc.UpdatedBy,
	}
	if len(doc.Types) > 0 {
		rec.Types = make(map[string]map[string]any, len(doc.Types))
		for name, def := range doc.Types {
			rec.Types[name] = map[string]any(types.CloneTypeDefinition(def))
		}
	}
	return rec
}

// ToDocument converts the bun model into the domain document.
func ToDocument(rec *Record) types.SchemaDocument {
	if rec == nil {
		return types.SchemaDocument{}
	}
	doc := types.SchemaDocument{
		ID:          rec.ID,
		Namespace:   rec.Namespace,
		Version:     rec.Version,
		Description: rec.Description,
		Revision:    types.Revision(rec.Revision),
		CreatedOn:   rec.CreatedOn,
		UpdatedOn:   rec.UpdatedOn,
		UpdatedBy:   rec.UpdatedBy,
	}
	if len(rec.Types) > 0 {
		doc.Types = make(map[string]types.TypeDefinition, len(rec.Types))
		for name, def := range rec.Types {
			doc.Types[name] = types.CloneTypeDefinition(types.TypeDefinition(def))
		}
	}
	return doc
}
