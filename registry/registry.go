package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-schema-registry/pkg/schema"
	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/goliatone/go-schema-registry/store"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/goliatone/go-schema-registry/registry"

// Store is the document adapter the registry is layered on. *store.Store
// satisfies it.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*store.Record, error)
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*store.Record, error)
	Create(ctx context.Context, rec *store.Record) (*store.Record, error)
	Put(ctx context.Context, rec *store.Record, expected *types.Revision) (*store.Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (store.DeleteManyResult, error)
	SearchByFields(ctx context.Context, req store.SearchRequest) (store.SearchResult, error)
	SearchAggregateByField(ctx context.Context, field string) (map[string]int, error)
}

// Config wires the consistency layer.
type Config struct {
	Store Store
	// PageSize is the size of the first listing request. Zero defers to the
	// store default.
	PageSize int
	Clock    types.Clock
	Hooks    types.Hooks
	Logger   types.Logger
	// Tracer records a span per operation. Nil disables tracing.
	Tracer trace.Tracer
}

// Registry enforces uniqueness, optimistic updates, complete listings and
// namespace aggregation on top of a Store.
type Registry struct {
	store    Store
	pageSize int
	clock    types.Clock
	hooks    types.Hooks
	logger   types.Logger
	tracer   trace.Tracer
}

var _ types.Registry = (*Registry)(nil)

// New constructs the registry.
func New(cfg Config) (*Registry, error) {
	if cfg.Store == nil {
		return nil, errors.New("schema registry: store required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	pageSize := cfg.PageSize
	if pageSize < 0 {
		pageSize = 0
	}
	return &Registry{
		store:    cfg.Store,
		pageSize: pageSize,
		clock:    clock,
		hooks:    cfg.Hooks,
		logger:   logger,
		tracer:   tracer,
	}, nil
}

// CreateSchema registers a new (namespace, version) pair.
//
// The existence check and the write are two separate store calls, so two
// independent creators can both pass the check. The loser is still rejected
// because the derived id collides in the store's put-if-absent create, which
// is reported as DUPLICATE_SCHEMA as well.
func (r *Registry) CreateSchema(ctx context.Context, doc types.SchemaDocument) (created *types.SchemaDocument, err error) {
	ctx, span := r.start(ctx, "CreateSchema", keyAttributes(doc.Namespace, doc.Version)...)
	defer func() { finish(span, err) }()

	doc.Namespace = strings.TrimSpace(doc.Namespace)
	doc.Version = strings.TrimSpace(doc.Version)
	if err := schema.Validate(doc); err != nil {
		return nil, invalidArgument(err)
	}

	existing, err := r.store.SearchByFields(ctx, store.SearchRequest{
		Match: []store.FieldMatch{
			{Field: "namespace", Value: doc.Namespace},
			{Field: "version", Value: doc.Version},
		},
		Size: 1,
	})
	if err != nil {
		return nil, mapStoreError(err, doc.Key().ID())
	}
	if len(existing.Hits) > 0 {
		return nil, duplicateSchema(store.ToDocument(existing.Hits[0]))
	}

	now := r.clock.Now()
	rec := store.FromDocument(doc)
	rec.Revision = 1
	rec.CreatedOn = now
	rec.UpdatedOn = now

	stored, err := r.store.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			r.logger.Debug("schema create lost race", "id", rec.ID, "namespace", doc.Namespace, "version", doc.Version)
			return nil, duplicateSchema(r.conflicting(ctx, rec))
		}
		return nil, mapStoreError(err, rec.ID)
	}

	out := store.ToDocument(stored)
	r.emit(ctx, types.SchemaActionCreated, out)
	return &out, nil
}

// conflicting loads the document that won a create race. When it cannot be
// read the attempted key is reported instead.
func (r *Registry) conflicting(ctx context.Context, rec *store.Record) types.SchemaDocument {
	if winner, err := r.store.Get(ctx, rec.ID); err == nil {
		return store.ToDocument(winner)
	}
	return types.SchemaDocument{ID: rec.ID, Namespace: rec.Namespace, Version: rec.Version}
}

// SetSchema writes doc, creating it when absent. With an expected revision
// the write is rejected with CONCURRENCY_CONFLICT once the stored revision has
// moved on; no retry is attempted.
func (r *Registry) SetSchema(ctx context.Context, doc types.SchemaDocument, opts types.SetOptions) (saved *types.SchemaDocument, err error) {
	ctx, span := r.start(ctx, "SetSchema", keyAttributes(doc.Namespace, doc.Version)...)
	defer func() { finish(span, err) }()

	doc.Namespace = strings.TrimSpace(doc.Namespace)
	doc.Version = strings.TrimSpace(doc.Version)
	if err := schema.Validate(doc); err != nil {
		return nil, invalidArgument(err)
	}
	if opts.ExpectedRevision != nil {
		span.SetAttributes(attribute.Int64("schema.expected_revision", int64(*opts.ExpectedRevision)))
	}

	rec := store.FromDocument(doc)
	// created_on is owned by the store: kept on update, stamped on insert.
	rec.CreatedOn = time.Time{}
	rec.UpdatedOn = r.clock.Now()
	// updated_by names the author of this write only; a resubmitted document
	// never carries the previous author forward.
	rec.UpdatedBy = strings.TrimSpace(opts.UpdatedBy)

	stored, err := r.store.Put(ctx, rec, opts.ExpectedRevision)
	if err != nil {
		return nil, mapStoreError(err, rec.ID)
	}

	out := store.ToDocument(stored)
	action := types.SchemaActionUpdated
	if out.Revision == 1 {
		action = types.SchemaActionCreated
	}
	r.emit(ctx, action, out)
	return &out, nil
}

// GetSchema reads a document by id.
func (r *Registry) GetSchema(ctx context.Context, id uuid.UUID) (doc *types.SchemaDocument, err error) {
	ctx, span := r.start(ctx, "GetSchema", attribute.String("schema.id", id.String()))
	defer func() { finish(span, err) }()

	if id == uuid.Nil {
		return nil, invalidArgument(types.ErrSchemaIDRequired)
	}
	return r.get(ctx, id)
}

func (r *Registry) get(ctx context.Context, id uuid.UUID) (*types.SchemaDocument, error) {
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, id)
	}
	out := store.ToDocument(rec)
	return &out, nil
}

// FindByNamespaceVersion reads a document by its natural key. Blank key
// fields are rejected before the store is contacted.
func (r *Registry) FindByNamespaceVersion(ctx context.Context, namespace, version string) (doc *types.SchemaDocument, err error) {
	ctx, span := r.start(ctx, "FindByNamespaceVersion", keyAttributes(namespace, version)...)
	defer func() { finish(span, err) }()

	key := types.SchemaKey{Namespace: namespace, Version: version}
	if err := key.Validate(); err != nil {
		return nil, invalidArgument(err)
	}
	return r.get(ctx, key.ID())
}

// GetSchemas reads several documents. Ids that do not exist are omitted.
func (r *Registry) GetSchemas(ctx context.Context, ids []uuid.UUID) (docs map[uuid.UUID]types.SchemaDocument, err error) {
	ctx, span := r.start(ctx, "GetSchemas", attribute.Int("schema.ids", len(ids)))
	defer func() { finish(span, err) }()

	records, err := r.store.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	docs = make(map[uuid.UUID]types.SchemaDocument, len(records))
	for id, rec := range records {
		docs[id] = store.ToDocument(rec)
	}
	return docs, nil
}

// DeleteSchema removes a document. Deleting an id that does not exist is not
// an error; the result reports Deleted=false instead.
func (r *Registry) DeleteSchema(ctx context.Context, id uuid.UUID) (result types.DeleteResult, err error) {
	ctx, span := r.start(ctx, "DeleteSchema", attribute.String("schema.id", id.String()))
	defer func() { finish(span, err) }()

	result.ID = id
	if id == uuid.Nil {
		return result, invalidArgument(types.ErrSchemaIDRequired)
	}
	if err := r.store.Delete(ctx, id); err != nil {
		if errors.Is(err, types.ErrSchemaNotFound) {
			span.SetAttributes(attribute.Bool("schema.deleted", false))
			return result, nil
		}
		return result, mapStoreError(err, id)
	}
	result.Deleted = true
	r.emit(ctx, types.SchemaActionDeleted, types.SchemaDocument{ID: id})
	return result, nil
}

// DeleteSchemas removes several documents and reports which ids were absent.
func (r *Registry) DeleteSchemas(ctx context.Context, ids []uuid.UUID) (result types.BulkDeleteResult, err error) {
	ctx, span := r.start(ctx, "DeleteSchemas", attribute.Int("schema.ids", len(ids)))
	defer func() { finish(span, err) }()

	res, err := r.store.DeleteMany(ctx, ids)
	if err != nil {
		return result, err
	}
	result.Deleted = res.Deleted
	result.Missing = res.Missing
	for _, id := range res.Deleted {
		r.emit(ctx, types.SchemaActionDeleted, types.SchemaDocument{ID: id})
	}
	return result, nil
}

// GetVersionsForNamespace returns every version registered under namespace.
//
// The first request uses the default page size. While fewer versions than the
// first reported total have been collected, a follow-up is issued at the
// current offset sized to the remainder, so a store that truncates pages is
// still drained. The total is not re-read between requests: writes landing in
// between may leave the result short or long of the live count. An empty page
// ends the listing. Order is unspecified.
func (r *Registry) GetVersionsForNamespace(ctx context.Context, namespace string) (versions []string, err error) {
	ctx, span := r.start(ctx, "GetVersionsForNamespace", attribute.String("schema.namespace", namespace))
	defer func() { finish(span, err) }()

	namespace = strings.TrimSpace(namespace)
	if namespace == "" {
		return nil, invalidArgument(types.ErrNamespaceRequired)
	}

	req := store.SearchRequest{
		Match:  []store.FieldMatch{{Field: "namespace", Value: namespace}},
		Size:   r.pageSize,
		Fields: []string{"version"},
	}
	total := -1
	requests := 0
	versions = []string{}
	for {
		res, err := r.store.SearchByFields(ctx, req)
		if err != nil {
			return nil, mapStoreError(err, uuid.Nil)
		}
		requests++
		if total < 0 {
			total = res.Total
		}
		for _, hit := range res.Hits {
			versions = append(versions, hit.Version)
		}
		if len(versions) >= total || len(res.Hits) == 0 {
			break
		}
		req.Offset = len(versions)
		req.Size = total - len(versions)
	}
	span.SetAttributes(
		attribute.Int("schema.total", total),
		attribute.Int("schema.requests", requests),
	)
	r.logger.Debug("namespace versions listed", "namespace", namespace, "total", total, "versions", len(versions), "requests", requests)
	return versions, nil
}

// GetLatestVersion returns the highest semantic version registered under
// namespace.
func (r *Registry) GetLatestVersion(ctx context.Context, namespace string) (latest string, err error) {
	ctx, span := r.start(ctx, "GetLatestVersion", attribute.String("schema.namespace", namespace))
	defer func() { finish(span, err) }()

	versions, err := r.GetVersionsForNamespace(ctx, namespace)
	if err != nil {
		return "", err
	}
	for _, version := range versions {
		if latest == "" || schema.CompareVersions(version, latest) > 0 {
			latest = version
		}
	}
	if latest == "" {
		return "", namespaceNotFound(strings.TrimSpace(namespace))
	}
	return latest, nil
}

// GetNamespaceSummary maps each namespace to its number of versions, exactly
// as counted by the store. An empty registry yields an empty map.
func (r *Registry) GetNamespaceSummary(ctx context.Context) (summary map[string]int, err error) {
	ctx, span := r.start(ctx, "GetNamespaceSummary")
	defer func() { finish(span, err) }()

	buckets, err := r.store.SearchAggregateByField(ctx, "namespace")
	if err != nil {
		return nil, mapStoreError(err, uuid.Nil)
	}
	summary = make(map[string]int, len(buckets))
	for namespace, count := range buckets {
		summary[namespace] = count
	}
	span.SetAttributes(attribute.Int("schema.namespaces", len(summary)))
	return summary, nil
}

// FindSchemasByField returns one page of documents whose field equals value.
func (r *Registry) FindSchemasByField(ctx context.Context, field, value string, page types.Page) (result types.SchemaPage, err error) {
	ctx, span := r.start(ctx, "FindSchemasByField",
		attribute.String("schema.field", field),
		attribute.Int("schema.offset", page.Offset),
		attribute.Int("schema.size", page.Size),
	)
	defer func() { finish(span, err) }()

	field = strings.TrimSpace(field)
	if field == "" {
		return result, invalidArgument(fmt.Errorf("%w: field required", types.ErrUnknownField))
	}
	res, err := r.store.SearchByFields(ctx, store.SearchRequest{
		Match:  []store.FieldMatch{{Field: field, Value: value}},
		Offset: page.Offset,
		Size:   page.Size,
	})
	if err != nil {
		return result, mapStoreError(err, uuid.Nil)
	}
	result.Total = res.Total
	result.Schemas = make([]types.SchemaDocument, 0, len(res.Hits))
	for _, hit := range res.Hits {
		result.Schemas = append(result.Schemas, store.ToDocument(hit))
	}
	return result, nil
}

// GetSchemaType returns a named type definition from a registered schema.
func (r *Registry) GetSchemaType(ctx context.Context, namespace, version, typeName string) (def types.TypeDefinition, err error) {
	ctx, span := r.start(ctx, "GetSchemaType", append(keyAttributes(namespace, version), attribute.String("schema.type", typeName))...)
	defer func() { finish(span, err) }()

	key := types.SchemaKey{Namespace: namespace, Version: version}
	if err := key.Validate(); err != nil {
		return nil, invalidArgument(err)
	}
	typeName = strings.TrimSpace(typeName)
	if typeName == "" {
		return nil, invalidArgument(types.ErrTypeNameRequired)
	}
	doc, err := r.get(ctx, key.ID())
	if err != nil {
		return nil, err
	}
	def, ok := doc.Type(typeName)
	if !ok {
		return nil, schemaTypeNotFound(key, typeName)
	}
	return def, nil
}

func (r *Registry) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "registry."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func keyAttributes(namespace, version string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("schema.namespace", namespace),
		attribute.String("schema.version", version),
	}
}

func (r *Registry) emit(ctx context.Context, action string, doc types.SchemaDocument) {
	if r.hooks.AfterSchemaChange == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("schema hook panic", errors.New("panic in AfterSchemaChange"), "panic", rec)
		}
	}()
	r.hooks.AfterSchemaChange(ctx, types.SchemaEvent{
		SchemaID:   doc.ID,
		Namespace:  doc.Namespace,
		Version:    doc.Version,
		Action:     action,
		Revision:   doc.Revision,
		UpdatedBy:  doc.UpdatedBy,
		OccurredAt: r.clock.Now(),
	})
}
