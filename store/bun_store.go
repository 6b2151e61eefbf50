package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// DefaultPageSize mirrors the page a document store returns when the
	// caller does not ask for a size.
	DefaultPageSize = 10
)

// Config wires the Bun-backed schema store. It is built once by the host and
// shared by reference with the registry.
type Config struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	// DefaultPageSize applies when a search omits its size. Zero uses DefaultPageSize.
	DefaultPageSize int
	// MaxPageSize truncates larger page requests. Zero disables the cap.
	MaxPageSize int
	Clock       types.Clock
	Logger      types.Logger
}

// Store translates registry operations into document CRUD, field search and
// term aggregation against the object_schemas collection.
type Store struct {
	records         repository.Repository[*Record]
	db              *bun.DB
	defaultPageSize int
	maxPageSize     int
	clock           types.Clock
	logger          types.Logger
}

// SearchableFields lists the fields accepted by equality search and aggregation.
var SearchableFields = map[string]struct{}{
	"id":        {},
	"namespace": {},
	"version":   {},
}

var returnableFields = map[string]struct{}{
	"id":          {},
	"namespace":   {},
	"version":     {},
	"description": {},
	"types":       {},
	"revision":    {},
	"created_on":  {},
	"updated_on":  {},
	"updated_by":  {},
}

// FieldMatch is a single equality condition.
type FieldMatch struct {
	Field string
	Value string
}

// SearchRequest describes an AND-equality search with pagination and an
// optional field projection.
type SearchRequest struct {
	Match  []FieldMatch
	Offset int
	Size   int
	Fields []string
}

// SearchResult pairs the total match count with the requested page.
type SearchResult struct {
	Total int
	Hits  []*Record
}

// DeleteManyResult reports which ids were removed and which were absent.
type DeleteManyResult struct {
	Deleted []uuid.UUID
	Missing []uuid.UUID
}

// New constructs the default schema store.
func New(cfg Config) (*Store, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("store: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
			GetIdentifier: func() string {
				return "namespace"
			},
		})
	}
	db := cfg.DB
	if db == nil {
		if withDB, ok := repo.(interface{ DB() *bun.DB }); ok {
			db = withDB.DB()
		}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	pageSize := cfg.DefaultPageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	maxPage := cfg.MaxPageSize
	if maxPage < 0 {
		maxPage = 0
	}
	return &Store{
		records:         repo,
		db:              db,
		defaultPageSize: pageSize,
		maxPageSize:     maxPage,
		clock:           clock,
		logger:          logger,
	}, nil
}

// EnsureMapping declares the collection and its indexes. It is meant for
// environment setup and is safe to call repeatedly.
func (s *Store) EnsureMapping(ctx context.Context) error {
	if s.db == nil {
		return ErrDBRequired
	}
	if _, err := s.db.NewCreateTable().
		Model((*Record)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("store: create %s: %w", TableName, err)
	}
	indexes := []struct {
		name    string
		columns []string
	}{
		{name: TableName + "_namespace_idx", columns: []string{"namespace"}},
		{name: TableName + "_namespace_version_idx", columns: []string{"namespace", "version"}},
	}
	for _, idx := range indexes {
		if _, err := s.db.NewCreateIndex().
			Model((*Record)(nil)).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("store: create index %s: %w", idx.name, err)
		}
	}
	s.logger.Debug("store mapping ensured", "table", TableName)
	return nil
}

// Get returns the document stored under id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := s.records.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrSchemaNotFound, id)
		}
		return nil, err
	}
	return rec, nil
}

// GetMany returns the documents found for ids. Missing ids are absent from
// the result.
func (s *Store) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Record, error) {
	ids = uniqueIDs(ids)
	out := make(map[uuid.UUID]*Record, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	records, _, err := s.records.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id IN (?)", bun.In(ids)).Limit(len(ids))
	})
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		out[rec.ID] = rec
	}
	return out, nil
}

// Create inserts rec only when no document exists under its id. A collision
// returns ErrDuplicateID.
func (s *Store) Create(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, ErrRecordRequired
	}
	if rec.Revision <= 0 {
		rec.Revision = 1
	}
	now := s.clock.Now()
	if rec.CreatedOn.IsZero() {
		rec.CreatedOn = now
	}
	if rec.UpdatedOn.IsZero() {
		rec.UpdatedOn = rec.CreatedOn
	}
	created, err := s.records.Create(ctx, rec)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, rec.ID)
		}
		return nil, err
	}
	return created, nil
}

// Put writes rec, creating it when absent. When expected is supplied the
// write only lands if the stored revision still equals it; otherwise
// ErrConcurrencyConflict is returned. created_on is never overwritten.
func (s *Store) Put(ctx context.Context, rec *Record, expected *types.Revision) (*Record, error) {
	if rec == nil {
		return nil, ErrRecordRequired
	}
	if expected != nil {
		return s.update(ctx, rec, int64(*expected))
	}

	current, err := s.Get(ctx, rec.ID)
	switch {
	case err == nil:
		rec.CreatedOn = current.CreatedOn
		return s.update(ctx, rec, current.Revision)
	case errors.Is(err, types.ErrSchemaNotFound):
		rec.Revision = 1
		created, err := s.Create(ctx, rec)
		if errors.Is(err, ErrDuplicateID) {
			// Another writer created the document between our read and insert.
			return nil, fmt.Errorf("%w: %s created concurrently", types.ErrConcurrencyConflict, rec.ID)
		}
		return created, err
	default:
		return nil, err
	}
}

func (s *Store) update(ctx context.Context, rec *Record, expected int64) (*Record, error) {
	if s.db == nil {
		return nil, ErrDBRequired
	}
	next := *rec
	next.Revision = expected + 1
	res, err := s.db.NewUpdate().
		Model(&next).
		Column("namespace", "version", "description", "types", "revision", "updated_on", "updated_by").
		WherePK().
		Where("revision = ?", expected).
		Exec(ctx)
	if err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(s.db))
	}
	if err := repository.SQLExpectedCount(res, 1); err != nil {
		if repository.IsSQLExpectedCountViolation(err) {
			return nil, fmt.Errorf("%w: %s is not at revision %d", types.ErrConcurrencyConflict, rec.ID, expected)
		}
		return nil, err
	}
	if next.CreatedOn.IsZero() {
		if fresh, err := s.Get(ctx, next.ID); err == nil {
			next.CreatedOn = fresh.CreatedOn
		}
	}
	return &next, nil
}

// Delete removes the document stored under id, returning ErrSchemaNotFound
// when nothing was removed.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if s.db == nil {
		return ErrDBRequired
	}
	res, err := s.db.NewDelete().
		Model((*Record)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return repository.MapDatabaseError(err, repository.DetectDriver(s.db))
	}
	if err := repository.SQLExpectedCount(res, 1); err != nil {
		if repository.IsSQLExpectedCountViolation(err) {
			return fmt.Errorf("%w: %s", types.ErrSchemaNotFound, id)
		}
		return err
	}
	return nil
}

// DeleteMany removes every existing document among ids.
func (s *Store) DeleteMany(ctx context.Context, ids []uuid.UUID) (DeleteManyResult, error) {
	result := DeleteManyResult{}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return result, nil
	}
	found, err := s.GetMany(ctx, ids)
	if err != nil {
		return result, err
	}
	existing := make([]uuid.UUID, 0, len(found))
	for _, id := range ids {
		if _, ok := found[id]; ok {
			existing = append(existing, id)
			continue
		}
		result.Missing = append(result.Missing, id)
	}
	if len(existing) == 0 {
		return result, nil
	}
	if s.db == nil {
		return result, ErrDBRequired
	}
	if _, err := s.db.NewDelete().
		Model((*Record)(nil)).
		Where("id IN (?)", bun.In(existing)).
		Exec(ctx); err != nil {
		return result, repository.MapDatabaseError(err, repository.DetectDriver(s.db))
	}
	result.Deleted = existing
	return result, nil
}

// SearchByField runs a single-field equality search.
func (s *Store) SearchByField(ctx context.Context, field, value string, page types.Page, fields ...string) (SearchResult, error) {
	return s.SearchByFields(ctx, SearchRequest{
		Match:  []FieldMatch{{Field: field, Value: value}},
		Offset: page.Offset,
		Size:   page.Size,
		Fields: fields,
	})
}

// SearchByFields runs an AND-equality search. Total counts every match; Hits
// holds at most one page, which may be shorter than requested when the store
// caps page sizes.
func (s *Store) SearchByFields(ctx context.Context, req SearchRequest) (SearchResult, error) {
	for _, match := range req.Match {
		if err := checkField(SearchableFields, match.Field); err != nil {
			return SearchResult{}, err
		}
	}
	projection, err := projectFields(req.Fields)
	if err != nil {
		return SearchResult{}, err
	}
	size := s.pageSize(req.Size)
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	records, total, err := s.records.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, match := range req.Match {
			q = q.Where("? = ?", bun.Ident(match.Field), match.Value)
		}
		if len(projection) > 0 {
			q = q.Column(projection...)
		}
		return q.OrderExpr("id ASC").
			Limit(size).
			Offset(offset)
	})
	if err != nil {
		return SearchResult{}, err
	}
	s.logger.Debug("store search", "matches", req.Match, "offset", offset, "size", size, "total", total, "hits", len(records))
	return SearchResult{Total: total, Hits: records}, nil
}

// SearchAggregateByField counts documents per distinct value of field. An
// empty collection yields an empty map.
func (s *Store) SearchAggregateByField(ctx context.Context, field string) (map[string]int, error) {
	if err := checkField(SearchableFields, field); err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, ErrDBRequired
	}
	type bucket struct {
		Value string `bun:"value"`
		Total int    `bun:"total"`
	}
	var rows []bucket
	err := s.db.NewSelect().
		Table(TableName).
		ColumnExpr("? AS value", bun.Ident(field)).
		ColumnExpr("COUNT(*) AS total").
		Group(field).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Value] = row.Total
	}
	return out, nil
}

func (s *Store) pageSize(requested int) int {
	size := requested
	if size <= 0 {
		size = s.defaultPageSize
	}
	if s.maxPageSize > 0 && size > s.maxPageSize {
		size = s.maxPageSize
	}
	return size
}

func checkField(allowed map[string]struct{}, field string) error {
	if _, ok := allowed[strings.TrimSpace(field)]; !ok {
		return fmt.Errorf("%w: %q", types.ErrUnknownField, field)
	}
	return nil
}

func projectFields(fields []string) ([]string, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := []string{"id"}
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if err := checkField(returnableFields, field); err != nil {
			return nil, err
		}
		if field == "id" {
			continue
		}
		out = append(out, field)
	}
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
