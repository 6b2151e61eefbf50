package command

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateSchemaCommand_CopiesResult(t *testing.T) {
	reg := newFakeRegistry()
	cmd := NewCreateSchemaCommand(reg, nil)

	result := &types.SchemaDocument{}
	err := cmd.Execute(context.Background(), CreateSchemaInput{
		Schema: types.SchemaDocument{Namespace: "ns://a", Version: "1.0.0"},
		Result: result,
	})
	require.NoError(t, err)
	require.Equal(t, types.SchemaID("ns://a", "1.0.0"), result.ID)
	require.Equal(t, types.Revision(1), result.Revision)
	require.Equal(t, 1, reg.creates)
}

func TestCreateSchemaCommand_ValidatesBeforeRegistry(t *testing.T) {
	reg := newFakeRegistry()
	cmd := NewCreateSchemaCommand(reg, nil)

	err := cmd.Execute(context.Background(), CreateSchemaInput{
		Schema: types.SchemaDocument{Version: "1.0.0"},
	})
	require.ErrorIs(t, err, ErrNamespaceRequired)

	err = cmd.Execute(context.Background(), CreateSchemaInput{
		Schema: types.SchemaDocument{Namespace: "ns://a"},
	})
	require.ErrorIs(t, err, ErrVersionRequired)
	require.Zero(t, reg.creates)
}

func TestCreateSchemaCommand_PropagatesDuplicate(t *testing.T) {
	reg := newFakeRegistry()
	cmd := NewCreateSchemaCommand(reg, nil)
	input := CreateSchemaInput{Schema: types.SchemaDocument{Namespace: "ns://a", Version: "1.0.0"}}

	require.NoError(t, cmd.Execute(context.Background(), input))
	require.ErrorIs(t, cmd.Execute(context.Background(), input), types.ErrDuplicateSchema)
}

func TestSetSchemaCommand_ForwardsRevisionAndActor(t *testing.T) {
	reg := newFakeRegistry()
	cmd := NewSetSchemaCommand(reg, nil)

	result := &types.SchemaDocument{}
	err := cmd.Execute(context.Background(), SetSchemaInput{
		Schema:           types.SchemaDocument{Namespace: "ns://a", Version: "1.0.0"},
		ExpectedRevision: types.RevisionPtr(3),
		UpdatedBy:        "  ops ",
		Result:           result,
	})
	require.NoError(t, err)
	require.NotNil(t, reg.lastSet.ExpectedRevision)
	require.Equal(t, types.Revision(3), *reg.lastSet.ExpectedRevision)
	require.Equal(t, "ops", reg.lastSet.UpdatedBy)
	require.Equal(t, "ops", result.UpdatedBy)
}

func TestSetSchemaCommand_PropagatesConflict(t *testing.T) {
	reg := newFakeRegistry()
	reg.setErr = types.ErrConcurrencyConflict
	cmd := NewSetSchemaCommand(reg, nil)

	err := cmd.Execute(context.Background(), SetSchemaInput{
		Schema:           types.SchemaDocument{Namespace: "ns://a", Version: "1.0.0"},
		ExpectedRevision: types.RevisionPtr(1),
	})
	require.ErrorIs(t, err, types.ErrConcurrencyConflict)
}

func TestDeleteSchemaCommand(t *testing.T) {
	reg := newFakeRegistry()
	id := types.SchemaID("ns://a", "1.0.0")
	reg.docs[id] = types.SchemaDocument{ID: id}
	cmd := NewDeleteSchemaCommand(reg, nil)

	require.ErrorIs(t, cmd.Execute(context.Background(), DeleteSchemaInput{}), ErrSchemaIDRequired)

	result := &types.DeleteResult{}
	require.NoError(t, cmd.Execute(context.Background(), DeleteSchemaInput{SchemaID: id, Result: result}))
	require.True(t, result.Deleted)

	require.NoError(t, cmd.Execute(context.Background(), DeleteSchemaInput{SchemaID: id, Result: result}))
	require.False(t, result.Deleted)
}

func TestDeleteSchemaCommand_ByNamespaceVersion(t *testing.T) {
	reg := newFakeRegistry()
	id := types.SchemaID("ns://a", "1.0.0")
	reg.docs[id] = types.SchemaDocument{ID: id, Namespace: "ns://a", Version: "1.0.0"}
	cmd := NewDeleteSchemaCommand(reg, nil)

	require.ErrorIs(t, cmd.Execute(context.Background(), DeleteSchemaInput{Version: "1.0.0"}), ErrNamespaceRequired)
	require.ErrorIs(t, cmd.Execute(context.Background(), DeleteSchemaInput{Namespace: "ns://a", Version: " "}), ErrVersionRequired)

	result := &types.DeleteResult{}
	require.NoError(t, cmd.Execute(context.Background(), DeleteSchemaInput{
		Namespace: " ns://a ",
		Version:   "1.0.0",
		Result:    result,
	}))
	require.True(t, result.Deleted)
	require.Equal(t, id, result.ID)
	require.NotContains(t, reg.docs, id)
}

func TestDeleteSchemasCommand(t *testing.T) {
	reg := newFakeRegistry()
	a := types.SchemaID("ns://a", "1.0.0")
	b := types.SchemaID("ns://a", "2.0.0")
	reg.docs[a] = types.SchemaDocument{ID: a}
	cmd := NewDeleteSchemasCommand(reg, nil)

	require.ErrorIs(t, cmd.Execute(context.Background(), DeleteSchemasInput{}), ErrSchemaIDsRequired)
	require.ErrorIs(t, cmd.Execute(context.Background(), DeleteSchemasInput{SchemaIDs: []uuid.UUID{uuid.Nil}}), ErrSchemaIDRequired)

	result := &types.BulkDeleteResult{}
	require.NoError(t, cmd.Execute(context.Background(), DeleteSchemasInput{SchemaIDs: []uuid.UUID{a, b}, Result: result}))
	require.Equal(t, []uuid.UUID{a}, result.Deleted)
	require.Equal(t, []uuid.UUID{b}, result.Missing)
}

func TestCommandsRequireRegistry(t *testing.T) {
	ctx := context.Background()
	doc := types.SchemaDocument{Namespace: "ns://a", Version: "1.0.0"}

	require.ErrorIs(t, NewCreateSchemaCommand(nil, nil).Execute(ctx, CreateSchemaInput{Schema: doc}), types.ErrMissingRegistry)
	require.ErrorIs(t, NewSetSchemaCommand(nil, nil).Execute(ctx, SetSchemaInput{Schema: doc}), types.ErrMissingRegistry)
	require.ErrorIs(t, NewDeleteSchemaCommand(nil, nil).Execute(ctx, DeleteSchemaInput{SchemaID: doc.Key().ID()}), types.ErrMissingRegistry)
	require.ErrorIs(t, NewDeleteSchemasCommand(nil, nil).Execute(ctx, DeleteSchemasInput{SchemaIDs: []uuid.UUID{doc.Key().ID()}}), types.ErrMissingRegistry)
}

type fakeRegistry struct {
	docs    map[uuid.UUID]types.SchemaDocument
	creates int
	lastSet types.SetOptions
	setErr  error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{docs: make(map[uuid.UUID]types.SchemaDocument)}
}

var _ types.Registry = (*fakeRegistry)(nil)

func (f *fakeRegistry) CreateSchema(_ context.Context, doc types.SchemaDocument) (*types.SchemaDocument, error) {
	doc.ID = doc.Key().ID()
	if _, ok := f.docs[doc.ID]; ok {
		return nil, types.ErrDuplicateSchema
	}
	f.creates++
	doc.Revision = 1
	f.docs[doc.ID] = doc
	return &doc, nil
}

func (f *fakeRegistry) GetSchema(_ context.Context, id uuid.UUID) (*types.SchemaDocument, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, types.ErrSchemaNotFound
	}
	return &doc, nil
}

func (f *fakeRegistry) FindByNamespaceVersion(ctx context.Context, namespace, version string) (*types.SchemaDocument, error) {
	return f.GetSchema(ctx, types.SchemaID(namespace, version))
}

func (f *fakeRegistry) SetSchema(_ context.Context, doc types.SchemaDocument, opts types.SetOptions) (*types.SchemaDocument, error) {
	f.lastSet = opts
	if f.setErr != nil {
		return nil, f.setErr
	}
	doc.ID = doc.Key().ID()
	doc.Revision = f.docs[doc.ID].Revision + 1
	doc.UpdatedBy = opts.UpdatedBy
	f.docs[doc.ID] = doc
	return &doc, nil
}

func (f *fakeRegistry) GetSchemas(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]types.SchemaDocument, error) {
	out := make(map[uuid.UUID]types.SchemaDocument)
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			out[id] = doc
		}
	}
	return out, nil
}

func (f *fakeRegistry) DeleteSchema(_ context.Context, id uuid.UUID) (types.DeleteResult, error) {
	if _, ok := f.docs[id]; !ok {
		return types.DeleteResult{ID: id}, nil
	}
	delete(f.docs, id)
	return types.DeleteResult{ID: id, Deleted: true}, nil
}

func (f *fakeRegistry) DeleteSchemas(ctx context.Context, ids []uuid.UUID) (types.BulkDeleteResult, error) {
	result := types.BulkDeleteResult{}
	for _, id := range ids {
		res, _ := f.DeleteSchema(ctx, id)
		if res.Deleted {
			result.Deleted = append(result.Deleted, id)
			continue
		}
		result.Missing = append(result.Missing, id)
	}
	return result, nil
}

func (f *fakeRegistry) GetVersionsForNamespace(context.Context, string) ([]string, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRegistry) GetLatestVersion(context.Context, string) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeRegistry) GetNamespaceSummary(context.Context) (map[string]int, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRegistry) FindSchemasByField(context.Context, string, string, types.Page) (types.SchemaPage, error) {
	return types.SchemaPage{}, errors.New("not implemented")
}

func (f *fakeRegistry) GetSchemaType(context.Context, string, string, string) (types.TypeDefinition, error) {
	return nil, errors.New("not implemented")
}
