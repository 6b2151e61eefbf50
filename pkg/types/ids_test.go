package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSchemaID_Deterministic(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		namespace := rapid.StringMatching(`ns://[a-z]{1,12}(/[a-z]{1,8}){0,3}`).Draw(r, "namespace")
		version := rapid.StringMatching(`[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}`).Draw(r, "version")

		first := SchemaID(namespace, version)
		second := SchemaID(namespace, version)
		if first != second {
			r.Fatalf("expected stable id for %s@%s, got %s and %s", namespace, version, first, second)
		}
		if first.Version() != 5 {
			r.Fatalf("expected name-based uuid, got version %d", first.Version())
		}
	})
}

func TestSchemaID_KnownValueAcrossProcesses(t *testing.T) {
	// Pinned value: a change here means every stored document was re-keyed.
	want := uuid.NewSHA1(SchemaIDNamespace, []byte("ns://runrightfast.co/couchbase\x001.0.0"))
	require.Equal(t, want, SchemaID("ns://runrightfast.co/couchbase", "1.0.0"))
	require.Equal(t, want, SchemaID("  ns://runrightfast.co/couchbase ", "1.0.0 "))
}

func TestSchemaID_DistinctKeys(t *testing.T) {
	require.NotEqual(t, SchemaID("ns://a", "1.0.0"), SchemaID("ns://a", "1.0.1"))
	require.NotEqual(t, SchemaID("ns://a", "1.0.0"), SchemaID("ns://b", "1.0.0"))
	// The separator keeps concatenation ambiguities apart.
	require.NotEqual(t, SchemaID("ns://a1", ".0.0"), SchemaID("ns://a", "1.0.0"))
}

func TestSchemaKey_Validate(t *testing.T) {
	require.ErrorIs(t, SchemaKey{Version: "1.0.0"}.Validate(), ErrNamespaceRequired)
	require.ErrorIs(t, SchemaKey{Namespace: "  ", Version: "1.0.0"}.Validate(), ErrNamespaceRequired)
	require.ErrorIs(t, SchemaKey{Namespace: "ns://a"}.Validate(), ErrVersionRequired)
	require.NoError(t, SchemaKey{Namespace: "ns://a", Version: "1.0.0"}.Validate())
	require.Equal(t, SchemaID("ns://a", "1.0.0"), SchemaKey{Namespace: "ns://a", Version: "1.0.0"}.ID())
}

func TestSchemaDocument_AddTypeClones(t *testing.T) {
	doc := SchemaDocument{Namespace: "ns://a", Version: "1.0.0"}
	def := TypeDefinition{"kind": "object"}
	require.NoError(t, doc.AddType("Config", def))
	require.ErrorIs(t, doc.AddType(" ", def), ErrTypeNameRequired)

	def["kind"] = "mutated"
	got, ok := doc.Type("Config")
	require.True(t, ok)
	require.Equal(t, "object", got["kind"])

	_, ok = doc.Type("Missing")
	require.False(t, ok)

	clone := doc.Clone()
	clone.Types["Config"]["kind"] = "changed"
	require.Equal(t, "object", doc.Types["Config"]["kind"])
}
