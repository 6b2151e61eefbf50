package schema

import (
	"testing"

	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestFromMap_BuildsDocument(t *testing.T) {
	doc, err := FromMap(map[string]any{
		"namespace":   " ns://runrightfast.co/couchbase ",
		"version":     "1.0.0",
		"description": "Couchbase config schema",
		"types": map[string]any{
			"ConnectionSettings": map[string]any{
				"host": map[string]any{"type": "string"},
				"port": map[string]any{"type": "number"},
			},
		},
		"createdOn": "ignored",
	})
	require.NoError(t, err)
	require.Equal(t, "ns://runrightfast.co/couchbase", doc.Namespace)
	require.Equal(t, "1.0.0", doc.Version)
	require.Equal(t, "Couchbase config schema", doc.Description)

	def, ok := doc.Type("ConnectionSettings")
	require.True(t, ok)
	require.Contains(t, def, "host")
	require.Contains(t, def, "port")
}

func TestFromMap_RejectsMalformedTypes(t *testing.T) {
	_, err := FromMap(map[string]any{
		"namespace": "ns://a",
		"version":   "1.0.0",
		"types":     []string{"not", "a", "map"},
	})
	require.Error(t, err)
}

func TestToMap_RoundTripsFields(t *testing.T) {
	doc := types.SchemaDocument{
		ID:        types.SchemaID("ns://a", "1.0.0"),
		Namespace: "ns://a",
		Version:   "1.0.0",
		Revision:  3,
		Types: map[string]types.TypeDefinition{
			"Thing": {"kind": "object"},
		},
	}
	out := ToMap(doc)
	require.Equal(t, doc.ID.String(), out["id"])
	require.Equal(t, int64(3), out["revision"])
	require.NotContains(t, out, "description")

	back, err := FromMap(out)
	require.NoError(t, err)
	require.Equal(t, doc.Namespace, back.Namespace)
	require.Equal(t, doc.Types, back.Types)
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, Validate(types.SchemaDocument{Version: "1.0.0"}), types.ErrNamespaceRequired)
	require.ErrorIs(t, Validate(types.SchemaDocument{Namespace: "ns://a"}), types.ErrVersionRequired)
	require.ErrorIs(t, Validate(types.SchemaDocument{Namespace: "ns://a", Version: "1.0"}), types.ErrInvalidVersion)
	require.NoError(t, Validate(types.SchemaDocument{Namespace: "ns://a", Version: "1.0.0-beta.1"}))
}

func TestIsSemVer(t *testing.T) {
	cases := map[string]bool{
		"1.0.0":         true,
		"1.0.0-rc.1":    true,
		" 1.2.3 ":       true,
		"v2.3.4":        false,
		"1.0.0+build.7": false,
		"1.0.0-rc.1+b2": false,
		"01.0.0":        false,
		"1.0":           false,
		"1":             false,
		"1.0.0.0":       false,
		"abc":           false,
		"":              false,
	}
	for version, want := range cases {
		require.Equal(t, want, IsSemVer(version), "version %q", version)
	}
}

func TestCompareVersions(t *testing.T) {
	require.Equal(t, -1, CompareVersions("1.0.2", "1.0.10"))
	require.Equal(t, 1, CompareVersions("2.0.0", "1.9.9"))
	require.Equal(t, 0, CompareVersions("1.0.0", "v1.0.0"))
	require.Equal(t, -1, CompareVersions("1.0.0-rc.1", "1.0.0"))
}
