package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/goliatone/go-schema-registry/pkg/types"
	"golang.org/x/mod/semver"
)

// document mirrors the plain field mapping accepted by FromMap. Field names
// follow the wire shape used by schema files and the CLI.
type document struct {
	Namespace   string                    `mapstructure:"namespace"`
	Version     string                    `mapstructure:"version"`
	Description string                    `mapstructure:"description"`
	Types       map[string]map[string]any `mapstructure:"types"`
	UpdatedBy   string                    `mapstructure:"updatedBy"`
}

// FromMap builds a schema document from a plain field mapping. Timestamps,
// ids and revisions are owned by the registry and ignored when present.
func FromMap(fields map[string]any) (types.SchemaDocument, error) {
	var raw document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return types.SchemaDocument{}, err
	}
	if err := decoder.Decode(fields); err != nil {
		return types.SchemaDocument{}, fmt.Errorf("schema: decode document: %w", err)
	}

	doc := types.SchemaDocument{
		Namespace:   strings.TrimSpace(raw.Namespace),
		Version:     strings.TrimSpace(raw.Version),
		Description: strings.TrimSpace(raw.Description),
		UpdatedBy:   strings.TrimSpace(raw.UpdatedBy),
	}
	for name, def := range raw.Types {
		if err := doc.AddType(name, types.TypeDefinition(def)); err != nil {
			return types.SchemaDocument{}, err
		}
	}
	return doc, nil
}

// ToMap renders the document as a plain field mapping suitable for JSON/YAML.
func ToMap(doc types.SchemaDocument) map[string]any {
	out := map[string]any{
		"id":        doc.ID.String(),
		"namespace": doc.Namespace,
		"version":   doc.Version,
		"revision":  int64(doc.Revision),
	}
	if doc.Description != "" {
		out["description"] = doc.Description
	}
	if len(doc.Types) > 0 {
		typesOut := make(map[string]any, len(doc.Types))
		for name, def := range doc.Types {
			typesOut[name] = map[string]any(types.CloneTypeDefinition(def))
		}
		out["types"] = typesOut
	}
	if !doc.CreatedOn.IsZero() {
		out["createdOn"] = doc.CreatedOn.Format(time.RFC3339Nano)
	}
	if !doc.UpdatedOn.IsZero() {
		out["updatedOn"] = doc.UpdatedOn.Format(time.RFC3339Nano)
	}
	if doc.UpdatedBy != "" {
		out["updatedBy"] = doc.UpdatedBy
	}
	return out
}

// Validate checks the natural key of a document before it is written.
func Validate(doc types.SchemaDocument) error {
	if err := doc.Key().Validate(); err != nil {
		return err
	}
	if !IsSemVer(doc.Version) {
		return fmt.Errorf("%w: %q", types.ErrInvalidVersion, doc.Version)
	}
	return nil
}

// IsSemVer reports whether version is a full MAJOR.MINOR.PATCH semantic
// version, optionally with a pre-release suffix. Each semantic version has a
// single accepted spelling: a leading "v" and build metadata are rejected so
// equal versions always derive the same id.
func IsSemVer(version string) bool {
	version = strings.TrimSpace(version)
	if version == "" || strings.HasPrefix(version, "v") {
		return false
	}
	v := "v" + version
	if !semver.IsValid(v) || semver.Canonical(v) != v {
		return false
	}
	core := strings.TrimSuffix(v, semver.Prerelease(v))
	return strings.Count(core, ".") == 2
}

// CompareVersions orders two semantic versions, returning -1, 0 or +1.
// Invalid versions sort before valid ones. A leading "v" is tolerated so
// stored versions from older writers still order.
func CompareVersions(a, b string) int {
	return semver.Compare(canonicalInput(a), canonicalInput(b))
}

func canonicalInput(version string) string {
	version = strings.TrimSpace(version)
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version
}
