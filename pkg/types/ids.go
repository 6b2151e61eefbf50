package types

import (
	"strings"

	"github.com/google/uuid"
)

// SchemaIDNamespace seeds the name-based UUIDs used as document identifiers.
// Changing it re-keys every stored document.
var SchemaIDNamespace = uuid.MustParse("6f1c2a44-3b7e-5d0a-9c61-2e8f4b7d90a3")

// SchemaID derives the document id for a (namespace, version) pair. It is a
// UUIDv5 over the trimmed namespace and version, so it is stable across
// calls and processes and never needs a lookup.
func SchemaID(namespace, version string) uuid.UUID {
	name := strings.TrimSpace(namespace) + "\x00" + strings.TrimSpace(version)
	return uuid.NewSHA1(SchemaIDNamespace, []byte(name))
}
