// Package registry is the consistency layer of the schema registry. It sits
// on top of the store adapter and enforces what the store does not: unique
// (namespace, version) pairs, revision-guarded updates, complete version
// listings over paged searches, and per-namespace version counts.
package registry
