// Package query exposes go-command compatible read handlers over the schema
// registry: single and batch lookups, namespace listings, aggregation and
// field search.
package query
