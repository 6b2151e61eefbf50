package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-schema-registry/pkg/types"
)

// NamespaceVersionsInput lists every version registered under a namespace.
type NamespaceVersionsInput struct {
	Namespace string
}

// Type implements gocommand.Message.
func (NamespaceVersionsInput) Type() string {
	return "query.namespace.versions"
}

// Validate implements gocommand.Message.
func (NamespaceVersionsInput) Validate() error {
	return nil
}

// NamespaceVersionsQuery returns the complete version listing.
type NamespaceVersionsQuery struct {
	registry types.Registry
}

// NewNamespaceVersionsQuery constructs the listing query.
func NewNamespaceVersionsQuery(registry types.Registry) *NamespaceVersionsQuery {
	return &NamespaceVersionsQuery{registry: registry}
}

var _ gocommand.Querier[NamespaceVersionsInput, []string] = (*NamespaceVersionsQuery)(nil)

// Query forwards to the registry. Order is unspecified.
func (q *NamespaceVersionsQuery) Query(ctx context.Context, input NamespaceVersionsInput) ([]string, error) {
	if q.registry == nil {
		return nil, types.ErrMissingRegistry
	}
	return q.registry.GetVersionsForNamespace(ctx, input.Namespace)
}

// LatestVersionInput resolves the highest version in a namespace.
type LatestVersionInput struct {
	Namespace string
}

// Type implements gocommand.Message.
func (LatestVersionInput) Type() string {
	return "query.namespace.latest"
}

// Validate implements gocommand.Message.
func (LatestVersionInput) Validate() error {
	return nil
}

// LatestVersionQuery returns the highest semantic version of a namespace.
type LatestVersionQuery struct {
	registry types.Registry
}

// NewLatestVersionQuery constructs the query.
func NewLatestVersionQuery(registry types.Registry) *LatestVersionQuery {
	return &LatestVersionQuery{registry: registry}
}

var _ gocommand.Querier[LatestVersionInput, string] = (*LatestVersionQuery)(nil)

// Query forwards to the registry.
func (q *LatestVersionQuery) Query(ctx context.Context, input LatestVersionInput) (string, error) {
	if q.registry == nil {
		return "", types.ErrMissingRegistry
	}
	return q.registry.GetLatestVersion(ctx, input.Namespace)
}

// NamespaceSummaryInput requests the per-namespace version counts.
type NamespaceSummaryInput struct{}

// Type implements gocommand.Message.
func (NamespaceSummaryInput) Type() string {
	return "query.namespace.summary"
}

// Validate implements gocommand.Message.
func (NamespaceSummaryInput) Validate() error {
	return nil
}

// NamespaceSummaryQuery aggregates version counts per namespace.
type NamespaceSummaryQuery struct {
	registry types.Registry
}

// NewNamespaceSummaryQuery constructs the aggregation query.
func NewNamespaceSummaryQuery(registry types.Registry) *NamespaceSummaryQuery {
	return &NamespaceSummaryQuery{registry: registry}
}

var _ gocommand.Querier[NamespaceSummaryInput, map[string]int] = (*NamespaceSummaryQuery)(nil)

// Query forwards to the registry.
func (q *NamespaceSummaryQuery) Query(ctx context.Context, _ NamespaceSummaryInput) (map[string]int, error) {
	if q.registry == nil {
		return nil, types.ErrMissingRegistry
	}
	return q.registry.GetNamespaceSummary(ctx)
}
