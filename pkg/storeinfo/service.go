package storeinfo

import (
	"context"
)

// Service defines the main interface for the storeinfo library
type Service interface {
	// Engine operations. These never fail: backend trouble is reported
	// through Result diagnostics.
	Classify(store Store) Classification
	ResolveSource(store Store) string
	EnumerateContents(ctx context.Context, store Store) Result[[]ContentEntry]
	CrossReference(ctx context.Context, store Store) Result[[]LayerEntry]
	BuildDescriptor(ctx context.Context, store Store) *StoreDescriptor
	Summarize(store Store) *StoreSummary

	// Catalog-backed operations. A missing store is reported as *LookupError.
	DescribeStore(ctx context.Context, workspace, name string) (*StoreDescriptor, error)
	ListStores(ctx context.Context, workspace string) ([]*StoreSummary, error)
	ListWorkspaces(ctx context.Context) ([]string, error)
}
