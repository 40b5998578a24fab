package storeinfo

import (
	"context"

	"github.com/google/uuid"
)

// Catalog is the read-only view of the store/resource/layer catalog.
type Catalog interface {
	// GetStore returns ErrStoreNotFound when no store matches.
	GetStore(ctx context.Context, workspace, name string) (Store, error)
	ListStores(ctx context.Context, workspace string) ([]Store, error)
	ListWorkspaces(ctx context.Context) ([]string, error)

	ResourcesByStore(ctx context.Context, storeID uuid.UUID) ([]*Resource, error)
	LayersByResource(ctx context.Context, resourceID uuid.UUID) ([]*Layer, error)
}

// FeatureSchema describes one feature type of a vector source.
type FeatureSchema struct {
	Name           string
	GeometryColumn string
	// Geometry is one of the Geometry* tags.
	Geometry string
}

// ResourceInfo is the descriptive metadata a backend holds for one of its
// feature types.
type ResourceInfo struct {
	Title       string
	Description string
}

// VectorSource is an open, read-only handle on a vector backend.
type VectorSource interface {
	// Names lists feature type names in backend order. A backend that
	// fails part way may return the names it obtained together with the
	// error.
	Names(ctx context.Context) ([]string, error)
	Schema(ctx context.Context, name string) (*FeatureSchema, error)
	Info(ctx context.Context, name string) (*ResourceInfo, error)
	Close() error
}

// VectorOpener opens vector stores.
type VectorOpener interface {
	OpenVector(ctx context.Context, store *VectorStore) (VectorSource, error)
}

// CoverageReader is an open, read-only handle on a raster backend.
type CoverageReader interface {
	// CoverageNames lists named coverages. An empty list means the store
	// holds a single implicit coverage.
	CoverageNames(ctx context.Context) ([]string, error)
	Close() error
}

// RasterOpener opens raster stores.
type RasterOpener interface {
	OpenRaster(ctx context.Context, store *RasterStore) (CoverageReader, error)
}

// RemoteLayer is a layer advertised by a remote service.
type RemoteLayer struct {
	Name     string
	Title    string
	Abstract string
}

// Capabilities is the parsed capabilities document of a remote service.
type Capabilities struct {
	Version string
	Title   string
	Layers  []RemoteLayer
}

// RemoteService is an open handle on a remote map service.
type RemoteService interface {
	Capabilities(ctx context.Context) (*Capabilities, error)
	Close() error
}

// ServiceOpener opens remote service stores.
type ServiceOpener interface {
	OpenService(ctx context.Context, store *ServiceStore) (RemoteService, error)
}

// EventSink receives descriptor lifecycle events
type EventSink interface {
	StoreDescribed(ctx context.Context, descriptor *StoreDescriptor) error
	DiagnosticRecorded(ctx context.Context, store Store, diag Diagnostic) error
}
