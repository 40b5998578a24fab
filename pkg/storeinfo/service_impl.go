package storeinfo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// service implements the Service interface
type service struct {
	catalog   Catalog
	resolver  Resolver
	vectors   VectorOpener
	rasters   RasterOpener
	services  ServiceOpener
	eventSink EventSink
	logger    *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithCatalog sets the catalog for the service
func WithCatalog(catalog Catalog) Option {
	return func(s *service) {
		s.catalog = catalog
	}
}

// WithBaseDirectory sets the directory relative source locations are computed against
func WithBaseDirectory(dir string) Option {
	return func(s *service) {
		s.resolver = NewResolver(dir)
	}
}

// WithVectorOpener sets the client used to open vector stores
func WithVectorOpener(opener VectorOpener) Option {
	return func(s *service) {
		s.vectors = opener
	}
}

// WithRasterOpener sets the client used to open raster stores
func WithRasterOpener(opener RasterOpener) Option {
	return func(s *service) {
		s.rasters = opener
	}
}

// WithServiceOpener sets the client used to open remote service stores
func WithServiceOpener(opener ServiceOpener) Option {
	return func(s *service) {
		s.services = opener
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.eventSink = sink
	}
}

// WithLogger sets the logger diagnostics are written to
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		eventSink: NewNoopEventSink(),
		logger:    slog.Default(),
	}

	for _, option := range options {
		option(s)
	}

	if s.catalog == nil {
		return nil, ErrNoCatalog
	}

	return s, nil
}

func (s *service) Classify(store Store) Classification {
	return Classify(store)
}

func (s *service) ResolveSource(store Store) string {
	return s.resolver.Resolve(store)
}

func (s *service) Summarize(store Store) *StoreSummary {
	info := store.Info()
	c := Classify(store)
	return &StoreSummary{
		Name:        info.Name,
		Workspace:   info.Workspace,
		Description: info.Description,
		Enabled:     info.Enabled,
		Format:      info.Format,
		Source:      s.resolver.Resolve(store),
		Type:        c.Type,
		Kind:        c.Kind,
		Metadata:    copyMetadata(info.Metadata),
	}
}

// BuildDescriptor assembles the full descriptor of store. Classification,
// source resolution, the connection echo and the layer cross-reference
// always run; contents are enumerated only for enabled stores.
func (s *service) BuildDescriptor(ctx context.Context, store Store) *StoreDescriptor {
	info := store.Info()
	desc := &StoreDescriptor{StoreSummary: *s.Summarize(store)}

	echo, diags := connection(store)
	desc.Connection = echo.conn
	desc.WMS = echo.wms

	if info.LastError != nil {
		desc.Error = &ErrorInfo{Message: info.LastError.Message, Trace: info.LastError.Trace()}
	}

	if info.Enabled {
		res := s.EnumerateContents(ctx, store)
		diags = append(diags, res.Diagnostics...)
		if contents, ok := res.Get(); ok {
			desc.Contents = contents
		}
	}

	layers := s.CrossReference(ctx, store)
	diags = append(diags, layers.Diagnostics...)
	if l, ok := layers.Get(); ok {
		desc.Layers = l
	}

	for _, d := range diags {
		s.record(ctx, store, d)
	}
	if err := s.eventSink.StoreDescribed(ctx, desc); err != nil {
		s.logger.Warn("event sink rejected descriptor", "store", QualifiedName(store), "err", err)
	}
	return desc
}

func (s *service) record(ctx context.Context, store Store, d Diagnostic) {
	s.logger.LogAttrs(ctx, d.Level, "store introspection diagnostic", d.LogAttrs()...)
	if err := s.eventSink.DiagnosticRecorded(ctx, store, d); err != nil {
		s.logger.Warn("event sink rejected diagnostic", "store", d.Store, "err", err)
	}
}

// connectionEcho adds archetype specific entries to the connection echo.
type connectionEcho struct {
	conn Connection
	wms  string
}

func (c *connectionEcho) VisitRaster(s *RasterStore)   { c.conn = c.conn.set("raster", s.URL) }
func (c *connectionEcho) VisitVector(*VectorStore)     {}
func (c *connectionEcho) VisitService(s *ServiceStore) { c.wms = s.CapabilitiesURL }
func (c *connectionEcho) VisitGeneric(*GenericStore)   {}

// connection echoes every parameter in display form. Keys whose value
// cannot be rendered are omitted and reported.
func connection(store Store) (*connectionEcho, []Diagnostic) {
	var diags []Diagnostic
	params := store.Info().Params
	conn := make(Connection, 0, len(params)+1)
	for _, p := range params {
		text, err := valueText(p.Value)
		if err != nil {
			diags = append(diags, Diagnostic{
				Store: QualifiedName(store),
				Op:    OpConnection,
				Item:  p.Key,
				Level: LevelTrace,
				Err:   err,
			})
			continue
		}
		conn = conn.set(p.Key, text)
	}
	echo := &connectionEcho{conn: conn}
	store.Accept(echo)
	return echo, diags
}

func (s *service) DescribeStore(ctx context.Context, workspace, name string) (*StoreDescriptor, error) {
	store, err := s.catalog.GetStore(ctx, workspace, name)
	if err != nil {
		return nil, &LookupError{Workspace: workspace, Name: name, Err: err}
	}
	if store == nil {
		return nil, &LookupError{Workspace: workspace, Name: name, Err: ErrStoreNotFound}
	}
	return s.BuildDescriptor(ctx, store), nil
}

func (s *service) ListStores(ctx context.Context, workspace string) ([]*StoreSummary, error) {
	stores, err := s.catalog.ListStores(ctx, workspace)
	if err != nil {
		return nil, &LookupError{Workspace: workspace, Name: "*", Err: err}
	}
	out := make([]*StoreSummary, 0, len(stores))
	for _, store := range stores {
		out = append(out, s.Summarize(store))
	}
	return out, nil
}

func (s *service) ListWorkspaces(ctx context.Context) ([]string, error) {
	ws, err := s.catalog.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return ws, nil
}

// IsNotFound reports whether err is a lookup of a store that does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStoreNotFound)
}
