// Package backend routes stores to the client that can open them.
package backend

import (
	"context"
	"fmt"

	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

// Router implements the storeinfo opener interfaces by dispatching on the
// store's dbtype parameter or archetype.
type Router struct {
	databases map[string]storeinfo.VectorOpener
	files     storeinfo.VectorOpener
	rasters   storeinfo.RasterOpener
	services  storeinfo.ServiceOpener
}

// Option configures a Router
type Option func(*Router)

// WithDatabase serves vector stores whose dbtype parameter equals dbtype
func WithDatabase(dbtype string, opener storeinfo.VectorOpener) Option {
	return func(r *Router) {
		r.databases[dbtype] = opener
	}
}

// WithFiles serves vector stores located by directory, file or url parameters
func WithFiles(opener storeinfo.VectorOpener) Option {
	return func(r *Router) {
		r.files = opener
	}
}

// WithRaster serves raster stores
func WithRaster(opener storeinfo.RasterOpener) Option {
	return func(r *Router) {
		r.rasters = opener
	}
}

// WithService serves remote service stores
func WithService(opener storeinfo.ServiceOpener) Option {
	return func(r *Router) {
		r.services = opener
	}
}

// NewRouter creates a router
func NewRouter(options ...Option) *Router {
	r := &Router{databases: make(map[string]storeinfo.VectorOpener)}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *Router) OpenVector(ctx context.Context, store *storeinfo.VectorStore) (storeinfo.VectorSource, error) {
	params := store.Params
	if params.Has(storeinfo.ParamDBType) {
		dbtype, _ := params.AsString(storeinfo.ParamDBType)
		opener, ok := r.databases[dbtype]
		if !ok {
			return nil, fmt.Errorf("%w: dbtype %q", storeinfo.ErrUnsupportedBackend, dbtype)
		}
		return opener.OpenVector(ctx, store)
	}
	if r.files != nil && (params.Has(storeinfo.ParamDirectory) || params.Has(storeinfo.ParamFile) || params.Has(storeinfo.ParamURL)) {
		return r.files.OpenVector(ctx, store)
	}
	return nil, fmt.Errorf("%w: no backend for store %s", storeinfo.ErrUnsupportedBackend, storeinfo.QualifiedName(store))
}

func (r *Router) OpenRaster(ctx context.Context, store *storeinfo.RasterStore) (storeinfo.CoverageReader, error) {
	if r.rasters == nil {
		return nil, fmt.Errorf("%w: raster stores", storeinfo.ErrUnsupportedBackend)
	}
	return r.rasters.OpenRaster(ctx, store)
}

func (r *Router) OpenService(ctx context.Context, store *storeinfo.ServiceStore) (storeinfo.RemoteService, error) {
	if r.services == nil {
		return nil, fmt.Errorf("%w: service stores", storeinfo.ErrUnsupportedBackend)
	}
	return r.services.OpenService(ctx, store)
}

// DBTypes lists the configured dbtype values
func (r *Router) DBTypes() []string {
	out := make([]string, 0, len(r.databases))
	for k := range r.databases {
		out = append(out, k)
	}
	return out
}
