// Package raster opens raster coverage stores held on local disk, behind
// HTTP or in object stores.
package raster

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend/objectstore"
)

// Extensions of files read as coverages
var Extensions = []string{".tif", ".tiff", ".png", ".jpg", ".jp2", ".asc", ".nc"}

// IsRasterFile reports whether name carries a raster extension
func IsRasterFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func coverageName(file string) string {
	base := path.Base(filepath.ToSlash(file))
	return strings.TrimSuffix(base, path.Ext(base))
}

// Config options for the raster opener
type Config struct {
	BaseDirectory string                // relative file URLs resolve against this directory
	Objects       *objectstore.Registry // object store providers, may be nil
	HTTPClient    *http.Client          // client for HTTP probes
	Timeout       time.Duration         // probe timeout when HTTPClient is nil (default: 10s)
}

// Opener opens raster stores
type Opener struct {
	baseDirectory string
	objects       *objectstore.Registry
	client        *http.Client
}

// New creates a raster opener
func New(config Config) *Opener {
	client := config.HTTPClient
	if client == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Opener{baseDirectory: config.BaseDirectory, objects: config.Objects, client: client}
}

func (o *Opener) OpenRaster(ctx context.Context, store *storeinfo.RasterStore) (storeinfo.CoverageReader, error) {
	if store.URL == "" {
		return nil, fmt.Errorf("%w: coverage url", storeinfo.ErrMissingParameter)
	}
	u, err := url.Parse(store.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse coverage url: %w", err)
	}
	switch {
	case u.Scheme == "file":
		return o.openFile(u)
	case u.Scheme == "http" || u.Scheme == "https":
		return o.probe(ctx, u)
	case objectstore.IsObjectScheme(u.Scheme):
		return o.openObjects(ctx, store.URL)
	}
	return nil, fmt.Errorf("%w: coverage url scheme %q", storeinfo.ErrUnsupportedBackend, u.Scheme)
}

func (o *Opener) localPath(u *url.URL) (string, error) {
	p := u.Path
	if u.Opaque != "" {
		unescaped, err := url.PathUnescape(u.Opaque)
		if err != nil {
			return "", fmt.Errorf("failed to parse file url: %w", err)
		}
		p = unescaped
	}
	if p == "" {
		return "", fmt.Errorf("%w: empty file url", storeinfo.ErrMissingParameter)
	}
	p = filepath.FromSlash(p)
	if !filepath.IsAbs(p) && o.baseDirectory != "" {
		p = filepath.Join(o.baseDirectory, p)
	}
	return p, nil
}

func (o *Opener) openFile(u *url.URL) (storeinfo.CoverageReader, error) {
	p, err := o.localPath(u)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("failed to stat coverage: %w", err)
	}
	if !info.IsDir() {
		return implicit{}, nil
	}
	return &lister{list: func(context.Context) ([]string, error) {
		return listDirectory(p)
	}}, nil
}

func listDirectory(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsRasterFile(e.Name()) {
			names = append(names, coverageName(e.Name()))
		}
	}
	return names, nil
}

// probe checks a remote coverage with HEAD, falling back to a GET for
// servers that reject HEAD.
func (o *Opener) probe(ctx context.Context, u *url.URL) (storeinfo.CoverageReader, error) {
	status, err := o.request(ctx, http.MethodHead, u.String())
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = o.request(ctx, http.MethodGet, u.String())
	}
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("coverage probe returned HTTP %d", status)
	}
	return implicit{}, nil
}

func (o *Opener) request(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("coverage probe failed: %w", err)
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (o *Opener) openObjects(ctx context.Context, raw string) (storeinfo.CoverageReader, error) {
	if o.objects == nil {
		return nil, fmt.Errorf("%w: no object store configured", storeinfo.ErrUnsupportedBackend)
	}
	bucket, loc, err := o.objects.OpenURL(ctx, raw)
	if err != nil {
		return nil, err
	}
	if !loc.IsPrefix() {
		if _, err := bucket.Stat(ctx, loc.Key); err != nil {
			return nil, err
		}
		return implicit{}, nil
	}
	return &lister{list: func(ctx context.Context) ([]string, error) {
		objects, err := bucket.List(ctx, loc.Key)
		var names []string
		for _, obj := range objects {
			rest := strings.TrimPrefix(obj.Key, loc.Key)
			if rest != "" && !strings.Contains(rest, "/") && IsRasterFile(rest) {
				names = append(names, coverageName(rest))
			}
		}
		sort.Strings(names)
		return names, err
	}}, nil
}

// implicit is a store holding one unnamed coverage
type implicit struct{}

func (implicit) CoverageNames(context.Context) ([]string, error) { return nil, nil }
func (implicit) Close() error                                    { return nil }

type lister struct {
	list func(ctx context.Context) ([]string, error)
}

func (l *lister) CoverageNames(ctx context.Context) ([]string, error) {
	return l.list(ctx)
}

func (l *lister) Close() error { return nil }
