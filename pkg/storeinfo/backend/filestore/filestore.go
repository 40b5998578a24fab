// Package filestore reads shapefiles and GeoJSON documents from local
// files, directories and object stores.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend/objectstore"
)

// ErrNoLocation indicates none of the directory, file or url parameters is set
var ErrNoLocation = errors.New("store has no file, directory or url parameter")

// ErrNotDataFile indicates the location is not a shapefile or GeoJSON document
var ErrNotDataFile = errors.New("not a shapefile or GeoJSON document")

type format int

const (
	formatShapefile format = iota + 1
	formatGeoJSON
)

func formatOf(name string) (format, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".shp":
		return formatShapefile, true
	case ".geojson", ".json":
		return formatGeoJSON, true
	}
	return 0, false
}

// DefaultMaxDocumentSize bounds how much of a GeoJSON document is read.
const DefaultMaxDocumentSize int64 = 64 << 20

// Opener opens file-based vector stores
type Opener struct {
	baseDirectory   string
	objects         *objectstore.Registry
	maxDocumentSize int64
}

// Option configures an Opener
type Option func(*Opener)

// WithMaxDocumentSize caps the bytes read from a single GeoJSON document.
// Larger documents fail to parse. Values below one keep the default.
func WithMaxDocumentSize(n int64) Option {
	return func(o *Opener) {
		if n > 0 {
			o.maxDocumentSize = n
		}
	}
}

// New creates an opener. Relative paths resolve against baseDirectory;
// objects may be nil when no object store is configured.
func New(baseDirectory string, objects *objectstore.Registry, opts ...Option) *Opener {
	o := &Opener{baseDirectory: baseDirectory, objects: objects, maxDocumentSize: DefaultMaxDocumentSize}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Opener) OpenVector(ctx context.Context, store *storeinfo.VectorStore) (storeinfo.VectorSource, error) {
	params := store.Params
	if dir, ok := params.AsFile(storeinfo.ParamDirectory); ok {
		return o.openDirectory(o.localPath(dir))
	}
	if file, ok := params.AsFile(storeinfo.ParamFile); ok {
		return o.openFile(o.localPath(file))
	}
	if u, ok := params.AsURL(storeinfo.ParamURL); ok {
		if u.Scheme == "file" {
			if f, ok := params.AsFile(storeinfo.ParamURL); ok {
				return o.openFile(o.localPath(f))
			}
		}
		if objectstore.IsObjectScheme(u.Scheme) {
			return o.openObjects(ctx, u.String())
		}
		return nil, fmt.Errorf("%w: url scheme %q", storeinfo.ErrUnsupportedBackend, u.Scheme)
	}
	return nil, ErrNoLocation
}

func (o *Opener) localPath(p storeinfo.FilePath) string {
	s := filepath.FromSlash(string(p))
	if filepath.IsAbs(s) || o.baseDirectory == "" {
		return s
	}
	return filepath.Join(o.baseDirectory, s)
}

func (o *Opener) openDirectory(dir string) (*source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	src := &source{maxDocumentSize: o.maxDocumentSize}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if f, ok := formatOf(e.Name()); ok {
			src.add(e.Name(), f, localReader(filepath.Join(dir, e.Name())))
		}
	}
	return src, nil
}

func (o *Opener) openFile(file string) (*source, error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return o.openDirectory(file)
	}
	f, ok := formatOf(file)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDataFile, filepath.Base(file))
	}
	src := &source{maxDocumentSize: o.maxDocumentSize}
	src.add(filepath.Base(file), f, localReader(file))
	return src, nil
}

func (o *Opener) openObjects(ctx context.Context, raw string) (*source, error) {
	if o.objects == nil {
		return nil, fmt.Errorf("%w: no object store configured", storeinfo.ErrUnsupportedBackend)
	}
	bucket, loc, err := o.objects.OpenURL(ctx, raw)
	if err != nil {
		return nil, err
	}
	src := &source{maxDocumentSize: o.maxDocumentSize}
	if !loc.IsPrefix() {
		if _, ok := formatOf(loc.Key); !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotDataFile, loc.Key)
		}
		if _, err := bucket.Stat(ctx, loc.Key); err != nil {
			return nil, err
		}
		src.add(path.Base(loc.Key), formatGeoJSON, objectReader(bucket, loc.Key))
		return src, nil
	}
	objects, err := bucket.List(ctx, loc.Key)
	if err != nil {
		return nil, err
	}
	for _, obj := range objects {
		rest := strings.TrimPrefix(obj.Key, loc.Key)
		if strings.Contains(rest, "/") {
			continue
		}
		// Shapefiles need sidecar files and are only read from local disk.
		if f, ok := formatOf(rest); ok && f == formatGeoJSON {
			src.add(rest, f, objectReader(bucket, obj.Key))
		}
	}
	return src, nil
}

type opener func(ctx context.Context) (io.ReadCloser, error)

func localReader(file string) opener {
	return func(context.Context) (io.ReadCloser, error) {
		return os.Open(file)
	}
}

func objectReader(bucket objectstore.Bucket, key string) opener {
	return func(ctx context.Context) (io.ReadCloser, error) {
		return bucket.Read(ctx, key)
	}
}

type item struct {
	format format
	open   opener
	parsed *document
}

// document is what a data file tells about its single feature type
type document struct {
	column      string
	geometry    string
	title       string
	description string
}

type source struct {
	names           []string
	items           map[string]*item
	maxDocumentSize int64
}

func (s *source) add(file string, f format, open opener) {
	if s.items == nil {
		s.items = make(map[string]*item)
	}
	name := strings.TrimSuffix(file, path.Ext(file))
	if _, dup := s.items[name]; dup {
		return
	}
	s.items[name] = &item{format: f, open: open}
	s.names = append(s.names, name)
	sort.Strings(s.names)
}

func (s *source) Names(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.names...), nil
}

func (s *source) document(ctx context.Context, name string) (*document, error) {
	it, ok := s.items[name]
	if !ok {
		return nil, fmt.Errorf("unknown feature type %q", name)
	}
	if it.parsed != nil {
		return it.parsed, nil
	}
	r, err := it.open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var doc *document
	switch it.format {
	case formatShapefile:
		doc, err = readShapefile(r, name)
	default:
		doc, err = readGeoJSON(r, s.maxDocumentSize)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	it.parsed = doc
	return doc, nil
}

func (s *source) Schema(ctx context.Context, name string) (*storeinfo.FeatureSchema, error) {
	doc, err := s.document(ctx, name)
	if err != nil {
		return nil, err
	}
	return &storeinfo.FeatureSchema{Name: name, GeometryColumn: doc.column, Geometry: doc.geometry}, nil
}

func (s *source) Info(ctx context.Context, name string) (*storeinfo.ResourceInfo, error) {
	doc, err := s.document(ctx, name)
	if err != nil {
		return nil, err
	}
	return &storeinfo.ResourceInfo{Title: doc.title, Description: doc.description}, nil
}

func (s *source) Close() error {
	return nil
}
