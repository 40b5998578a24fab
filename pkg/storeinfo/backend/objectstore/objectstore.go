// Package objectstore lists and reads objects in S3, Google Cloud Storage
// and Azure Blob Storage buckets for the file and raster backends.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
)

// ErrObjectNotFound indicates the requested object does not exist
var ErrObjectNotFound = errors.New("object not found")

// Object describes one stored object.
type Object struct {
	Key  string
	Size int64
}

// Bucket is a read-only view of one bucket or container.
type Bucket interface {
	// List returns objects whose key starts with prefix, in key order.
	List(ctx context.Context, prefix string) ([]Object, error)
	// Stat returns ErrObjectNotFound when key does not exist.
	Stat(ctx context.Context, key string) (*Object, error)
	Read(ctx context.Context, key string) (io.ReadCloser, error)
}

// Provider opens buckets for one URL scheme.
type Provider interface {
	Bucket(ctx context.Context, loc Location) (Bucket, error)
}

// Location is a parsed object store URL.
type Location struct {
	Scheme string
	// Account is the Azure storage account, empty for other schemes.
	Account string
	Bucket  string
	Key     string
}

func (l Location) String() string {
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// IsPrefix reports whether the location names a prefix rather than an object.
func (l Location) IsPrefix() bool {
	return l.Key == "" || strings.HasSuffix(l.Key, "/")
}

// IsObjectScheme reports whether scheme is served by this package.
func IsObjectScheme(scheme string) bool {
	switch scheme {
	case "s3", "gs", "az", "abfss":
		return true
	}
	return false
}

// ParseLocation parses s3://bucket/key, gs://bucket/key, az://container/key
// and abfss://container@account.dfs.core.windows.net/key URLs.
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("parse object location %q: %w", raw, err)
	}
	loc := Location{Scheme: u.Scheme, Key: strings.TrimPrefix(u.Path, "/")}
	switch u.Scheme {
	case "s3", "gs", "az":
		loc.Bucket = u.Host
	case "abfss":
		if u.User == nil {
			return Location{}, fmt.Errorf("abfss location %q missing container@account component", raw)
		}
		loc.Bucket = u.User.Username()
		loc.Account, _, _ = strings.Cut(u.Host, ".")
	default:
		return Location{}, fmt.Errorf("unrecognized object store scheme %q in %q", u.Scheme, raw)
	}
	if loc.Bucket == "" {
		return Location{}, fmt.Errorf("empty bucket in object location %q", raw)
	}
	return loc, nil
}

// Registry maps URL schemes to providers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register serves scheme with p
func (r *Registry) Register(scheme string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[scheme] = p
}

// Supports reports whether a provider is registered for scheme
func (r *Registry) Supports(scheme string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[scheme]
	return ok
}

// Open returns the bucket addressed by loc
func (r *Registry) Open(ctx context.Context, loc Location) (Bucket, error) {
	r.mu.RLock()
	p, ok := r.providers[loc.Scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no object store configured for scheme %q", loc.Scheme)
	}
	return p.Bucket(ctx, loc)
}

// OpenURL parses raw and opens its bucket
func (r *Registry) OpenURL(ctx context.Context, raw string) (Bucket, Location, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, Location{}, err
	}
	b, err := r.Open(ctx, loc)
	if err != nil {
		return nil, loc, err
	}
	return b, loc, nil
}
