package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSConfig options for the Google Cloud Storage provider
type GCSConfig struct {
	CredentialsFile string // service account key file; empty uses application default credentials
	Endpoint        string // optional endpoint, e.g. an emulator
}

// GCS serves gs:// locations
type GCS struct {
	client *storage.Client
}

// NewGCS creates a Google Cloud Storage provider
func NewGCS(ctx context.Context, config GCSConfig) (*GCS, error) {
	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, config.CredentialsFile))
	}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &GCS{client: client}, nil
}

func (p *GCS) Bucket(ctx context.Context, loc Location) (Bucket, error) {
	return &gcsBucket{name: loc.Bucket, handle: p.client.Bucket(loc.Bucket)}, nil
}

// Close releases the underlying client
func (p *GCS) Close() error {
	return p.client.Close()
}

type gcsBucket struct {
	name   string
	handle *storage.BucketHandle
}

func (b *gcsBucket) List(ctx context.Context, prefix string) ([]Object, error) {
	it := b.handle.Objects(ctx, &storage.Query{Prefix: prefix})
	var out []Object
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("failed to list gs://%s/%s: %w", b.name, prefix, err)
		}
		out = append(out, Object{Key: attrs.Name, Size: attrs.Size})
	}
}

func (b *gcsBucket) Stat(ctx context.Context, key string) (*Object, error) {
	attrs, err := b.handle.Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get object metadata: %w", err)
	}
	return &Object{Key: attrs.Name, Size: attrs.Size}, nil
}

func (b *gcsBucket) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := b.handle.Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}
	return r, nil
}
