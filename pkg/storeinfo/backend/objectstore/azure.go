package objectstore

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureConfig options for the Azure Blob Storage provider
type AzureConfig struct {
	AccountName string // default account for az:// locations
	AccountKey  string // shared key; empty means anonymous access
	// ServiceURL overrides https://<account>.blob.core.windows.net, e.g. for Azurite
	ServiceURL string
}

// Azure serves az:// and abfss:// locations
type Azure struct {
	config  AzureConfig
	mu      sync.Mutex
	clients map[string]*azblob.Client // account -> client
}

// NewAzure creates an Azure Blob Storage provider
func NewAzure(config AzureConfig) (*Azure, error) {
	if config.AccountName == "" && config.ServiceURL == "" {
		return nil, fmt.Errorf("azure account name is required")
	}
	return &Azure{config: config, clients: make(map[string]*azblob.Client)}, nil
}

func (p *Azure) client(account string) (*azblob.Client, error) {
	if account == "" {
		account = p.config.AccountName
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[account]; ok {
		return c, nil
	}

	serviceURL := p.config.ServiceURL
	if serviceURL == "" {
		serviceURL = fmt.Sprintf("https://%s.blob.core.windows.net", account)
	}
	var (
		c   *azblob.Client
		err error
	)
	if p.config.AccountKey != "" {
		cred, cerr := azblob.NewSharedKeyCredential(account, p.config.AccountKey)
		if cerr != nil {
			return nil, fmt.Errorf("create shared key credential: %w", cerr)
		}
		c, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	} else {
		c, err = azblob.NewClientWithNoCredential(serviceURL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("create Azure blob client: %w", err)
	}
	p.clients[account] = c
	return c, nil
}

func (p *Azure) Bucket(ctx context.Context, loc Location) (Bucket, error) {
	c, err := p.client(loc.Account)
	if err != nil {
		return nil, err
	}
	return &azureContainer{client: c, container: loc.Bucket}, nil
}

type azureContainer struct {
	client    *azblob.Client
	container string
}

func (b *azureContainer) List(ctx context.Context, prefix string) ([]Object, error) {
	pager := b.client.NewListBlobsFlatPager(b.container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})
	var out []Object
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return out, fmt.Errorf("failed to list container %s: %w", b.container, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name == nil {
				continue
			}
			obj := Object{Key: *item.Name}
			if item.Properties != nil && item.Properties.ContentLength != nil {
				obj.Size = *item.Properties.ContentLength
			}
			out = append(out, obj)
		}
	}
	return out, nil
}

func (b *azureContainer) Stat(ctx context.Context, key string) (*Object, error) {
	blob := b.client.ServiceClient().NewContainerClient(b.container).NewBlobClient(key)
	props, err := blob.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get blob properties: %w", err)
	}
	obj := &Object{Key: key}
	if props.ContentLength != nil {
		obj.Size = *props.ContentLength
	}
	return obj, nil
}

func (b *azureContainer) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	resp, err := b.client.DownloadStream(ctx, b.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to download blob: %w", err)
	}
	return resp.Body, nil
}
