package scan

import (
	"context"
	"sort"
	"sync"

	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

// StoreProcessor processes the descriptor of each scanned store.
// Process may be called from several goroutines at once.
//
// Example implementations:
//   - Exporter (writes descriptors to a file or bucket)
//   - Health reporter (flags stores whose contents are absent)
//   - Indexer (pushes descriptors to a search index)
type StoreProcessor interface {
	// Process is called for each store found during scan.
	// Return error to mark this store as failed (scan continues with next store).
	Process(ctx context.Context, descriptor *storeinfo.StoreDescriptor) error
}

// Collector is a StoreProcessor that keeps every descriptor.
type Collector struct {
	mu          sync.Mutex
	descriptors []*storeinfo.StoreDescriptor
}

func (c *Collector) Process(ctx context.Context, d *storeinfo.StoreDescriptor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.descriptors = append(c.descriptors, d)
	return nil
}

// Descriptors returns the collected descriptors ordered by workspace and name.
func (c *Collector) Descriptors() []*storeinfo.StoreDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]*storeinfo.StoreDescriptor(nil), c.descriptors...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Workspace != out[j].Workspace {
			return out[i].Workspace < out[j].Workspace
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// funcProcessor adapts a function to the StoreProcessor interface.
type funcProcessor struct {
	fn func(context.Context, *storeinfo.StoreDescriptor) error
}

func (p *funcProcessor) Process(ctx context.Context, d *storeinfo.StoreDescriptor) error {
	return p.fn(ctx, d)
}
