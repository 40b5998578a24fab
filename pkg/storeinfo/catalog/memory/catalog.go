package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

// Catalog implements storeinfo.Catalog using in-memory storage
type Catalog struct {
	mu            sync.RWMutex
	stores        map[uuid.UUID]storeinfo.Store
	storeOrder    []uuid.UUID
	byName        map[string]uuid.UUID // "workspace:name" -> store_id
	resources     map[uuid.UUID]*storeinfo.Resource
	resourceOrder []uuid.UUID
	layers        map[uuid.UUID]*storeinfo.Layer
	layerOrder    []uuid.UUID
}

// New creates a new, empty in-memory catalog
func New() *Catalog {
	return &Catalog{
		stores:    make(map[uuid.UUID]storeinfo.Store),
		byName:    make(map[string]uuid.UUID),
		resources: make(map[uuid.UUID]*storeinfo.Resource),
		layers:    make(map[uuid.UUID]*storeinfo.Layer),
	}
}

func key(workspace, name string) string {
	return workspace + ":" + name
}

// AddStore registers a store. A zero ID is replaced by one derived from
// the workspace and name.
func (c *Catalog) AddStore(store storeinfo.Store) error {
	info := store.Info()
	if info.Name == "" || info.Workspace == "" {
		return fmt.Errorf("store name and workspace are required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(info.Workspace, info.Name)
	if _, exists := c.byName[k]; exists {
		return fmt.Errorf("store %s already exists", k)
	}
	if info.ID == uuid.Nil {
		info.ID = StoreID(info.Workspace, info.Name)
	}

	// Keep a copy to avoid external modifications
	stored := cloneStore(store)
	c.stores[info.ID] = stored
	c.storeOrder = append(c.storeOrder, info.ID)
	c.byName[k] = info.ID
	return nil
}

// AddResource registers a resource published from an existing store
func (c *Catalog) AddResource(resource *storeinfo.Resource) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.stores[resource.StoreID]; !exists {
		return fmt.Errorf("resource %s: %w", resource.Name, storeinfo.ErrStoreNotFound)
	}
	if resource.ID == uuid.Nil {
		resource.ID = uuid.New()
	}
	resourceCopy := *resource
	c.resources[resource.ID] = &resourceCopy
	c.resourceOrder = append(c.resourceOrder, resource.ID)
	return nil
}

// AddLayer registers a layer of an existing resource
func (c *Catalog) AddLayer(layer *storeinfo.Layer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.resources[layer.ResourceID]; !exists {
		return fmt.Errorf("layer %s: resource %s not found", layer.Name, layer.ResourceID)
	}
	if layer.ID == uuid.Nil {
		layer.ID = uuid.New()
	}
	layerCopy := *layer
	layerCopy.Metadata = maps.Clone(layer.Metadata)
	c.layers[layer.ID] = &layerCopy
	c.layerOrder = append(c.layerOrder, layer.ID)
	return nil
}

func (c *Catalog) GetStore(ctx context.Context, workspace, name string) (storeinfo.Store, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, exists := c.byName[key(workspace, name)]
	if !exists {
		return nil, storeinfo.ErrStoreNotFound
	}
	return cloneStore(c.stores[id]), nil
}

func (c *Catalog) ListStores(ctx context.Context, workspace string) ([]storeinfo.Store, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []storeinfo.Store
	for _, id := range c.storeOrder {
		store := c.stores[id]
		if store.Info().Workspace == workspace {
			out = append(out, cloneStore(store))
		}
	}
	return out, nil
}

func (c *Catalog) ListWorkspaces(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	for _, store := range c.stores {
		seen[store.Info().Workspace] = true
	}
	out := slices.Collect(maps.Keys(seen))
	sort.Strings(out)
	return out, nil
}

func (c *Catalog) ResourcesByStore(ctx context.Context, storeID uuid.UUID) ([]*storeinfo.Resource, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*storeinfo.Resource
	for _, id := range c.resourceOrder {
		r := c.resources[id]
		if r.StoreID == storeID {
			resourceCopy := *r
			out = append(out, &resourceCopy)
		}
	}
	return out, nil
}

func (c *Catalog) LayersByResource(ctx context.Context, resourceID uuid.UUID) ([]*storeinfo.Layer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*storeinfo.Layer
	for _, id := range c.layerOrder {
		l := c.layers[id]
		if l.ResourceID == resourceID {
			layerCopy := *l
			layerCopy.Metadata = maps.Clone(l.Metadata)
			out = append(out, &layerCopy)
		}
	}
	return out, nil
}

// StoreID derives a stable store ID from the workspace and name.
func StoreID(workspace, name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("storeinfo:store:"+key(workspace, name)))
}

func cloneStore(s storeinfo.Store) storeinfo.Store {
	cloneInfo := func(info storeinfo.StoreInfo) storeinfo.StoreInfo {
		info.Params = slices.Clone(info.Params)
		info.Metadata = maps.Clone(info.Metadata)
		if info.LastError != nil {
			e := *info.LastError
			e.Causes = slices.Clone(e.Causes)
			info.LastError = &e
		}
		return info
	}
	archetype, location := storeinfo.ArchetypeOf(s)
	return storeinfo.NewStore(archetype, cloneInfo(*s.Info()), location)
}
