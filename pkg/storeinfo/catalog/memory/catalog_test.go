package memory_test

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/catalog/memory"
)

func TestMemoryCatalog_StoreOperations(t *testing.T) {
	cat := memory.New()
	ctx := context.Background()

	roads := &storeinfo.VectorStore{StoreInfo: storeinfo.StoreInfo{
		Name:      "roads",
		Workspace: "topp",
		Enabled:   true,
		Params:    storeinfo.NewParams("file", storeinfo.FilePath("shapefiles/roads.shp")),
	}}
	require.NoError(t, cat.AddStore(roads))
	assert.Equal(t, memory.StoreID("topp", "roads"), roads.ID)

	t.Run("GetStore", func(t *testing.T) {
		got, err := cat.GetStore(ctx, "topp", "roads")
		require.NoError(t, err)
		assert.Equal(t, "roads", got.Info().Name)
		assert.IsType(t, &storeinfo.VectorStore{}, got)
	})

	t.Run("GetStore returns a copy", func(t *testing.T) {
		got, err := cat.GetStore(ctx, "topp", "roads")
		require.NoError(t, err)
		got.Info().Params[0].Value = "changed"

		again, err := cat.GetStore(ctx, "topp", "roads")
		require.NoError(t, err)
		assert.Equal(t, storeinfo.FilePath("shapefiles/roads.shp"), again.Info().Params[0].Value)
	})

	t.Run("missing store", func(t *testing.T) {
		_, err := cat.GetStore(ctx, "topp", "nope")
		assert.ErrorIs(t, err, storeinfo.ErrStoreNotFound)
	})

	t.Run("duplicate store", func(t *testing.T) {
		err := cat.AddStore(&storeinfo.GenericStore{StoreInfo: storeinfo.StoreInfo{Name: "roads", Workspace: "topp"}})
		assert.Error(t, err)
	})

	t.Run("ListStores keeps insertion order", func(t *testing.T) {
		require.NoError(t, cat.AddStore(&storeinfo.RasterStore{
			StoreInfo: storeinfo.StoreInfo{Name: "dem", Workspace: "topp"},
			URL:       "file:data/dem.tif",
		}))
		require.NoError(t, cat.AddStore(&storeinfo.GenericStore{StoreInfo: storeinfo.StoreInfo{Name: "other", Workspace: "sf"}}))

		stores, err := cat.ListStores(ctx, "topp")
		require.NoError(t, err)
		require.Len(t, stores, 2)
		assert.Equal(t, "roads", stores[0].Info().Name)
		assert.Equal(t, "dem", stores[1].Info().Name)

		ws, err := cat.ListWorkspaces(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"sf", "topp"}, ws)
	})
}

func TestMemoryCatalog_ResourcesAndLayers(t *testing.T) {
	cat := memory.New()
	ctx := context.Background()

	store := &storeinfo.VectorStore{StoreInfo: storeinfo.StoreInfo{Name: "roads", Workspace: "topp"}}
	require.NoError(t, cat.AddStore(store))

	res := &storeinfo.Resource{StoreID: store.ID, Name: "roads", NativeName: "roads_v2", Type: storeinfo.ResourceVector}
	require.NoError(t, cat.AddResource(res))
	require.NoError(t, cat.AddLayer(&storeinfo.Layer{ResourceID: res.ID, Name: "roads"}))
	require.NoError(t, cat.AddLayer(&storeinfo.Layer{ResourceID: res.ID, Name: "roads_night"}))

	resources, err := cat.ResourcesByStore(ctx, store.ID)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "roads_v2", resources[0].NativeName)

	layers, err := cat.LayersByResource(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, "roads", layers[0].Name)
	assert.Equal(t, "roads_night", layers[1].Name)

	t.Run("resource for unknown store", func(t *testing.T) {
		err := cat.AddResource(&storeinfo.Resource{StoreID: uuid.New(), Name: "x"})
		assert.ErrorIs(t, err, storeinfo.ErrStoreNotFound)
	})

	t.Run("layer for unknown resource", func(t *testing.T) {
		err := cat.AddLayer(&storeinfo.Layer{ResourceID: uuid.New(), Name: "x"})
		assert.Error(t, err)
	})
}

const catalogYAML = `
stores:
  - archetype: vector
    workspace: topp
    name: roads
    enabled: true
    format: Shapefile
    params:
      file: !file shapefiles/roads.shp
      charset: UTF-8
      memory mapped buffer: false
    metadata:
      author: ops
    resources:
      - name: roads
        title: Roads
        layers:
          - name: roads
          - name: roads_labels
            title: Road labels
  - archetype: raster
    workspace: topp
    name: dem
    format: GeoTIFF
    url: file:data/dem.tif
  - archetype: service
    workspace: topp
    name: basemap
    capabilities_url: https://example.org/wms
    last_error:
      message: connection refused
      causes: ["dial tcp: connection refused"]
  - workspace: topp
    name: misc
    params:
      endpoint: !url http://example.org/feed
`

func TestLoad(t *testing.T) {
	cat, err := memory.Load(strings.NewReader(catalogYAML))
	require.NoError(t, err)
	ctx := context.Background()

	stores, err := cat.ListStores(ctx, "topp")
	require.NoError(t, err)
	require.Len(t, stores, 4)

	roads := stores[0]
	assert.IsType(t, &storeinfo.VectorStore{}, roads)
	params := roads.Info().Params
	require.Len(t, params, 3)
	assert.Equal(t, "file", params[0].Key)
	assert.Equal(t, storeinfo.FilePath("shapefiles/roads.shp"), params[0].Value)
	assert.Equal(t, "charset", params[1].Key)
	assert.Equal(t, "memory mapped buffer", params[2].Key)
	assert.Equal(t, false, params[2].Value)
	assert.Equal(t, "ops", roads.Info().Metadata["author"])

	dem := stores[1].(*storeinfo.RasterStore)
	assert.Equal(t, "file:data/dem.tif", dem.URL)

	basemap := stores[2].(*storeinfo.ServiceStore)
	assert.Equal(t, "https://example.org/wms", basemap.CapabilitiesURL)
	require.NotNil(t, basemap.LastError)
	assert.Equal(t, "connection refused", basemap.LastError.Message)

	misc := stores[3]
	assert.IsType(t, &storeinfo.GenericStore{}, misc)
	u, ok := misc.Info().Params.AsURL("endpoint")
	require.True(t, ok)
	assert.Equal(t, &url.URL{Scheme: "http", Host: "example.org", Path: "/feed"}, u)

	resources, err := cat.ResourcesByStore(ctx, roads.Info().ID)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, storeinfo.ResourceVector, resources[0].Type)
	assert.Equal(t, "roads", resources[0].NativeName)

	layers, err := cat.LayersByResource(ctx, resources[0].ID)
	require.NoError(t, err)
	require.Len(t, layers, 2)
	assert.Equal(t, "Road labels", layers[1].Title)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o644))

	cat, err := memory.LoadFile(path)
	require.NoError(t, err)
	_, err = cat.GetStore(context.Background(), "topp", "basemap")
	assert.NoError(t, err)

	_, err = memory.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
