package app_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-storeinfo/cmd/storectl/app"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

const roadsGeoJSON = `{
  "type": "FeatureCollection",
  "name": "Roads",
  "features": [
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}, "properties": {}}
  ]
}`

const testCatalog = `
stores:
  - archetype: vector
    workspace: topp
    name: roads
    enabled: true
    format: GeoJSON
    params:
      file: !file roads.geojson
    resources:
      - name: roads
        native_name: roads
        title: Roads
        type: vector
        layers:
          - name: roads
  - archetype: raster
    workspace: nurc
    name: dem
    enabled: false
    url: file:dem.tif
`

func setup(t *testing.T) (catalog, dataDir string) {
	t.Helper()
	dataDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "roads.geojson"), []byte(roadsGeoJSON), 0o644))
	catalog = filepath.Join(dataDir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte(testCatalog), 0o644))
	return catalog, dataDir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := app.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestWorkspaces(t *testing.T) {
	catalog, dir := setup(t)

	out, err := run(t, "--catalog", catalog, "--base-dir", dir, "-o", "json", "workspaces")
	require.NoError(t, err)
	var workspaces []string
	require.NoError(t, json.Unmarshal([]byte(out), &workspaces))
	assert.Equal(t, []string{"nurc", "topp"}, workspaces)
}

func TestList(t *testing.T) {
	catalog, dir := setup(t)

	out, err := run(t, "--catalog", catalog, "--base-dir", dir, "-o", "json", "list", "topp")
	require.NoError(t, err)
	var summaries []storeinfo.StoreSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "roads", summaries[0].Name)
	assert.Equal(t, "roads.geojson", summaries[0].Source)
	assert.Equal(t, storeinfo.TypeFile, summaries[0].Type)

	out, err = run(t, "--catalog", catalog, "--base-dir", dir, "list", "topp")
	require.NoError(t, err)
	assert.Contains(t, out, "roads.geojson")
	assert.Contains(t, out, "VECTOR")
}

func TestDescribe(t *testing.T) {
	catalog, dir := setup(t)

	out, err := run(t, "--catalog", catalog, "--base-dir", dir, "-o", "json", "describe", "topp", "roads")
	require.NoError(t, err)
	var d storeinfo.StoreDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, storeinfo.KindVector, d.Kind)
	require.Len(t, d.Contents, 1)
	assert.Equal(t, "roads", d.Contents[0].Name)
	assert.Equal(t, storeinfo.GeometryLineString, d.Contents[0].Geometry)
	require.Len(t, d.Layers, 1)
	assert.Equal(t, "Roads", d.Layers[0].Title)

	out, err = run(t, "--catalog", catalog, "--base-dir", dir, "describe", "nurc", "dem")
	require.NoError(t, err)
	assert.Contains(t, out, "Contents: unavailable")

	_, err = run(t, "--catalog", catalog, "--base-dir", dir, "describe", "topp", "missing")
	assert.ErrorIs(t, err, storeinfo.ErrStoreNotFound)
}

func TestScan(t *testing.T) {
	catalog, dir := setup(t)

	out, err := run(t, "--catalog", catalog, "--base-dir", dir, "-o", "json", "scan")
	require.NoError(t, err)
	var descriptors []storeinfo.StoreDescriptor
	require.NoError(t, json.Unmarshal([]byte(out), &descriptors))
	require.Len(t, descriptors, 2)
	assert.Equal(t, "dem", descriptors[0].Name)
	assert.Equal(t, "roads", descriptors[1].Name)

	out, err = run(t, "--catalog", catalog, "--base-dir", dir, "scan", "--dry-run", "topp")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOutputFlag(t *testing.T) {
	catalog, _ := setup(t)
	_, err := run(t, "--catalog", catalog, "-o", "yaml", "workspaces")
	assert.Error(t, err)
}
