package storeinfo_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

func vector(params ...any) *storeinfo.VectorStore {
	return &storeinfo.VectorStore{StoreInfo: storeinfo.StoreInfo{
		Name: "v", Workspace: "ws", Enabled: true, Params: storeinfo.NewParams(params...),
	}}
}

func raster(u string, params ...any) *storeinfo.RasterStore {
	return &storeinfo.RasterStore{
		StoreInfo: storeinfo.StoreInfo{Name: "r", Workspace: "ws", Enabled: true, Params: storeinfo.NewParams(params...)},
		URL:       u,
	}
}

func wmsStore(capabilities string, params ...any) *storeinfo.ServiceStore {
	return &storeinfo.ServiceStore{
		StoreInfo:       storeinfo.StoreInfo{Name: "s", Workspace: "ws", Enabled: true, Params: storeinfo.NewParams(params...)},
		CapabilitiesURL: capabilities,
	}
}

func generic(params ...any) *storeinfo.GenericStore {
	return &storeinfo.GenericStore{StoreInfo: storeinfo.StoreInfo{
		Name: "g", Workspace: "ws", Enabled: true, Params: storeinfo.NewParams(params...),
	}}
}

func TestClassifyType(t *testing.T) {
	httpURL, _ := url.Parse("http://example.org/feed")
	httpsURL, _ := url.Parse("https://example.org/feed")
	fileURL, _ := url.Parse("file:///data/x.shp")

	tests := []struct {
		name  string
		store storeinfo.Store
		want  storeinfo.StoreType
	}{
		{"raster file url", raster("file:data/dem.tif"), storeinfo.TypeFile},
		{"raster http url", raster("http://example.org/dem.tif"), storeinfo.TypeWeb},
		{"raster https url", raster("https://example.org/dem.tif"), storeinfo.TypeWeb},
		{"raster ftp url", raster("ftp://example.org/dem.tif"), storeinfo.TypeWeb},
		{"raster sftp url", raster("sftp://example.org/dem.tif"), storeinfo.TypeWeb},
		{"raster s3 url", raster("s3://bucket/dem.tif"), storeinfo.TypeWeb},
		{"raster url wins over dbtype", raster("file:data/dem.tif", "dbtype", "postgis"), storeinfo.TypeFile},
		{"raster without url falls back to params", raster("", "dbtype", "postgis"), storeinfo.TypeDatabase},
		{"raster without scheme falls back", raster("data/dem.tif"), storeinfo.TypeGeneric},
		{"dbtype", vector("dbtype", "postgis", "host", "db1"), storeinfo.TypeDatabase},
		{"dbtype wins over file", vector("file", "x.shp", "dbtype", "geopkg"), storeinfo.TypeDatabase},
		{"dbtype wins over service", wmsStore("https://example.org/wms", "dbtype", "x"), storeinfo.TypeDatabase},
		{"service", wmsStore("https://example.org/wms"), storeinfo.TypeWeb},
		{"directory", vector("directory", "data/shapes"), storeinfo.TypeFile},
		{"file", vector("file", "roads.shp"), storeinfo.TypeFile},
		{"file path value", generic("location", storeinfo.FilePath("/data/x")), storeinfo.TypeFile},
		{"file: string", generic("location", "file:data/x"), storeinfo.TypeFile},
		{"file url", generic("location", fileURL), storeinfo.TypeFile},
		{"http: string", generic("location", "http://example.org"), storeinfo.TypeWeb},
		{"http url", generic("location", httpURL), storeinfo.TypeWeb},
		{"https url is not recognized", generic("location", httpsURL), storeinfo.TypeGeneric},
		{"jdbc string", generic("jndi", "jdbc:postgresql://db1/gis"), storeinfo.TypeDatabase},
		{"first recognized value wins", generic("a", "plain", "b", "jdbc:x", "c", "http://x"), storeinfo.TypeDatabase},
		{"order matters", generic("c", "http://x", "b", "jdbc:x"), storeinfo.TypeWeb},
		{"nil values are skipped", generic("a", nil, "b", "file:x"), storeinfo.TypeFile},
		{"nothing recognized", generic("charset", "UTF-8"), storeinfo.TypeGeneric},
		{"empty vector", vector(), storeinfo.TypeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, storeinfo.ClassifyType(tt.store))
		})
	}
}

func TestClassifyKind(t *testing.T) {
	assert.Equal(t, storeinfo.KindRaster, storeinfo.ClassifyKind(raster("file:x.tif")))
	assert.Equal(t, storeinfo.KindVector, storeinfo.ClassifyKind(vector("dbtype", "postgis")))
	assert.Equal(t, storeinfo.KindService, storeinfo.ClassifyKind(wmsStore("https://example.org/wms")))
	assert.Equal(t, storeinfo.KindUnknown, storeinfo.ClassifyKind(generic("dbtype", "postgis")))
}

func TestClassify_DBTypeAlwaysDatabase(t *testing.T) {
	extras := [][]any{
		nil,
		{"file", "roads.shp"},
		{"directory", "data"},
		{"url", "http://example.org"},
		{"x", storeinfo.FilePath("/data/x")},
	}
	for _, extra := range extras {
		params := append([]any{"dbtype", "postgis"}, extra...)
		for _, store := range []storeinfo.Store{vector(params...), generic(params...), wmsStore("https://example.org/wms", params...)} {
			c := storeinfo.Classify(store)
			assert.Equal(t, storeinfo.TypeDatabase, c.Type, "params %v", params)
		}
	}
}

func TestClassify_ExactlyOneTag(t *testing.T) {
	validTypes := map[storeinfo.StoreType]bool{
		storeinfo.TypeFile: true, storeinfo.TypeDatabase: true, storeinfo.TypeWeb: true, storeinfo.TypeGeneric: true,
	}
	validKinds := map[storeinfo.StoreKind]bool{
		storeinfo.KindRaster: true, storeinfo.KindVector: true, storeinfo.KindService: true, storeinfo.KindUnknown: true,
	}
	stores := []storeinfo.Store{
		raster("file:x.tif"), raster(""), vector(), vector("file", "x"), wmsStore(""), generic("a", "http://x", "b", "file:y"),
	}
	for _, s := range stores {
		c := storeinfo.Classify(s)
		assert.True(t, validTypes[c.Type], "type %q", c.Type)
		assert.True(t, validKinds[c.Kind], "kind %q", c.Kind)
	}
}
