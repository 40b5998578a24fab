package backend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend"
)

var errOpened = errors.New("opened")

type namedOpener string

func (n namedOpener) OpenVector(context.Context, *storeinfo.VectorStore) (storeinfo.VectorSource, error) {
	return nil, errors.Join(errOpened, errors.New(string(n)))
}

func (n namedOpener) OpenRaster(context.Context, *storeinfo.RasterStore) (storeinfo.CoverageReader, error) {
	return nil, errors.Join(errOpened, errors.New(string(n)))
}

func (n namedOpener) OpenService(context.Context, *storeinfo.ServiceStore) (storeinfo.RemoteService, error) {
	return nil, errors.Join(errOpened, errors.New(string(n)))
}

func vector(params ...any) *storeinfo.VectorStore {
	return &storeinfo.VectorStore{StoreInfo: storeinfo.StoreInfo{Name: "v", Workspace: "ws", Params: storeinfo.NewParams(params...)}}
}

func openedBy(t *testing.T, err error) string {
	t.Helper()
	require.ErrorIs(t, err, errOpened)
	return err.Error()[len(errOpened.Error())+1:]
}

func TestRouter_OpenVector(t *testing.T) {
	ctx := context.Background()
	r := backend.NewRouter(
		backend.WithDatabase("postgis", namedOpener("postgis")),
		backend.WithDatabase("geopkg", namedOpener("geopkg")),
		backend.WithFiles(namedOpener("files")),
	)

	_, err := r.OpenVector(ctx, vector("dbtype", "postgis", "host", "db1"))
	assert.Equal(t, "postgis", openedBy(t, err))

	_, err = r.OpenVector(ctx, vector("file", "x.gpkg", "dbtype", "geopkg"))
	assert.Equal(t, "geopkg", openedBy(t, err), "dbtype wins over file parameters")

	_, err = r.OpenVector(ctx, vector("directory", "shapes"))
	assert.Equal(t, "files", openedBy(t, err))

	_, err = r.OpenVector(ctx, vector("url", "s3://bucket/x.geojson"))
	assert.Equal(t, "files", openedBy(t, err))

	_, err = r.OpenVector(ctx, vector("dbtype", "oracle"))
	assert.ErrorIs(t, err, storeinfo.ErrUnsupportedBackend)

	_, err = r.OpenVector(ctx, vector("charset", "UTF-8"))
	assert.ErrorIs(t, err, storeinfo.ErrUnsupportedBackend)

	assert.ElementsMatch(t, []string{"postgis", "geopkg"}, r.DBTypes())
}

func TestRouter_RasterAndService(t *testing.T) {
	ctx := context.Background()
	empty := backend.NewRouter()
	_, err := empty.OpenRaster(ctx, &storeinfo.RasterStore{URL: "file:x.tif"})
	assert.ErrorIs(t, err, storeinfo.ErrUnsupportedBackend)
	_, err = empty.OpenService(ctx, &storeinfo.ServiceStore{})
	assert.ErrorIs(t, err, storeinfo.ErrUnsupportedBackend)

	r := backend.NewRouter(backend.WithRaster(namedOpener("raster")), backend.WithService(namedOpener("wms")))
	_, err = r.OpenRaster(ctx, &storeinfo.RasterStore{URL: "file:x.tif"})
	assert.Equal(t, "raster", openedBy(t, err))
	_, err = r.OpenService(ctx, &storeinfo.ServiceStore{})
	assert.Equal(t, "wms", openedBy(t, err))
}
