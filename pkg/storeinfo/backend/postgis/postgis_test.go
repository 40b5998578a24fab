package postgis_test

import (
	"context"
	"net/url"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend/postgis"
)

func TestConnString(t *testing.T) {
	got, err := postgis.ConnString(storeinfo.NewParams(
		"dbtype", "postgis", "host", "db1", "port", 5433, "database", "gis", "user", "reader", "passwd", "p@ss",
	))
	require.NoError(t, err)
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "db1:5433", u.Host)
	assert.Equal(t, "/gis", u.Path)
	assert.Equal(t, "reader", u.User.Username())
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss", pw)
	assert.Equal(t, "on", u.Query().Get("default_transaction_read_only"))

	got, err = postgis.ConnString(storeinfo.NewParams("host", "db1", "database", "gis"))
	require.NoError(t, err)
	u, err = url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "db1:5432", u.Host)
	assert.Nil(t, u.User)

	_, err = postgis.ConnString(storeinfo.NewParams("database", "gis"))
	assert.ErrorIs(t, err, storeinfo.ErrMissingParameter)
	_, err = postgis.ConnString(storeinfo.NewParams("host", "db1"))
	assert.ErrorIs(t, err, storeinfo.ErrMissingParameter)
}

func TestOpenVector_Unreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &storeinfo.VectorStore{StoreInfo: storeinfo.StoreInfo{
		Name: "roads", Workspace: "topp", Params: storeinfo.NewParams("dbtype", "postgis", "host", "127.0.0.1", "port", 1, "database", "gis"),
	}}
	_, err := postgis.New().OpenVector(ctx, store)
	assert.Error(t, err)
}

// storeFromURL turns TEST_DATABASE_URL into store parameters.
func storeFromURL(t *testing.T, raw string) *storeinfo.VectorStore {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	params := []any{"dbtype", postgis.DBType, "host", u.Hostname(), "database", u.Path[1:], "schema", "storeinfo_test"}
	if port := u.Port(); port != "" {
		params = append(params, "port", port)
	}
	if u.User != nil {
		params = append(params, "user", u.User.Username())
		if pw, ok := u.User.Password(); ok {
			params = append(params, "passwd", pw)
		}
	}
	return &storeinfo.VectorStore{StoreInfo: storeinfo.StoreInfo{
		Name: "gis", Workspace: "topp", Enabled: true, Params: storeinfo.NewParams(params...),
	}}
}

func TestOpenVector_Database(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, dbURL)
	require.NoError(t, err)
	defer conn.Close(ctx)
	for _, stmt := range []string{
		`CREATE EXTENSION IF NOT EXISTS postgis`,
		`DROP SCHEMA IF EXISTS storeinfo_test CASCADE`,
		`CREATE SCHEMA storeinfo_test`,
		`CREATE TABLE storeinfo_test.roads (id serial PRIMARY KEY, geom geometry(MultiLineString, 4326))`,
		`CREATE TABLE storeinfo_test.poi (id serial PRIMARY KEY, location geometry(Point, 4326))`,
		`COMMENT ON TABLE storeinfo_test.roads IS 'Road network'`,
	} {
		_, err := conn.Exec(ctx, stmt)
		require.NoError(t, err, stmt)
	}
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `DROP SCHEMA IF EXISTS storeinfo_test CASCADE`)
	})

	src, err := postgis.New().OpenVector(ctx, storeFromURL(t, dbURL))
	require.NoError(t, err)
	defer src.Close()

	names, err := src.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"poi", "roads"}, names)

	schema, err := src.Schema(ctx, "roads")
	require.NoError(t, err)
	assert.Equal(t, "geom", schema.GeometryColumn)
	assert.Equal(t, storeinfo.GeometryMultiLineString, schema.Geometry)

	info, err := src.Info(ctx, "roads")
	require.NoError(t, err)
	assert.Equal(t, "Road network", info.Description)

	info, err = src.Info(ctx, "poi")
	require.NoError(t, err)
	assert.Empty(t, info.Description)
}
