package storeinfo_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

type panickyStringer struct{}

func (panickyStringer) String() string { panic("boom") }

type failingMarshaler struct{}

func (failingMarshaler) MarshalText() ([]byte, error) { return nil, errors.New("cannot render") }

type port int

func (p port) String() string { return fmt.Sprintf("port-%d", int(p)) }

func TestParams_Accessors(t *testing.T) {
	dataURL, _ := url.Parse("file:///data/roads.shp")
	params := storeinfo.NewParams(
		"name", "roads",
		"file", storeinfo.FilePath("shapefiles/roads.shp"),
		"url", dataURL,
		"remote", "https://example.org/roads.geojson",
		"relative", "file:data/roads.shp",
		"port", 5432,
		"enabled", true,
		"nil", nil,
	)

	t.Run("AsString", func(t *testing.T) {
		s, ok := params.AsString("name")
		assert.True(t, ok)
		assert.Equal(t, "roads", s)

		s, ok = params.AsString("port")
		assert.True(t, ok)
		assert.Equal(t, "5432", s)

		s, ok = params.AsString("url")
		assert.True(t, ok)
		assert.Equal(t, "file:///data/roads.shp", s)

		_, ok = params.AsString("nil")
		assert.False(t, ok)
		_, ok = params.AsString("missing")
		assert.False(t, ok)
	})

	t.Run("AsFile", func(t *testing.T) {
		f, ok := params.AsFile("file")
		assert.True(t, ok)
		assert.Equal(t, storeinfo.FilePath("shapefiles/roads.shp"), f)

		f, ok = params.AsFile("url")
		assert.True(t, ok)
		assert.Equal(t, storeinfo.FilePath("/data/roads.shp"), f)

		f, ok = params.AsFile("relative")
		assert.True(t, ok)
		assert.Equal(t, storeinfo.FilePath("data/roads.shp"), f)

		_, ok = params.AsFile("port")
		assert.False(t, ok)
	})

	t.Run("AsURL", func(t *testing.T) {
		u, ok := params.AsURL("remote")
		require.True(t, ok)
		assert.Equal(t, "example.org", u.Host)

		u, ok = params.AsURL("file")
		require.True(t, ok)
		assert.Equal(t, "file", u.Scheme)

		_, ok = params.AsURL("name")
		assert.False(t, ok, "strings without a scheme are not URLs")
		_, ok = params.AsURL("enabled")
		assert.False(t, ok)
	})

	t.Run("Has keeps nil values", func(t *testing.T) {
		assert.True(t, params.Has("nil"))
		assert.False(t, params.Has("Name"), "keys are case sensitive")
	})
}

func TestParams_Text(t *testing.T) {
	params := storeinfo.NewParams(
		"ok", "value",
		"stringer", port(3),
		"panics", panickyStringer{},
		"marshal", failingMarshaler{},
		"nil", nil,
	)

	s, err := params.Text("ok")
	require.NoError(t, err)
	assert.Equal(t, "value", s)

	s, err = params.Text("stringer")
	require.NoError(t, err)
	assert.Equal(t, "port-3", s)

	_, err = params.Text("panics")
	assert.Error(t, err)

	_, err = params.Text("marshal")
	assert.Error(t, err)

	_, err = params.Text("nil")
	assert.Error(t, err)

	_, err = params.Text("missing")
	assert.ErrorIs(t, err, storeinfo.ErrMissingParameter)
}

func TestParams_JSON(t *testing.T) {
	t.Run("object form keeps key order", func(t *testing.T) {
		var p storeinfo.Params
		require.NoError(t, json.Unmarshal([]byte(`{"zeta":"z","alpha":"a","port":5432}`), &p))
		require.Len(t, p, 3)
		assert.Equal(t, "zeta", p[0].Key)
		assert.Equal(t, "alpha", p[1].Key)
		assert.Equal(t, "port", p[2].Key)
	})

	t.Run("array form restores value types", func(t *testing.T) {
		in := storeinfo.NewParams(
			"directory", storeinfo.FilePath("data/shapes"),
			"namespace", &url.URL{Scheme: "http", Host: "example.org", Path: "/topp"},
			"charset", "UTF-8",
		)
		data, err := json.Marshal(in)
		require.NoError(t, err)

		var out storeinfo.Params
		require.NoError(t, json.Unmarshal(data, &out))
		require.Len(t, out, 3)
		assert.Equal(t, storeinfo.FilePath("data/shapes"), out[0].Value)
		u, ok := out.AsURL("namespace")
		require.True(t, ok)
		assert.Equal(t, "http://example.org/topp", u.String())
		assert.Equal(t, "UTF-8", out[2].Value)
	})
}
