package wms_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/backend/wms"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/catalog/memory"
)

const capabilities130 = `<?xml version="1.0" encoding="UTF-8"?>
<WMS_Capabilities version="1.3.0" xmlns="http://www.opengis.net/wms">
  <Service>
    <Name>WMS</Name>
    <Title>Example Map Server</Title>
  </Service>
  <Capability>
    <Layer>
      <Title>Root</Title>
      <Layer queryable="1">
        <Name>topp:states</Name>
        <Title>USA Population</Title>
        <Abstract>States of the USA</Abstract>
      </Layer>
      <Layer>
        <Title>Transport</Title>
        <Layer>
          <Name>topp:roads</Name>
          <Title>Roads</Title>
        </Layer>
        <Layer>
          <Name>topp:rail</Name>
        </Layer>
      </Layer>
    </Layer>
  </Capability>
</WMS_Capabilities>`

const capabilities111 = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE WMT_MS_Capabilities SYSTEM "http://schemas.opengis.net/wms/1.1.1/WMS_MS_Capabilities.dtd">
<WMT_MS_Capabilities version="1.1.1">
  <Service><Name>OGC:WMS</Name><Title>Legacy</Title></Service>
  <Capability>
    <Layer>
      <Name>base</Name>
      <Title>Base</Title>
      <Layer><Name>base:coast</Name><Title>Coast</Title></Layer>
    </Layer>
  </Capability>
</WMT_MS_Capabilities>`

func TestParse(t *testing.T) {
	t.Run("1.3.0 flattens named layers depth first", func(t *testing.T) {
		caps, err := wms.Parse(strings.NewReader(capabilities130))
		require.NoError(t, err)
		assert.Equal(t, "1.3.0", caps.Version)
		assert.Equal(t, "Example Map Server", caps.Title)
		assert.Equal(t, []storeinfo.RemoteLayer{
			{Name: "topp:states", Title: "USA Population", Abstract: "States of the USA"},
			{Name: "topp:roads", Title: "Roads"},
			{Name: "topp:rail"},
		}, caps.Layers)
	})

	t.Run("1.1.1 keeps named parents", func(t *testing.T) {
		caps, err := wms.Parse(strings.NewReader(capabilities111))
		require.NoError(t, err)
		assert.Equal(t, "1.1.1", caps.Version)
		require.Len(t, caps.Layers, 2)
		assert.Equal(t, "base", caps.Layers[0].Name)
		assert.Equal(t, "base:coast", caps.Layers[1].Name)
	})

	t.Run("other documents are rejected", func(t *testing.T) {
		_, err := wms.Parse(strings.NewReader(`<ServiceExceptionReport/>`))
		assert.ErrorIs(t, err, wms.ErrNotCapabilities)

		_, err = wms.Parse(strings.NewReader(`not xml`))
		assert.Error(t, err)
	})
}

func TestCapabilitiesURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.org/wms", "https://example.org/wms?SERVICE=WMS&REQUEST=GetCapabilities"},
		{"https://example.org/wms?map=x", "https://example.org/wms?map=x&SERVICE=WMS&REQUEST=GetCapabilities"},
		{"https://example.org/wms?service=wms&request=GetCapabilities", "https://example.org/wms?service=wms&request=GetCapabilities"},
		{"https://example.org/wms?SERVICE=WMS", "https://example.org/wms?SERVICE=WMS&REQUEST=GetCapabilities"},
	}
	for _, tt := range tests {
		got, err := wms.CapabilitiesURL(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := wms.CapabilitiesURL("")
	assert.ErrorIs(t, err, storeinfo.ErrMissingParameter)
	_, err = wms.CapabilitiesURL("ftp://example.org/wms")
	assert.ErrorIs(t, err, storeinfo.ErrUnsupportedBackend)
}

func TestClient_GetCapabilities(t *testing.T) {
	ctx := context.Background()

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			assert.Equal(t, "GetCapabilities", r.URL.Query().Get("REQUEST"))
			w.Header().Set("Content-Type", "text/xml")
			_, _ = w.Write([]byte(capabilities130))
		}))
		defer srv.Close()

		client := wms.New(wms.Config{InitialInterval: time.Millisecond})
		remote, err := client.OpenService(ctx, &storeinfo.ServiceStore{CapabilitiesURL: srv.URL + "/wms"})
		require.NoError(t, err)
		caps, err := remote.Capabilities(ctx)
		require.NoError(t, err)
		assert.Len(t, caps.Layers, 3)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.NotFound(w, r)
		}))
		defer srv.Close()

		client := wms.New(wms.Config{InitialInterval: time.Millisecond})
		_, err := client.GetCapabilities(ctx, srv.URL)
		assert.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client := wms.New(wms.Config{MaxRetries: 2, InitialInterval: time.Millisecond})
		_, err := client.GetCapabilities(ctx, srv.URL)
		assert.Error(t, err)
		assert.Equal(t, int32(2), calls.Load())
	})
}

func TestServiceStoreDescriptor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(capabilities130))
	}))
	defer srv.Close()

	svc, err := storeinfo.New(
		storeinfo.WithCatalog(memory.New()),
		storeinfo.WithServiceOpener(wms.New(wms.Config{})),
	)
	require.NoError(t, err)

	store := &storeinfo.ServiceStore{
		StoreInfo:       storeinfo.StoreInfo{Name: "basemap", Workspace: "topp", Enabled: true, Format: "WMS"},
		CapabilitiesURL: srv.URL + "/wms",
	}
	d := svc.BuildDescriptor(context.Background(), store)
	assert.Equal(t, storeinfo.TypeWeb, d.Type)
	assert.Equal(t, storeinfo.KindService, d.Kind)
	assert.Equal(t, srv.URL+"/wms", d.Source)
	assert.Equal(t, srv.URL+"/wms", d.WMS)
	require.Len(t, d.Contents, 3)
	for _, c := range d.Contents {
		assert.Equal(t, storeinfo.ContentLayer, c.Geometry)
	}
	assert.Equal(t, "topp:states", d.Contents[0].Name)
}
