package metrics_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/catalog/memory"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo/metrics"
)

func TestEventSink(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := metrics.NewEventSink(reg)

	svc, err := storeinfo.New(storeinfo.WithCatalog(memory.New()), storeinfo.WithEventSink(sink))
	require.NoError(t, err)
	ctx := context.Background()

	vector := &storeinfo.VectorStore{StoreInfo: storeinfo.StoreInfo{
		Name: "roads", Workspace: "topp", Enabled: true, Params: storeinfo.NewParams("file", "roads.shp"),
	}}
	svc.BuildDescriptor(ctx, vector)
	svc.BuildDescriptor(ctx, vector)
	svc.BuildDescriptor(ctx, &storeinfo.GenericStore{StoreInfo: storeinfo.StoreInfo{Name: "misc", Workspace: "topp"}})

	expected := `
# HELP storeinfo_descriptors_built_total Store descriptors assembled, by store type and kind.
# TYPE storeinfo_descriptors_built_total counter
storeinfo_descriptors_built_total{kind="UNKNOWN",type="GENERIC"} 1
storeinfo_descriptors_built_total{kind="VECTOR",type="FILE"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "storeinfo_descriptors_built_total"))

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "storeinfo_descriptors_built_total"))
	// no vector opener: each enabled vector build records an open diagnostic
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "storeinfo_diagnostics_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "storeinfo_contents_absent_total"))
}
