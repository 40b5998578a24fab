// Package metrics exports descriptor and diagnostic counters to Prometheus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

// EventSink counts built descriptors and recorded diagnostics. It
// implements storeinfo.EventSink.
type EventSink struct {
	descriptors *prometheus.CounterVec
	absent      *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
}

// NewEventSink registers the storeinfo counters with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewEventSink(reg prometheus.Registerer) *EventSink {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &EventSink{
		descriptors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storeinfo",
			Name:      "descriptors_built_total",
			Help:      "Store descriptors assembled, by store type and kind.",
		}, []string{"type", "kind"}),
		absent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storeinfo",
			Name:      "contents_absent_total",
			Help:      "Descriptors of enabled stores whose contents could not be enumerated.",
		}, []string{"type", "kind"}),
		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storeinfo",
			Name:      "diagnostics_total",
			Help:      "Diagnostics recorded while describing stores, by store kind and operation.",
		}, []string{"kind", "op"}),
	}
}

func (s *EventSink) StoreDescribed(ctx context.Context, d *storeinfo.StoreDescriptor) error {
	s.descriptors.WithLabelValues(string(d.Type), string(d.Kind)).Inc()
	if d.Enabled && d.Contents == nil {
		s.absent.WithLabelValues(string(d.Type), string(d.Kind)).Inc()
	}
	return nil
}

func (s *EventSink) DiagnosticRecorded(ctx context.Context, store storeinfo.Store, diag storeinfo.Diagnostic) error {
	s.diagnostics.WithLabelValues(string(storeinfo.ClassifyKind(store)), diag.Op).Inc()
	return nil
}
