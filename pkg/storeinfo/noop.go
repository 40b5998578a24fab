package storeinfo

import (
	"context"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// StoreDescribed does nothing and returns nil
func (n *NoopEventSink) StoreDescribed(ctx context.Context, descriptor *StoreDescriptor) error {
	return nil
}

// DiagnosticRecorded does nothing and returns nil
func (n *NoopEventSink) DiagnosticRecorded(ctx context.Context, store Store, diag Diagnostic) error {
	return nil
}

// LoggingEventSink is an event sink that logs events but takes no other action.
// Useful for development and debugging
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink. A nil logger uses slog.Default().
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

// StoreDescribed logs the descriptor identity and classification
func (l *LoggingEventSink) StoreDescribed(ctx context.Context, d *StoreDescriptor) error {
	l.logger.InfoContext(ctx, "store described",
		"workspace", d.Workspace,
		"name", d.Name,
		"type", d.Type,
		"kind", d.Kind,
		"source", d.Source,
		"contents", len(d.Contents),
		"contents_present", d.Contents != nil,
		"layers", len(d.Layers))
	return nil
}

// DiagnosticRecorded logs the diagnostic at its own level
func (l *LoggingEventSink) DiagnosticRecorded(ctx context.Context, store Store, diag Diagnostic) error {
	l.logger.LogAttrs(ctx, diag.Level, "store diagnostic", diag.LogAttrs()...)
	return nil
}

// MultiEventSink fans events out to several sinks and returns the first error.
type MultiEventSink []EventSink

func (m MultiEventSink) StoreDescribed(ctx context.Context, d *StoreDescriptor) error {
	var first error
	for _, s := range m {
		if err := s.StoreDescribed(ctx, d); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m MultiEventSink) DiagnosticRecorded(ctx context.Context, store Store, diag Diagnostic) error {
	var first error
	for _, s := range m {
		if err := s.DiagnosticRecorded(ctx, store, diag); err != nil && first == nil {
			first = err
		}
	}
	return first
}
