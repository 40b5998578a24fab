package storeinfo

import (
	"fmt"
	"log/slog"
)

// LevelTrace is the slog level for per-item failures, below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// Diagnostic operations.
const (
	OpOpen         = "open"
	OpList         = "list"
	OpSchema       = "schema"
	OpInfo         = "info"
	OpClose        = "close"
	OpCapabilities = "capabilities"
	OpResources    = "resources"
	OpLayers       = "layers"
	OpConnection   = "connection"
)

// Diagnostic is a recovered failure recorded while building a descriptor.
// Diagnostics are never shown to end users; they are logged and forwarded
// to the EventSink.
type Diagnostic struct {
	Store string
	Op    string
	// Item names the feature type, resource or parameter the failure is
	// about, when it is about a single one.
	Item  string
	Level slog.Level
	Err   error
}

func (d Diagnostic) String() string {
	if d.Item != "" {
		return fmt.Sprintf("%s %s %s: %v", d.Store, d.Op, d.Item, d.Err)
	}
	return fmt.Sprintf("%s %s: %v", d.Store, d.Op, d.Err)
}

// LogAttrs returns the slog attributes of d.
func (d Diagnostic) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("store", d.Store),
		slog.String("op", d.Op),
	}
	if d.Item != "" {
		attrs = append(attrs, slog.String("item", d.Item))
	}
	return append(attrs, slog.Any("err", d.Err))
}

// Result is the outcome of a best-effort step. OK reports whether Value is
// present; an absent value is distinct from an empty one.
type Result[T any] struct {
	Value       T
	OK          bool
	Diagnostics []Diagnostic
}

// Get returns the value and whether it is present.
func (r Result[T]) Get() (T, bool) {
	return r.Value, r.OK
}

func present[T any](v T, diags []Diagnostic) Result[T] {
	return Result[T]{Value: v, OK: true, Diagnostics: diags}
}

func absent[T any](diags []Diagnostic) Result[T] {
	return Result[T]{Diagnostics: diags}
}
