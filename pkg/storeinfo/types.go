package storeinfo

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// StoreType classifies the transport or storage medium of a store.
type StoreType string

// Store type constants (typed).
const (
	TypeFile     StoreType = "FILE"
	TypeDatabase StoreType = "DATABASE"
	TypeWeb      StoreType = "WEB"
	TypeGeneric  StoreType = "GENERIC"
)

// StoreKind classifies the data model exposed by a store.
type StoreKind string

// Store kind constants (typed).
const (
	KindRaster  StoreKind = "RASTER"
	KindVector  StoreKind = "VECTOR"
	KindService StoreKind = "SERVICE"
	KindUnknown StoreKind = "UNKNOWN"
)

// ResourceType is the archetype of a published catalog resource.
type ResourceType string

const (
	ResourceVector  ResourceType = "vector"
	ResourceRaster  ResourceType = "raster"
	ResourceService ResourceType = "service"
)

// Geometry tags reported on content entries.
const (
	GeometryPoint           = "Point"
	GeometryMultiPoint      = "MultiPoint"
	GeometryLineString      = "LineString"
	GeometryMultiLineString = "MultiLineString"
	GeometryPolygon         = "Polygon"
	GeometryMultiPolygon    = "MultiPolygon"
	GeometryCollection      = "GeometryCollection"
	GeometryGeneric         = "Geometry"
	GeometryNone            = "none"
)

const (
	// ContentRaster tags coverage entries.
	ContentRaster = "raster"
	// ContentLayer tags remote service layers.
	ContentLayer = "layer"
	// DefaultCoverageName names the implicit coverage of a raster store
	// whose reader reports no named coverages.
	DefaultCoverageName = "GridCoverage"
	// SourceUndetermined is returned when no source location can be derived.
	SourceUndetermined = "undetermined"
)

// StoreInfo holds the attributes shared by every store archetype.
type StoreInfo struct {
	ID          uuid.UUID         `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Workspace   string            `json:"workspace" yaml:"workspace"`
	Description string            `json:"description,omitempty" yaml:"description"`
	Format      string            `json:"format,omitempty" yaml:"format"`
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	Params      Params            `json:"params,omitempty" yaml:"params"`
	Metadata    map[string]string `json:"metadata,omitempty" yaml:"metadata"`
	LastError   *ConnectionError  `json:"last_error,omitempty" yaml:"last_error"`
}

// Store is a configured connection to a geospatial backend. The set of
// implementations is closed: *RasterStore, *VectorStore, *ServiceStore and
// *GenericStore.
type Store interface {
	Info() *StoreInfo
	Accept(v StoreVisitor)
	sealed()
}

// RasterStore is a coverage store addressed by a single URL.
type RasterStore struct {
	StoreInfo
	URL string `json:"url" yaml:"url"`
}

// VectorStore is a feature store described by its connection parameters.
type VectorStore struct {
	StoreInfo
}

// ServiceStore is a remote map service addressed by its capabilities URL.
type ServiceStore struct {
	StoreInfo
	CapabilitiesURL string `json:"capabilities_url" yaml:"capabilities_url"`
}

// GenericStore is a store whose archetype is not known to this package.
type GenericStore struct {
	StoreInfo
}

func (s *RasterStore) Info() *StoreInfo  { return &s.StoreInfo }
func (s *VectorStore) Info() *StoreInfo  { return &s.StoreInfo }
func (s *ServiceStore) Info() *StoreInfo { return &s.StoreInfo }
func (s *GenericStore) Info() *StoreInfo { return &s.StoreInfo }

func (s *RasterStore) Accept(v StoreVisitor)  { v.VisitRaster(s) }
func (s *VectorStore) Accept(v StoreVisitor)  { v.VisitVector(s) }
func (s *ServiceStore) Accept(v StoreVisitor) { v.VisitService(s) }
func (s *GenericStore) Accept(v StoreVisitor) { v.VisitGeneric(s) }

func (*RasterStore) sealed()  {}
func (*VectorStore) sealed()  {}
func (*ServiceStore) sealed() {}
func (*GenericStore) sealed() {}

// StoreVisitor receives the concrete archetype of a store.
type StoreVisitor interface {
	VisitRaster(s *RasterStore)
	VisitVector(s *VectorStore)
	VisitService(s *ServiceStore)
	VisitGeneric(s *GenericStore)
}

// Match dispatches on the archetype of s. Every archetype must be handled,
// so adding a variant breaks each call site until it makes a decision.
func Match[T any](
	s Store,
	raster func(*RasterStore) T,
	vector func(*VectorStore) T,
	service func(*ServiceStore) T,
	generic func(*GenericStore) T,
) T {
	switch v := s.(type) {
	case *RasterStore:
		return raster(v)
	case *VectorStore:
		return vector(v)
	case *ServiceStore:
		return service(v)
	case *GenericStore:
		return generic(v)
	}
	panic("storeinfo: unknown store archetype")
}

// QualifiedName returns "workspace:name".
func QualifiedName(s Store) string {
	info := s.Info()
	return info.Workspace + ":" + info.Name
}

// ConnectionError records the failure of the last connection attempt made
// against a store: the top-level message and the messages of its causes,
// outermost first.
type ConnectionError struct {
	Message string   `json:"message" yaml:"message"`
	Causes  []string `json:"causes,omitempty" yaml:"causes"`
}

// NewConnectionError captures err and its Unwrap chain.
func NewConnectionError(err error) *ConnectionError {
	if err == nil {
		return nil
	}
	ce := &ConnectionError{Message: err.Error()}
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		ce.Causes = append(ce.Causes, cause.Error())
	}
	return ce
}

func (e *ConnectionError) Error() string {
	return e.Message
}

// Trace renders the message followed by one "caused by:" line per cause.
func (e *ConnectionError) Trace() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, c := range e.Causes {
		b.WriteString("\ncaused by: ")
		b.WriteString(c)
	}
	return b.String()
}

// ContentEntry is one named unit of data exposed by a store.
type ContentEntry struct {
	Name        string `json:"name"`
	Geometry    string `json:"geometry,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// LayerEntry is one published layer backed by a store.
type LayerEntry struct {
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Type        ResourceType      `json:"type"`
	Metadata    map[string]string `json:"metadata"`
	Content     string            `json:"content"`
}

// ErrorInfo is the display form of a ConnectionError.
type ErrorInfo struct {
	Message string `json:"message"`
	Trace   string `json:"trace"`
}

// StoreSummary is the list view of a store.
type StoreSummary struct {
	Name        string            `json:"name"`
	Workspace   string            `json:"workspace"`
	Description string            `json:"description"`
	Enabled     bool              `json:"enabled"`
	Format      string            `json:"format"`
	Source      string            `json:"source"`
	Type        StoreType         `json:"type"`
	Kind        StoreKind         `json:"kind"`
	Metadata    map[string]string `json:"metadata"`
}

// StoreDescriptor is the detailed, normalized view of a store. It is built
// per request and never mutated afterwards. A nil Contents means content
// enumeration was skipped or failed; an empty non-nil slice means the
// backend reported no contents.
type StoreDescriptor struct {
	StoreSummary
	Connection Connection     `json:"connection"`
	WMS        string         `json:"wms,omitempty"`
	Error      *ErrorInfo     `json:"error,omitempty"`
	Contents   []ContentEntry `json:"contents,omitzero"`
	Layers     []LayerEntry   `json:"layers,omitzero"`
}

// ConnectionEntry is one echoed connection parameter.
type ConnectionEntry struct {
	Key   string
	Value string
}

// Connection is the ordered display form of a store's connection
// parameters. It marshals to a JSON object with keys in parameter order.
type Connection []ConnectionEntry

// Get returns the value recorded for key.
func (c Connection) Get(key string) (string, bool) {
	for _, e := range c {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// set replaces an existing key in place or appends it.
func (c Connection) set(key, value string) Connection {
	for i := range c {
		if c[i].Key == key {
			c[i].Value = value
			return c
		}
	}
	return append(c, ConnectionEntry{Key: key, Value: value})
}

func (c Connection) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping key order.
func (c *Connection) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("connection: expected JSON object")
	}
	out := Connection{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		var v string
		if err := dec.Decode(&v); err != nil {
			return err
		}
		out = append(out, ConnectionEntry{Key: kt.(string), Value: v})
	}
	*c = out
	return nil
}

// Resource is a catalog dataset published from a store.
type Resource struct {
	ID         uuid.UUID    `json:"id" yaml:"id"`
	StoreID    uuid.UUID    `json:"store_id" yaml:"store_id"`
	Name       string       `json:"name" yaml:"name"`
	NativeName string       `json:"native_name" yaml:"native_name"`
	Title      string       `json:"title,omitempty" yaml:"title"`
	Abstract   string       `json:"abstract,omitempty" yaml:"abstract"`
	Type       ResourceType `json:"type" yaml:"type"`
}

// Layer is a published, user-facing view of a resource.
type Layer struct {
	ID         uuid.UUID         `json:"id" yaml:"id"`
	ResourceID uuid.UUID         `json:"resource_id" yaml:"resource_id"`
	Name       string            `json:"name" yaml:"name"`
	Title      string            `json:"title,omitempty" yaml:"title"`
	Abstract   string            `json:"abstract,omitempty" yaml:"abstract"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata"`
}
