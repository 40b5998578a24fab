package storeinfo

import (
	"bytes"
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"gopkg.in/yaml.v3"
)

// Well-known connection parameter keys.
const (
	ParamDBType    = "dbtype"
	ParamDirectory = "directory"
	ParamFile      = "file"
	ParamURL       = "url"
	ParamHost      = "host"
	ParamPort      = "port"
	ParamSchema    = "schema"
	ParamDatabase  = "database"
	ParamUser      = "user"
	ParamPasswd    = "passwd"
)

// FilePath is a parameter value naming a local file or directory.
type FilePath string

// Param is one connection parameter.
type Param struct {
	Key   string
	Value any
}

// Params is the ordered connection parameter bag of a store. Keys are case
// sensitive. Order is significant: value scans during classification and
// source resolution visit parameters in this order.
type Params []Param

// NewParams builds Params from alternating key/value arguments.
func NewParams(kv ...any) Params {
	p := make(Params, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		p = append(p, Param{Key: key, Value: kv[i+1]})
	}
	return p
}

// Get returns the raw value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, e := range p {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Has reports whether key is present, whatever its value.
func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Text returns the display string of the value under key. It fails when
// the key is missing, the value is nil, or the value's own text conversion
// fails or panics.
func (p Params) Text(key string) (string, error) {
	v, ok := p.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, key)
	}
	return valueText(v)
}

// AsString converts the value under key to a string, best effort.
func (p Params) AsString(key string) (string, bool) {
	s, err := p.Text(key)
	if err != nil {
		return "", false
	}
	return s, true
}

// AsFile interprets the value under key as a local path. Strings and
// file URLs are accepted; other URL schemes are not.
func (p Params) AsFile(key string) (FilePath, bool) {
	v, ok := p.Get(key)
	if !ok {
		return "", false
	}
	return toFile(v)
}

// AsURL interprets the value under key as a URL. Strings must carry a
// scheme; file paths become file URLs.
func (p Params) AsURL(key string) (*url.URL, bool) {
	v, ok := p.Get(key)
	if !ok {
		return nil, false
	}
	return toURL(v)
}

// Values returns the raw values in parameter order.
func (p Params) Values() []any {
	out := make([]any, len(p))
	for i, e := range p {
		out[i] = e.Value
	}
	return out
}

func valueText(v any) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("text conversion panicked: %v", r)
		}
	}()
	switch t := v.(type) {
	case nil:
		return "", errors.New("nil value")
	case string:
		return t, nil
	case FilePath:
		return string(t), nil
	case *url.URL:
		if t == nil {
			return "", errors.New("nil url")
		}
		return t.String(), nil
	case encoding.TextMarshaler:
		b, err := t.MarshalText()
		if err != nil {
			return "", err
		}
		return string(b), nil
	case fmt.Stringer:
		return t.String(), nil
	default:
		return fmt.Sprint(t), nil
	}
}

func toFile(v any) (FilePath, bool) {
	switch t := v.(type) {
	case FilePath:
		return t, t != ""
	case string:
		if t == "" {
			return "", false
		}
		if strings.HasPrefix(t, "file:") {
			u, err := url.Parse(t)
			if err != nil {
				return "", false
			}
			return fileURLPath(u)
		}
		return FilePath(t), true
	case *url.URL:
		if t == nil || t.Scheme != "file" {
			return "", false
		}
		return fileURLPath(t)
	}
	return "", false
}

func toURL(v any) (*url.URL, bool) {
	switch t := v.(type) {
	case *url.URL:
		return t, t != nil
	case FilePath:
		if t == "" {
			return nil, false
		}
		if strings.HasPrefix(string(t), "/") {
			return &url.URL{Scheme: "file", Path: string(t)}, true
		}
		return &url.URL{Scheme: "file", Opaque: string(t)}, true
	case string:
		u, err := url.Parse(t)
		if err != nil || u.Scheme == "" {
			return nil, false
		}
		return u, true
	}
	return nil, false
}

// fileURLPath extracts the path of a file URL. "file:data/x" is opaque
// and yields the relative path "data/x".
func fileURLPath(u *url.URL) (FilePath, bool) {
	if u.Opaque != "" {
		p, err := url.PathUnescape(u.Opaque)
		if err != nil {
			return "", false
		}
		return FilePath(p), true
	}
	if u.Path == "" {
		return "", false
	}
	return FilePath(u.Path), true
}

// UnmarshalYAML decodes a YAML mapping keeping key order. Values tagged
// !file become FilePath and values tagged !url become *url.URL.
func (p *Params) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("params: expected mapping, got %v at line %d", node.Tag, node.Line)
	}
	out := make(Params, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, vn := node.Content[i], node.Content[i+1]
		var value any
		switch vn.Tag {
		case "!file":
			value = FilePath(vn.Value)
		case "!url":
			u, err := url.Parse(vn.Value)
			if err != nil {
				return fmt.Errorf("params: %s: %w", k.Value, err)
			}
			value = u
		default:
			if err := vn.Decode(&value); err != nil {
				return fmt.Errorf("params: %s: %w", k.Value, err)
			}
		}
		out = append(out, Param{Key: k.Value, Value: value})
	}
	*p = out
	return nil
}

type jsonParam struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
	Type  string `json:"type,omitempty"`
}

// MarshalJSON encodes params as an array of {key, value, type} objects so
// that order and the file/url value types survive storage in JSONB.
func (p Params) MarshalJSON() ([]byte, error) {
	out := make([]jsonParam, 0, len(p))
	for _, e := range p {
		jp := jsonParam{Key: e.Key}
		switch t := e.Value.(type) {
		case FilePath:
			jp.Value, jp.Type = string(t), "file"
		case *url.URL:
			if t != nil {
				jp.Value, jp.Type = t.String(), "url"
			}
		default:
			if text, err := valueText(t); err == nil {
				jp.Value = text
				switch t.(type) {
				case bool, int, int32, int64, float32, float64:
					jp.Value = t
				}
			}
		}
		out = append(out, jp)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the array form written by MarshalJSON or a plain
// JSON object, whose key order is kept.
func (p *Params) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var in []jsonParam
		if err := json.Unmarshal(data, &in); err != nil {
			return err
		}
		out := make(Params, 0, len(in))
		for _, jp := range in {
			value := jp.Value
			s, isString := jp.Value.(string)
			switch {
			case jp.Type == "file" && isString:
				value = FilePath(s)
			case jp.Type == "url" && isString:
				u, err := url.Parse(s)
				if err != nil {
					return fmt.Errorf("params: %s: %w", jp.Key, err)
				}
				value = u
			}
			out = append(out, Param{Key: jp.Key, Value: value})
		}
		*p = out
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*p = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("params: expected JSON object or array")
	}
	out := Params{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		out = append(out, Param{Key: kt.(string), Value: v})
	}
	*p = out
	return nil
}
