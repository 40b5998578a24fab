package storeinfo

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Resolver computes the canonical display location of a store relative to
// a base directory. The zero value resolves with no base directory.
type Resolver struct {
	BaseDirectory string
}

// NewResolver returns a Resolver rooted at baseDirectory.
func NewResolver(baseDirectory string) Resolver {
	return Resolver{BaseDirectory: baseDirectory}
}

// Resolve returns where the data of s physically lives. It never fails;
// SourceUndetermined is returned when nothing applies.
func (r Resolver) Resolve(s Store) string {
	first := Match(s,
		func(rs *RasterStore) string {
			if rs.URL == "" {
				return ""
			}
			return r.URL(rs.URL)
		},
		func(*VectorStore) string { return "" },
		func(*ServiceStore) string { return "" },
		func(*GenericStore) string { return "" },
	)
	if first != "" {
		return first
	}

	params := s.Info().Params
	if params.Has(ParamDBType) {
		if src := databaseSource(params); src != "" {
			return src
		}
	}
	if svc, ok := s.(*ServiceStore); ok && svc.CapabilitiesURL != "" {
		return svc.CapabilitiesURL
	}
	for _, key := range []string{ParamDirectory, ParamFile} {
		if !params.Has(key) {
			continue
		}
		v, _ := params.Get(key)
		switch t := v.(type) {
		case *url.URL:
			if t != nil && strings.EqualFold(t.Scheme, "file") {
				return r.url(t, t.String())
			}
		case string:
			if strings.HasPrefix(t, "file:") {
				return r.URL(t)
			}
		}
		if f, ok := params.AsFile(key); ok {
			return r.LocalPath(string(f))
		}
	}
	if u, ok := params.AsString(ParamURL); ok && u != "" {
		return r.URL(u)
	}
	for _, v := range params.Values() {
		switch t := v.(type) {
		case *url.URL:
			if t != nil {
				return r.url(t, t.String())
			}
		case FilePath:
			if t != "" {
				return r.LocalPath(string(t))
			}
		case string:
			switch {
			case strings.HasPrefix(t, "file:"):
				return r.URL(t)
			case strings.HasPrefix(t, "http:"), strings.HasPrefix(t, "https:"), strings.HasPrefix(t, "ftp:"):
				return t
			}
		}
	}
	return SourceUndetermined
}

// LocalPath renders a path for display. Absolute paths are returned
// unchanged. Relative paths are taken as relative to the base directory and
// returned in forward-slash form; they are never resolved against the
// process working directory.
func (r Resolver) LocalPath(p string) string {
	if p == "" {
		return SourceUndetermined
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return p
	}
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "./") {
		p = strings.TrimLeft(p[2:], "/")
	}
	if p == "" || p == "." {
		return "."
	}
	return p
}

// URL renders a URL for display. File URLs that map under the base
// directory are shown as relative paths; anything else is returned as
// given.
func (r Resolver) URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return r.url(u, raw)
}

func (r Resolver) url(u *url.URL, text string) string {
	if !strings.EqualFold(u.Scheme, "file") {
		return text
	}
	p, ok := fileURLPath(u)
	if !ok {
		return text
	}
	if rel, ok := r.relative(string(p)); ok {
		return rel
	}
	return text
}

// relative maps p to a forward-slash path relative to the base directory.
// It fails for absolute paths outside the base directory.
func (r Resolver) relative(p string) (string, bool) {
	if !filepath.IsAbs(p) && !strings.HasPrefix(p, "/") {
		return r.LocalPath(p), true
	}
	if r.BaseDirectory == "" {
		return "", false
	}
	rel, err := filepath.Rel(filepath.Clean(r.BaseDirectory), filepath.Clean(p))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return r.LocalPath(rel), true
}

// databaseSource renders host[:port]/dbtype/database[/schema]. The host,
// dbtype and database segments keep their position even when empty; port
// and schema are dropped when absent. Empty values count as absent.
func databaseSource(params Params) string {
	get := func(key string) string {
		v, _ := params.AsString(key)
		return v
	}
	host, dbtype, database := get(ParamHost), get(ParamDBType), get(ParamDatabase)
	if host == "" && dbtype == "" && database == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(host)
	if port := get(ParamPort); port != "" {
		b.WriteString(":" + port)
	}
	b.WriteString("/" + dbtype + "/" + database)
	if schema := get(ParamSchema); schema != "" {
		b.WriteString("/" + schema)
	}
	return b.String()
}
