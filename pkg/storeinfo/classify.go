package storeinfo

import (
	"net/url"
	"strings"
)

// Classification is the pair of tags assigned to every store.
type Classification struct {
	Type StoreType `json:"type"`
	Kind StoreKind `json:"kind"`
}

// Classify returns the Type and Kind of s.
func Classify(s Store) Classification {
	return Classification{Type: ClassifyType(s), Kind: ClassifyKind(s)}
}

// typeHint carries what the archetype alone says about the store type.
type typeHint struct {
	raster  StoreType // decided by a raster URL scheme, "" when undecided
	service bool
}

// ClassifyType derives the transport medium of s. Rules are evaluated in a
// fixed order and the first match wins.
func ClassifyType(s Store) StoreType {
	hint := Match(s,
		func(r *RasterStore) typeHint { return typeHint{raster: rasterURLType(r.URL)} },
		func(*VectorStore) typeHint { return typeHint{} },
		func(*ServiceStore) typeHint { return typeHint{service: true} },
		func(*GenericStore) typeHint { return typeHint{} },
	)
	if hint.raster != "" {
		return hint.raster
	}

	params := s.Info().Params
	if params.Has(ParamDBType) {
		return TypeDatabase
	}
	if hint.service {
		return TypeWeb
	}
	if params.Has(ParamDirectory) || params.Has(ParamFile) {
		return TypeFile
	}
	for _, v := range params.Values() {
		if t := valueType(v); t != "" {
			return t
		}
	}
	return TypeGeneric
}

// ClassifyKind derives the data model of s from its archetype alone.
func ClassifyKind(s Store) StoreKind {
	return Match(s,
		func(*RasterStore) StoreKind { return KindRaster },
		func(*VectorStore) StoreKind { return KindVector },
		func(*ServiceStore) StoreKind { return KindService },
		func(*GenericStore) StoreKind { return KindUnknown },
	)
}

// rasterURLType maps a coverage URL scheme to a store type.
func rasterURLType(raw string) StoreType {
	switch urlScheme(raw) {
	case "file":
		return TypeFile
	case "http", "https", "ftp", "sftp":
		return TypeWeb
	case "s3", "gs", "az", "abfss":
		return TypeWeb
	}
	return ""
}

func valueType(v any) StoreType {
	switch t := v.(type) {
	case FilePath:
		return TypeFile
	case *url.URL:
		if t == nil {
			return ""
		}
		switch t.Scheme {
		case "file":
			return TypeFile
		case "http":
			return TypeWeb
		}
	case string:
		switch {
		case strings.HasPrefix(t, "file:"):
			return TypeFile
		case strings.HasPrefix(t, "http:"):
			return TypeWeb
		case strings.HasPrefix(t, "jdbc:"):
			return TypeDatabase
		}
	}
	return ""
}

// urlScheme returns the lower-cased scheme of raw, or "" when raw has none.
func urlScheme(raw string) string {
	i := strings.IndexByte(raw, ':')
	if i <= 0 {
		return ""
	}
	scheme := raw[:i]
	for j, c := range scheme {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return ""
		}
	}
	return strings.ToLower(scheme)
}
