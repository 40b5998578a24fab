package storeinfo

import "strings"

var geometryTags = map[string]string{
	"point":              GeometryPoint,
	"multipoint":         GeometryMultiPoint,
	"linestring":         GeometryLineString,
	"multilinestring":    GeometryMultiLineString,
	"polygon":            GeometryPolygon,
	"multipolygon":       GeometryMultiPolygon,
	"geometrycollection": GeometryCollection,
	"geometry":           GeometryGeneric,
}

// GeometryTag maps a backend geometry type name to a Geometry* tag.
// Names are matched case-insensitively and Z/M suffixes are ignored, so
// "MULTIPOLYGONZ" and "MultiPolygon" both map to GeometryMultiPolygon.
// An empty name maps to GeometryNone and unknown names to GeometryGeneric.
func GeometryTag(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return GeometryNone
	}
	if tag, ok := geometryTags[n]; ok {
		return tag
	}
	for _, suffix := range []string{"zm", "z", "m"} {
		if tag, ok := geometryTags[strings.TrimSuffix(n, suffix)]; ok && strings.HasSuffix(n, suffix) {
			return tag
		}
	}
	return GeometryGeneric
}

// MergeGeometry combines the tags of several geometries: no geometries give
// GeometryNone, a single shared tag is kept and mixed tags give
// GeometryGeneric.
func MergeGeometry(tags []string) string {
	merged := ""
	for _, t := range tags {
		if t == "" || t == GeometryNone {
			continue
		}
		switch merged {
		case "":
			merged = t
		case t:
		default:
			return GeometryGeneric
		}
	}
	if merged == "" {
		return GeometryNone
	}
	return merged
}
