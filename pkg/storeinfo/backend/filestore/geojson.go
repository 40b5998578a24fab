package filestore

import (
	"errors"
	"fmt"
	"io"

	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"github.com/tidwall/gjson"
)

var errInvalidGeoJSON = errors.New("invalid GeoJSON document")

// ErrDocumentTooLarge indicates a GeoJSON document exceeds the opener's size limit
var ErrDocumentTooLarge = errors.New("GeoJSON document too large")

func readGeoJSON(r io.Reader, limit int64) (*document, error) {
	if limit <= 0 {
		limit = DefaultMaxDocumentSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDocumentTooLarge, limit)
	}
	if !gjson.ValidBytes(data) {
		return nil, errInvalidGeoJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errInvalidGeoJSON
	}

	doc := &document{
		column:      "geometry",
		title:       root.Get("title").String(),
		description: root.Get("description").String(),
	}
	if doc.title == "" {
		doc.title = root.Get("name").String()
	}

	var types []string
	switch root.Get("type").String() {
	case "FeatureCollection":
		for _, t := range root.Get("features.#.geometry.type").Array() {
			types = append(types, storeinfo.GeometryTag(t.String()))
		}
	case "Feature":
		types = append(types, storeinfo.GeometryTag(root.Get("geometry.type").String()))
	case "":
		return nil, errInvalidGeoJSON
	default:
		types = append(types, storeinfo.GeometryTag(root.Get("type").String()))
	}
	doc.geometry = storeinfo.MergeGeometry(types)
	return doc, nil
}
