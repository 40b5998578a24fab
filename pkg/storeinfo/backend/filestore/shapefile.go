package filestore

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

const (
	shapefileCode       = 9994
	shapefileHeaderSize = 100
)

// Shape types from the ESRI shapefile header. Z and M variants share the
// geometry of their base type.
var shapeTypes = map[int32]string{
	0:  storeinfo.GeometryNone,
	1:  storeinfo.GeometryPoint,
	3:  storeinfo.GeometryMultiLineString,
	5:  storeinfo.GeometryMultiPolygon,
	8:  storeinfo.GeometryMultiPoint,
	11: storeinfo.GeometryPoint,
	13: storeinfo.GeometryMultiLineString,
	15: storeinfo.GeometryMultiPolygon,
	18: storeinfo.GeometryMultiPoint,
	21: storeinfo.GeometryPoint,
	23: storeinfo.GeometryMultiLineString,
	25: storeinfo.GeometryMultiPolygon,
	28: storeinfo.GeometryMultiPoint,
	31: storeinfo.GeometryGeneric,
}

func readShapefile(r io.Reader, name string) (*document, error) {
	header := make([]byte, shapefileHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read shapefile header: %w", err)
	}
	if code := binary.BigEndian.Uint32(header[0:4]); code != shapefileCode {
		return nil, fmt.Errorf("bad shapefile file code %d", code)
	}
	shapeType := int32(binary.LittleEndian.Uint32(header[32:36]))
	geometry, ok := shapeTypes[shapeType]
	if !ok {
		return nil, fmt.Errorf("unknown shape type %d", shapeType)
	}
	return &document{column: "the_geom", geometry: geometry, title: name}, nil
}
