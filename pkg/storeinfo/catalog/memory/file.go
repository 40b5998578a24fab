package memory

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML layout of a catalog seed file:
//
//	stores:
//	  - archetype: vector
//	    workspace: topp
//	    name: roads
//	    enabled: true
//	    format: Shapefile
//	    params:
//	      file: !file shapefiles/roads.shp
//	    resources:
//	      - name: roads
//	        native_name: roads
//	        layers:
//	          - name: roads
type catalogFile struct {
	Stores []storeRecord `yaml:"stores"`
}

type storeRecord struct {
	storeinfo.StoreInfo `yaml:",inline"`
	// Archetype is one of raster, vector, service; anything else is generic.
	Archetype       string           `yaml:"archetype"`
	URL             string           `yaml:"url"`
	CapabilitiesURL string           `yaml:"capabilities_url"`
	Resources       []resourceRecord `yaml:"resources"`
}

type resourceRecord struct {
	storeinfo.Resource `yaml:",inline"`
	Layers             []storeinfo.Layer `yaml:"layers"`
}

func (r storeRecord) store() storeinfo.Store {
	location := r.URL
	if r.Archetype == storeinfo.ArchetypeService {
		location = r.CapabilitiesURL
	}
	return storeinfo.NewStore(r.Archetype, r.StoreInfo, location)
}

// LoadFile reads a YAML catalog file into a new Catalog
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a YAML catalog document into a new Catalog
func Load(r io.Reader) (*Catalog, error) {
	var doc catalogFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	c := New()
	for _, rec := range doc.Stores {
		store := rec.store()
		if err := c.AddStore(store); err != nil {
			return nil, err
		}
		storeID := store.Info().ID
		for _, rr := range rec.Resources {
			resource := rr.Resource
			resource.StoreID = storeID
			if resource.Type == "" {
				resource.Type = storeinfo.DefaultResourceType(rec.Archetype)
			}
			if resource.NativeName == "" {
				resource.NativeName = resource.Name
			}
			if resource.ID == uuid.Nil {
				resource.ID = uuid.NewSHA1(storeID, []byte("resource:"+resource.Name))
			}
			if err := c.AddResource(&resource); err != nil {
				return nil, err
			}
			for _, layer := range rr.Layers {
				layer.ResourceID = resource.ID
				if layer.ID == uuid.Nil {
					layer.ID = uuid.NewSHA1(resource.ID, []byte("layer:"+layer.Name))
				}
				if err := c.AddLayer(&layer); err != nil {
					return nil, err
				}
			}
		}
	}
	return c, nil
}
