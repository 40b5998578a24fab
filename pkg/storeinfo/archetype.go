package storeinfo

// Archetype names used by catalogs to persist the store variant.
const (
	ArchetypeRaster  = "raster"
	ArchetypeVector  = "vector"
	ArchetypeService = "service"
	ArchetypeGeneric = "generic"
)

// NewStore builds the store variant named by archetype. location is the
// coverage URL of raster stores and the capabilities URL of service
// stores; other variants ignore it. Unknown archetypes give a
// *GenericStore.
func NewStore(archetype string, info StoreInfo, location string) Store {
	switch archetype {
	case ArchetypeRaster:
		return &RasterStore{StoreInfo: info, URL: location}
	case ArchetypeVector:
		return &VectorStore{StoreInfo: info}
	case ArchetypeService:
		return &ServiceStore{StoreInfo: info, CapabilitiesURL: location}
	default:
		return &GenericStore{StoreInfo: info}
	}
}

// ArchetypeOf returns the archetype name of s and its location, the
// inverse of NewStore.
func ArchetypeOf(s Store) (archetype, location string) {
	type pair struct{ a, l string }
	p := Match(s,
		func(r *RasterStore) pair { return pair{ArchetypeRaster, r.URL} },
		func(*VectorStore) pair { return pair{ArchetypeVector, ""} },
		func(w *ServiceStore) pair { return pair{ArchetypeService, w.CapabilitiesURL} },
		func(*GenericStore) pair { return pair{ArchetypeGeneric, ""} },
	)
	return p.a, p.l
}

// DefaultResourceType is the type of resources published from a store of
// the given archetype.
func DefaultResourceType(archetype string) ResourceType {
	switch archetype {
	case ArchetypeRaster:
		return ResourceRaster
	case ArchetypeService:
		return ResourceService
	default:
		return ResourceVector
	}
}
