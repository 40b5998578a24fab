// Package storeinfo builds normalized, display-oriented descriptors of
// configured geospatial data stores.
//
// A Store is one of four archetypes (raster, vector, remote service or
// generic). The Service classifies a store by transport medium (Type) and
// data model (Kind), resolves a canonical source location relative to a
// base directory, enumerates the store's logical contents through pluggable
// backend openers, and joins the store to the catalog's published layers.
//
// Failure Policy
//
// Classification and source resolution are total. Content enumeration and
// layer cross-referencing are best effort: backend failures are recorded as
// Diagnostics on a Result and the affected descriptor field is left absent.
// The only error returned to callers is a *LookupError for a store that
// does not exist in the catalog.
//
// Backend clients live under the backend subpackages; catalog
// implementations (memory, YAML file, Postgres) live under catalog.
package storeinfo
