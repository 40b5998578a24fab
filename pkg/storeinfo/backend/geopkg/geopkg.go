// Package geopkg reads feature tables from GeoPackage files.
package geopkg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

// DBType is the dbtype parameter value served by this package
const DBType = "geopkg"

const defaultBusyTimeout = "5000"

// Opener opens GeoPackage vector stores
type Opener struct {
	baseDirectory string
}

// New creates an opener. Relative database paths resolve against baseDirectory.
func New(baseDirectory string) *Opener {
	return &Opener{baseDirectory: baseDirectory}
}

func (o *Opener) OpenVector(ctx context.Context, store *storeinfo.VectorStore) (storeinfo.VectorSource, error) {
	database, ok := store.Params.AsFile(storeinfo.ParamDatabase)
	if !ok || database == "" {
		return nil, fmt.Errorf("%w: %s", storeinfo.ErrMissingParameter, storeinfo.ParamDatabase)
	}
	path := filepath.FromSlash(string(database))
	if !filepath.IsAbs(path) && o.baseDirectory != "" {
		path = filepath.Join(o.baseDirectory, path)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat geopackage: %w", err)
	}

	db, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &source{db: db}, nil
}

// Open opens the GeoPackage at path read-only.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	params := url.Values{}
	params.Set("mode", "ro")
	params.Set("_busy_timeout", defaultBusyTimeout)

	db, err := sql.Open("sqlite3", "file:"+filepath.ToSlash(path)+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open geopackage: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping geopackage: %w", err)
	}
	return db, nil
}

type source struct {
	db *sql.DB
}

func (s *source) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT table_name FROM gpkg_contents WHERE data_type = 'features' ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return names, fmt.Errorf("failed to scan feature table: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return names, fmt.Errorf("failed to list feature tables: %w", err)
	}
	return names, nil
}

func (s *source) Schema(ctx context.Context, name string) (*storeinfo.FeatureSchema, error) {
	schema := &storeinfo.FeatureSchema{Name: name}
	var column, geometryType string
	err := s.db.QueryRowContext(ctx,
		`SELECT column_name, geometry_type_name FROM gpkg_geometry_columns WHERE table_name = ?`, name,
	).Scan(&column, &geometryType)
	if errors.Is(err, sql.ErrNoRows) {
		schema.Geometry = storeinfo.GeometryNone
		return schema, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry column: %w", err)
	}
	schema.GeometryColumn = column
	schema.Geometry = storeinfo.GeometryTag(geometryType)
	return schema, nil
}

func (s *source) Info(ctx context.Context, name string) (*storeinfo.ResourceInfo, error) {
	var identifier, description sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT identifier, description FROM gpkg_contents WHERE table_name = ?`, name,
	).Scan(&identifier, &description)
	if err != nil {
		return nil, fmt.Errorf("failed to read contents entry: %w", err)
	}
	return &storeinfo.ResourceInfo{Title: identifier.String, Description: description.String}, nil
}

func (s *source) Close() error {
	return s.db.Close()
}
