// Package postgres implements a read-only storeinfo.Catalog over the
// storeinfo schema in PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

// Schema creates the catalog tables. It is idempotent.
//
//go:embed schema.sql
var Schema string

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Catalog implements storeinfo.Catalog using PostgreSQL
type Catalog struct {
	db DBTX
}

// New creates a new PostgreSQL catalog
func New(db DBTX) *Catalog {
	return &Catalog{db: db}
}

// NewWithPool creates a new PostgreSQL catalog with connection pool
func NewWithPool(pool *pgxpool.Pool) *Catalog {
	return &Catalog{db: pool}
}

// Migrate applies Schema
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		case "3F000": // invalid_schema_name
			return fmt.Errorf("schema does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

const storeColumns = `id, workspace, name, archetype, description, format, enabled,
	location, params, metadata, last_error, last_error_causes`

func scanStore(row pgx.Row) (storeinfo.Store, error) {
	var (
		info        storeinfo.StoreInfo
		archetype   string
		location    string
		params      []byte
		metadata    []byte
		lastError   *string
		errorCauses []string
	)
	err := row.Scan(
		&info.ID, &info.Workspace, &info.Name, &archetype, &info.Description, &info.Format, &info.Enabled,
		&location, &params, &metadata, &lastError, &errorCauses,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, &info.Params); err != nil {
		return nil, fmt.Errorf("failed to decode params of store %s:%s: %w", info.Workspace, info.Name, err)
	}
	if err := json.Unmarshal(metadata, &info.Metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata of store %s:%s: %w", info.Workspace, info.Name, err)
	}
	if lastError != nil {
		info.LastError = &storeinfo.ConnectionError{Message: *lastError, Causes: errorCauses}
	}
	return storeinfo.NewStore(archetype, info, location), nil
}

func (c *Catalog) GetStore(ctx context.Context, workspace, name string) (storeinfo.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM storeinfo.store WHERE workspace = $1 AND name = $2`
	store, err := scanStore(c.db.QueryRow(ctx, query, workspace, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storeinfo.ErrStoreNotFound
	}
	if err != nil {
		return nil, handlePostgresError("get store", err)
	}
	return store, nil
}

func (c *Catalog) ListStores(ctx context.Context, workspace string) ([]storeinfo.Store, error) {
	query := `SELECT ` + storeColumns + ` FROM storeinfo.store WHERE workspace = $1 ORDER BY seq`
	rows, err := c.db.Query(ctx, query, workspace)
	if err != nil {
		return nil, handlePostgresError("list stores", err)
	}
	defer rows.Close()

	var stores []storeinfo.Store
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, handlePostgresError("scan store", err)
		}
		stores = append(stores, store)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list stores", err)
	}
	return stores, nil
}

func (c *Catalog) ListWorkspaces(ctx context.Context) ([]string, error) {
	rows, err := c.db.Query(ctx, `SELECT DISTINCT workspace FROM storeinfo.store ORDER BY workspace`)
	if err != nil {
		return nil, handlePostgresError("list workspaces", err)
	}
	workspaces, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, handlePostgresError("list workspaces", err)
	}
	return workspaces, nil
}

func (c *Catalog) ResourcesByStore(ctx context.Context, storeID uuid.UUID) ([]*storeinfo.Resource, error) {
	query := `
		SELECT id, store_id, name, native_name, title, abstract, type
		FROM storeinfo.resource
		WHERE store_id = $1
		ORDER BY seq`
	rows, err := c.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, handlePostgresError("list resources", err)
	}
	defer rows.Close()

	var resources []*storeinfo.Resource
	for rows.Next() {
		r := &storeinfo.Resource{}
		if err := rows.Scan(&r.ID, &r.StoreID, &r.Name, &r.NativeName, &r.Title, &r.Abstract, &r.Type); err != nil {
			return nil, handlePostgresError("scan resource", err)
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list resources", err)
	}
	return resources, nil
}

func (c *Catalog) LayersByResource(ctx context.Context, resourceID uuid.UUID) ([]*storeinfo.Layer, error) {
	query := `
		SELECT id, resource_id, name, title, abstract, metadata
		FROM storeinfo.layer
		WHERE resource_id = $1
		ORDER BY seq`
	rows, err := c.db.Query(ctx, query, resourceID)
	if err != nil {
		return nil, handlePostgresError("list layers", err)
	}
	defer rows.Close()

	var layers []*storeinfo.Layer
	for rows.Next() {
		l := &storeinfo.Layer{}
		var metadata []byte
		if err := rows.Scan(&l.ID, &l.ResourceID, &l.Name, &l.Title, &l.Abstract, &metadata); err != nil {
			return nil, handlePostgresError("scan layer", err)
		}
		if err := json.Unmarshal(metadata, &l.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata of layer %s: %w", l.Name, err)
		}
		layers = append(layers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list layers", err)
	}
	return layers, nil
}
