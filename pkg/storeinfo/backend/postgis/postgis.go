// Package postgis reads feature tables registered in a PostGIS database.
package postgis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

// DBType is the dbtype parameter value served by this package
const DBType = "postgis"

const (
	defaultSchema  = "public"
	defaultPort    = "5432"
	connectTimeout = 10 * time.Second
)

// Opener opens PostGIS vector stores
type Opener struct{}

// New creates a PostGIS opener
func New() *Opener {
	return &Opener{}
}

// ConnString builds a read-only connection URL from store parameters.
func ConnString(params storeinfo.Params) (string, error) {
	host, ok := params.AsString(storeinfo.ParamHost)
	if !ok || host == "" {
		return "", fmt.Errorf("%w: %s", storeinfo.ErrMissingParameter, storeinfo.ParamHost)
	}
	database, ok := params.AsString(storeinfo.ParamDatabase)
	if !ok || database == "" {
		return "", fmt.Errorf("%w: %s", storeinfo.ErrMissingParameter, storeinfo.ParamDatabase)
	}
	port, ok := params.AsString(storeinfo.ParamPort)
	if !ok || port == "" {
		port = defaultPort
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   database,
	}
	if user, ok := params.AsString(storeinfo.ParamUser); ok && user != "" {
		if passwd, ok := params.AsString(storeinfo.ParamPasswd); ok {
			u.User = url.UserPassword(user, passwd)
		} else {
			u.User = url.User(user)
		}
	}
	q := url.Values{}
	q.Set("default_transaction_read_only", "on")
	q.Set("application_name", "storeinfo")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func schemaOf(params storeinfo.Params) string {
	if s, ok := params.AsString(storeinfo.ParamSchema); ok && s != "" {
		return s
	}
	return defaultSchema
}

func (o *Opener) OpenVector(ctx context.Context, store *storeinfo.VectorStore) (storeinfo.VectorSource, error) {
	connString, err := ConnString(store.Params)
	if err != nil {
		return nil, err
	}
	cfg, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection parameters: %w", err)
	}
	cfg.ConnectTimeout = connectTimeout

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return &source{conn: conn, schema: schemaOf(store.Params)}, nil
}

type source struct {
	conn   *pgx.Conn
	schema string
}

func (s *source) Names(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT f_table_name FROM geometry_columns WHERE f_table_schema = $1 ORDER BY f_table_name`, s.schema)
	if err != nil {
		return nil, handlePostgresError("list feature tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return names, handlePostgresError("scan feature table", err)
		}
		// A table with several geometry columns is listed once.
		if len(names) > 0 && names[len(names)-1] == name {
			continue
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return names, handlePostgresError("list feature tables", err)
	}
	return names, nil
}

func (s *source) Schema(ctx context.Context, name string) (*storeinfo.FeatureSchema, error) {
	schema := &storeinfo.FeatureSchema{Name: name}
	var column, geometryType string
	err := s.conn.QueryRow(ctx,
		`SELECT f_geometry_column, type FROM geometry_columns
		 WHERE f_table_schema = $1 AND f_table_name = $2
		 ORDER BY f_geometry_column LIMIT 1`, s.schema, name,
	).Scan(&column, &geometryType)
	if errors.Is(err, pgx.ErrNoRows) {
		schema.Geometry = storeinfo.GeometryNone
		return schema, nil
	}
	if err != nil {
		return nil, handlePostgresError("read geometry column", err)
	}
	schema.GeometryColumn = column
	schema.Geometry = storeinfo.GeometryTag(geometryType)
	return schema, nil
}

func (s *source) Info(ctx context.Context, name string) (*storeinfo.ResourceInfo, error) {
	var comment *string
	err := s.conn.QueryRow(ctx,
		`SELECT obj_description(to_regclass(quote_ident($1) || '.' || quote_ident($2)), 'pg_class')`,
		s.schema, name,
	).Scan(&comment)
	if err != nil {
		return nil, handlePostgresError("read table comment", err)
	}
	info := &storeinfo.ResourceInfo{}
	if comment != nil {
		info.Description = *comment
	}
	return info, nil
}

func (s *source) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.conn.Close(ctx)
}

func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("%s: geometry_columns does not exist - PostGIS not installed", operation)
		case "42501": // insufficient_privilege
			return fmt.Errorf("%s: permission denied: %s", operation, pgErr.Message)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}
