package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/tendant/simple-storeinfo/pkg/storeinfo"
)

// Import copies every store, resource and layer of src into the database.
// It is used to seed a database catalog from a YAML catalog file; the
// Catalog itself never writes.
func Import(ctx context.Context, db DBTX, src storeinfo.Catalog) error {
	workspaces, err := src.ListWorkspaces(ctx)
	if err != nil {
		return err
	}
	for _, ws := range workspaces {
		stores, err := src.ListStores(ctx, ws)
		if err != nil {
			return err
		}
		for _, store := range stores {
			if err := insertStore(ctx, db, store); err != nil {
				return err
			}
			if err := importResources(ctx, db, src, store.Info().ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertStore(ctx context.Context, db DBTX, store storeinfo.Store) error {
	info := store.Info()
	if info.ID == uuid.Nil {
		info.ID = uuid.New()
	}
	archetype, location := storeinfo.ArchetypeOf(store)
	params, err := json.Marshal(info.Params)
	if err != nil {
		return fmt.Errorf("failed to encode params of store %s: %w", info.Name, err)
	}
	metadata := info.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata of store %s: %w", info.Name, err)
	}
	var lastError *string
	var causes []string
	if info.LastError != nil {
		lastError = &info.LastError.Message
		causes = info.LastError.Causes
	}

	query := `
		INSERT INTO storeinfo.store (
			id, workspace, name, archetype, description, format, enabled,
			location, params, metadata, last_error, last_error_causes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (workspace, name) DO NOTHING`
	_, err = db.Exec(ctx, query,
		info.ID, info.Workspace, info.Name, archetype, info.Description, info.Format, info.Enabled,
		location, params, metadataJSON, lastError, causes,
	)
	if err != nil {
		return handlePostgresError("insert store", err)
	}
	return nil
}

func importResources(ctx context.Context, db DBTX, src storeinfo.Catalog, storeID uuid.UUID) error {
	resources, err := src.ResourcesByStore(ctx, storeID)
	if err != nil {
		return err
	}
	for _, r := range resources {
		_, err := db.Exec(ctx, `
			INSERT INTO storeinfo.resource (id, store_id, name, native_name, title, abstract, type)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING`,
			r.ID, storeID, r.Name, r.NativeName, r.Title, r.Abstract, r.Type,
		)
		if err != nil {
			return handlePostgresError("insert resource", err)
		}
		layers, err := src.LayersByResource(ctx, r.ID)
		if err != nil {
			return err
		}
		for _, l := range layers {
			metadata := l.Metadata
			if metadata == nil {
				metadata = map[string]string{}
			}
			metadataJSON, err := json.Marshal(metadata)
			if err != nil {
				return fmt.Errorf("failed to encode metadata of layer %s: %w", l.Name, err)
			}
			_, err = db.Exec(ctx, `
				INSERT INTO storeinfo.layer (id, resource_id, name, title, abstract, metadata)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO NOTHING`,
				l.ID, r.ID, l.Name, l.Title, l.Abstract, metadataJSON,
			)
			if err != nil {
				return handlePostgresError("insert layer", err)
			}
		}
	}
	return nil
}
