package storeinfo

import (
	"context"
	"log/slog"
)

// CrossReference joins s to the catalog: one entry per published layer of
// every resource backed by s. Layer title and description fall back to the
// resource's when empty.
func (s *service) CrossReference(ctx context.Context, store Store) Result[[]LayerEntry] {
	d := &diagnostics{store: QualifiedName(store)}
	resources, err := s.catalog.ResourcesByStore(ctx, store.Info().ID)
	if err != nil {
		d.add(OpResources, "", slog.LevelDebug, err)
		return absent[[]LayerEntry](d.list)
	}

	entries := []LayerEntry{}
	for _, r := range resources {
		layers, err := s.catalog.LayersByResource(ctx, r.ID)
		if err != nil {
			d.add(OpLayers, r.Name, slog.LevelDebug, err)
			return absent[[]LayerEntry](d.list)
		}
		for _, l := range layers {
			entries = append(entries, LayerEntry{
				Name:        l.Name,
				Title:       fallback(l.Title, r.Title),
				Description: fallback(l.Abstract, r.Abstract),
				Type:        r.Type,
				Metadata:    copyMetadata(l.Metadata),
				Content:     r.NativeName,
			})
		}
	}
	return present(entries, d.list)
}

func fallback(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
