package storeinfo

import (
	"context"
	"log/slog"
)

// EnumerateContents lists the logical contents of s. Open and listing
// failures leave the result absent unless the backend handed back a
// partial listing; per-item failures only drop the affected fields.
func (s *service) EnumerateContents(ctx context.Context, store Store) Result[[]ContentEntry] {
	return Match(store,
		func(r *RasterStore) Result[[]ContentEntry] { return s.rasterContents(ctx, r) },
		func(v *VectorStore) Result[[]ContentEntry] { return s.vectorContents(ctx, v) },
		func(w *ServiceStore) Result[[]ContentEntry] { return s.serviceContents(ctx, w) },
		func(*GenericStore) Result[[]ContentEntry] { return absent[[]ContentEntry](nil) },
	)
}

type diagnostics struct {
	store string
	list  []Diagnostic
}

func (d *diagnostics) add(op, item string, level slog.Level, err error) {
	d.list = append(d.list, Diagnostic{Store: d.store, Op: op, Item: item, Level: level, Err: err})
}

func (s *service) vectorContents(ctx context.Context, store *VectorStore) (res Result[[]ContentEntry]) {
	d := &diagnostics{store: QualifiedName(store)}
	if s.vectors == nil {
		d.add(OpOpen, "", slog.LevelDebug, ErrUnsupportedBackend)
		return absent[[]ContentEntry](d.list)
	}
	src, err := s.vectors.OpenVector(ctx, store)
	if err != nil {
		d.add(OpOpen, "", slog.LevelDebug, err)
		return absent[[]ContentEntry](d.list)
	}
	defer func() {
		if err := src.Close(); err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Store: d.store, Op: OpClose, Level: LevelTrace, Err: err})
		}
	}()

	names, err := src.Names(ctx)
	if err != nil {
		d.add(OpList, "", slog.LevelDebug, err)
		if len(names) == 0 {
			return absent[[]ContentEntry](d.list)
		}
	}

	entries := make([]ContentEntry, 0, len(names))
	for _, name := range names {
		entry := ContentEntry{Name: name}
		if schema, err := src.Schema(ctx, name); err != nil {
			d.add(OpSchema, name, LevelTrace, err)
		} else if schema != nil {
			entry.Geometry = schema.Geometry
		}
		if info, err := src.Info(ctx, name); err != nil {
			d.add(OpInfo, name, LevelTrace, err)
		} else if info != nil {
			entry.Title = info.Title
			entry.Description = info.Description
		}
		entries = append(entries, entry)
	}
	return present(entries, d.list)
}

func (s *service) rasterContents(ctx context.Context, store *RasterStore) (res Result[[]ContentEntry]) {
	d := &diagnostics{store: QualifiedName(store)}
	if s.rasters == nil {
		d.add(OpOpen, "", slog.LevelDebug, ErrUnsupportedBackend)
		return absent[[]ContentEntry](d.list)
	}
	reader, err := s.rasters.OpenRaster(ctx, store)
	if err != nil {
		d.add(OpOpen, "", slog.LevelDebug, err)
		return absent[[]ContentEntry](d.list)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Store: d.store, Op: OpClose, Level: LevelTrace, Err: err})
		}
	}()

	names, err := reader.CoverageNames(ctx)
	if err != nil {
		d.add(OpList, "", slog.LevelDebug, err)
		if len(names) == 0 {
			return absent[[]ContentEntry](d.list)
		}
	}
	if len(names) == 0 {
		return present([]ContentEntry{{Name: DefaultCoverageName, Geometry: ContentRaster}}, d.list)
	}
	entries := make([]ContentEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, ContentEntry{Name: name, Geometry: ContentRaster})
	}
	return present(entries, d.list)
}

func (s *service) serviceContents(ctx context.Context, store *ServiceStore) (res Result[[]ContentEntry]) {
	d := &diagnostics{store: QualifiedName(store)}
	if s.services == nil {
		d.add(OpOpen, "", slog.LevelDebug, ErrUnsupportedBackend)
		return absent[[]ContentEntry](d.list)
	}
	remote, err := s.services.OpenService(ctx, store)
	if err != nil {
		d.add(OpOpen, "", slog.LevelDebug, err)
		return absent[[]ContentEntry](d.list)
	}
	defer func() {
		if err := remote.Close(); err != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Store: d.store, Op: OpClose, Level: LevelTrace, Err: err})
		}
	}()

	caps, err := remote.Capabilities(ctx)
	if err != nil {
		d.add(OpCapabilities, "", slog.LevelDebug, err)
		if caps == nil || len(caps.Layers) == 0 {
			return absent[[]ContentEntry](d.list)
		}
	}
	if caps == nil {
		caps = &Capabilities{}
	}
	entries := make([]ContentEntry, 0, len(caps.Layers))
	for _, l := range caps.Layers {
		entries = append(entries, ContentEntry{
			Name:        l.Name,
			Geometry:    ContentLayer,
			Title:       l.Title,
			Description: l.Abstract,
		})
	}
	return present(entries, d.list)
}
