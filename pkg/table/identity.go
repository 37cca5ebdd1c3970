package table

import (
	"maps"
	"slices"

	"github.com/tabkit-labs/tabkit/pkg/value"
)

// UniqueID returns the deterministic content hash of the table,
// accumulated over column names, types, formats, the meta mapping and
// every cell in row-major order. Cells that carry their own content
// hash (nested tables, blobs, domain objects) fold that hash in, so
// structurally identical content hashes equal regardless of object
// identity. The hash is cached in meta under "unique_id" until the
// next mutation; the cache key itself and the load provenance entry
// are excluded from the digest so a stored and reloaded table keeps
// its identity.
func (t *Table) UniqueID() string {
	if cached, ok := t.meta[metaUniqueID].(string); ok {
		return cached
	}

	d := value.NewDigest()
	for _, n := range t.colNames {
		d.UpdateString(n)
	}
	for _, ct := range t.colTypes {
		d.Update(int64(ct))
	}
	for _, f := range t.colFormats {
		d.UpdateString(f)
	}
	for _, k := range slices.Sorted(maps.Keys(t.meta)) {
		if k == metaUniqueID || k == metaLoadedFrom {
			continue
		}
		d.UpdateString(k)
		d.Update(t.meta[k])
	}
	for _, row := range t.rows {
		for _, cell := range row {
			d.Update(cell)
		}
	}

	id := d.HexSum()
	t.meta[metaUniqueID] = id
	return id
}

// CompressBlobs canonicalizes content-identical hashable cells, blobs
// and nested tables alike, to a single shared instance. This is purely
// a memory optimization: shared instances are never mutated afterwards.
// Store applies it by default.
func (t *Table) CompressBlobs() {
	canonical := map[string]value.Hashable{}
	for _, row := range t.rows {
		for i, cell := range row {
			h, ok := cell.(value.Hashable)
			if !ok {
				continue
			}
			id := h.UniqueID()
			if first, seen := canonical[id]; seen {
				row[i] = first
			} else {
				canonical[id] = h
			}
		}
	}
}
