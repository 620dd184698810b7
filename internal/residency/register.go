package residency

import (
	"io/fs"

	"github.com/cespare/xxhash/v2"
)

// RegisterFromHandle allocates a record for an already-open source handle.
// Ownership of the handle transfers to the manager. Registration never
// triggers instantiation.
func (m *Manager) RegisterFromHandle(h fs.File, class ImageClass, prio int) AssetID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registerLocked(h, class, prio)
}

// RegisterFromPath registers the asset at path inside fsys. Registering the
// same path twice returns the original id without allocating a new record.
// Returns NoAsset when the path cannot be opened.
func (m *Manager) RegisterFromPath(fsys fs.FS, path string, class ImageClass, prio int) AssetID {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := xxhash.Sum64String(path)
	if id, ok := m.pathToID[h]; ok {
		return id
	}

	f, err := fsys.Open(path)
	if err != nil {
		return NoAsset
	}

	id := m.registerLocked(f, class, prio)
	m.records[id].pathHash = h
	m.records[id].hasPath = true
	m.pathToID[h] = id
	return id
}

func (m *Manager) registerLocked(h fs.File, class ImageClass, prio int) AssetID {
	rec := &assetRecord{
		id:     AssetID(len(m.records)),
		handle: h,
		class:  class,
		prio:   prio,
	}
	m.records = append(m.records, rec)
	if m.iface != nil {
		m.iface.SetIDBounds(uint32(len(m.records)))
		m.iface.SetImageClass(rec.id, class)
	}
	return rec.id
}

// MarkUsed signals that id is currently of interest. It is the hottest path:
// lock-free, non-blocking, and safe from any goroutine including instantiator
// callbacks. Out-of-range ids are ignored when drained.
func (m *Manager) MarkUsed(id AssetID) {
	m.useQueue.push(id)
}
