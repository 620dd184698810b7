// Package instantiate provides a file-backed Instantiator: the decoded byte
// payload of the source file stands in for the device resource. Estimation
// uses the file size; the true cost is the number of bytes actually read.
package instantiate

import (
	"io"
	"io/fs"
	"sync"

	"assetd/internal/residency"
)

// minEstimate is the conservative floor when a handle cannot be sized.
// Returning 0 would bypass budget admission entirely.
const minEstimate = 1

// FileInstantiator loads asset bytes from their handles in background tasks.
// Completed loads stay staged until LatchHandles publishes them.
type FileInstantiator struct {
	mu      sync.Mutex
	classes []residency.ImageClass
	staged  map[residency.AssetID][]byte
	ready   map[residency.AssetID][]byte
}

func NewFileInstantiator() *FileInstantiator {
	return &FileInstantiator{
		staged: make(map[residency.AssetID][]byte),
		ready:  make(map[residency.AssetID][]byte),
	}
}

func (f *FileInstantiator) SetIDBounds(n uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for uint32(len(f.classes)) < n {
		f.classes = append(f.classes, residency.ImageClassColor)
	}
}

func (f *FileInstantiator) SetImageClass(id residency.AssetID, class residency.ImageClass) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if int(id) < len(f.classes) {
		f.classes[id] = class
	}
}

// EstimateCost sizes the handle without reading it.
func (f *FileInstantiator) EstimateCost(_ residency.AssetID, h fs.File) uint64 {
	fi, err := h.Stat()
	if err != nil || fi.Size() <= 0 {
		return minEstimate
	}
	return uint64(fi.Size())
}

// Instantiate schedules the load on task, or runs it synchronously when task
// is nil. The true cost reaches the manager via ReportCost.
func (f *FileInstantiator) Instantiate(m *residency.Manager, task residency.Task, id residency.AssetID, h fs.File) {
	load := func() {
		data, err := readAll(h)
		if err != nil {
			// The resource failed to materialize; report zero so the
			// pending estimate is returned to the budget.
			m.ReportCost(id, 0)
			return
		}
		f.mu.Lock()
		f.staged[id] = data
		f.mu.Unlock()
		m.ReportCost(id, uint64(len(data)))
	}
	if task == nil {
		load()
		return
	}
	task.Go(load)
}

func (f *FileInstantiator) Release(id residency.AssetID) {
	f.mu.Lock()
	delete(f.staged, id)
	delete(f.ready, id)
	f.mu.Unlock()
}

// LatchHandles publishes loads completed since the last call.
func (f *FileInstantiator) LatchHandles() {
	f.mu.Lock()
	for id, data := range f.staged {
		f.ready[id] = data
		delete(f.staged, id)
	}
	f.mu.Unlock()
}

// Resource returns the published payload for id, or nil if not resident from
// the engine's point of view yet.
func (f *FileInstantiator) Resource(id residency.AssetID) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready[id]
}

// readAll reads the handle from the beginning. Handles are retained across
// release/instantiate cycles, so rewind when the handle supports it.
func readAll(h fs.File) ([]byte, error) {
	if s, ok := h.(io.Seeker); ok {
		if _, err := s.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return io.ReadAll(h)
}
