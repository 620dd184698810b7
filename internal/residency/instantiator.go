package residency

import "io/fs"

// Instantiator knows how to size, load and drop the device resource backing
// an asset. The manager never inspects the concrete type; it drives the
// capability set below and receives true costs back through ReportCost.
//
// Embed InstantiatorBase to pick up the default no-op SetImageClass.
type Instantiator interface {
	// SetIDBounds widens the instantiator's id-indexed side tables. Called
	// under the record lock whenever a new id is allocated.
	SetIDBounds(n uint32)
	// SetImageClass informs the instantiator of a registration.
	SetImageClass(id AssetID, class ImageClass)
	// EstimateCost returns a cheap synchronous cost guess in bytes. It may
	// read headers from the handle but must not perform uploads.
	EstimateCost(id AssetID, h fs.File) uint64
	// Instantiate begins asynchronous work on the given task (nil means run
	// synchronously). The true cost is reported via m.ReportCost.
	Instantiate(m *Manager, task Task, id AssetID, h fs.File)
	// Release synchronously drops the resource. A subsequent Instantiate for
	// the same id must succeed.
	Release(id AssetID)
	// LatchHandles publishes any work completed since the last call.
	LatchHandles()
}

// InstantiatorBase provides the default no-op SetImageClass.
type InstantiatorBase struct{}

func (InstantiatorBase) SetImageClass(AssetID, ImageClass) {}

// BindInstantiator swaps the instantiator at runtime. When one is already
// bound the manager waits for all pending work to drain, releases every id on
// the old instantiator and clears residency state before rebinding. The new
// instantiator is announced the current id bounds and image classes.
func (m *Manager) BindInstantiator(iface Instantiator) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.iface != nil {
		m.signal.WaitUntilAtLeast(m.timestamp + m.blockingSignals)
		for _, a := range m.records {
			m.iface.Release(a.id)
		}
		for _, a := range m.records {
			a.consumed = 0
			a.pendingConsumed = 0
			a.lastUsed = 0
		}
		m.totalConsumed = 0
		// Stale reports from the old instantiator must not leak into the
		// new accounting.
		m.costMu.Lock()
		m.costInbox = m.costInbox[:0]
		m.costMu.Unlock()
		m.publisher.Publish(Event{Name: "instantiator_unbound", ID: NoAsset})
	}

	m.iface = iface
	if m.iface != nil {
		m.iface.SetIDBounds(uint32(len(m.records)))
		for _, a := range m.records {
			m.iface.SetImageClass(a.id, a.class)
		}
		m.publisher.Publish(Event{Name: "instantiator_bound", ID: NoAsset, Fields: map[string]any{"ids": len(m.records)}})
	}
}
