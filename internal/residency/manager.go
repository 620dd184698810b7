package residency

import "sync"

// Manager decides which image assets are resident within a device-memory
// budget. Clients register assets and mark them used; once per iteration the
// manager drains its inboxes and runs the residency policy, activating and
// releasing resources through the bound Instantiator.
//
// The manager is a first-class value; construct as many as needed.
type Manager struct {
	// mu guards the record table, registration and the iteration step. It is
	// the serialisation point for policy.
	mu       sync.Mutex
	records  []*assetRecord
	pathToID map[uint64]AssetID
	sorted   []*assetRecord

	iface Instantiator

	totalConsumed           uint64
	imageBudget             uint64
	imageBudgetPerIteration uint64

	// timestamp is the logical clock; signal trails it by at most fenceSlack.
	timestamp       uint64
	blockingSignals uint64
	signal          *Fence

	// costMu guards only the cost inbox. Kept separate from mu so the
	// instantiator can report costs from completion callbacks without
	// deadlocking against an in-progress iteration.
	costMu      sync.Mutex
	costInbox   []costUpdate
	costScratch []costUpdate

	useQueue useQueue

	publisher EventPublisher

	activations uint64
	releases    uint64
	skips       uint64
}

// TotalConsumed returns the bytes currently attributed to resident and
// in-flight assets.
func (m *Manager) TotalConsumed() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalConsumed
}

// SetImageBudget sets the hard residency budget in bytes. A zero budget
// admits nothing except persistent pins.
func (m *Manager) SetImageBudget(bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageBudget = bytes
}

// SetImageBudgetPerIteration caps the new work admitted per iteration, in
// bytes.
func (m *Manager) SetImageBudgetPerIteration(bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageBudgetPerIteration = bytes
}

// SetResidencyPriority updates an asset's priority. Returns false for an
// unknown id.
func (m *Manager) SetResidencyPriority(id AssetID, prio int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int64(id) >= int64(len(m.records)) {
		return false
	}
	m.records[id].prio = prio
	return true
}

// Bound reports whether an instantiator is currently bound.
func (m *Manager) Bound() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.iface != nil
}

// Close waits for all pending instantiations to drain, releases every
// resident record through the instantiator and closes owned handles. The
// manager must not be used afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Pending tasks signal the fence without touching mu, so holding it
	// across the wait is safe.
	m.signal.WaitUntilAtLeast(m.timestamp + m.blockingSignals)
	m.drainCostsLocked()

	for _, a := range m.records {
		if m.iface != nil && (a.consumed != 0 || a.pendingConsumed != 0) {
			m.iface.Release(a.id)
		}
		a.consumed = 0
		a.pendingConsumed = 0
		if a.handle != nil {
			_ = a.handle.Close()
			a.handle = nil
		}
	}
	m.totalConsumed = 0
	return nil
}
