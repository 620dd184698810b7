package residency

// costUpdate carries the true cost of a resource as reported by the
// instantiator.
type costUpdate struct {
	id   AssetID
	cost uint64
}

// ReportCost is called by the instantiator when it learns the real cost of a
// resource, e.g. after decoding headers or when an upload completes. It takes
// only the cost lock, so it is safe from completion callbacks that run while
// an iteration holds the record lock. Updates are applied in FIFO order on
// the next drain.
func (m *Manager) ReportCost(id AssetID, cost uint64) {
	m.costMu.Lock()
	m.costInbox = append(m.costInbox, costUpdate{id: id, cost: cost})
	m.costMu.Unlock()
}

// drainCostsLocked swaps out the inbox under the cost lock and applies the
// updates under the record lock.
func (m *Manager) drainCostsLocked() {
	m.costMu.Lock()
	updates := m.costInbox
	m.costInbox = m.costScratch[:0]
	m.costMu.Unlock()

	for i := range updates {
		m.applyCostUpdate(updates[i])
	}
	m.costScratch = updates[:0]
}

func (m *Manager) applyCostUpdate(u costUpdate) {
	if int64(u.id) >= int64(len(m.records)) {
		return
	}
	a := m.records[u.id]
	m.totalConsumed += u.cost - (a.consumed + a.pendingConsumed)
	a.consumed = u.cost
	a.pendingConsumed = 0

	// A recently paged-in image shouldn't be paged out right away when
	// we're thrashing.
	a.lastUsed = m.timestamp
}

// drainUsesLocked applies buffered use signals, refreshing recency to the
// current timestamp. Out-of-range ids are ignored.
func (m *Manager) drainUsesLocked() {
	m.useQueue.drain(func(id AssetID) {
		if int64(id) < int64(len(m.records)) {
			m.records[id].lastUsed = m.timestamp
		}
	})
}
