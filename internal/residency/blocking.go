package residency

// IterateBlocking pages in one specific asset immediately, without waiting
// for the next policy step. If the asset is absent an instantiation starts
// right away on a task bound to the fence. The fence increment this causes is
// remembered and folded into the timestamp by the next Iterate so the fence
// arithmetic stays consistent.
//
// Returns false when no instantiator is bound, no task group is given, or the
// id is unknown.
func (m *Manager) IterateBlocking(group TaskGroup, id AssetID) bool {
	if group == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.iface == nil {
		return false
	}

	m.drainCostsLocked()
	m.drainUsesLocked()

	if int64(id) >= int64(len(m.records)) {
		return false
	}

	candidate := m.records[id]
	if candidate.consumed != 0 || candidate.pendingConsumed != 0 {
		return true
	}

	estimate := m.iface.EstimateCost(candidate.id, candidate.handle)

	task := group.CreateTask()
	task.SetDescription("asset-residency-instantiate-single")
	task.SetClass(TaskClassBackground)
	task.SetFenceSignal(m.signal)

	m.iface.Instantiate(m, task, candidate.id, candidate.handle)
	candidate.pendingConsumed = estimate
	candidate.lastUsed = m.timestamp
	m.totalConsumed += estimate
	m.activations++

	// The timestamp cannot advance here; the record lock makes the deferred
	// count safe even when called concurrently.
	m.blockingSignals++

	task.Dispatch()

	m.publisher.Publish(Event{Name: "activate", ID: candidate.id, Fields: map[string]any{
		"estimate": estimate,
		"blocking": true,
	}})
	return true
}
