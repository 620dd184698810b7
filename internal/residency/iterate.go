package residency

import "sort"

// Iterate runs one step of the residency policy: fold deferred blocking
// signals into the timestamp, drain the cost and use inboxes, sort records,
// activate demanded assets within budget and release victims to make room.
// group may be nil, in which case the fence is signalled directly and
// instantiations run synchronously.
//
// If the fence has fallen more than fenceSlack iterations behind, the step is
// skipped; LatchHandles is still called so completed uploads become visible.
func (m *Manager) Iterate(group TaskGroup) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.iface == nil {
		return
	}

	m.timestamp += m.blockingSignals
	m.blockingSignals = 0

	if m.signal.Count()+fenceSlack < m.timestamp {
		m.iface.LatchHandles()
		m.skips++
		m.publisher.Publish(Event{Name: "iterate_skip", ID: NoAsset, Fields: map[string]any{
			"fence":     m.signal.Count(),
			"timestamp": m.timestamp,
		}})
		return
	}

	var task Task
	if group != nil {
		task = group.CreateTask()
		task.SetDescription("asset-residency-instantiate")
		task.SetClass(TaskClassBackground)
		task.SetFenceSignal(m.signal)
	} else {
		// The iteration itself is the work being counted.
		m.signal.SignalIncrement()
	}

	m.drainCostsLocked()
	m.drainUsesLocked()
	m.runPolicyLocked(task)

	if task != nil {
		task.Dispatch()
	}

	m.iface.LatchHandles()
	m.timestamp++
}

func (m *Manager) runPolicyLocked(task Task) {
	m.sorted = m.sorted[:0]
	m.sorted = append(m.sorted, m.records...)
	sort.Slice(m.sorted, func(i, j int) bool {
		a, b := m.sorted[i], m.sorted[j]
		// High prios come first since they will be activated. Then LRU.
		// High consumption moves last, making those records the eviction
		// candidates when over budget. High pending consumption moves
		// early: don't page out what is mid-load. ID is the tiebreak.
		switch {
		case a.prio != b.prio:
			return a.prio > b.prio
		case a.lastUsed != b.lastUsed:
			return a.lastUsed > b.lastUsed
		case a.consumed != b.consumed:
			return a.consumed < b.consumed
		case a.pendingConsumed != b.pendingConsumed:
			return a.pendingConsumed > b.pendingConsumed
		default:
			return a.id < b.id
		}
	})

	// Persistent pins may run over the hard budget; they are excluded from
	// the fit arithmetic so they don't starve everything else out.
	var pinned uint64
	for _, a := range m.sorted {
		if a.prio >= PriorityPersistent {
			pinned += a.consumed + a.pendingConsumed
		}
	}
	accountable := func() uint64 { return m.totalConsumed - pinned }

	releaseIndex := len(m.sorted)
	activateIndex := 0
	var activatedCost uint64
	activationCount := 0

	// Activate in order from highest priority to lowest, as long as the
	// estimate fits after evicting from the tail.
	canActivate := true
	for canActivate && activatedCost < m.imageBudgetPerIteration && activateIndex != releaseIndex {
		candidate := m.sorted[activateIndex]
		if candidate.prio <= 0 {
			break
		}
		if candidate.consumed != 0 || candidate.pendingConsumed != 0 {
			activateIndex++
			continue
		}

		estimate := m.iface.EstimateCost(candidate.id, candidate.handle)

		canActivate = accountable()+estimate <= m.imageBudget || candidate.prio >= PriorityPersistent
		for !canActivate && activateIndex+1 != releaseIndex {
			releaseIndex--
			victim := m.sorted[releaseIndex]
			if victim.consumed != 0 {
				m.iface.Release(victim.id)
				m.totalConsumed -= victim.consumed
				victim.consumed = 0
				m.releases++
				m.publisher.Publish(Event{Name: "release", ID: victim.id, Fields: map[string]any{"reason": "page-in pressure"}})
			}
			canActivate = accountable()+estimate <= m.imageBudget
		}

		if canActivate {
			m.iface.Instantiate(m, task, candidate.id, candidate.handle)
			activationCount++
			candidate.pendingConsumed = estimate
			m.totalConsumed += estimate
			if candidate.prio >= PriorityPersistent {
				pinned += estimate
			}
			// Let this run over the per-iteration budget once, so forward
			// progress is possible at any limit.
			activatedCost += estimate
			activateIndex++
			m.activations++
			m.publisher.Publish(Event{Name: "activate", ID: candidate.id, Fields: map[string]any{"estimate": estimate}})
		}
	}

	// At 75% of budget, start garbage collecting cold zero-priority
	// residents ahead of time to leave headroom.
	lowImageBudget := m.imageBudget / 4 * 3

	shouldRelease := func() bool {
		if releaseIndex == activateIndex {
			return false
		}
		tail := m.sorted[releaseIndex-1]
		if tail.prio >= PriorityPersistent {
			return false
		}
		if accountable() > m.imageBudget {
			return true
		}
		if accountable() > lowImageBudget && tail.prio == 0 {
			return true
		}
		return false
	}

	for shouldRelease() {
		releaseIndex--
		victim := m.sorted[releaseIndex]
		if victim.consumed != 0 {
			m.iface.Release(victim.id)
			m.totalConsumed -= victim.consumed
			victim.consumed = 0
			victim.lastUsed = 0
			m.releases++
			m.publisher.Publish(Event{Name: "release", ID: victim.id, Fields: map[string]any{"reason": "over budget"}})
		}
	}

	if activatedCost != 0 {
		m.publisher.Publish(Event{Name: "activated", ID: NoAsset, Fields: map[string]any{
			"count": activationCount,
			"bytes": activatedCost,
		}})
	}
}
