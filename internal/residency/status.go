package residency

import "assetd/pkg/types"

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.Lock()
	defer m.mu.Unlock()

	resp := types.StatusResponse{
		BudgetBytes:             m.imageBudget,
		BudgetPerIterationBytes: m.imageBudgetPerIteration,
		TotalConsumedBytes:      m.totalConsumed,
		Timestamp:               m.timestamp,
		FenceCount:              m.signal.Count(),
		Registered:              len(m.records),
		Activations:             m.activations,
		Releases:                m.releases,
		Skips:                   m.skips,
	}
	resp.Assets = make([]types.AssetStatus, 0, len(m.records))
	for _, a := range m.records {
		state := a.state()
		switch state {
		case "resident":
			resp.Resident++
		case "loading":
			resp.Loading++
		}
		resp.Assets = append(resp.Assets, types.AssetStatus{
			ID:            uint32(a.id),
			Class:         a.class.String(),
			Priority:      a.prio,
			State:         state,
			ConsumedBytes: a.consumed,
			PendingBytes:  a.pendingConsumed,
			LastUsed:      a.lastUsed,
		})
	}
	return resp
}
