package types

// AssetStatus is the per-asset view reported by /status and /assets.
type AssetStatus struct {
	// ID is the dense asset identifier assigned at registration.
	ID uint32 `json:"id"`
	// Class is the image class passed at registration.
	Class string `json:"class"`
	// Priority is the current residency priority; "persistent" assets report
	// the maximum value.
	Priority int `json:"priority"`
	// State is one of "absent", "loading", "resident".
	State string `json:"state"`
	// ConsumedBytes is the device memory currently attributed to the asset.
	ConsumedBytes uint64 `json:"consumed_bytes"`
	// PendingBytes is the estimated memory of an in-flight instantiation.
	PendingBytes uint64 `json:"pending_bytes"`
	// LastUsed is the logical timestamp of the most recent use signal.
	LastUsed uint64 `json:"last_used"`
}

// StatusResponse is the payload for GET /status.
type StatusResponse struct {
	BudgetBytes             uint64        `json:"budget_bytes"`
	BudgetPerIterationBytes uint64        `json:"budget_per_iteration_bytes"`
	TotalConsumedBytes      uint64        `json:"total_consumed_bytes"`
	Timestamp               uint64        `json:"timestamp"`
	FenceCount              uint64        `json:"fence_count"`
	Registered              int           `json:"registered"`
	Resident                int           `json:"resident"`
	Loading                 int           `json:"loading"`
	Activations             uint64        `json:"activations"`
	Releases                uint64        `json:"releases"`
	Skips                   uint64        `json:"skips"`
	Assets                  []AssetStatus `json:"assets,omitempty"`
}

// ErrorResponse is the uniform JSON error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// PriorityRequest is the payload for POST /assets/{id}/priority.
type PriorityRequest struct {
	// Priority is the new residency priority. Use "persistent": true to pin.
	Priority   int  `json:"priority"`
	Persistent bool `json:"persistent,omitempty"`
}
