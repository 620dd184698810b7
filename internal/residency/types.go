package residency

import (
	"io/fs"
	"math"
)

// AssetID identifies a registered asset. IDs are dense, assigned sequentially
// from zero, and never reused for the lifetime of the manager.
type AssetID uint32

// NoAsset is the sentinel returned when registration fails.
const NoAsset AssetID = math.MaxUint32

// Valid reports whether the id refers to a registered asset.
func (id AssetID) Valid() bool { return id != NoAsset }

// ImageClass tags an asset at registration. The manager stores and forwards
// it opaquely; only the instantiator interprets it.
type ImageClass int

const (
	ImageClassColor ImageClass = iota
	ImageClassNormal
	ImageClassMetallicRoughness
)

func (c ImageClass) String() string {
	switch c {
	case ImageClassNormal:
		return "normal"
	case ImageClassMetallicRoughness:
		return "metallic-roughness"
	default:
		return "color"
	}
}

// PriorityPersistent pins an asset: it may be activated above the hard budget
// and is never chosen as an eviction victim.
const PriorityPersistent = math.MaxInt32

// TaskClass selects the scheduling class for a background task.
type TaskClass int

const (
	// TaskClassBackground marks work that must not compete with latency
	// sensitive tasks.
	TaskClassBackground TaskClass = iota
)

// assetRecord is the per-asset bookkeeping unit. All fields are guarded by
// Manager.mu except where noted. A record is created at registration and
// lives as long as the manager.
//
// Residency is encoded by the consumed/pendingConsumed pair:
// absent (0,0), loading (0,>0), resident (>0,0). The pair is never (>0,>0);
// the policy releases before re-activating.
type assetRecord struct {
	id              AssetID
	handle          fs.File
	class           ImageClass
	prio            int
	consumed        uint64
	pendingConsumed uint64
	lastUsed        uint64
	pathHash        uint64
	hasPath         bool
}

func (a *assetRecord) state() string {
	switch {
	case a.pendingConsumed != 0:
		return "loading"
	case a.consumed != 0:
		return "resident"
	default:
		return "absent"
	}
}
