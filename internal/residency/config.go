package residency

import "math"

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	// defaultUseQueueCapacity bounds the lock-free use queue. Overflowing
	// signals are dropped; a dropped signal only delays an LRU refresh by
	// one iteration.
	defaultUseQueueCapacity = 4 * 1024

	// fenceSlack is the number of iterations the fence may trail the
	// timestamp before Iterate skips its step.
	fenceSlack = 3

	// maxBudget stands in for "unlimited".
	maxBudget = math.MaxUint64
)

// ManagerConfig encapsulates all tunables for Manager construction.
// Zero values mean "unspecified" and package defaults apply.
type ManagerConfig struct {
	// ImageBudget is the hard budget in bytes. 0 means unlimited.
	ImageBudget uint64
	// ImageBudgetPerIteration is the soft cap on new work admitted per
	// Iterate call, in bytes. 0 means unlimited.
	ImageBudgetPerIteration uint64
	// UseQueueCapacity bounds the use-signal buffer.
	UseQueueCapacity int
	// Publisher receives lifecycle events. Defaults to a no-op sink.
	Publisher EventPublisher
}

// New constructs a Manager with unlimited budgets and default queue sizing.
func New() *Manager {
	return NewWithConfig(ManagerConfig{})
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		pathToID:                make(map[uint64]AssetID),
		imageBudget:             cfg.ImageBudget,
		imageBudgetPerIteration: cfg.ImageBudgetPerIteration,
		publisher:               cfg.Publisher,
		signal:                  NewFence(),
		timestamp:               1,
	}
	if m.imageBudget == 0 {
		m.imageBudget = maxBudget
	}
	if m.imageBudgetPerIteration == 0 {
		m.imageBudgetPerIteration = maxBudget
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	capacity := cfg.UseQueueCapacity
	if capacity <= 0 {
		capacity = defaultUseQueueCapacity
	}
	m.useQueue.init(capacity)
	// Seed the fence so count matches the initial timestamp.
	for i := uint64(0); i < m.timestamp; i++ {
		m.signal.SignalIncrement()
	}
	return m
}
