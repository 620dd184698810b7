package residency

import (
	"io/fs"
	"sync"
	"testing"
)

// stubInstantiator is a deterministic in-memory instantiator. Instantiation
// work reports the configured cost (defaulting to the estimate) and is run
// synchronously when no task is given.
type stubInstantiator struct {
	mu              sync.Mutex
	defaultEstimate uint64
	estimates       map[AssetID]uint64
	costs           map[AssetID]uint64

	idBounds     uint32
	classes      map[AssetID]ImageClass
	instantiated []AssetID
	released     []AssetID
	latches      int
}

func newStubInstantiator(defaultEstimate uint64) *stubInstantiator {
	return &stubInstantiator{
		defaultEstimate: defaultEstimate,
		estimates:       make(map[AssetID]uint64),
		costs:           make(map[AssetID]uint64),
		classes:         make(map[AssetID]ImageClass),
	}
}

func (s *stubInstantiator) SetIDBounds(n uint32) {
	s.mu.Lock()
	s.idBounds = n
	s.mu.Unlock()
}

func (s *stubInstantiator) SetImageClass(id AssetID, class ImageClass) {
	s.mu.Lock()
	s.classes[id] = class
	s.mu.Unlock()
}

func (s *stubInstantiator) EstimateCost(id AssetID, _ fs.File) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.estimates[id]; ok {
		return v
	}
	return s.defaultEstimate
}

func (s *stubInstantiator) Instantiate(m *Manager, task Task, id AssetID, _ fs.File) {
	s.mu.Lock()
	s.instantiated = append(s.instantiated, id)
	cost, ok := s.costs[id]
	if !ok {
		if v, ok2 := s.estimates[id]; ok2 {
			cost = v
		} else {
			cost = s.defaultEstimate
		}
	}
	s.mu.Unlock()
	report := func() { m.ReportCost(id, cost) }
	if task == nil {
		report()
		return
	}
	task.Go(report)
}

func (s *stubInstantiator) Release(id AssetID) {
	s.mu.Lock()
	s.released = append(s.released, id)
	s.mu.Unlock()
}

func (s *stubInstantiator) LatchHandles() {
	s.mu.Lock()
	s.latches++
	s.mu.Unlock()
}

func (s *stubInstantiator) latchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latches
}

func (s *stubInstantiator) releasedIDs() []AssetID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AssetID(nil), s.released...)
}

// syncGroup runs dispatched tasks immediately on the calling goroutine, so
// background completions happen at deterministic points.
type syncGroup struct{}

func (syncGroup) CreateTask() Task { return &syncTask{} }

type syncTask struct {
	desc   string
	class  TaskClass
	signal FenceSignal
	fns    []func()
}

func (t *syncTask) SetDescription(desc string)   { t.desc = desc }
func (t *syncTask) SetClass(c TaskClass)         { t.class = c }
func (t *syncTask) SetFenceSignal(s FenceSignal) { t.signal = s }
func (t *syncTask) Go(fn func())                 { t.fns = append(t.fns, fn) }

func (t *syncTask) Dispatch() {
	for _, fn := range t.fns {
		fn()
	}
	if t.signal != nil {
		t.signal.SignalIncrement()
	}
}

// stalledGroup produces tasks that never complete, starving the fence.
type stalledGroup struct{}

func (stalledGroup) CreateTask() Task { return &stalledTask{} }

type stalledTask struct{ syncTask }

func (t *stalledTask) Dispatch() {}

// checkInvariants asserts the accounting invariants that must hold at every
// quiescent point.
func checkInvariants(t *testing.T, m *Manager) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum uint64
	for _, a := range m.records {
		if a.consumed != 0 && a.pendingConsumed != 0 {
			t.Fatalf("record %d is resident and loading at once", a.id)
		}
		sum += a.consumed + a.pendingConsumed
	}
	if sum != m.totalConsumed {
		t.Fatalf("totalConsumed=%d but records sum to %d", m.totalConsumed, sum)
	}
}

// residencyStates returns the per-id state strings for comparison.
func residencyStates(m *Manager) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.records))
	for i, a := range m.records {
		out[i] = a.state()
	}
	return out
}
