package residency

import "sync"

// Fence is the default FenceSignal: a counting signal with condition-variable
// waiters. Safe for concurrent use from any goroutine.
type Fence struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count uint64
}

// NewFence returns a fence with count zero.
func NewFence() *Fence {
	f := &Fence{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *Fence) Count() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count
}

func (f *Fence) SignalIncrement() {
	f.mu.Lock()
	f.count++
	f.mu.Unlock()
	f.cond.Broadcast()
}

func (f *Fence) WaitUntilAtLeast(n uint64) {
	f.mu.Lock()
	for f.count < n {
		f.cond.Wait()
	}
	f.mu.Unlock()
}
