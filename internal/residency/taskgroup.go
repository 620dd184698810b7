package residency

// FenceSignal is a monotonic counter bridging background instantiations and
// the eviction pipeline. Tasks created by Iterate carry one; completion
// increments it. The manager skips iterations when the count falls too far
// behind the logical timestamp.
type FenceSignal interface {
	// Count returns the current value of the counter.
	Count() uint64
	// SignalIncrement advances the counter by one and wakes waiters.
	SignalIncrement()
	// WaitUntilAtLeast blocks until the counter reaches n.
	WaitUntilAtLeast(n uint64)
}

// Task is a handle to a unit of background work. Work is added with Go and
// starts when Dispatch is called; once every added func has run, the attached
// fence signal is incremented. A Task with no work still signals its fence.
type Task interface {
	SetDescription(desc string)
	SetClass(c TaskClass)
	SetFenceSignal(s FenceSignal)
	// Go adds work to the task. Must be called before Dispatch.
	Go(fn func())
	// Dispatch hands the task to its scheduler. The task must not be used
	// afterwards.
	Dispatch()
}

// TaskGroup creates background tasks. The manager enqueues at most one task
// per Iterate call plus one per IterateBlocking call.
type TaskGroup interface {
	CreateTask() Task
}
