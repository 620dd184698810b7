// Package tasks provides a background worker pool satisfying the residency
// package's TaskGroup contract, plus nothing else: scheduling policy beyond
// "bounded concurrency, FIFO-ish" is out of scope.
package tasks

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"

	"assetd/internal/residency"
)

// Pool runs dispatched tasks on goroutines bounded by a weighted semaphore.
type Pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

// NewPool creates a pool allowing at most workers concurrent tasks.
// workers <= 0 selects GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: semaphore.NewWeighted(int64(workers))}
}

// CreateTask returns an empty task bound to the pool.
func (p *Pool) CreateTask() residency.Task {
	return &task{pool: p}
}

// Wait blocks until every dispatched task has finished. Call after the last
// producer has stopped.
func (p *Pool) Wait() {
	p.wg.Wait()
}

type task struct {
	pool   *Pool
	desc   string
	class  residency.TaskClass
	signal residency.FenceSignal
	fns    []func()
}

func (t *task) SetDescription(desc string)             { t.desc = desc }
func (t *task) SetClass(c residency.TaskClass)         { t.class = c }
func (t *task) SetFenceSignal(s residency.FenceSignal) { t.signal = s }

func (t *task) Go(fn func()) {
	t.fns = append(t.fns, fn)
}

// Dispatch hands the task to the pool. The fence is signalled after all of
// the task's work has run, even when the task carries no work at all.
func (t *task) Dispatch() {
	t.pool.wg.Add(1)
	go func() {
		defer t.pool.wg.Done()
		_ = t.pool.sem.Acquire(context.Background(), 1)
		defer t.pool.sem.Release(1)
		for _, fn := range t.fns {
			fn()
		}
		if t.signal != nil {
			t.signal.SignalIncrement()
		}
	}()
}
