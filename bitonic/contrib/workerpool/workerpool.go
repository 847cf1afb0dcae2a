// Copyright 2025 bitonicSort Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides the fixed-size fork-join pool that runs the
// stages of the shared-memory engine. Workers are spawned once and reused for
// every stage, so a sort of n elements pays for log2(n)*(log2(n)+1)/2 joins
// but never for goroutine creation.
//
// Every ParallelFor call is a complete fork-join: it hands out disjoint index
// ranges and returns only after all of them finished. Writes made by one call
// are visible to everything that runs after it returns, which is what the
// bitonic network needs between stages.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	for s := range bitonic.Stages(n) {
//	    pool.ParallelFor(n, func(start, end int) {
//	        bitonic.ApplyStage(data, s, start, end)
//	    })
//	}
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Pool is a persistent fork-join worker pool.
type Pool struct {
	numWorkers int
	workC      chan task

	// mu is held for reading while a call hands out tasks and for writing by
	// Close, so workC is never closed under a pending send.
	mu     sync.RWMutex
	closed bool

	joins    atomic.Int64
	counters []workerCounter
}

// workerCounter counts the indices a worker processed. Counters are padded to
// a cache line so workers never share one.
type workerCounter struct {
	items atomic.Int64
	_     cpu.CacheLinePad
}

// task is one contiguous range handed to a worker.
type task struct {
	fn      func(worker int)
	barrier *sync.WaitGroup
}

// Stats is a snapshot of pool activity.
type Stats struct {
	// Joins is the number of completed fork-join calls.
	Joins int64
	// Items holds, per worker, the number of indices processed. Indices run
	// inline by the caller (single-chunk calls, closed pool) are not counted.
	Items []int64
}

// New creates a pool with numWorkers persistent workers.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan task, numWorkers*2),
		counters:   make([]workerCounter, numWorkers),
	}
	for id := range numWorkers {
		go p.worker(id)
	}
	return p
}

func (p *Pool) worker(id int) {
	for t := range p.workC {
		t.fn(id)
		t.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the pool. Calling Close multiple times, or concurrently
// with ParallelFor, is safe; a closed pool runs further calls sequentially on
// the caller's goroutine.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.workC)
	}
}

// acquire locks the pool against Close while tasks are handed out. It
// reports false, without holding the lock, once the pool is closed.
func (p *Pool) acquire() bool {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return false
	}
	return true
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	s := Stats{Joins: p.joins.Load(), Items: make([]int64, len(p.counters))}
	for i := range p.counters {
		s.Items[i] = p.counters[i].items.Load()
	}
	return s
}

// ParallelFor splits [0, n) into at most NumWorkers contiguous, near-equal
// ranges and calls fn(start, end) for each on the pool. It blocks until all
// ranges are done.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	p.ParallelForGrain(n, 1, fn)
}

// ParallelForGrain is ParallelFor with a minimum range size: no range is
// shorter than grain (except the last), so small loops use fewer workers and
// loops of at most grain indices run inline.
func (p *Pool) ParallelForGrain(n, grain int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	defer p.joins.Add(1)

	grain = max(grain, 1)
	workers := min(p.numWorkers, (n+grain-1)/grain)
	if workers <= 1 || !p.acquire() {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for i := range workers {
		start := i * chunk
		if start >= n {
			break
		}
		end := min(start+chunk, n)
		wg.Add(1)
		p.workC <- task{
			fn: func(worker int) {
				fn(start, end)
				p.counters[worker].items.Add(int64(end - start))
			},
			barrier: &wg,
		}
	}
	p.mu.RUnlock()
	wg.Wait()
}

// ParallelForDynamic hands out ranges of batch indices through an atomic
// cursor, so faster workers take more ranges. Like ParallelFor it blocks until
// [0, n) is fully processed.
func (p *Pool) ParallelForDynamic(n, batch int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	defer p.joins.Add(1)

	batch = max(batch, 1)
	batches := (n + batch - 1) / batch
	workers := min(p.numWorkers, batches)
	if workers <= 1 || !p.acquire() {
		fn(0, n)
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		p.workC <- task{
			fn: func(worker int) {
				for {
					start := int(next.Add(1)-1) * batch
					if start >= n {
						return
					}
					end := min(start+batch, n)
					fn(start, end)
					p.counters[worker].items.Add(int64(end - start))
				}
			},
			barrier: &wg,
		}
	}
	p.mu.RUnlock()
	wg.Wait()
}
