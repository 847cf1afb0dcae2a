// Copyright 2025 bitonicSort Authors. SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	if pool.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", pool.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	pool := New(0)
	defer pool.Close()

	if pool.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", pool.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestParallelForCoversRange(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	for _, n := range []int{1, 3, 4, 5, 100, 1023} {
		hits := make([]int32, n)
		pool.ParallelFor(n, func(start, end int) {
			for i := start; i < end; i++ {
				hits[i]++
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: index %d visited %d times, want 1", n, i, h)
			}
		}
	}
}

func TestParallelForDynamicCoversRange(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	n := 1000
	hits := make([]int32, n)
	pool.ParallelForDynamic(n, 7, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})
	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, h)
		}
	}
}

// TestParallelForIsBarrier checks that every write of one call is visible to
// the next call, the property the network relies on between stages.
func TestParallelForIsBarrier(t *testing.T) {
	pool := New(8)
	defer pool.Close()

	n := 4096
	cur, next := make([]int, n), make([]int, n)
	for round := 1; round <= 20; round++ {
		pool.ParallelFor(n, func(start, end int) {
			for i := start; i < end; i++ {
				// Read a slot written by another worker in the previous round.
				next[i] = cur[(i+n/2)%n] + 1
			}
		})
		for i := range next {
			if next[i] != round {
				t.Fatalf("round %d: data[%d] = %d, previous round not joined", round, i, next[i])
			}
		}
		cur, next = next, cur
	}
}

func TestParallelForGrainRunsInline(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var calls atomic.Int32
	pool.ParallelForGrain(10, 64, func(start, end int) {
		calls.Add(1)
		if start != 0 || end != 10 {
			t.Errorf("inline range = [%d, %d), want [0, 10)", start, end)
		}
	})
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestParallelForZeroN(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	var called bool
	pool.ParallelFor(0, func(start, end int) {
		called = true
	})
	if called {
		t.Error("ParallelFor with n=0 should not call fn")
	}
	if pool.Stats().Joins != 0 {
		t.Errorf("Joins = %d, want 0", pool.Stats().Joins)
	}
}

func TestStats(t *testing.T) {
	pool := New(4)
	defer pool.Close()

	for range 5 {
		pool.ParallelFor(400, func(start, end int) {})
	}
	s := pool.Stats()
	if s.Joins != 5 {
		t.Errorf("Joins = %d, want 5", s.Joins)
	}
	var total int64
	for _, c := range s.Items {
		total += c
	}
	if total != 5*400 {
		t.Errorf("items = %d, want %d", total, 5*400)
	}
}

func TestCloseMultipleTimes(t *testing.T) {
	pool := New(4)
	pool.Close()
	pool.Close()
}

func TestClosedPoolFallback(t *testing.T) {
	pool := New(4)
	pool.Close()

	n := 100
	results := make([]int, n)
	pool.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			results[i] = i * 2
		}
	})
	for i := range n {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestCloseDuringParallelFor(t *testing.T) {
	for range 20 {
		pool := New(4)
		const n = 4096
		var wg sync.WaitGroup
		for c := range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for round := range 50 {
					var covered atomic.Int64
					fn := func(start, end int) { covered.Add(int64(end - start)) }
					if (c+round)%2 == 0 {
						pool.ParallelFor(n, fn)
					} else {
						pool.ParallelForDynamic(n, 64, fn)
					}
					if got := covered.Load(); got != n {
						t.Errorf("covered %d indices, want %d", got, n)
						return
					}
				}
			}()
		}
		pool.Close()
		wg.Wait()
	}
}

func BenchmarkParallelFor(b *testing.B) {
	pool := New(0)
	defer pool.Close()

	n := 1 << 16
	data := make([]int32, n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.ParallelFor(n, func(start, end int) {
			for j := start; j < end; j++ {
				data[j]++
			}
		})
	}
}
