// Copyright 2025 bitonicSort Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package parallel runs the bitonic network on a fixed pool of worker
// goroutines sharing one slice.
//
// Each stage (k, j) is a fork-join: the index range [0, n) is split into
// contiguous chunks, one per worker, and the stage returns only after every
// chunk finished. A pair {i, i^j} is owned by its smaller index, so two chunks
// never write the same pair and a stage needs no locks. The join between
// stages is required for correctness: stage (k, j/2) reads what stage (k, j)
// wrote.
package parallel

import (
	"fmt"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/workerpool"
)

// Schedule selects how a stage's index range is split across workers.
type Schedule int

const (
	// Static gives every worker one contiguous near-equal chunk.
	Static Schedule = iota

	// Dynamic hands out grain-sized chunks through an atomic cursor.
	Dynamic
)

// String returns the schedule name.
func (s Schedule) String() string {
	switch s {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	default:
		return "unknown"
	}
}

// ParseSchedule parses "static" or "dynamic".
func ParseSchedule(name string) (Schedule, error) {
	switch name {
	case "", "static":
		return Static, nil
	case "dynamic":
		return Dynamic, nil
	default:
		return Static, fmt.Errorf("unknown schedule %q", name)
	}
}

// defaultGrain is the smallest chunk worth handing to another worker.
const defaultGrain = 1024

// Sorter is the shared-memory engine. A Sorter may be reused for many sorts
// but runs one sort at a time.
type Sorter struct {
	pool     *workerpool.Pool
	grain    int
	schedule Schedule
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithGrain sets the minimum chunk size. Stages over at most grain indices
// run on the calling goroutine.
func WithGrain(grain int) Option {
	return func(s *Sorter) {
		s.grain = max(grain, 1)
	}
}

// WithSchedule selects the chunking schedule.
func WithSchedule(schedule Schedule) Option {
	return func(s *Sorter) {
		s.schedule = schedule
	}
}

// New creates a Sorter backed by threads workers.
// If threads <= 0, uses GOMAXPROCS.
func New(threads int, opts ...Option) *Sorter {
	s := &Sorter{
		pool:  workerpool.New(threads),
		grain: defaultGrain,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops the workers.
func (s *Sorter) Close() {
	s.pool.Close()
}

// Threads returns the pool size.
func (s *Sorter) Threads() int {
	return s.pool.NumWorkers()
}

// Stats exposes the pool counters; Joins grows by StageCount(n) per sort.
func (s *Sorter) Stats() workerpool.Stats {
	return s.pool.Stats()
}

// Sort sorts data ascending in place. len(data) must be a power of two.
func Sort[T bitonic.Key](s *Sorter, data []T) error {
	n := len(data)
	if !bitonic.IsPowerOfTwo(n) {
		return fmt.Errorf("%w: network length %d is not a power of two", bitonic.ErrInvalidPrecondition, n)
	}
	for st := range bitonic.Stages(n) {
		s.runStage(n, func(start, end int) {
			bitonic.ApplyStage(data, st, start, end)
		})
	}
	return nil
}

// runStage is one fork-join; it returns after every chunk is done.
func (s *Sorter) runStage(n int, fn func(start, end int)) {
	if s.schedule == Dynamic {
		s.pool.ParallelForDynamic(n, s.grain, fn)
		return
	}
	s.pool.ParallelForGrain(n, s.grain, fn)
}

// SortPadded sorts a slice of any length: it pads to a power of two with the
// sentinel, sorts and returns the first len(data) elements.
func SortPadded[T bitonic.Key](s *Sorter, data []T) ([]T, error) {
	if len(data) <= 1 {
		return data, nil
	}
	padded, n, err := bitonic.Pad(data, 1)
	if err != nil {
		return nil, err
	}
	if err := Sort(s, padded); err != nil {
		return nil, err
	}
	return bitonic.Truncate(padded, n), nil
}
