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

package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
)

// Root is the coordinator rank: it holds the input and receives the result.
const Root = 0

// Strategy selects how sorted partitions are combined.
type Strategy int

const (
	// GatherMerge gathers the locally sorted partitions on the root, which
	// merges them bottom-up.
	GatherMerge Strategy = iota

	// Pairwise runs the inter-partition stages of the network across ranks
	// with partner exchanges, then gathers the already ordered partitions.
	Pairwise
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case GatherMerge:
		return "gather"
	case Pairwise:
		return "pairwise"
	default:
		return "unknown"
	}
}

// ParseStrategy parses "gather" or "pairwise".
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "", "gather":
		return GatherMerge, nil
	case "pairwise":
		return Pairwise, nil
	default:
		return GatherMerge, fmt.Errorf("unknown merge strategy %q", name)
	}
}

// Phase names a step of the protocol.
type Phase int

const (
	PhaseDistribute Phase = iota
	PhaseLocalSort
	PhaseMerge
	PhaseCollect
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseDistribute:
		return "distribute"
	case PhaseLocalSort:
		return "local-sort"
	case PhaseMerge:
		return "merge"
	case PhaseCollect:
		return "collect"
	default:
		return "unknown"
	}
}

// Options configures Sort.
type Options struct {
	// Strategy is read on the root only; the other ranks follow the root.
	Strategy Strategy

	// OnPhase, if set, is called on every rank after each phase with its
	// duration on that rank.
	OnPhase func(p Phase, elapsed time.Duration)
}

// Sort runs the distributed protocol on this rank. data is read on the root
// only. The root returns the first len(data) elements of the sorted sequence;
// other ranks return nil.
//
// On error the group is aborted before Sort returns, so every other rank
// fails too and nobody produces a partial result.
func Sort(ctx context.Context, c *Comm, data []int32, opts Options) (_ []int32, err error) {
	defer func() {
		if err != nil {
			c.Abort(err)
		}
	}()

	phase := newPhaseClock(opts.OnPhase)
	rank, size := c.Rank(), c.Size()

	var (
		padded []int32
		header = make([]int64, 3)
	)
	if rank == Root {
		if opts.Strategy != GatherMerge && opts.Strategy != Pairwise {
			return nil, fmt.Errorf("%w: merge strategy %d", bitonic.ErrInvalidPrecondition, opts.Strategy)
		}
		var n int
		if padded, n, err = bitonic.Pad(data, size); err != nil {
			return nil, err
		}
		header[0], header[1], header[2] = int64(n), int64(len(padded)), int64(opts.Strategy)
	}
	if header, err = c.Broadcast(ctx, Root, header); err != nil {
		return nil, err
	}
	if len(header) != 3 {
		return nil, fmt.Errorf("%w: broadcast carried %d values, want 3", ErrPartnerExchange, len(header))
	}
	originalCount, paddedCount := int(header[0]), int(header[1])
	strategy := Strategy(header[2])
	if strategy != GatherMerge && strategy != Pairwise {
		return nil, fmt.Errorf("%w: root sent merge strategy %d", ErrPartnerExchange, strategy)
	}
	if paddedCount%size != 0 || originalCount > paddedCount {
		return nil, fmt.Errorf("%w: padded length %d for %d elements on %d ranks",
			bitonic.ErrInvalidPrecondition, paddedCount, originalCount, size)
	}
	localCount := paddedCount / size

	part, err := c.Scatter(ctx, Root, padded, localCount)
	if err != nil {
		return nil, err
	}
	padded = nil
	if err := c.Barrier(ctx); err != nil {
		return nil, err
	}
	phase.done(PhaseDistribute)

	if err := bitonic.SortRecursive(part, true); err != nil {
		return nil, err
	}
	phase.done(PhaseLocalSort)

	if strategy == Pairwise {
		if err := exchangeStages(ctx, c, part); err != nil {
			return nil, err
		}
	}
	all, err := c.Gather(ctx, Root, part)
	if err != nil {
		return nil, err
	}
	if rank == Root && strategy == GatherMerge {
		scratch, err := bitonic.Alloc[int32](paddedCount)
		if err != nil {
			return nil, err
		}
		if err := MergeRuns(all, scratch, localCount); err != nil {
			return nil, err
		}
	}
	phase.done(PhaseMerge)

	if rank != Root {
		return nil, nil
	}
	out := bitonic.Truncate(all, originalCount)
	phase.done(PhaseCollect)
	return out, nil
}

// exchangeStages runs the stages of the network whose compare distance spans
// partitions. Ranks play the role of indices: at stage (k, j) a rank pairs
// with rank^j, the pair is ordered ascending iff rank&k == 0, and the rank
// on the low side of the ordered pair keeps the lower half of the merge.
func exchangeStages(ctx context.Context, c *Comm, part []int32) error {
	rank := c.Rank()
	scratch, err := bitonic.Alloc[int32](len(part))
	if err != nil {
		return err
	}
	for s := range bitonic.Stages(c.Size()) {
		partner := s.Partner(rank)
		remote, err := c.Exchange(ctx, partner, part)
		if err != nil {
			return err
		}
		keepLow := (rank < partner) == s.Ascending(rank)
		if err := MergeSplit(part, remote, scratch, keepLow); err != nil {
			return err
		}
	}
	return nil
}

type phaseClock struct {
	fn    func(Phase, time.Duration)
	start time.Time
}

func newPhaseClock(fn func(Phase, time.Duration)) *phaseClock {
	return &phaseClock{fn: fn, start: time.Now()}
}

func (p *phaseClock) done(ph Phase) {
	if p.fn == nil {
		return
	}
	now := time.Now()
	p.fn(ph, now.Sub(p.start))
	p.start = now
}
