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

// Package local provides an in-process cluster group: every rank is a
// goroutine and messages are copied between per-rank mailboxes. Ranks still
// share nothing but messages, so the distributed protocol runs unchanged.
package local

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/cluster"
)

// Group is a set of in-process ranks.
type Group struct {
	boxes     []*cluster.Mailbox
	abortOnce sync.Once
}

// NewGroup creates a group of size ranks.
func NewGroup(size int) (*Group, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: group size %d", bitonic.ErrInvalidPrecondition, size)
	}
	g := &Group{boxes: make([]*cluster.Mailbox, size)}
	for i := range g.boxes {
		g.boxes[i] = cluster.NewMailbox()
	}
	return g, nil
}

// Size returns the number of ranks.
func (g *Group) Size() int {
	return len(g.boxes)
}

// Link returns the link of rank.
func (g *Group) Link(rank int) cluster.Link {
	if rank < 0 || rank >= len(g.boxes) {
		panic(fmt.Sprintf("local: rank %d outside group of %d", rank, len(g.boxes)))
	}
	return &link{group: g, rank: rank}
}

// Abort fails every rank's mailbox with cause.
func (g *Group) Abort(cause error) {
	g.abortOnce.Do(func() {
		err := fmt.Errorf("%w: %w", cluster.ErrAborted, cause)
		for _, box := range g.boxes {
			box.Fail(err)
		}
	})
}

// Run executes fn once per rank, each on its own goroutine with its own
// Comm, and waits for all of them. The first error aborts the group and
// cancels the context passed to the other ranks; it is the error returned.
func Run(ctx context.Context, size int, fn func(ctx context.Context, c *cluster.Comm) error) error {
	g, err := NewGroup(size)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	for rank := range size {
		eg.Go(func() error {
			c := cluster.NewComm(g.Link(rank))
			defer c.Close()
			if err := fn(ctx, c); err != nil {
				g.Abort(err)
				return err
			}
			return nil
		})
	}
	return eg.Wait()
}

type link struct {
	group *Group
	rank  int
}

func (l *link) Rank() int { return l.rank }

func (l *link) Size() int { return len(l.group.boxes) }

func (l *link) Send(ctx context.Context, dst int, tag cluster.Tag, payload []int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.group.boxes[l.rank].Err(); err != nil {
		return err
	}
	l.group.boxes[dst].Deliver(l.rank, tag, slices.Clone(payload))
	return nil
}

func (l *link) Recv(ctx context.Context, src int, tag cluster.Tag) ([]int32, error) {
	return l.group.boxes[l.rank].Take(ctx, src, tag)
}

func (l *link) Abort(cause error) {
	l.group.Abort(cause)
}

func (l *link) Close() error {
	return nil
}
