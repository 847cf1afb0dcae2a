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

	"github.com/samber/lo"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
)

// Comm provides the collectives of the distributed engine on top of a Link.
// Collectives are synchronization points: a rank does not return from one
// until the data it depends on arrived.
type Comm struct {
	link Link
}

// NewComm wraps a link.
func NewComm(link Link) *Comm {
	return &Comm{link: link}
}

// Rank returns this member's rank.
func (c *Comm) Rank() int { return c.link.Rank() }

// Size returns the group size.
func (c *Comm) Size() int { return c.link.Size() }

// Abort tears down the whole group.
func (c *Comm) Abort(cause error) { c.link.Abort(cause) }

// Close releases the underlying link.
func (c *Comm) Close() error { return c.link.Close() }

func (c *Comm) checkRank(r int) error {
	if r < 0 || r >= c.Size() {
		return fmt.Errorf("%w: rank %d outside group of %d", bitonic.ErrInvalidPrecondition, r, c.Size())
	}
	return nil
}

func (c *Comm) send(ctx context.Context, dst int, tag Tag, payload []int32) error {
	if err := c.link.Send(ctx, dst, tag, payload); err != nil {
		return fmt.Errorf("%w: %s to rank %d: %w", ErrPartnerExchange, tag, dst, err)
	}
	return nil
}

func (c *Comm) recv(ctx context.Context, src int, tag Tag) ([]int32, error) {
	payload, err := c.link.Recv(ctx, src, tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %s from rank %d: %w", ErrPartnerExchange, tag, src, err)
	}
	return payload, nil
}

// Broadcast sends values from root to every rank and returns them on all
// ranks. Values are carried as int64 so lengths beyond the int32 range
// survive the int32 wire format.
func (c *Comm) Broadcast(ctx context.Context, root int, values []int64) ([]int64, error) {
	if err := c.checkRank(root); err != nil {
		return nil, err
	}
	if c.Rank() != root {
		payload, err := c.recv(ctx, root, TagBroadcast)
		if err != nil {
			return nil, err
		}
		return decodeInt64s(payload)
	}

	payload := encodeInt64s(values)
	for r := range c.Size() {
		if r == root {
			continue
		}
		if err := c.send(ctx, r, TagBroadcast, payload); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// Scatter splits buf (significant on root only) into Size() partitions of
// perRank elements and returns this rank's partition. The returned slice is
// never an alias of buf.
func (c *Comm) Scatter(ctx context.Context, root int, buf []int32, perRank int) ([]int32, error) {
	if err := c.checkRank(root); err != nil {
		return nil, err
	}
	if c.Rank() != root {
		part, err := c.recv(ctx, root, TagScatter)
		if err != nil {
			return nil, err
		}
		if len(part) != perRank {
			return nil, fmt.Errorf("%w: scatter partition has %d elements, want %d", ErrPartnerExchange, len(part), perRank)
		}
		return part, nil
	}

	if perRank < 1 || len(buf) != perRank*c.Size() {
		return nil, fmt.Errorf("%w: cannot scatter %d elements as %d x %d",
			bitonic.ErrInvalidPrecondition, len(buf), c.Size(), perRank)
	}
	parts := lo.Chunk(buf, perRank)
	for r, part := range parts {
		if r == root {
			continue
		}
		if err := c.send(ctx, r, TagScatter, part); err != nil {
			return nil, err
		}
	}

	own, err := bitonic.Alloc[int32](perRank)
	if err != nil {
		return nil, err
	}
	copy(own, parts[root])
	return own, nil
}

// Gather concatenates every rank's local slice, in rank order, on root. All
// slices must have the same length. Non-root ranks get nil.
func (c *Comm) Gather(ctx context.Context, root int, local []int32) ([]int32, error) {
	if err := c.checkRank(root); err != nil {
		return nil, err
	}
	if c.Rank() != root {
		return nil, c.send(ctx, root, TagGather, local)
	}

	n := len(local)
	all, err := bitonic.Alloc[int32](n * c.Size())
	if err != nil {
		return nil, err
	}
	for r := range c.Size() {
		dst := all[r*n : (r+1)*n]
		if r == root {
			copy(dst, local)
			continue
		}
		part, err := c.recv(ctx, r, TagGather)
		if err != nil {
			return nil, err
		}
		if len(part) != n {
			return nil, fmt.Errorf("%w: rank %d gathered %d elements, want %d", ErrPartnerExchange, r, len(part), n)
		}
		copy(dst, part)
	}
	return all, nil
}

// Exchange sends local to partner and returns the partner's buffer. Both
// sides call it; from the caller's point of view the send and the receive
// complete together. local is left untouched and never aliased.
func (c *Comm) Exchange(ctx context.Context, partner int, local []int32) ([]int32, error) {
	if err := c.checkRank(partner); err != nil {
		return nil, err
	}
	if partner == c.Rank() {
		return nil, fmt.Errorf("%w: rank %d cannot exchange with itself", bitonic.ErrInvalidPrecondition, partner)
	}
	if err := c.send(ctx, partner, TagExchange, local); err != nil {
		return nil, err
	}
	remote, err := c.recv(ctx, partner, TagExchange)
	if err != nil {
		return nil, err
	}
	if len(remote) != len(local) {
		return nil, fmt.Errorf("%w: rank %d sent %d elements, want %d", ErrPartnerExchange, partner, len(remote), len(local))
	}
	return remote, nil
}

// Barrier returns once every rank entered it.
func (c *Comm) Barrier(ctx context.Context) error {
	const root = 0
	if c.Rank() != root {
		if err := c.send(ctx, root, TagBarrier, nil); err != nil {
			return err
		}
		_, err := c.recv(ctx, root, TagBarrier)
		return err
	}
	for r := 1; r < c.Size(); r++ {
		if _, err := c.recv(ctx, r, TagBarrier); err != nil {
			return err
		}
	}
	for r := 1; r < c.Size(); r++ {
		if err := c.send(ctx, r, TagBarrier, nil); err != nil {
			return err
		}
	}
	return nil
}

func encodeInt64s(values []int64) []int32 {
	out := make([]int32, 0, 2*len(values))
	for _, v := range values {
		out = append(out, int32(uint64(v)>>32), int32(uint32(v)))
	}
	return out
}

func decodeInt64s(payload []int32) ([]int64, error) {
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("%w: broadcast payload has odd length %d", ErrPartnerExchange, len(payload))
	}
	out := make([]int64, len(payload)/2)
	for i := range out {
		out[i] = int64(uint64(uint32(payload[2*i]))<<32 | uint64(uint32(payload[2*i+1])))
	}
	return out, nil
}
