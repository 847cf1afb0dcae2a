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
	"errors"
)

// ErrPartnerExchange reports a transport failure between ranks. It is fatal
// for the group: there is no retry once the network is mid-flight.
var ErrPartnerExchange = errors.New("cluster: partner exchange failed")

// ErrAborted is the cause seen by ranks whose group was aborted by a peer.
var ErrAborted = errors.New("cluster: group aborted")

// Tag separates the message streams of the different collectives.
type Tag uint32

const (
	TagBroadcast Tag = iota + 1
	TagScatter
	TagGather
	TagExchange
	TagBarrier
)

// String returns the collective name of the tag.
func (t Tag) String() string {
	switch t {
	case TagBroadcast:
		return "broadcast"
	case TagScatter:
		return "scatter"
	case TagGather:
		return "gather"
	case TagExchange:
		return "exchange"
	case TagBarrier:
		return "barrier"
	default:
		return "unknown"
	}
}

// Link is the point-to-point layer of a group.
//
// Send must not wait for the receiver to call Recv: payloads are buffered by
// the transport, which is what lets two partners send to each other and then
// receive without deadlocking. Send must not retain payload after it returns.
// Messages between a pair of ranks with the same tag arrive in send order.
type Link interface {
	// Rank returns this member's rank in [0, Size()).
	Rank() int

	// Size returns the number of ranks in the group.
	Size() int

	// Send delivers payload to rank dst.
	Send(ctx context.Context, dst int, tag Tag, payload []int32) error

	// Recv returns the next payload sent by rank src with tag.
	Recv(ctx context.Context, src int, tag Tag) ([]int32, error)

	// Abort tears down the whole group; pending and future Recv calls on
	// every rank fail with an error wrapping ErrAborted.
	Abort(cause error)

	// Close releases this member's resources after a completed sort.
	Close() error
}
