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
	"sync"

	"github.com/eapache/queue"
)

type mailKey struct {
	src int
	tag Tag
}

// Mailbox buffers the payloads a rank has received but not consumed yet, one
// FIFO per (source, tag). Transports feed it from their receive paths and
// serve Link.Recv from it.
type Mailbox struct {
	mu      sync.Mutex
	queues  map[mailKey]*queue.Queue
	err     error
	changed chan struct{}
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{
		queues:  make(map[mailKey]*queue.Queue),
		changed: make(chan struct{}),
	}
}

// Deliver appends payload to the (src, tag) stream. The mailbox takes
// ownership of payload. Deliveries after Fail are dropped.
func (m *Mailbox) Deliver(src int, tag Tag, payload []int32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return
	}
	k := mailKey{src: src, tag: tag}
	q, ok := m.queues[k]
	if !ok {
		q = queue.New()
		m.queues[k] = q
	}
	q.Add(payload)
	m.wakeLocked()
}

// Fail makes every pending and future Take return err once the matching
// stream is empty. Only the first failure is kept.
func (m *Mailbox) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return
	}
	m.err = err
	m.wakeLocked()
}

// Err returns the failure recorded by Fail, if any.
func (m *Mailbox) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *Mailbox) wakeLocked() {
	close(m.changed)
	m.changed = make(chan struct{})
}

// Take removes and returns the oldest payload of the (src, tag) stream,
// waiting until one arrives, the mailbox fails or ctx is done.
func (m *Mailbox) Take(ctx context.Context, src int, tag Tag) ([]int32, error) {
	k := mailKey{src: src, tag: tag}
	for {
		m.mu.Lock()
		if q, ok := m.queues[k]; ok && q.Length() > 0 {
			payload := q.Remove().([]int32)
			m.mu.Unlock()
			return payload, nil
		}
		if m.err != nil {
			err := m.err
			m.mu.Unlock()
			return nil, err
		}
		changed := m.changed
		m.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for %s from rank %d: %w", ErrPartnerExchange, tag, src, ctx.Err())
		}
	}
}
