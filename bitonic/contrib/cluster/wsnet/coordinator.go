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

package wsnet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/cluster"
)

// Coordinator is rank 0 of a multi-process group. It accepts Size()-1
// workers over WebSocket and implements cluster.Link for rank 0.
type Coordinator struct {
	size     int
	jobID    string
	logger   *log.Logger
	upgrader websocket.Upgrader
	box      *cluster.Mailbox

	mu     sync.Mutex
	peers  []*peer
	joined int
	closed bool
	ready  chan struct{}

	abortOnce sync.Once
}

type peer struct {
	rank int
	conn *websocket.Conn
	wmu  sync.Mutex
}

func (p *peer) write(f frame) error {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	return p.conn.WriteMessage(websocket.BinaryMessage, f.encode())
}

func (p *peer) close() {
	p.wmu.Lock()
	defer p.wmu.Unlock()
	_ = p.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = p.conn.Close()
}

// NewCoordinator creates the coordinator of a group of size ranks.
func NewCoordinator(size int, opts ...Option) (*Coordinator, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: group size %d", bitonic.ErrInvalidPrecondition, size)
	}
	o := buildOptions(opts)
	if o.jobID == "" {
		o.jobID = uuid.NewString()
	}
	c := &Coordinator{
		size:   size,
		jobID:  o.jobID,
		logger: o.logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 << 10,
			WriteBufferSize: 64 << 10,
		},
		box:   cluster.NewMailbox(),
		peers: make([]*peer, size),
		ready: make(chan struct{}),
	}
	if size == 1 {
		close(c.ready)
	}
	return c, nil
}

// JobID returns the identifier workers may present when joining.
func (c *Coordinator) JobID() string { return c.jobID }

// Rank returns 0.
func (c *Coordinator) Rank() int { return cluster.Root }

// Size returns the group size.
func (c *Coordinator) Size() int { return c.size }

// Joined returns the number of workers connected so far.
func (c *Coordinator) Joined() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joined
}

// Wait blocks until all workers joined, the group is aborted or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	select {
	case <-c.ready:
		return c.box.Err()
	case <-ctx.Done():
		return fmt.Errorf("waiting for %d workers (%d joined): %w", c.size-1, c.Joined(), ctx.Err())
	}
}

// ServeHTTP upgrades a worker's join request and serves its connection until
// it closes.
func (c *Coordinator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if job := r.URL.Query().Get("job"); job != "" && job != c.jobID {
		http.Error(w, fmt.Sprintf("job %s is not served here", job), http.StatusConflict)
		return
	}

	c.mu.Lock()
	if c.closed || c.joined == c.size-1 {
		c.mu.Unlock()
		http.Error(w, "group is full", http.StatusServiceUnavailable)
		return
	}
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c.joined++
	p := &peer{rank: c.joined, conn: conn}
	c.peers[p.rank] = p
	full := c.joined == c.size-1

	// The welcome is written before the group is marked ready so that no
	// data frame can overtake it.
	welcome := frame{kind: kindWelcome, dst: p.rank, tag: cluster.Tag(c.size), text: c.jobID}
	if err := p.write(welcome); err != nil {
		c.mu.Unlock()
		c.Abort(fmt.Errorf("welcome rank %d: %w", p.rank, err))
		return
	}
	if full {
		close(c.ready)
	}
	c.mu.Unlock()

	c.logger.Debug("worker joined", "rank", p.rank, "remote", r.RemoteAddr, "size", c.size)
	c.serve(p)
}

// serve reads frames from one worker, delivering those addressed to rank 0
// and relaying the others.
func (c *Coordinator) serve(p *peer) {
	for {
		_, msg, err := p.conn.ReadMessage()
		if err != nil {
			if c.isClosed() || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				c.logger.Debug("worker left", "rank", p.rank)
				return
			}
			c.Abort(fmt.Errorf("rank %d disconnected: %w", p.rank, err))
			return
		}
		f, err := decodeFrame(msg)
		if err != nil {
			c.Abort(fmt.Errorf("rank %d: %w", p.rank, err))
			return
		}

		switch f.kind {
		case kindAbort:
			c.Abort(fmt.Errorf("rank %d: %s", p.rank, f.text))
			return
		case kindData:
			if f.src != p.rank || f.dst < 0 || f.dst >= c.size {
				c.Abort(fmt.Errorf("rank %d sent a frame from %d to %d", p.rank, f.src, f.dst))
				return
			}
			if f.dst == cluster.Root {
				c.box.Deliver(f.src, f.tag, f.data)
				continue
			}
			dst := c.peer(f.dst)
			if dst == nil {
				c.Abort(fmt.Errorf("rank %d sent to rank %d before it joined", f.src, f.dst))
				return
			}
			if err := dst.write(f); err != nil {
				c.Abort(fmt.Errorf("relay rank %d to rank %d: %w", f.src, f.dst, err))
				return
			}
		default:
			c.Abort(fmt.Errorf("rank %d sent unexpected frame kind %d", p.rank, f.kind))
			return
		}
	}
}

func (c *Coordinator) peer(rank int) *peer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peers[rank]
}

func (c *Coordinator) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Send implements cluster.Link.
func (c *Coordinator) Send(ctx context.Context, dst int, tag cluster.Tag, payload []int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.box.Err(); err != nil {
		return err
	}
	if dst == cluster.Root {
		c.box.Deliver(cluster.Root, tag, slices.Clone(payload))
		return nil
	}
	p := c.peer(dst)
	if p == nil {
		return fmt.Errorf("rank %d has not joined", dst)
	}
	return p.write(frame{kind: kindData, src: cluster.Root, dst: dst, tag: tag, data: payload})
}

// Recv implements cluster.Link.
func (c *Coordinator) Recv(ctx context.Context, src int, tag cluster.Tag) ([]int32, error) {
	return c.box.Take(ctx, src, tag)
}

// Abort fails rank 0 and tells every worker to abort.
func (c *Coordinator) Abort(cause error) {
	c.abortOnce.Do(func() {
		err := fmt.Errorf("%w: %w", cluster.ErrAborted, cause)
		c.logger.Error("aborting group", "err", cause)
		c.box.Fail(err)

		c.mu.Lock()
		c.closed = true
		peers := slices.Clone(c.peers)
		c.mu.Unlock()

		for _, p := range peers {
			if p == nil {
				continue
			}
			_ = p.write(frame{kind: kindAbort, text: cause.Error()})
			p.close()
		}
	})
}

// Close disconnects every worker after a completed sort.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	peers := slices.Clone(c.peers)
	c.mu.Unlock()

	for _, p := range peers {
		if p != nil {
			p.close()
		}
	}
	c.box.Fail(errors.New("wsnet: coordinator closed"))
	return nil
}
