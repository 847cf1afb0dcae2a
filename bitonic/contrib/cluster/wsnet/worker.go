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
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/cluster"
)

// Worker is a non-root member of a multi-process group. It implements
// cluster.Link; every message goes through the coordinator.
type Worker struct {
	rank   int
	size   int
	jobID  string
	logger *log.Logger
	hub    *peer
	box    *cluster.Mailbox

	closing   atomic.Bool
	abortOnce sync.Once
	done      chan struct{}
}

// Dial joins the group served at rawURL (ws://host:port/path) and returns
// once the coordinator assigned a rank.
func Dial(ctx context.Context, rawURL string, opts ...Option) (*Worker, error) {
	o := buildOptions(opts)
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse coordinator url: %w", err)
	}
	if o.jobID != "" {
		q := u.Query()
		q.Set("job", o.jobID)
		u.RawQuery = q.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("join %s: %s: %w", u.Redacted(), resp.Status, err)
		}
		return nil, fmt.Errorf("join %s: %w", u.Redacted(), err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read welcome: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	f, err := decodeFrame(msg)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read welcome: %w", err)
	}
	if f.kind != kindWelcome {
		conn.Close()
		return nil, fmt.Errorf("first frame from coordinator has kind %d, want welcome", f.kind)
	}

	w := &Worker{
		rank:   f.dst,
		size:   int(f.tag),
		jobID:  f.text,
		logger: o.logger,
		hub:    &peer{rank: cluster.Root, conn: conn},
		box:    cluster.NewMailbox(),
		done:   make(chan struct{}),
	}
	w.logger.Debug("joined group", "rank", w.rank, "size", w.size, "job", w.jobID)
	go w.serve()
	return w, nil
}

// JobID returns the identifier of the joined group.
func (w *Worker) JobID() string { return w.jobID }

// Rank implements cluster.Link.
func (w *Worker) Rank() int { return w.rank }

// Size implements cluster.Link.
func (w *Worker) Size() int { return w.size }

func (w *Worker) serve() {
	defer close(w.done)
	for {
		_, msg, err := w.hub.conn.ReadMessage()
		if err != nil {
			if w.closing.Load() {
				return
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				w.box.Fail(fmt.Errorf("%w: coordinator closed the group", cluster.ErrPartnerExchange))
				return
			}
			w.fail(fmt.Errorf("%w: coordinator connection: %w", cluster.ErrPartnerExchange, err))
			return
		}
		f, err := decodeFrame(msg)
		if err != nil {
			w.Abort(err)
			return
		}
		switch f.kind {
		case kindData:
			if f.dst != w.rank {
				w.Abort(fmt.Errorf("rank %d received a frame for rank %d", w.rank, f.dst))
				return
			}
			w.box.Deliver(f.src, f.tag, f.data)
		case kindAbort:
			w.fail(fmt.Errorf("%w: %s", cluster.ErrAborted, f.text))
			return
		default:
			w.Abort(fmt.Errorf("unexpected frame kind %d", f.kind))
			return
		}
	}
}

// fail marks the local mailbox failed without notifying the coordinator.
func (w *Worker) fail(err error) {
	w.logger.Debug("group failed", "rank", w.rank, "err", err)
	w.box.Fail(err)
}

// Send implements cluster.Link.
func (w *Worker) Send(ctx context.Context, dst int, tag cluster.Tag, payload []int32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.box.Err(); err != nil {
		return err
	}
	return w.hub.write(frame{kind: kindData, src: w.rank, dst: dst, tag: tag, data: payload})
}

// Recv implements cluster.Link.
func (w *Worker) Recv(ctx context.Context, src int, tag cluster.Tag) ([]int32, error) {
	return w.box.Take(ctx, src, tag)
}

// Abort asks the coordinator to abort the group and stops this worker.
func (w *Worker) Abort(cause error) {
	w.abortOnce.Do(func() {
		w.logger.Error("aborting group", "rank", w.rank, "err", cause)
		w.box.Fail(fmt.Errorf("%w: %w", cluster.ErrAborted, cause))
		if errors.Is(cause, cluster.ErrAborted) {
			// The abort came from the group; the coordinator already knows.
			return
		}
		_ = w.hub.write(frame{kind: kindAbort, src: w.rank, text: cause.Error()})
	})
}

// Close leaves the group and waits for the connection reader to stop.
func (w *Worker) Close() error {
	if w.closing.Swap(true) {
		return nil
	}
	w.hub.close()
	<-w.done
	return nil
}
