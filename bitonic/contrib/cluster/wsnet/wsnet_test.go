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
	"math/rand"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/cluster"
)

// startGroup serves a coordinator of size ranks and joins size-1 workers to
// it, in rank order.
func startGroup(t *testing.T, ctx context.Context, size int) (*Coordinator, []*Worker) {
	t.Helper()
	coord, err := NewCoordinator(size)
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	srv := httptest.NewServer(coord)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	workers := make([]*Worker, 0, size-1)
	for i := 1; i < size; i++ {
		w, err := Dial(ctx, url, WithJobID(coord.JobID()))
		if err != nil {
			t.Fatalf("Dial worker %d: %v", i, err)
		}
		if w.Rank() != i || w.Size() != size {
			t.Fatalf("worker %d joined as rank %d of %d", i, w.Rank(), w.Size())
		}
		workers = append(workers, w)
	}
	if err := coord.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return coord, workers
}

func TestFrameRoundTrip(t *testing.T) {
	for _, f := range []frame{
		{kind: kindData, src: 3, dst: 1, tag: cluster.TagExchange, data: []int32{-1, 0, 2147483647}},
		{kind: kindData, src: 0, dst: 2, tag: cluster.TagGather},
		{kind: kindWelcome, dst: 5, tag: 8, text: "job-1"},
		{kind: kindAbort, src: 2, text: "boom"},
	} {
		got, err := decodeFrame(f.encode())
		if err != nil {
			t.Fatalf("decodeFrame(%+v): %v", f, err)
		}
		if got.kind != f.kind || got.src != f.src || got.dst != f.dst || got.tag != f.tag ||
			got.text != f.text || !slices.Equal(got.data, f.data) {
			t.Errorf("round trip = %+v, want %+v", got, f)
		}
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	tests := map[string][]byte{
		"short":        {1, 0, 0},
		"unknown kind": make([]byte, headerSize),
		"ragged data":  append(frame{kind: kindData}.encode(), 1, 2, 3),
	}
	for name, msg := range tests {
		if _, err := decodeFrame(msg); err == nil {
			t.Errorf("%s: decodeFrame succeeded, want error", name)
		}
	}
}

func TestSortOverWebSocket(t *testing.T) {
	for _, strategy := range []cluster.Strategy{cluster.GatherMerge, cluster.Pairwise} {
		t.Run(strategy.String(), func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			const size = 4
			coord, workers := startGroup(t, ctx, size)

			r := rand.New(rand.NewSource(7))
			data := make([]int32, 1000)
			for i := range data {
				data[i] = r.Int31n(10_000) - 5_000
			}
			want := slices.Clone(data)
			slices.Sort(want)

			var got []int32
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				out, err := cluster.Sort(gctx, cluster.NewComm(coord), data, cluster.Options{Strategy: strategy})
				got = out
				return err
			})
			for _, w := range workers {
				g.Go(func() error {
					out, err := cluster.Sort(gctx, cluster.NewComm(w), nil, cluster.Options{Strategy: strategy})
					if out != nil {
						t.Errorf("rank %d returned %d elements, want nil", w.Rank(), len(out))
					}
					return err
				})
			}
			if err := g.Wait(); err != nil {
				t.Fatalf("Sort: %v", err)
			}
			if !slices.Equal(got, want) {
				t.Errorf("Sort over WebSocket does not match slices.Sort")
			}

			for _, w := range workers {
				if err := w.Close(); err != nil {
					t.Errorf("worker %d Close: %v", w.Rank(), err)
				}
			}
			if err := coord.Close(); err != nil {
				t.Errorf("coordinator Close: %v", err)
			}
		})
	}
}

func TestRelayBetweenWorkers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	coord, workers := startGroup(t, ctx, 3)
	defer coord.Close()

	if err := workers[0].Send(ctx, 2, cluster.TagExchange, []int32{4, 5, 6}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	got, err := workers[1].Recv(ctx, 1, cluster.TagExchange)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if !slices.Equal(got, []int32{4, 5, 6}) {
		t.Errorf("relayed payload = %v, want [4 5 6]", got)
	}
}

func TestJoinRejected(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	coord, err := NewCoordinator(2, WithJobID("job-a"))
	if err != nil {
		t.Fatal(err)
	}
	defer coord.Close()
	srv := httptest.NewServer(coord)
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	if _, err := Dial(ctx, url, WithJobID("job-b")); err == nil {
		t.Fatal("Dial with another job id succeeded")
	}
	if n := coord.Joined(); n != 0 {
		t.Errorf("Joined = %d after rejected join, want 0", n)
	}

	w, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer w.Close()
	if w.JobID() != "job-a" {
		t.Errorf("JobID = %q, want job-a", w.JobID())
	}
	if _, err := Dial(ctx, url); err == nil {
		t.Error("Dial into a full group succeeded")
	}
}

func TestWorkerAbortReachesGroup(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	coord, workers := startGroup(t, ctx, 3)
	defer coord.Close()

	workers[0].Abort(errors.New("disk full"))

	if _, err := coord.Recv(ctx, 1, cluster.TagGather); !errors.Is(err, cluster.ErrAborted) {
		t.Errorf("coordinator Recv error = %v, want ErrAborted", err)
	}
	if _, err := workers[1].Recv(ctx, 0, cluster.TagScatter); !errors.Is(err, cluster.ErrAborted) {
		t.Errorf("worker Recv error = %v, want ErrAborted", err)
	}
	for _, w := range workers {
		w.Close()
	}
}

func TestWaitTimesOut(t *testing.T) {
	coord, err := NewCoordinator(3)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := coord.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait error = %v, want DeadlineExceeded", err)
	}
}
