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

// Package wsnet connects the ranks of a cluster group running in separate
// processes over WebSocket.
//
// The group is a star: rank 0 runs a [Coordinator], an http.Handler that
// every other rank joins with [Dial]. Ranks are assigned in join order.
// Messages between two workers are relayed by the coordinator, which keeps
// per-pair ordering since each hop is a single ordered connection.
//
// Every message is one binary WebSocket frame:
//
//	offset  size  field
//	0       1     kind (data, welcome, abort)
//	1       3     reserved
//	4       4     source rank (little endian)
//	8       4     destination rank
//	12      4     tag
//	16      ...   payload: int32 values for data frames, text otherwise
package wsnet

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/cluster"
)

const headerSize = 16

type frameKind uint8

const (
	kindData frameKind = iota + 1
	kindWelcome
	kindAbort
)

type frame struct {
	kind frameKind
	src  int
	dst  int
	tag  cluster.Tag
	data []int32
	text string
}

func (f frame) encode() []byte {
	size := headerSize + len(f.text)
	if f.kind == kindData {
		size = headerSize + 4*len(f.data)
	}
	buf := make([]byte, headerSize, size)
	buf[0] = byte(f.kind)
	binary.LittleEndian.PutUint32(buf[4:], uint32(int32(f.src)))
	binary.LittleEndian.PutUint32(buf[8:], uint32(int32(f.dst)))
	binary.LittleEndian.PutUint32(buf[12:], uint32(f.tag))
	if f.kind == kindData {
		for _, v := range f.data {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
		}
		return buf
	}
	return append(buf, f.text...)
}

func decodeFrame(msg []byte) (frame, error) {
	if len(msg) < headerSize {
		return frame{}, fmt.Errorf("short frame of %d bytes", len(msg))
	}
	f := frame{
		kind: frameKind(msg[0]),
		src:  int(int32(binary.LittleEndian.Uint32(msg[4:]))),
		dst:  int(int32(binary.LittleEndian.Uint32(msg[8:]))),
		tag:  cluster.Tag(binary.LittleEndian.Uint32(msg[12:])),
	}
	body := msg[headerSize:]
	switch f.kind {
	case kindData:
		if len(body)%4 != 0 {
			return frame{}, fmt.Errorf("data frame body of %d bytes", len(body))
		}
		f.data = make([]int32, len(body)/4)
		for i := range f.data {
			f.data[i] = int32(binary.LittleEndian.Uint32(body[4*i:]))
		}
	case kindWelcome, kindAbort:
		f.text = string(body)
	default:
		return frame{}, fmt.Errorf("unknown frame kind %d", f.kind)
	}
	return f, nil
}

// Option configures a Coordinator or a worker connection.
type Option func(*options)

type options struct {
	logger *log.Logger
	jobID  string
}

// WithLogger sets the logger for connection lifecycle messages.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithJobID sets the job identifier. On a Coordinator it replaces the
// generated one; on Dial it is presented to the coordinator, which rejects
// workers of another job.
func WithJobID(id string) Option {
	return func(o *options) {
		o.jobID = id
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
