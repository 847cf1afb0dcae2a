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

// Package intio reads and writes the whitespace-separated integer files the
// sorters consume and produce.
package intio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// ErrInvalidData is returned for tokens that are not signed 32-bit integers.
var ErrInvalidData = errors.New("invalid data in input")

// ReadInts parses every whitespace-separated token of r as an int32.
func ReadInts(r io.Reader) ([]int32, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 1<<20)
	sc.Split(bufio.ScanWords)

	values := make([]int32, 0, 1024)
	for sc.Scan() {
		v, err := strconv.ParseInt(sc.Text(), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d %q", ErrInvalidData, len(values)+1, sc.Text())
		}
		values = append(values, int32(v))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return values, nil
}

// ReadFile opens path and parses it with ReadInts.
func ReadFile(path string) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	values, err := ReadInts(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// WriteInts writes values on one line separated by single spaces, followed
// by a newline.
func WriteInts(w io.Writer, values []int32) error {
	bw := bufio.NewWriterSize(w, 64<<10)
	buf := make([]byte, 0, 12)
	for i, v := range values {
		if i > 0 {
			if err := bw.WriteByte(' '); err != nil {
				return err
			}
		}
		buf = strconv.AppendInt(buf[:0], int64(v), 10)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile writes values to path with WriteInts, creating the parent
// directory if needed. Nothing is left at path if writing fails.
func WriteFile(path string, values []int32) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	return WriteInts(f, values)
}
