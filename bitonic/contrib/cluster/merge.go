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
	"fmt"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
)

// MergeRuns sorts buf, made of consecutive ascending runs of width elements,
// with a bottom-up merge: the run width doubles each pass until it covers
// buf, adjacent runs are merged into scratch with two pointers, and the two
// buffers swap roles after every pass. The result ends up in buf.
// scratch must be at least as long as buf.
func MergeRuns[T bitonic.Key](buf, scratch []T, width int) error {
	n := len(buf)
	if width < 1 {
		return fmt.Errorf("%w: run width %d", bitonic.ErrInvalidPrecondition, width)
	}
	if len(scratch) < n {
		return fmt.Errorf("%w: scratch has %d elements, want %d", bitonic.ErrInvalidPrecondition, len(scratch), n)
	}

	if n == 0 {
		return nil
	}

	cur, next := buf, scratch[:n]
	for ; width < n; width *= 2 {
		for base := 0; base < n; base += 2 * width {
			mid := min(base+width, n)
			end := min(base+2*width, n)
			mergeInto(next[base:end], cur[base:mid], cur[mid:end])
		}
		cur, next = next, cur
	}
	if &cur[0] != &buf[0] {
		copy(buf, cur)
	}
	return nil
}

// mergeInto writes the ascending merge of a and b to dst. On ties the
// element of a goes first.
func mergeInto[T bitonic.Key](dst, a, b []T) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if a[i] <= b[j] {
			dst[k] = a[i]
			i++
		} else {
			dst[k] = b[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], a[i:])
	copy(dst[k:], b[j:])
}

// MergeSplit merges two ascending buffers of equal length and keeps one half
// of the 2n-element merge in local: the lower half when keepLow, the upper
// half otherwise. Both halves are kept ascending so the next stage can merge
// them again. scratch must hold len(local) elements; only O(n) work is done
// since the discarded half is never produced.
func MergeSplit[T bitonic.Key](local, remote, scratch []T, keepLow bool) error {
	n := len(local)
	if len(remote) != n || len(scratch) < n {
		return fmt.Errorf("%w: merge-split of %d with %d elements (scratch %d)",
			bitonic.ErrInvalidPrecondition, n, len(remote), len(scratch))
	}
	out := scratch[:n]
	if keepLow {
		i, j := 0, 0
		for k := range n {
			if j >= n || (i < n && local[i] <= remote[j]) {
				out[k] = local[i]
				i++
			} else {
				out[k] = remote[j]
				j++
			}
		}
	} else {
		i, j := n-1, n-1
		for k := n - 1; k >= 0; k-- {
			if j < 0 || (i >= 0 && local[i] > remote[j]) {
				out[k] = local[i]
				i--
			} else {
				out[k] = remote[j]
				j--
			}
		}
	}
	copy(local, out)
	return nil
}
