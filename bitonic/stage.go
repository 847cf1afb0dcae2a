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

package bitonic

import (
	"iter"
	"math/bits"
)

// Stage identifies one pass (k, j) of the network. K is the size of the
// bitonic block being finalized and J the compare distance inside it.
type Stage struct {
	K int
	J int
}

// Partner returns the index compared with i during the stage.
func (s Stage) Partner(i int) int {
	return i ^ s.J
}

// Ascending reports whether the pair owned by i is ordered ascending.
func (s Stage) Ascending(i int) bool {
	return i&s.K == 0
}

// Pairs yields every unordered pair {i, i^J} of an n-element network exactly
// once, smaller index first.
func (s Stage) Pairs(n int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for i := range n {
			p := i ^ s.J
			if p <= i || p >= n {
				continue
			}
			if !yield(i, p) {
				return
			}
		}
	}
}

// Stages yields the stages of an n-element network in execution order:
// k = 2, 4, ..., n and, for each k, j = k/2, ..., 1.
func Stages(n int) iter.Seq[Stage] {
	return func(yield func(Stage) bool) {
		for k := 2; k <= n; k <<= 1 {
			for j := k >> 1; j > 0; j >>= 1 {
				if !yield(Stage{K: k, J: j}) {
					return
				}
			}
		}
	}
}

// StageCount returns the number of stages of an n-element network,
// log2(n)*(log2(n)+1)/2. n must be a power of two.
func StageCount(n int) int {
	if n <= 1 {
		return 0
	}
	lg := Log2(n)
	return lg * (lg + 1) / 2
}

// ApplyStage compare-exchanges every pair of stage s owned by an index in
// [lo, hi). Pairs are owned by their smaller index, so disjoint index ranges
// never touch the same pair and may run concurrently.
func ApplyStage[T Key](data []T, s Stage, lo, hi int) {
	for i := lo; i < hi; i++ {
		p := i ^ s.J
		if p > i {
			CompareExchange(&data[i], &data[p], s.Ascending(i))
		}
	}
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns floor(log2(n)) for n > 0.
func Log2(n int) int {
	return bits.Len(uint(n)) - 1
}
