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
	"fmt"
	"math"
)

// NextEligibleLength returns the smallest power of two >= n that is also
// divisible by workers. Single-process engines pass workers = 1.
//
// workers must itself be a power of two: a power of two is only divisible by
// powers of two, so any other worker count has no eligible length.
func NextEligibleLength(n, workers int) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: length %d, want >= 1", ErrInvalidPrecondition, n)
	}
	if !IsPowerOfTwo(workers) {
		return 0, fmt.Errorf("%w: worker count %d is not a power of two", ErrInvalidPrecondition, workers)
	}

	p := 1
	for p < n {
		if p > math.MaxInt/2 {
			return 0, fmt.Errorf("%w: length %d has no power-of-two bound", ErrAllocation, n)
		}
		p <<= 1
	}
	for p%workers != 0 {
		p <<= 1
	}
	return p, nil
}

// Pad extends data to NextEligibleLength(len(data), workers) and fills the
// added slots with MaxValue. It returns the padded slice and the original
// length. data itself is returned when its length is already eligible;
// otherwise the result is a new array and data, including any spare
// capacity past len(data), is left untouched.
func Pad[T Key](data []T, workers int) ([]T, int, error) {
	n := len(data)
	padded, err := NextEligibleLength(n, workers)
	if err != nil {
		return nil, 0, err
	}
	if padded == n {
		return data, n, nil
	}

	out, err := Alloc[T](padded)
	if err != nil {
		return nil, 0, err
	}
	copy(out, data)
	sentinel := MaxValue[T]()
	for i := n; i < padded; i++ {
		out[i] = sentinel
	}
	return out, n, nil
}

// Truncate drops the padding of an ascending-sorted padded slice.
func Truncate[T Key](data []T, originalCount int) []T {
	if originalCount > len(data) {
		panic("bitonic: originalCount exceeds padded length")
	}
	return data[:originalCount:originalCount]
}
