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

import "fmt"

// Sort sorts data ascending in place with the iterative stage loop.
// len(data) must be a power of two; use SortPadded for arbitrary lengths.
func Sort[T Key](data []T) error {
	n := len(data)
	if !IsPowerOfTwo(n) {
		return fmt.Errorf("%w: network length %d is not a power of two", ErrInvalidPrecondition, n)
	}
	for s := range Stages(n) {
		ApplyStage(data, s, 0, n)
	}
	return nil
}

// SortRecursive sorts data in place in the requested direction with the
// classic build-then-merge formulation: the lower half is sorted ascending,
// the upper half descending, and the resulting bitonic sequence merged.
// Recursion depth is log2(len(data)).
func SortRecursive[T Key](data []T, ascending bool) error {
	if !IsPowerOfTwo(len(data)) {
		return fmt.Errorf("%w: network length %d is not a power of two", ErrInvalidPrecondition, len(data))
	}
	sortRecursive(data, ascending)
	return nil
}

func sortRecursive[T Key](data []T, ascending bool) {
	n := len(data)
	if n <= 1 {
		return
	}
	mid := n / 2
	sortRecursive(data[:mid], true)
	sortRecursive(data[mid:], false)
	merge(data, ascending)
}

// Merge turns a bitonic sequence of power-of-two length into a sorted one.
func Merge[T Key](data []T, ascending bool) error {
	if !IsPowerOfTwo(len(data)) {
		return fmt.Errorf("%w: merge length %d is not a power of two", ErrInvalidPrecondition, len(data))
	}
	merge(data, ascending)
	return nil
}

func merge[T Key](data []T, ascending bool) {
	n := len(data)
	if n <= 1 {
		return
	}
	mid := n / 2
	for i := range mid {
		CompareExchange(&data[i], &data[i+mid], ascending)
	}
	merge(data[:mid], ascending)
	merge(data[mid:], ascending)
}

// SortPadded sorts a slice of any length. It pads data to a power of two,
// runs the network and returns the first len(data) elements. The result may
// share the backing array of data.
func SortPadded[T Key](data []T) ([]T, error) {
	if len(data) <= 1 {
		return data, nil
	}
	padded, n, err := Pad(data, 1)
	if err != nil {
		return nil, err
	}
	if err := Sort(padded); err != nil {
		return nil, err
	}
	return Truncate(padded, n), nil
}

// IsSorted reports whether data is in ascending order.
func IsSorted[T Key](data []T) bool {
	for i := 1; i < len(data); i++ {
		if data[i] < data[i-1] {
			return false
		}
	}
	return true
}
