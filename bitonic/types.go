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
	"errors"
	"fmt"
	"unsafe"
)

// Key is the set of element types the network sorts.
type Key interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// Errors reported by the engines. Callers match them with errors.Is; there is
// no recoverable path, a sort either completes or fails as a whole.
var (
	// ErrInvalidPrecondition is returned when a length or worker count
	// reaching the network is not eligible (not a power of two, zero, ...).
	ErrInvalidPrecondition = errors.New("bitonic: invalid precondition")

	// ErrAllocation is returned when a sort or merge buffer cannot be
	// allocated.
	ErrAllocation = errors.New("bitonic: allocation failure")
)

// MaxValue returns the maximum representable value for the type. It is used
// as the padding sentinel.
func MaxValue[T Key]() T {
	var zero T
	bits := unsafe.Sizeof(zero) * 8
	return ^(T(-1) << (bits - 1))
}

// MinValue returns the minimum representable value for the type.
func MinValue[T Key]() T {
	var zero T
	bits := unsafe.Sizeof(zero) * 8
	return T(-1) << (bits - 1)
}

// Alloc returns a zeroed slice of n elements. Impossible sizes (negative or
// larger than the address space) are reported as ErrAllocation instead of
// crashing the process, so distributed callers can abort their group.
func Alloc[T Key](n int) (buf []T, err error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrAllocation, n)
	}
	defer func() {
		if r := recover(); r != nil {
			buf = nil
			err = fmt.Errorf("%w: %d elements: %v", ErrAllocation, n, r)
		}
	}()
	return make([]T, n), nil
}
