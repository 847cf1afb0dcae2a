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
	"math"
	"math/rand"
	"slices"
	"testing"
)

func randomInt32(n int, seed int64) []int32 {
	r := rand.New(rand.NewSource(seed))
	data := make([]int32, n)
	for i := range data {
		data[i] = r.Int31n(10000) - 5000
	}
	return data
}

func TestMaxValue(t *testing.T) {
	if got := MaxValue[int8](); got != math.MaxInt8 {
		t.Errorf("MaxValue[int8]() = %d, want %d", got, math.MaxInt8)
	}
	if got := MaxValue[int16](); got != math.MaxInt16 {
		t.Errorf("MaxValue[int16]() = %d, want %d", got, math.MaxInt16)
	}
	if got := MaxValue[int32](); got != math.MaxInt32 {
		t.Errorf("MaxValue[int32]() = %d, want %d", got, math.MaxInt32)
	}
	if got := MaxValue[int64](); got != math.MaxInt64 {
		t.Errorf("MaxValue[int64]() = %d, want %d", got, math.MaxInt64)
	}
	if got := MinValue[int32](); got != math.MinInt32 {
		t.Errorf("MinValue[int32]() = %d, want %d", got, math.MinInt32)
	}
}

func TestCompareExchange(t *testing.T) {
	tests := []struct {
		a, b      int32
		ascending bool
		wantA     int32
		wantB     int32
	}{
		{5, 3, true, 3, 5},
		{3, 5, true, 3, 5},
		{3, 5, false, 5, 3},
		{5, 3, false, 5, 3},
		{4, 4, true, 4, 4},
		{4, 4, false, 4, 4},
	}
	for _, tt := range tests {
		a, b := tt.a, tt.b
		CompareExchange(&a, &b, tt.ascending)
		if a != tt.wantA || b != tt.wantB {
			t.Errorf("CompareExchange(%d, %d, %v) = (%d, %d), want (%d, %d)",
				tt.a, tt.b, tt.ascending, a, b, tt.wantA, tt.wantB)
		}
	}
}

func TestStages(t *testing.T) {
	var got []Stage
	for s := range Stages(8) {
		got = append(got, s)
	}
	want := []Stage{
		{2, 1},
		{4, 2}, {4, 1},
		{8, 4}, {8, 2}, {8, 1},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Stages(8) = %v, want %v", got, want)
	}
	if StageCount(8) != len(want) {
		t.Errorf("StageCount(8) = %d, want %d", StageCount(8), len(want))
	}
	if StageCount(1) != 0 {
		t.Errorf("StageCount(1) = %d, want 0", StageCount(1))
	}
}

// TestStagePairing checks that every stage compares each unordered pair
// {i, i^j} exactly once and touches every index.
func TestStagePairing(t *testing.T) {
	for _, n := range []int{2, 4, 16, 64, 256} {
		for s := range Stages(n) {
			seen := make([]int, n)
			for i, p := range s.Pairs(n) {
				if p != s.Partner(i) || s.Partner(p) != i {
					t.Fatalf("n=%d stage %v: pair (%d, %d) is not symmetric", n, s, i, p)
				}
				seen[i]++
				seen[p]++
			}
			for i, c := range seen {
				if c != 1 {
					t.Fatalf("n=%d stage %v: index %d compared %d times, want 1", n, s, i, c)
				}
			}
		}
	}
}

func TestStageDirection(t *testing.T) {
	s := Stage{K: 4, J: 2}
	for i, want := range []bool{true, true, true, true, false, false, false, false} {
		if got := s.Ascending(i); got != want {
			t.Errorf("Stage%v.Ascending(%d) = %v, want %v", s, i, got, want)
		}
	}
}

func TestNextEligibleLength(t *testing.T) {
	tests := []struct {
		n, workers int
		want       int
	}{
		{1, 1, 1},
		{3, 1, 4},
		{4, 1, 4},
		{5, 1, 8},
		{1000, 1, 1024},
		{1, 4, 4},
		{3, 8, 8},
		{9, 2, 16},
		{1024, 8, 1024},
	}
	for _, tt := range tests {
		got, err := NextEligibleLength(tt.n, tt.workers)
		if err != nil {
			t.Errorf("NextEligibleLength(%d, %d) error: %v", tt.n, tt.workers, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NextEligibleLength(%d, %d) = %d, want %d", tt.n, tt.workers, got, tt.want)
		}
	}
}

func TestNextEligibleLengthInvalid(t *testing.T) {
	for _, tt := range []struct{ n, workers int }{{0, 1}, {-1, 1}, {8, 0}, {8, 3}, {8, 6}} {
		if _, err := NextEligibleLength(tt.n, tt.workers); !errors.Is(err, ErrInvalidPrecondition) {
			t.Errorf("NextEligibleLength(%d, %d) error = %v, want ErrInvalidPrecondition", tt.n, tt.workers, err)
		}
	}
}

func TestPad(t *testing.T) {
	data := []int32{9, 1, 7}
	padded, n, err := Pad(data, 1)
	if err != nil {
		t.Fatalf("Pad: %v", err)
	}
	if n != 3 {
		t.Errorf("original count = %d, want 3", n)
	}
	want := []int32{9, 1, 7, math.MaxInt32}
	if !slices.Equal(padded, want) {
		t.Errorf("Pad([9 1 7]) = %v, want %v", padded, want)
	}

	exact := []int32{1, 2, 3, 4}
	padded, _, err = Pad(exact, 1)
	if err != nil {
		t.Fatalf("Pad: %v", err)
	}
	if &padded[0] != &exact[0] {
		t.Error("Pad of an eligible length should return the input slice")
	}
}

func TestPadLeavesSpareCapacity(t *testing.T) {
	backing := []int32{9, 1, 7, 123}
	padded, _, err := Pad(backing[:3], 2)
	if err != nil {
		t.Fatalf("Pad: %v", err)
	}
	if &padded[0] == &backing[0] {
		t.Error("Pad reused the caller's array for a padded result")
	}
	if backing[3] != 123 {
		t.Errorf("Pad wrote %d past len into the caller's array", backing[3])
	}
}

func TestSortPaddedLeavesSpareCapacity(t *testing.T) {
	backing := []int32{9, 1, 7, 123}
	got, err := SortPadded(backing[:3])
	if err != nil {
		t.Fatalf("SortPadded: %v", err)
	}
	if want := []int32{1, 7, 9}; !slices.Equal(got, want) {
		t.Errorf("SortPadded = %v, want %v", got, want)
	}
	if backing[3] != 123 {
		t.Errorf("backing[3] = %d after SortPadded, want 123", backing[3])
	}
}

func TestAlloc(t *testing.T) {
	buf, err := Alloc[int32](16)
	if err != nil || len(buf) != 16 {
		t.Fatalf("Alloc(16) = len %d, %v", len(buf), err)
	}
	if _, err := Alloc[int32](-1); !errors.Is(err, ErrAllocation) {
		t.Errorf("Alloc(-1) error = %v, want ErrAllocation", err)
	}
	if _, err := Alloc[int64](math.MaxInt); !errors.Is(err, ErrAllocation) {
		t.Errorf("Alloc(MaxInt) error = %v, want ErrAllocation", err)
	}
}

func TestSortExamples(t *testing.T) {
	data := []int32{5, 3, 8, 1}
	if err := Sort(data); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if want := []int32{1, 3, 5, 8}; !slices.Equal(data, want) {
		t.Errorf("Sort([5 3 8 1]) = %v, want %v", data, want)
	}

	got, err := SortPadded([]int32{9, 1, 7})
	if err != nil {
		t.Fatalf("SortPadded: %v", err)
	}
	if want := []int32{1, 7, 9}; !slices.Equal(got, want) {
		t.Errorf("SortPadded([9 1 7]) = %v, want %v", got, want)
	}

	single := []int32{42}
	if err := Sort(single); err != nil || single[0] != 42 {
		t.Errorf("Sort([42]) = %v, %v", single, err)
	}
}

func TestSortRejectsNonPowerOfTwo(t *testing.T) {
	for _, n := range []int{0, 3, 6, 100} {
		data := make([]int32, n)
		if err := Sort(data); !errors.Is(err, ErrInvalidPrecondition) {
			t.Errorf("Sort(len %d) error = %v, want ErrInvalidPrecondition", n, err)
		}
		if err := SortRecursive(data, true); !errors.Is(err, ErrInvalidPrecondition) {
			t.Errorf("SortRecursive(len %d) error = %v, want ErrInvalidPrecondition", n, err)
		}
	}
}

func TestSortMatchesStdlib(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8, 16, 64, 256, 1024, 4096} {
		data := randomInt32(n, int64(n))
		want := slices.Clone(data)
		slices.Sort(want)

		if err := Sort(data); err != nil {
			t.Fatalf("Sort(n=%d): %v", n, err)
		}
		if !slices.Equal(data, want) {
			t.Errorf("Sort(n=%d) mismatch with slices.Sort", n)
		}
	}
}

func TestSortRecursiveMatchesIterative(t *testing.T) {
	for _, n := range []int{1, 2, 8, 32, 512, 2048} {
		iterative := randomInt32(n, 7)
		recursive := slices.Clone(iterative)
		if err := Sort(iterative); err != nil {
			t.Fatalf("Sort: %v", err)
		}
		if err := SortRecursive(recursive, true); err != nil {
			t.Fatalf("SortRecursive: %v", err)
		}
		if !slices.Equal(iterative, recursive) {
			t.Errorf("n=%d: recursive and iterative networks disagree", n)
		}
	}
}

func TestSortRecursiveDescending(t *testing.T) {
	data := randomInt32(128, 3)
	if err := SortRecursive(data, false); err != nil {
		t.Fatalf("SortRecursive: %v", err)
	}
	for i := 1; i < len(data); i++ {
		if data[i] > data[i-1] {
			t.Fatalf("descending sort out of order at %d: %d > %d", i, data[i], data[i-1])
		}
	}
}

func TestMerge(t *testing.T) {
	data := []int64{1, 4, 6, 9, 8, 5, 3, 2}
	if err := Merge(data, true); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if want := []int64{1, 2, 3, 4, 5, 6, 8, 9}; !slices.Equal(data, want) {
		t.Errorf("Merge(bitonic) = %v, want %v", data, want)
	}
}

func TestSortIdempotent(t *testing.T) {
	data := randomInt32(1024, 11)
	if err := Sort(data); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	again := slices.Clone(data)
	if err := Sort(again); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if !slices.Equal(data, again) {
		t.Error("sorting a sorted sequence changed it")
	}
}

// TestSortPaddedTransparency checks that padded sorts never leak the sentinel
// and keep the input length.
func TestSortPaddedTransparency(t *testing.T) {
	for _, n := range []int{1, 3, 5, 7, 100, 1000, 1025} {
		data := randomInt32(n, int64(n))
		want := slices.Clone(data)
		slices.Sort(want)

		got, err := SortPadded(data)
		if err != nil {
			t.Fatalf("SortPadded(n=%d): %v", n, err)
		}
		if len(got) != n {
			t.Fatalf("SortPadded(n=%d) returned %d elements", n, len(got))
		}
		if slices.Contains(got, math.MaxInt32) {
			t.Errorf("SortPadded(n=%d) leaked the sentinel", n)
		}
		if !slices.Equal(got, want) {
			t.Errorf("SortPadded(n=%d) mismatch with slices.Sort", n)
		}
	}
}

// TestSortPaddedKeepsRealMaxValues sorts inputs that already contain the
// sentinel value; padding must not swallow them.
func TestSortPaddedKeepsRealMaxValues(t *testing.T) {
	data := []int32{math.MaxInt32, -1, math.MaxInt32, 0, math.MinInt32}
	got, err := SortPadded(data)
	if err != nil {
		t.Fatalf("SortPadded: %v", err)
	}
	want := []int32{math.MinInt32, -1, 0, math.MaxInt32, math.MaxInt32}
	if !slices.Equal(got, want) {
		t.Errorf("SortPadded = %v, want %v", got, want)
	}
}

func TestSortInt8(t *testing.T) {
	data := []int8{127, -128, 0, 5, -5, 3, 100}
	got, err := SortPadded(data)
	if err != nil {
		t.Fatalf("SortPadded: %v", err)
	}
	want := []int8{-128, -5, 0, 3, 5, 100, 127}
	if !slices.Equal(got, want) {
		t.Errorf("SortPadded(int8) = %v, want %v", got, want)
	}
}

func TestIsSorted(t *testing.T) {
	if !IsSorted([]int32{}) || !IsSorted([]int32{1}) || !IsSorted([]int32{1, 1, 2}) {
		t.Error("IsSorted rejected a sorted slice")
	}
	if IsSorted([]int32{2, 1}) {
		t.Error("IsSorted accepted an unsorted slice")
	}
}
