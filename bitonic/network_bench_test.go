package bitonic

import "testing"

func BenchmarkSort_1024(b *testing.B) {
	benchmarkSort(b, 1024, false)
}

func BenchmarkSort_65536(b *testing.B) {
	benchmarkSort(b, 1<<16, false)
}

func BenchmarkSortRecursive_1024(b *testing.B) {
	benchmarkSort(b, 1024, true)
}

func BenchmarkSortRecursive_65536(b *testing.B) {
	benchmarkSort(b, 1<<16, true)
}

func benchmarkSort(b *testing.B, n int, recursive bool) {
	ref := randomInt32(n, 1)
	data := make([]int32, n)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(data, ref)
		if recursive {
			_ = SortRecursive(data, true)
		} else {
			_ = Sort(data)
		}
	}
}
