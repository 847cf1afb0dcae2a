package parallel

import (
	"fmt"
	"testing"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
)

func BenchmarkSort(b *testing.B) {
	n := 1 << 18
	ref := randomInt32(n, 1)
	data := make([]int32, n)

	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			copy(data, ref)
			_ = bitonic.Sort(data)
		}
	})

	for _, threads := range []int{2, 4, 8} {
		s := New(threads)
		b.Run(fmt.Sprintf("threads=%d", threads), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				copy(data, ref)
				_ = Sort(s, data)
			}
		})
		s.Close()
	}
}
