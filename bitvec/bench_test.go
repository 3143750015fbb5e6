package bitvec

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

const benchBits = 1024

func getVectors(total int) ([]*Dense, []*Sparse) {
	const seed = 1234567890

	var (
		fake    = gofakeit.New(seed)
		dense   = make([]*Dense, total)
		sparse  = make([]*Sparse, total)
		density = 16
	)

	for i := range dense {
		var ranks []int
		for b := 0; b < benchBits; b++ {
			if fake.Number(0, density) == 0 {
				ranks = append(ranks, b)
			}
		}
		dense[i] = From(benchBits, ranks)
		sparse[i] = SparseFrom(benchBits, ranks)
	}

	return dense, sparse
}

func BenchmarkDense_SubsetOf(b *testing.B) {
	dense, _ := getVectors(256)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = dense[i%256].SubsetOf(dense[(i+1)%256])
	}
}

func BenchmarkSparse_Subset(b *testing.B) {
	_, sparse := getVectors(256)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = Subset(sparse[i%256], sparse[(i+1)%256])
	}
}

func BenchmarkDense_Cmp(b *testing.B) {
	dense, _ := getVectors(256)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = dense[i%256].Cmp(dense[(i+1)%256])
	}
}

func BenchmarkDense_Popcount(b *testing.B) {
	dense, _ := getVectors(256)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = dense[i%256].Popcount()
	}
}

func BenchmarkDense_Key(b *testing.B) {
	dense, _ := getVectors(256)

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = dense[i%256].Key()
	}
}
