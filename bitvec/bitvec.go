// Package bitvec implements fixed-width bit vectors used as set fingerprints.
//
// Two interchangeable representations are provided: Dense packs the n bits of
// the universe into 64-bit words, Sparse keeps only the set bits in a
// compressed roaring bitmap. Both satisfy Vec, and the package-level Subset,
// Equal, Cmp and CmpUnder operations accept any mix of the two.
//
// A vector is permutation-neutral storage: bit i means "the element with rank
// i is in the set" for whatever permutation produced the vector. Ordering a
// collection of vectors under a different permutation is the comparator's
// business (CmpUnder), not the vector's.
package bitvec

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hideo55/go-popcount"
)

const wordWidth = 64

// Vec is a fixed-width vector of Size bits.
type Vec interface {
	// Size returns the width of the vector in bits.
	Size() int
	// Get reports whether bit i is set.
	Get(i int) bool
	// Popcount returns the number of set bits.
	Popcount() int
	// Bits yields the set bit positions in ascending order.
	Bits() iter.Seq[int]
}

// Dense is a bit vector stored as ceil(n/64) machine words.
//
// The block width is a full word: the 60-bit blocks sometimes seen in other
// implementations exist to keep shifted values inside a signed 64-bit
// integer, which is not a concern for uint64.
type Dense struct {
	n     int
	words []uint64
}

// NewDense returns an empty vector of n bits.
func NewDense(n int) *Dense {
	return &Dense{
		n:     n,
		words: make([]uint64, (n+wordWidth-1)/wordWidth),
	}
}

// From returns an n-bit vector with the given bit positions set.
func From(n int, ranks []int) *Dense {
	v := NewDense(n)
	for _, r := range ranks {
		v.Set(r)
	}
	return v
}

// Size returns the width of the vector in bits.
func (v *Dense) Size() int {
	return v.n
}

// Set sets bit i.
func (v *Dense) Set(i int) {
	v.words[i/wordWidth] |= 1 << (i % wordWidth)
}

// Get reports whether bit i is set.
func (v *Dense) Get(i int) bool {
	return v.words[i/wordWidth]>>(i%wordWidth)&1 == 1
}

// Popcount returns the number of set bits.
func (v *Dense) Popcount() int {
	return int(popcount.CountSlice(v.words))
}

// Bits yields the set bit positions in ascending order.
func (v *Dense) Bits() iter.Seq[int] {
	return func(yield func(int) bool) {
		for wi, w := range v.words {
			for w != 0 {
				b := bits.TrailingZeros64(w)
				if !yield(wi*wordWidth + b) {
					return
				}
				w &= w - 1
			}
		}
	}
}

// EqualTo reports whether two dense vectors hold the same bits.
func (v *Dense) EqualTo(o *Dense) bool {
	if v.n != o.n {
		return false
	}
	for i, w := range v.words {
		if w != o.words[i] {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every bit set in v is also set in o.
func (v *Dense) SubsetOf(o *Dense) bool {
	for i, w := range v.words {
		if w&^o.words[i] != 0 {
			return false
		}
	}
	return true
}

// Cmp orders two dense vectors of the same width by the integer value of
// their bit patterns, bit 0 being the least significant. Adding a bit can
// only grow the value, so the subset partial order embeds into this total
// order.
func (v *Dense) Cmp(o *Dense) int {
	for i := len(v.words) - 1; i >= 0; i-- {
		switch a, b := v.words[i], o.words[i]; {
		case a > b:
			return 1
		case a < b:
			return -1
		}
	}
	return 0
}

// Key returns the bit pattern as a string, usable as a map key. Two vectors
// of the same width have equal keys exactly when they hold the same bits.
func (v *Dense) Key() string {
	var sb strings.Builder
	sb.Grow(len(v.words) * 8)
	for _, w := range v.words {
		for s := 0; s < wordWidth; s += 8 {
			sb.WriteByte(byte(w >> s))
		}
	}
	return sb.String()
}

// String renders the set bit positions, e.g. "{0, 5, 17}".
func (v *Dense) String() string {
	return format(v)
}

// Sparse is a bit vector that stores only its set bits, in a compressed
// roaring bitmap. It trades bit-level locality for memory on very large,
// mostly-empty universes.
type Sparse struct {
	n  int
	bm *roaring.Bitmap
}

// NewSparse returns an empty sparse vector of n bits.
func NewSparse(n int) *Sparse {
	return &Sparse{
		n:  n,
		bm: roaring.New(),
	}
}

// SparseFrom returns an n-bit sparse vector with the given bit positions set.
func SparseFrom(n int, ranks []int) *Sparse {
	v := NewSparse(n)
	for _, r := range ranks {
		v.Set(r)
	}
	return v
}

// Size returns the width of the vector in bits.
func (v *Sparse) Size() int {
	return v.n
}

// Set sets bit i.
func (v *Sparse) Set(i int) {
	v.bm.Add(uint32(i))
}

// Get reports whether bit i is set.
func (v *Sparse) Get(i int) bool {
	return v.bm.Contains(uint32(i))
}

// Popcount returns the number of set bits.
func (v *Sparse) Popcount() int {
	return int(v.bm.GetCardinality())
}

// Bits yields the set bit positions in ascending order.
func (v *Sparse) Bits() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := v.bm.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// String renders the set bit positions, e.g. "{0, 5, 17}".
func (v *Sparse) String() string {
	return format(v)
}

// Subset reports whether every bit set in a is also set in b.
func Subset(a, b Vec) bool {
	switch x := a.(type) {
	case *Dense:
		if y, ok := b.(*Dense); ok {
			return x.SubsetOf(y)
		}
	case *Sparse:
		if y, ok := b.(*Sparse); ok {
			return x.bm.AndCardinality(y.bm) == x.bm.GetCardinality()
		}
	}
	for i := range a.Bits() {
		if !b.Get(i) {
			return false
		}
	}
	return true
}

// Equal reports whether two vectors of the same width hold the same bits.
func Equal(a, b Vec) bool {
	switch x := a.(type) {
	case *Dense:
		if y, ok := b.(*Dense); ok {
			return x.EqualTo(y)
		}
	case *Sparse:
		if y, ok := b.(*Sparse); ok {
			return x.bm.Equals(y.bm)
		}
	}
	return a.Popcount() == b.Popcount() && Subset(a, b)
}

// Cmp orders two vectors of the same width by the integer value of their bit
// patterns, bit 0 being the least significant.
func Cmp(a, b Vec) int {
	if x, ok := a.(*Dense); ok {
		if y, ok := b.(*Dense); ok {
			return x.Cmp(y)
		}
	}
	for i := a.Size() - 1; i >= 0; i-- {
		switch av, bv := a.Get(i), b.Get(i); {
		case av && !bv:
			return 1
		case !av && bv:
			return -1
		}
	}
	return 0
}

// CmpUnder orders two vectors by the integer value their bit patterns take
// under a reinterpreting permutation: order[rank] is the stored bit index of
// the element holding that rank, and rank 0 is the least significant
// position. CmpUnder(identity, a, b) agrees with Cmp(a, b).
func CmpUnder(order []int, a, b Vec) int {
	for r := len(order) - 1; r >= 0; r-- {
		i := order[r]
		switch av, bv := a.Get(i), b.Get(i); {
		case av && !bv:
			return 1
		case !av && bv:
			return -1
		}
	}
	return 0
}

func format(v Vec) string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	for i := range v.Bits() {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "%d", i)
	}
	sb.WriteByte('}')
	return sb.String()
}
