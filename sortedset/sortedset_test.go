package sortedset

import (
	"cmp"
	"slices"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlice(t *testing.T) {
	t.Parallel()

	s := NewSlice(cmp.Compare[int])

	assert.True(t, s.Add(5))
	assert.True(t, s.Add(1))
	assert.True(t, s.Add(9))
	assert.False(t, s.Add(5))

	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Has(1))
	assert.False(t, s.Has(2))

	assert.Equal(t, []int{5, 9}, slices.Collect(s.AtLeast(2)))
	assert.Equal(t, []int{5, 9}, slices.Collect(s.AtLeast(5)))
	assert.Equal(t, []int{5, 1}, slices.Collect(s.AtMost(5)))
	assert.Equal(t, []int{1}, slices.Collect(s.AtMost(2)))

	assert.Equal(t, 2, s.CountAtLeast(2))
	assert.Equal(t, 2, s.CountAtLeast(5))
	assert.Equal(t, 2, s.CountAtMost(5))
	assert.Equal(t, 1, s.CountAtMost(2))

	assert.True(t, s.Del(5))
	assert.False(t, s.Del(5))
	assert.Equal(t, []int{1, 9}, slices.Collect(s.AtLeast(0)))
}

// The slice set and a brute-force mirror agree on a random schedule.
func TestSliceAgainstMirror(t *testing.T) {
	t.Parallel()

	const seed = 1234567890

	var (
		fake   = gofakeit.New(seed)
		s      = NewSlice(cmp.Compare[int])
		mirror = map[int]bool{}
	)

	for i := 0; i < 1500; i++ {
		k := fake.Number(0, 200)
		if fake.Bool() {
			require.Equal(t, !mirror[k], s.Add(k))
			mirror[k] = true
		} else {
			require.Equal(t, mirror[k], s.Del(k))
			delete(mirror, k)
		}

		require.Equal(t, len(mirror), s.Len())

		probe := fake.Number(-10, 210)
		var ge, le int
		for k := range mirror {
			if k >= probe {
				ge++
			}
			if k <= probe {
				le++
			}
		}
		require.Equal(t, ge, s.CountAtLeast(probe))
		require.Equal(t, le, s.CountAtMost(probe))
	}
}
