package redblack

import (
	"cmp"
	"slices"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntTree() *Tree[int] {
	return New(cmp.Compare[int])
}

func checkInvariants(t *testing.T, tr *Tree[int]) {
	t.Helper()
	require.NoError(t, tr.CheckCoherence())
	require.NoError(t, tr.CheckRedBlack())
	require.NoError(t, tr.CheckSizes())
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	tr := newIntTree()

	assert.Equal(t, 0, tr.Len())
	assert.False(t, tr.Has(1))
	assert.False(t, tr.Del(1))
	assert.Equal(t, 0, tr.CountAtLeast(0))
	assert.Equal(t, 0, tr.CountAtMost(0))
	assert.Empty(t, slices.Collect(tr.AtLeast(0)))
	assert.Empty(t, slices.Collect(tr.AtMost(0)))
	checkInvariants(t, tr)
}

func TestAddDel(t *testing.T) {
	t.Parallel()

	tr := newIntTree()

	assert.True(t, tr.Add(5))
	assert.False(t, tr.Add(5), "second add of the same key")
	assert.True(t, tr.Add(3))
	assert.True(t, tr.Add(8))

	assert.Equal(t, 3, tr.Len())
	assert.True(t, tr.Has(3))
	assert.False(t, tr.Has(4))
	checkInvariants(t, tr)

	assert.True(t, tr.Del(3))
	assert.False(t, tr.Del(3), "second delete of the same key")
	assert.False(t, tr.Has(3))
	assert.Equal(t, 2, tr.Len())
	checkInvariants(t, tr)
}

func TestOrderedIteration(t *testing.T) {
	t.Parallel()

	tr := newIntTree()
	for _, k := range []int{50, 20, 80, 10, 30, 70, 90, 60} {
		tr.Add(k)
	}

	for _, tcase := range []*struct {
		Key       int
		ExpUp     []int
		ExpDown   []int
		ExpCntUp  int
		ExpCntDwn int
	}{
		{0, []int{10, 20, 30, 50, 60, 70, 80, 90}, nil, 8, 0},
		{10, []int{10, 20, 30, 50, 60, 70, 80, 90}, []int{10}, 8, 1},
		{55, []int{60, 70, 80, 90}, []int{50, 30, 20, 10}, 4, 4},
		{60, []int{60, 70, 80, 90}, []int{60, 50, 30, 20, 10}, 4, 5},
		{90, []int{90}, []int{90, 80, 70, 60, 50, 30, 20, 10}, 1, 8},
		{99, nil, []int{90, 80, 70, 60, 50, 30, 20, 10}, 0, 8},
	} {
		assert.Equal(t, tcase.ExpUp, slices.Collect(tr.AtLeast(tcase.Key)), "AtLeast(%d)", tcase.Key)
		assert.Equal(t, tcase.ExpDown, slices.Collect(tr.AtMost(tcase.Key)), "AtMost(%d)", tcase.Key)
		assert.Equal(t, tcase.ExpCntUp, tr.CountAtLeast(tcase.Key), "CountAtLeast(%d)", tcase.Key)
		assert.Equal(t, tcase.ExpCntDwn, tr.CountAtMost(tcase.Key), "CountAtMost(%d)", tcase.Key)
	}
}

func TestLazyIteration(t *testing.T) {
	t.Parallel()

	tr := newIntTree()
	for k := 0; k < 100; k++ {
		tr.Add(k)
	}

	var got []int
	for k := range tr.AtLeast(10) {
		got = append(got, k)
		if len(got) == 3 {
			break
		}
	}
	assert.Equal(t, []int{10, 11, 12}, got)
}

// A randomized add/remove schedule, with all three self-checks and a mirror
// map verified after every mutation.
func TestRandomizedSchedule(t *testing.T) {
	t.Parallel()

	const (
		seed  = 1234567890
		steps = 2000
		space = 300
	)

	var (
		fake   = gofakeit.New(seed)
		tr     = newIntTree()
		mirror = map[int]bool{}
	)

	for i := 0; i < steps; i++ {
		k := fake.Number(0, space-1)

		if fake.Bool() {
			assert.Equal(t, !mirror[k], tr.Add(k))
			mirror[k] = true
		} else {
			assert.Equal(t, mirror[k], tr.Del(k))
			delete(mirror, k)
		}

		checkInvariants(t, tr)
		require.Equal(t, len(mirror), tr.Len())

		// CountAtMost and CountAtLeast partition the tree, overlapping only
		// in the probe itself when present.
		probe := fake.Number(0, space-1)
		require.Equal(t, tr.Len()+boolToInt(mirror[probe]),
			tr.CountAtLeast(probe)+tr.CountAtMost(probe), "partition at %d", probe)
	}

	var want []int
	for k := range mirror {
		want = append(want, k)
	}
	slices.Sort(want)
	assert.Equal(t, want, slices.Collect(tr.AtLeast(-1)))
}

// Counts cross-checked against a sorted mirror on random data.
func TestCountsAgainstMirror(t *testing.T) {
	t.Parallel()

	const (
		seed = 987654321
		n    = 500
	)

	var (
		fake = gofakeit.New(seed)
		tr   = newIntTree()
		keys = map[int]bool{}
	)

	for i := 0; i < n; i++ {
		k := fake.Number(0, 10_000)
		tr.Add(k)
		keys[k] = true
	}

	sorted := make([]int, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	slices.Sort(sorted)

	for trial := 0; trial < 200; trial++ {
		probe := fake.Number(-100, 10_100)

		var ge, le int
		for _, k := range sorted {
			if k >= probe {
				ge++
			}
			if k <= probe {
				le++
			}
		}

		require.Equal(t, ge, tr.CountAtLeast(probe), "CountAtLeast(%d)", probe)
		require.Equal(t, le, tr.CountAtMost(probe), "CountAtMost(%d)", probe)
		require.Equal(t, tr.Len(), tr.CountAtLeast(probe)+le-boolToInt(keys[probe]), "partition at %d", probe)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
