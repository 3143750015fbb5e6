package ubt

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aglyzov/containment"
	"github.com/aglyzov/containment/perm"
)

type entry = *containment.Item[int]

func universe(n int) []int {
	u := make([]int, n)
	for i := range u {
		u[i] = i
	}
	return u
}

func newTree(t *testing.T, n int) (*Tree[int, entry], *perm.Permutation[int]) {
	t.Helper()

	u := universe(n)
	tr, err := New[int, entry](u)
	require.NoError(t, err)
	p, err := perm.New(u)
	require.NoError(t, err)
	return tr, p
}

func item(t *testing.T, p *perm.Permutation[int], elems ...int) entry {
	t.Helper()
	it, err := containment.NewItem(p, elems)
	require.NoError(t, err)
	return it
}

// Paths share prefixes: {1} is an interior node of {1,2}'s path, both carry
// entries.
func TestSharedPrefixPaths(t *testing.T) {
	t.Parallel()

	tr, p := newTree(t, 10)

	short := item(t, p, 1)
	long := item(t, p, 1, 2)
	require.NoError(t, tr.Add(long))
	require.NoError(t, tr.Add(short))

	assert.True(t, tr.Has(short))
	assert.True(t, tr.Has(long))
	assert.Equal(t, 2, tr.Len())

	seq, err := tr.Subsets(item(t, p, 1, 2, 3))
	require.NoError(t, err)
	assert.ElementsMatch(t, []entry{short, long}, slices.Collect(seq))
}

// Removing the deepest entry prunes its now-empty suffix, but not the nodes
// an earlier entry still needs.
func TestPruning(t *testing.T) {
	t.Parallel()

	tr, p := newTree(t, 10)

	short := item(t, p, 1)
	long := item(t, p, 1, 2, 3)
	require.NoError(t, tr.Add(short))
	require.NoError(t, tr.Add(long))

	require.NoError(t, tr.Del(long))

	n := tr.root.children[1]
	require.NotNil(t, n, "node for {1} must survive")
	assert.Empty(t, n.children, "suffix of the removed path must be pruned")
	assert.True(t, tr.Has(short))

	require.NoError(t, tr.Del(short))
	assert.Empty(t, tr.root.children)
	assert.Equal(t, 0, tr.Len())
}

// An entry at the root (the empty set) must not be disturbed by pruning.
func TestEmptySetAtRoot(t *testing.T) {
	t.Parallel()

	tr, p := newTree(t, 5)

	empty := item(t, p)
	one := item(t, p, 1)
	require.NoError(t, tr.Add(empty))
	require.NoError(t, tr.Add(one))
	require.NoError(t, tr.Del(one))

	assert.True(t, tr.Has(empty))
	assert.Equal(t, 1, tr.Len())
}

// The superset walk consumes query elements in sorted order: children below
// the needed element are filler, equal children consume it, greater children
// are dead ends.
func TestSupersetDescent(t *testing.T) {
	t.Parallel()

	tr, p := newTree(t, 10)

	a := item(t, p, 0, 3, 5)
	b := item(t, p, 3, 5)
	c := item(t, p, 3, 6)
	d := item(t, p, 5)
	for _, e := range []entry{a, b, c, d} {
		require.NoError(t, tr.Add(e))
	}

	seq, err := tr.Supersets(item(t, p, 3, 5))
	require.NoError(t, err)
	assert.ElementsMatch(t, []entry{a, b}, slices.Collect(seq))

	seq, err = tr.Supersets(item(t, p, 5))
	require.NoError(t, err)
	assert.ElementsMatch(t, []entry{a, b, d}, slices.Collect(seq))

	n, err := tr.NumSupersets(item(t, p, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestUnsortedInputIsNormalized(t *testing.T) {
	t.Parallel()

	tr, p := newTree(t, 10)

	e := item(t, p, 7, 2, 5)
	require.NoError(t, tr.Add(e))

	// A distinct entry with the same set follows the same path but is not
	// the same entry.
	assert.False(t, tr.Has(item(t, p, 5, 7, 2)))

	seq, err := tr.Supersets(item(t, p, 2, 7))
	require.NoError(t, err)
	assert.Equal(t, []entry{e}, slices.Collect(seq))
}

func TestInvalidElement(t *testing.T) {
	t.Parallel()

	tr, _ := newTree(t, 5)
	wide, err := perm.New(universe(10))
	require.NoError(t, err)

	bad := item(t, wide, 2, 7)

	var eerr *perm.InvalidElementError
	require.ErrorAs(t, tr.Add(bad), &eerr)
	require.ErrorAs(t, tr.Del(bad), &eerr)
	assert.False(t, tr.Has(bad))

	_, err = tr.Subsets(bad)
	require.ErrorAs(t, err, &eerr)
}
