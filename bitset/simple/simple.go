// Package simple implements a containment index on one permutation of the
// universe. Entries are fingerprinted as bit vectors; the distinct
// fingerprints live in one ordered set, and a query walks the prefix (for
// subsets) or suffix (for supersets) of that order starting at the query's
// own fingerprint, filtering candidates with the subset bit test.
//
// The ordering embeds the subset partial order: setting a bit can only grow
// a vector's integer value, so every subset of q sorts at or below q and
// every superset at or above it. The range is the sound candidate set, the
// bit test is the completeness step.
package simple

import (
	"cmp"
	"iter"

	"github.com/aglyzov/containment"
	"github.com/aglyzov/containment/bitvec"
	"github.com/aglyzov/containment/nested"
	"github.com/aglyzov/containment/perm"
	"github.com/aglyzov/containment/sortedset/redblack"
)

type bucket[E cmp.Ordered, C containment.Entry[E]] struct {
	vec     *bitvec.Dense
	entries map[C]struct{}
}

// Cache is a single-permutation containment index. Not safe for concurrent
// use.
type Cache[E cmp.Ordered, C containment.Entry[E]] struct {
	p       *perm.Permutation[E]
	tree    *redblack.Tree[*bitvec.Dense]
	buckets map[string]*bucket[E, C]
	size    int
}

var _ containment.Cache[int, *containment.Item[int]] = (*Cache[int, *containment.Item[int]])(nil)

// New builds an empty index over the given universe, using the canonical
// permutation.
func New[E cmp.Ordered, C containment.Entry[E]](universe []E) (*Cache[E, C], error) {
	p, err := perm.New(universe)
	if err != nil {
		return nil, err
	}
	return NewFrom[E, C](p), nil
}

// NewFrom builds an empty index using an explicit permutation.
func NewFrom[E cmp.Ordered, C containment.Entry[E]](p *perm.Permutation[E]) *Cache[E, C] {
	return &Cache[E, C]{
		p:       p,
		tree:    redblack.New((*bitvec.Dense).Cmp),
		buckets: make(map[string]*bucket[E, C]),
	}
}

// Check validates an entry's element set against the universe.
func (c *Cache[E, C]) Check(entry C) error {
	_, err := c.p.Ranks(entry.Elements())
	return err
}

func (c *Cache[E, C]) Add(entry C) error {
	fp, err := containment.Fingerprint(c.p, entry.Elements())
	if err != nil {
		return err
	}

	key := fp.Key()
	b := c.buckets[key]
	if b == nil {
		b = &bucket[E, C]{vec: fp, entries: make(map[C]struct{})}
		c.buckets[key] = b
		c.tree.Add(fp)
	}
	if _, dup := b.entries[entry]; !dup {
		b.entries[entry] = struct{}{}
		c.size++
	}
	return nil
}

func (c *Cache[E, C]) Del(entry C) error {
	fp, err := containment.Fingerprint(c.p, entry.Elements())
	if err != nil {
		return err
	}

	key := fp.Key()
	b := c.buckets[key]
	if b == nil {
		return nil
	}
	if _, ok := b.entries[entry]; !ok {
		return nil
	}
	delete(b.entries, entry)
	c.size--
	if len(b.entries) == 0 {
		delete(c.buckets, key)
		c.tree.Del(b.vec)
	}
	return nil
}

func (c *Cache[E, C]) Has(entry C) bool {
	fp, err := containment.Fingerprint(c.p, entry.Elements())
	if err != nil {
		return false
	}
	b := c.buckets[fp.Key()]
	if b == nil {
		return false
	}
	_, ok := b.entries[entry]
	return ok
}

func (c *Cache[E, C]) Subsets(entry C) (iter.Seq[C], error) {
	fp, err := containment.Fingerprint(c.p, entry.Elements())
	if err != nil {
		return nil, err
	}
	cands := nested.Filter(c.tree.AtMost(fp), func(v *bitvec.Dense) bool {
		return v.SubsetOf(fp)
	})
	return nested.Nest(cands, c.bucketEntries), nil
}

func (c *Cache[E, C]) NumSubsets(entry C) (int, error) {
	fp, err := containment.Fingerprint(c.p, entry.Elements())
	if err != nil {
		return 0, err
	}
	n := 0
	for v := range c.tree.AtMost(fp) {
		if v.SubsetOf(fp) {
			n += len(c.buckets[v.Key()].entries)
		}
	}
	return n, nil
}

func (c *Cache[E, C]) Supersets(entry C) (iter.Seq[C], error) {
	fp, err := containment.Fingerprint(c.p, entry.Elements())
	if err != nil {
		return nil, err
	}
	cands := nested.Filter(c.tree.AtLeast(fp), func(v *bitvec.Dense) bool {
		return fp.SubsetOf(v)
	})
	return nested.Nest(cands, c.bucketEntries), nil
}

func (c *Cache[E, C]) NumSupersets(entry C) (int, error) {
	fp, err := containment.Fingerprint(c.p, entry.Elements())
	if err != nil {
		return 0, err
	}
	n := 0
	for v := range c.tree.AtLeast(fp) {
		if fp.SubsetOf(v) {
			n += len(c.buckets[v.Key()].entries)
		}
	}
	return n, nil
}

func (c *Cache[E, C]) Iter() iter.Seq[C] {
	return func(yield func(C) bool) {
		for _, b := range c.buckets {
			for e := range b.entries {
				if !yield(e) {
					return
				}
			}
		}
	}
}

func (c *Cache[E, C]) Len() int {
	return c.size
}

// Permutation returns the permutation fingerprints are encoded under.
func (c *Cache[E, C]) Permutation() *perm.Permutation[E] {
	return c.p
}

func (c *Cache[E, C]) bucketEntries(v *bitvec.Dense) iter.Seq[C] {
	return func(yield func(C) bool) {
		b := c.buckets[v.Key()]
		if b == nil {
			return
		}
		for e := range b.entries {
			if !yield(e) {
				return
			}
		}
	}
}
