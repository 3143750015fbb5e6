// Package multi implements the multi-permutation containment index. It keeps
// k orderings of the same fingerprints, one per permutation of the universe,
// and a single bucket map keyed by the canonical fingerprint. Per query, a
// planner asks every ordering for the size of its candidate range in
// O(log n) and walks only the tightest one.
//
// Only the canonical fingerprint is stored; each ordered set reinterprets
// bit positions through its permutation in the comparator. The subset filter
// runs on the canonical encoding, where it is permutation-invariant.
package multi

import (
	"cmp"
	"iter"

	"github.com/aglyzov/containment"
	"github.com/aglyzov/containment/bitvec"
	"github.com/aglyzov/containment/nested"
	"github.com/aglyzov/containment/perm"
	"github.com/aglyzov/containment/sortedset"
	"github.com/aglyzov/containment/sortedset/redblack"
)

// Option configures a Cache.
type Option func(*config)

type config struct {
	factory sortedset.Factory[*bitvec.Dense]
}

// WithSetFactory sets the ordered-set implementation backing each
// permutation. The default is the size-augmented red-black tree; the
// sorted-slice baseline also counts in O(log n), by binary search, but
// mutates in O(n).
func WithSetFactory(f sortedset.Factory[*bitvec.Dense]) Option {
	return func(c *config) {
		c.factory = f
	}
}

type bucket[E cmp.Ordered, C containment.Entry[E]] struct {
	vec     *bitvec.Dense
	entries map[C]struct{}
}

// container pairs one permutation's ordered set with the bit reordering its
// comparator reads the canonical encoding through.
type container struct {
	set   sortedset.Set[*bitvec.Dense]
	order []int // order[rank] = canonical bit index of the element with that rank
}

// Cache is a k-permutation containment index. Not safe for concurrent use.
type Cache[E cmp.Ordered, C containment.Entry[E]] struct {
	canon      *perm.Permutation[E]
	containers []container
	buckets    map[string]*bucket[E, C]
	size       int
}

var _ containment.Cache[int, *containment.Item[int]] = (*Cache[int, *containment.Item[int]])(nil)

// New builds an empty index over the given permutations. The first is the
// canonical one; all must cover the same universe.
func New[E cmp.Ordered, C containment.Entry[E]](perms []*perm.Permutation[E], opts ...Option) (*Cache[E, C], error) {
	if len(perms) == 0 {
		return nil, &perm.InvalidUniverseError{Reason: "need at least one permutation"}
	}

	canon := perms[0]
	for _, p := range perms[1:] {
		if !p.SameUniverse(canon) {
			return nil, &perm.InvalidUniverseError{Reason: "permutations disagree on the universe"}
		}
	}

	cfg := config{factory: func(cmp func(a, b *bitvec.Dense) int) sortedset.Set[*bitvec.Dense] {
		return redblack.New(cmp)
	}}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Cache[E, C]{
		canon:      canon,
		containers: make([]container, 0, len(perms)),
		buckets:    make(map[string]*bucket[E, C]),
	}

	for j, p := range perms {
		if j == 0 {
			c.containers = append(c.containers, container{set: cfg.factory((*bitvec.Dense).Cmp)})
			continue
		}
		order := make([]int, p.Len())
		for r := range order {
			cr, _ := canon.Rank(p.At(r))
			order[r] = cr
		}
		cmpFn := func(a, b *bitvec.Dense) int {
			return bitvec.CmpUnder(order, a, b)
		}
		c.containers = append(c.containers, container{set: cfg.factory(cmpFn), order: order})
	}

	return c, nil
}

// NewSeeded builds an index over k permutations of the universe: the
// canonical one plus k-1 pseudo-random shuffles derived from seed.
func NewSeeded[E cmp.Ordered, C containment.Entry[E]](universe []E, seed int64, k int, opts ...Option) (*Cache[E, C], error) {
	perms, err := perm.NewN(universe, seed, k)
	if err != nil {
		return nil, err
	}
	return New[E, C](perms, opts...)
}

// Check validates an entry's element set against the universe.
func (c *Cache[E, C]) Check(entry C) error {
	_, err := c.canon.Ranks(entry.Elements())
	return err
}

func (c *Cache[E, C]) Add(entry C) error {
	fp, err := containment.Fingerprint(c.canon, entry.Elements())
	if err != nil {
		return err
	}

	key := fp.Key()
	b := c.buckets[key]
	if b == nil {
		b = &bucket[E, C]{vec: fp, entries: make(map[C]struct{})}
		c.buckets[key] = b
		for _, ct := range c.containers {
			ct.set.Add(fp)
		}
	}
	if _, dup := b.entries[entry]; !dup {
		b.entries[entry] = struct{}{}
		c.size++
	}
	return nil
}

func (c *Cache[E, C]) Del(entry C) error {
	fp, err := containment.Fingerprint(c.canon, entry.Elements())
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
		for _, ct := range c.containers {
			ct.set.Del(b.vec)
		}
	}
	return nil
}

func (c *Cache[E, C]) Has(entry C) bool {
	fp, err := containment.Fingerprint(c.canon, entry.Elements())
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
	fp, err := containment.Fingerprint(c.canon, entry.Elements())
	if err != nil {
		return nil, err
	}
	ct := c.planSubsets(fp)
	cands := nested.Filter(ct.set.AtMost(fp), func(v *bitvec.Dense) bool {
		return v.SubsetOf(fp)
	})
	return nested.Nest(cands, c.bucketEntries), nil
}

func (c *Cache[E, C]) NumSubsets(entry C) (int, error) {
	fp, err := containment.Fingerprint(c.canon, entry.Elements())
	if err != nil {
		return 0, err
	}
	n := 0
	for v := range c.planSubsets(fp).set.AtMost(fp) {
		if v.SubsetOf(fp) {
			n += len(c.buckets[v.Key()].entries)
		}
	}
	return n, nil
}

func (c *Cache[E, C]) Supersets(entry C) (iter.Seq[C], error) {
	fp, err := containment.Fingerprint(c.canon, entry.Elements())
	if err != nil {
		return nil, err
	}
	ct := c.planSupersets(fp)
	cands := nested.Filter(ct.set.AtLeast(fp), func(v *bitvec.Dense) bool {
		return fp.SubsetOf(v)
	})
	return nested.Nest(cands, c.bucketEntries), nil
}

func (c *Cache[E, C]) NumSupersets(entry C) (int, error) {
	fp, err := containment.Fingerprint(c.canon, entry.Elements())
	if err != nil {
		return 0, err
	}
	n := 0
	for v := range c.planSupersets(fp).set.AtLeast(fp) {
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

// Permutation returns the canonical permutation.
func (c *Cache[E, C]) Permutation() *perm.Permutation[E] {
	return c.canon
}

// planSubsets picks the container with the fewest fingerprints at or below
// the query's; ties go to the lowest permutation index.
func (c *Cache[E, C]) planSubsets(fp *bitvec.Dense) *container {
	best := &c.containers[0]
	bestCount := best.set.CountAtMost(fp)
	for j := 1; j < len(c.containers); j++ {
		if n := c.containers[j].set.CountAtMost(fp); n < bestCount {
			best, bestCount = &c.containers[j], n
		}
	}
	return best
}

// planSupersets picks the container with the fewest fingerprints at or above
// the query's; ties go to the lowest permutation index.
func (c *Cache[E, C]) planSupersets(fp *bitvec.Dense) *container {
	best := &c.containers[0]
	bestCount := best.set.CountAtLeast(fp)
	for j := 1; j < len(c.containers); j++ {
		if n := c.containers[j].set.CountAtLeast(fp); n < bestCount {
			best, bestCount = &c.containers[j], n
		}
	}
	return best
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
