package containment

import (
	"cmp"
	"slices"

	"github.com/aglyzov/containment/bitvec"
	"github.com/aglyzov/containment/perm"
)

// Item is the stock cache entry: an element set plus its fingerprint under
// the canonical permutation. Items compare by pointer, so two Items built
// from the same element set are distinct entries and bucket together.
type Item[E cmp.Ordered] struct {
	p     *perm.Permutation[E]
	elems []E
	vec   *bitvec.Dense
}

// NewItem builds an entry for the given element set. The set is copied,
// sorted and deduplicated; every element must belong to the permutation's
// universe.
func NewItem[E cmp.Ordered](p *perm.Permutation[E], set []E) (*Item[E], error) {
	elems := slices.Clone(set)
	slices.Sort(elems)
	elems = slices.Compact(elems)

	vec, err := Fingerprint(p, elems)
	if err != nil {
		return nil, err
	}

	return &Item[E]{p: p, elems: elems, vec: vec}, nil
}

// Elements returns the element set in sorted order. The slice is shared;
// callers must not modify it.
func (it *Item[E]) Elements() []E {
	return it.elems
}

// Vector returns the canonical fingerprint.
func (it *Item[E]) Vector() *bitvec.Dense {
	return it.vec
}

// Permutation returns the permutation the fingerprint was encoded under.
func (it *Item[E]) Permutation() *perm.Permutation[E] {
	return it.p
}

func (it *Item[E]) String() string {
	return it.vec.String()
}
