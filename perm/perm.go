// Package perm maps a finite universe of ordered elements onto the integer
// range [0,n) and back. A Permutation is the bijection used to turn element
// sets into fixed-width bit vectors; every containment index in this module
// is built on top of one or more of them.
package perm

import (
	"cmp"
	"fmt"
	"math/rand"
)

// InvalidUniverseError reports an unusable universe or permutation set.
type InvalidUniverseError struct {
	Reason string
}

func (e *InvalidUniverseError) Error() string {
	return fmt.Sprintf("invalid universe: %s", e.Reason)
}

// InvalidElementError reports an element outside the permutation's universe.
type InvalidElementError struct {
	Element any
}

func (e *InvalidElementError) Error() string {
	return fmt.Sprintf("element %v is not in the universe", e.Element)
}

// Permutation is an immutable bijection between a universe of n elements and
// the integer range [0,n). The rank of an element is its bit index in any
// vector encoded under this permutation.
type Permutation[E cmp.Ordered] struct {
	elems []E       // elems[rank] = element
	ranks map[E]int // element -> rank
}

// New builds the canonical permutation over the given universe: ranks follow
// the order of the slice. The universe must be non-empty and free of
// duplicates.
func New[E cmp.Ordered](universe []E) (*Permutation[E], error) {
	if len(universe) == 0 {
		return nil, &InvalidUniverseError{Reason: "no elements"}
	}

	p := &Permutation[E]{
		elems: make([]E, len(universe)),
		ranks: make(map[E]int, len(universe)),
	}

	for i, el := range universe {
		if _, dup := p.ranks[el]; dup {
			return nil, &InvalidUniverseError{Reason: fmt.Sprintf("duplicate element %v", el)}
		}
		p.elems[i] = el
		p.ranks[el] = i
	}

	return p, nil
}

// NewN builds k permutations of the same universe: the canonical one first,
// followed by k-1 pseudo-random shuffles drawn from a generator seeded with
// seed. The result is deterministic in (universe, seed, k).
func NewN[E cmp.Ordered](universe []E, seed int64, k int) ([]*Permutation[E], error) {
	if k < 1 {
		return nil, &InvalidUniverseError{Reason: fmt.Sprintf("need at least one permutation, got %d", k)}
	}

	canonical, err := New(universe)
	if err != nil {
		return nil, err
	}

	perms := make([]*Permutation[E], 0, k)
	perms = append(perms, canonical)

	rnd := rand.New(rand.NewSource(seed))
	shuffled := make([]E, len(universe))
	copy(shuffled, universe)

	for o := 1; o < k; o++ {
		rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		p, err := New(shuffled)
		if err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}

	return perms, nil
}

// Len returns the size of the universe.
func (p *Permutation[E]) Len() int {
	return len(p.elems)
}

// Rank returns the index an element maps to.
func (p *Permutation[E]) Rank(el E) (int, bool) {
	r, ok := p.ranks[el]
	return r, ok
}

// At returns the element mapped to the given index.
func (p *Permutation[E]) At(rank int) E {
	return p.elems[rank]
}

// Elements returns the universe in rank order. The slice is shared; callers
// must not modify it.
func (p *Permutation[E]) Elements() []E {
	return p.elems
}

// Ranks maps an element set to its bit indices under this permutation.
func (p *Permutation[E]) Ranks(set []E) ([]int, error) {
	ranks := make([]int, len(set))
	for i, el := range set {
		r, ok := p.ranks[el]
		if !ok {
			return nil, &InvalidElementError{Element: el}
		}
		ranks[i] = r
	}
	return ranks, nil
}

// Contains reports whether an element belongs to the universe.
func (p *Permutation[E]) Contains(el E) bool {
	_, ok := p.ranks[el]
	return ok
}

// SameUniverse reports whether two permutations are defined over exactly the
// same set of elements, regardless of the ranks they assign.
func (p *Permutation[E]) SameUniverse(o *Permutation[E]) bool {
	if p.Len() != o.Len() {
		return false
	}
	for el := range p.ranks {
		if _, ok := o.ranks[el]; !ok {
			return false
		}
	}
	return true
}
