// Package ubt implements a containment index as an unlimited-branching tree
// (Hoffmann & Koehler, "A new method to index and query sets", IJCAI 1999).
//
// Every node owns one element of the universe; a root-to-node path spells an
// element set in sorted order, and the node buckets the entries representing
// exactly that set. Queries are breadth-first walks that consume the sorted
// query set as they descend, so no fingerprints and no ordered sets are
// involved. All traversals are iterative; entry size is not bounded the way
// it has to be in recursive variants.
package ubt

import (
	"cmp"
	"iter"
	"slices"

	"github.com/aglyzov/containment"
	"github.com/aglyzov/containment/perm"
)

type node[E cmp.Ordered, C containment.Entry[E]] struct {
	entries  map[C]struct{}
	children map[E]*node[E, C]
}

func newNode[E cmp.Ordered, C containment.Entry[E]]() *node[E, C] {
	return &node[E, C]{
		entries:  make(map[C]struct{}),
		children: make(map[E]*node[E, C]),
	}
}

// Tree is a trie-backed containment index. Not safe for concurrent use.
type Tree[E cmp.Ordered, C containment.Entry[E]] struct {
	p    *perm.Permutation[E]
	root *node[E, C]
	size int
}

var _ containment.Cache[int, *containment.Item[int]] = (*Tree[int, *containment.Item[int]])(nil)

// New builds an empty tree over the given universe.
func New[E cmp.Ordered, C containment.Entry[E]](universe []E) (*Tree[E, C], error) {
	p, err := perm.New(universe)
	if err != nil {
		return nil, err
	}
	return &Tree[E, C]{p: p, root: newNode[E, C]()}, nil
}

// Check validates an entry's element set against the universe.
func (t *Tree[E, C]) Check(entry C) error {
	_, err := t.path(entry)
	return err
}

// path returns the entry's element set sorted and deduplicated, validated
// against the universe.
func (t *Tree[E, C]) path(entry C) ([]E, error) {
	elems := slices.Clone(entry.Elements())
	for _, el := range elems {
		if !t.p.Contains(el) {
			return nil, &perm.InvalidElementError{Element: el}
		}
	}
	slices.Sort(elems)
	return slices.Compact(elems), nil
}

func (t *Tree[E, C]) Add(entry C) error {
	path, err := t.path(entry)
	if err != nil {
		return err
	}

	n := t.root
	for _, el := range path {
		child := n.children[el]
		if child == nil {
			child = newNode[E, C]()
			n.children[el] = child
		}
		n = child
	}
	if _, dup := n.entries[entry]; !dup {
		n.entries[entry] = struct{}{}
		t.size++
	}
	return nil
}

func (t *Tree[E, C]) Del(entry C) error {
	path, err := t.path(entry)
	if err != nil {
		return err
	}

	// Descend, remembering the walked chain for pruning.
	chain := make([]*node[E, C], 0, len(path)+1)
	n := t.root
	chain = append(chain, n)
	for _, el := range path {
		n = n.children[el]
		if n == nil {
			return nil
		}
		chain = append(chain, n)
	}

	if _, ok := n.entries[entry]; !ok {
		return nil
	}
	delete(n.entries, entry)
	t.size--

	// Prune nodes that hold no entries and no children.
	for i := len(chain) - 1; i > 0; i-- {
		c := chain[i]
		if len(c.entries) > 0 || len(c.children) > 0 {
			break
		}
		delete(chain[i-1].children, path[i-1])
	}
	return nil
}

func (t *Tree[E, C]) Has(entry C) bool {
	path, err := t.path(entry)
	if err != nil {
		return false
	}
	n := t.root
	for _, el := range path {
		if n = n.children[el]; n == nil {
			return false
		}
	}
	_, ok := n.entries[entry]
	return ok
}

// frame is a pending traversal step: a node plus the suffix of the sorted
// query set not yet consumed on the way to it.
type frame[E cmp.Ordered, C containment.Entry[E]] struct {
	n   *node[E, C]
	rem []E
}

// Subsets yields the entries whose sets are subsets of the query set. A
// subset is a path whose elements appear in the sorted query in order, so
// every node reached by matching path elements against the query remainder
// contributes its bucket.
func (t *Tree[E, C]) Subsets(entry C) (iter.Seq[C], error) {
	path, err := t.path(entry)
	if err != nil {
		return nil, err
	}
	return func(yield func(C) bool) {
		queue := []frame[E, C]{{n: t.root, rem: path}}
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			for e := range f.n.entries {
				if !yield(e) {
					return
				}
			}
			for i, el := range f.rem {
				if child := f.n.children[el]; child != nil {
					queue = append(queue, frame[E, C]{n: child, rem: f.rem[i+1:]})
				}
			}
		}
	}, nil
}

func (t *Tree[E, C]) NumSubsets(entry C) (int, error) {
	seq, err := t.Subsets(entry)
	if err != nil {
		return 0, err
	}
	return count(seq), nil
}

// Supersets yields the entries whose sets are supersets of the query set.
// Descending, a child smaller than the next needed element is legal filler,
// an equal child consumes it, and a larger child proves the needed element
// can no longer appear on the (sorted) path.
func (t *Tree[E, C]) Supersets(entry C) (iter.Seq[C], error) {
	path, err := t.path(entry)
	if err != nil {
		return nil, err
	}
	return func(yield func(C) bool) {
		queue := []frame[E, C]{{n: t.root, rem: path}}
		for len(queue) > 0 {
			f := queue[0]
			queue = queue[1:]
			if len(f.rem) == 0 {
				for e := range f.n.entries {
					if !yield(e) {
						return
					}
				}
				for _, child := range f.n.children {
					queue = append(queue, frame[E, C]{n: child})
				}
				continue
			}
			first := f.rem[0]
			for el, child := range f.n.children {
				switch {
				case el < first:
					queue = append(queue, frame[E, C]{n: child, rem: f.rem})
				case el == first:
					queue = append(queue, frame[E, C]{n: child, rem: f.rem[1:]})
				}
			}
		}
	}, nil
}

func (t *Tree[E, C]) NumSupersets(entry C) (int, error) {
	seq, err := t.Supersets(entry)
	if err != nil {
		return 0, err
	}
	return count(seq), nil
}

func (t *Tree[E, C]) Iter() iter.Seq[C] {
	return func(yield func(C) bool) {
		stack := []*node[E, C]{t.root}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for e := range n.entries {
				if !yield(e) {
					return
				}
			}
			for _, child := range n.children {
				stack = append(stack, child)
			}
		}
	}
}

func (t *Tree[E, C]) Len() int {
	return t.size
}

func count[C any](seq iter.Seq[C]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}
