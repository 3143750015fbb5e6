// Package redblack implements a red-black tree augmented with subtree sizes.
//
// The tree follows the insertion and deletion algorithms of Cormen et al.,
// "Introduction to Algorithms" (CLRS), with a per-tree sentinel standing in
// for every nil leaf and for the root's parent. Each node additionally
// carries the size of its subtree, maintained along insertion and deletion
// paths and across rotations, which upgrades the set to an order-statistic
// tree: CountAtLeast and CountAtMost run in O(log n).
package redblack

import (
	"fmt"
	"iter"

	"github.com/aglyzov/containment/sortedset"
)

type node[K any] struct {
	key    K
	left   *node[K]
	right  *node[K]
	parent *node[K]
	red    bool
	size   int // nodes in the subtree rooted here, including self
}

// Tree is an ordered set of keys under a fixed comparator.
// It satisfies sortedset.Set. Not safe for concurrent use.
type Tree[K any] struct {
	cmp  func(a, b K) int
	null *node[K] // sentinel: black, size 0
	root *node[K]
}

var _ sortedset.Set[int] = (*Tree[int])(nil)

// New returns an empty tree ordered by cmp. The returned *Tree satisfies
// sortedset.Set.
func New[K any](cmp func(a, b K) int) *Tree[K] {
	t := &Tree[K]{cmp: cmp}
	t.null = &node[K]{}
	t.null.left = t.null
	t.null.right = t.null
	t.null.parent = t.null
	t.root = t.null
	return t
}

// Len returns the number of keys in the tree.
func (t *Tree[K]) Len() int {
	return t.root.size
}

// Has reports whether a key is present.
func (t *Tree[K]) Has(key K) bool {
	return t.find(key) != t.null
}

// Add inserts a key, reporting whether it was absent.
func (t *Tree[K]) Add(key K) bool {
	y := t.null
	x := t.root

	for x != t.null {
		y = x
		switch c := t.cmp(key, x.key); {
		case c == 0:
			return false
		case c < 0:
			x = x.left
		default:
			x = x.right
		}
	}

	z := &node[K]{key: key, left: t.null, right: t.null, parent: y, red: true, size: 1}
	switch {
	case y == t.null:
		t.root = z
	case t.cmp(key, y.key) < 0:
		y.left = z
	default:
		y.right = z
	}

	for p := y; p != t.null; p = p.parent {
		p.size++
	}

	t.addFixup(z)
	return true
}

// Del removes a key, reporting whether it was present.
func (t *Tree[K]) Del(key K) bool {
	z := t.find(key)
	if z == t.null {
		return false
	}

	y := z
	yRed := y.red
	var x *node[K]

	switch {
	case z.left == t.null:
		x = z.right
		t.shrink(z.parent)
		t.transplant(z, z.right)
	case z.right == t.null:
		x = z.left
		t.shrink(z.parent)
		t.transplant(z, z.left)
	default:
		y = t.min(z.right)
		yRed = y.red
		x = y.right
		t.shrink(y.parent) // covers z and everything above it
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.red = z.red
		y.size = z.size // z.size is already one less after shrink
	}

	if !yRed {
		t.delFixup(x)
	}
	return true
}

// AtLeast yields all keys >= key in ascending order. The tree must not be
// mutated while the sequence is being consumed.
func (t *Tree[K]) AtLeast(key K) iter.Seq[K] {
	return func(yield func(K) bool) {
		n := t.null
		for x := t.root; x != t.null; {
			if t.cmp(x.key, key) >= 0 {
				n = x
				x = x.left
			} else {
				x = x.right
			}
		}
		for ; n != t.null; n = t.successor(n) {
			if !yield(n.key) {
				return
			}
		}
	}
}

// AtMost yields all keys <= key in descending order. The tree must not be
// mutated while the sequence is being consumed.
func (t *Tree[K]) AtMost(key K) iter.Seq[K] {
	return func(yield func(K) bool) {
		n := t.null
		for x := t.root; x != t.null; {
			if t.cmp(x.key, key) <= 0 {
				n = x
				x = x.right
			} else {
				x = x.left
			}
		}
		for ; n != t.null; n = t.predecessor(n) {
			if !yield(n.key) {
				return
			}
		}
	}
}

// CountAtLeast returns the number of keys >= key in O(log n): on every turn
// left, the current node and its whole right subtree are counted in.
func (t *Tree[K]) CountAtLeast(key K) int {
	n := 0
	for x := t.root; x != t.null; {
		if t.cmp(x.key, key) >= 0 {
			n += x.right.size + 1
			x = x.left
		} else {
			x = x.right
		}
	}
	return n
}

// CountAtMost returns the number of keys <= key in O(log n).
func (t *Tree[K]) CountAtMost(key K) int {
	n := 0
	for x := t.root; x != t.null; {
		if t.cmp(x.key, key) <= 0 {
			n += x.left.size + 1
			x = x.right
		} else {
			x = x.left
		}
	}
	return n
}

func (t *Tree[K]) find(key K) *node[K] {
	x := t.root
	for x != t.null {
		switch c := t.cmp(key, x.key); {
		case c == 0:
			return x
		case c < 0:
			x = x.left
		default:
			x = x.right
		}
	}
	return t.null
}

func (t *Tree[K]) min(x *node[K]) *node[K] {
	for x.left != t.null {
		x = x.left
	}
	return x
}

func (t *Tree[K]) max(x *node[K]) *node[K] {
	for x.right != t.null {
		x = x.right
	}
	return x
}

func (t *Tree[K]) successor(x *node[K]) *node[K] {
	if x.right != t.null {
		return t.min(x.right)
	}
	y := x.parent
	for y != t.null && x == y.right {
		x = y
		y = y.parent
	}
	return y
}

func (t *Tree[K]) predecessor(x *node[K]) *node[K] {
	if x.left != t.null {
		return t.max(x.left)
	}
	y := x.parent
	for y != t.null && x == y.left {
		x = y
		y = y.parent
	}
	return y
}

// shrink decrements subtree sizes from x up to the root.
func (t *Tree[K]) shrink(x *node[K]) {
	for ; x != t.null; x = x.parent {
		x.size--
	}
}

// transplant replaces the subtree rooted at u with the one rooted at v.
// v's parent pointer is set even when v is the sentinel; delFixup needs it.
func (t *Tree[K]) transplant(u, v *node[K]) {
	switch {
	case u.parent == t.null:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *Tree[K]) rotateLeft(x *node[K]) {
	y := x.right
	x.right = y.left
	if y.left != t.null {
		y.left.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == t.null:
		t.root = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}
	y.left = x
	x.parent = y

	y.size = x.size
	x.size = x.left.size + x.right.size + 1
}

func (t *Tree[K]) rotateRight(x *node[K]) {
	y := x.left
	x.left = y.right
	if y.right != t.null {
		y.right.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == t.null:
		t.root = y
	case x == x.parent.right:
		x.parent.right = y
	default:
		x.parent.left = y
	}
	y.right = x
	x.parent = y

	y.size = x.size
	x.size = x.left.size + x.right.size + 1
}

func (t *Tree[K]) addFixup(z *node[K]) {
	for z.parent.red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.red {
				z.parent.red = false
				y.red = false
				z.parent.parent.red = true
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.rotateLeft(z)
				}
				z.parent.red = false
				z.parent.parent.red = true
				t.rotateRight(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y.red {
				z.parent.red = false
				y.red = false
				z.parent.parent.red = true
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rotateRight(z)
				}
				z.parent.red = false
				z.parent.parent.red = true
				t.rotateLeft(z.parent.parent)
			}
		}
	}
	t.root.red = false
}

func (t *Tree[K]) delFixup(x *node[K]) {
	for x != t.root && !x.red {
		if x == x.parent.left {
			w := x.parent.right
			if w.red {
				w.red = false
				x.parent.red = true
				t.rotateLeft(x.parent)
				w = x.parent.right
			}
			if !w.left.red && !w.right.red {
				w.red = true
				x = x.parent
			} else {
				if !w.right.red {
					w.left.red = false
					w.red = true
					t.rotateRight(w)
					w = x.parent.right
				}
				w.red = x.parent.red
				x.parent.red = false
				w.right.red = false
				t.rotateLeft(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.red {
				w.red = false
				x.parent.red = true
				t.rotateRight(x.parent)
				w = x.parent.left
			}
			if !w.right.red && !w.left.red {
				w.red = true
				x = x.parent
			} else {
				if !w.left.red {
					w.right.red = false
					w.red = true
					t.rotateLeft(w)
					w = x.parent.left
				}
				w.red = x.parent.red
				x.parent.red = false
				w.left.red = false
				t.rotateRight(x.parent)
				x = t.root
			}
		}
	}
	x.red = false
}

// CheckCoherence verifies parent/child links, the sentinel, and the BST
// ordering of keys. Intended for tests.
func (t *Tree[K]) CheckCoherence() error {
	if t.null.red || t.null.size != 0 {
		return fmt.Errorf("corrupt sentinel: red=%v size=%d", t.null.red, t.null.size)
	}
	return t.checkCoherence(t.root, t.null)
}

func (t *Tree[K]) checkCoherence(x, parent *node[K]) error {
	if x == t.null {
		return nil
	}
	if x.parent != parent {
		return fmt.Errorf("node %v has a wrong parent pointer", x.key)
	}
	if x.left != t.null && t.cmp(x.left.key, x.key) >= 0 {
		return fmt.Errorf("node %v: left child %v is not smaller", x.key, x.left.key)
	}
	if x.right != t.null && t.cmp(x.right.key, x.key) <= 0 {
		return fmt.Errorf("node %v: right child %v is not larger", x.key, x.right.key)
	}
	if err := t.checkCoherence(x.left, x); err != nil {
		return err
	}
	return t.checkCoherence(x.right, x)
}

// CheckRedBlack verifies the red-black coloring: black root, no red node
// with a red child, and equal black heights on every path. Intended for
// tests.
func (t *Tree[K]) CheckRedBlack() error {
	if t.root.red {
		return fmt.Errorf("red root")
	}
	_, err := t.blackHeight(t.root)
	return err
}

func (t *Tree[K]) blackHeight(x *node[K]) (int, error) {
	if x == t.null {
		return 1, nil
	}
	if x.red && (x.left.red || x.right.red) {
		return 0, fmt.Errorf("red node %v has a red child", x.key)
	}
	lh, err := t.blackHeight(x.left)
	if err != nil {
		return 0, err
	}
	rh, err := t.blackHeight(x.right)
	if err != nil {
		return 0, err
	}
	if lh != rh {
		return 0, fmt.Errorf("node %v: black height %d on the left, %d on the right", x.key, lh, rh)
	}
	if x.red {
		return lh, nil
	}
	return lh + 1, nil
}

// CheckSizes verifies the subtree size augmentation. Intended for tests.
func (t *Tree[K]) CheckSizes() error {
	_, err := t.checkSizes(t.root)
	return err
}

func (t *Tree[K]) checkSizes(x *node[K]) (int, error) {
	if x == t.null {
		return 0, nil
	}
	ls, err := t.checkSizes(x.left)
	if err != nil {
		return 0, err
	}
	rs, err := t.checkSizes(x.right)
	if err != nil {
		return 0, err
	}
	if x.size != ls+rs+1 {
		return 0, fmt.Errorf("node %v: size %d, subtrees hold %d+%d", x.key, x.size, ls, rs)
	}
	return x.size, nil
}
