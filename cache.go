package containment

import (
	"cmp"
	"errors"
	"iter"

	"github.com/aglyzov/containment/bitvec"
	"github.com/aglyzov/containment/perm"
)

// Entry is the constraint on values stored in a containment index: an entry
// is usable as a map key and exposes the element set it represents. The
// element set must not change while the entry is indexed; fingerprints are
// derived from it on Add and never recomputed.
type Entry[E cmp.Ordered] interface {
	comparable
	Elements() []E
}

// Cache is a set containment index.
//
// Implementations are not thread-safe unless stated otherwise; see the
// buffered package for the concurrent wrapper. Query sequences are lazy and
// must be consumed before the next mutation.
type Cache[E cmp.Ordered, C Entry[E]] interface {
	// Add inserts an entry. Re-adding an equal entry is a no-op; a distinct
	// entry with the same element set is kept alongside (bucketing).
	Add(entry C) error
	// Del removes the entry equal to the given one. Absence is not an error.
	Del(entry C) error
	// Has reports whether an equal entry is present.
	Has(entry C) bool
	// Subsets yields every present entry whose element set is a subset of
	// the given entry's, each exactly once, in unspecified order.
	Subsets(entry C) (iter.Seq[C], error)
	// NumSubsets returns the number of entries Subsets would yield.
	NumSubsets(entry C) (int, error)
	// Supersets yields every present entry whose element set is a superset
	// of the given entry's, each exactly once, in unspecified order.
	Supersets(entry C) (iter.Seq[C], error)
	// NumSupersets returns the number of entries Supersets would yield.
	NumSupersets(entry C) (int, error)
	// Iter yields every entry exactly once, in unspecified order.
	Iter() iter.Seq[C]
	// Len returns the number of entries, counting bucketed duplicates.
	Len() int
}

// Checker is implemented by caches that can validate an entry against their
// universe without mutating anything.
type Checker[C any] interface {
	Check(entry C) error
}

// Lockable is a thread-safe cache exposing its read lock, so that a query
// sequence can be consumed under it.
type Lockable[E cmp.Ordered, C Entry[E]] interface {
	Cache[E, C]
	RLock()
	RUnlock()
}

// ErrInvariant marks an internal inconsistency. It is never returned;
// detecting one is a bug and panics rather than corrupting the index.
var ErrInvariant = errors.New("containment: invariant violation")

// AddAll inserts every entry of the sequence, collecting errors instead of
// stopping at the first one.
func AddAll[E cmp.Ordered, C Entry[E]](c Cache[E, C], entries iter.Seq[C]) error {
	var errs []error
	for e := range entries {
		if err := c.Add(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Fingerprint encodes an element set as a bit vector under the given
// permutation: bit p.Rank(e) is set for every element e of the set.
func Fingerprint[E cmp.Ordered](p *perm.Permutation[E], set []E) (*bitvec.Dense, error) {
	ranks, err := p.Ranks(set)
	if err != nil {
		return nil, err
	}
	return bitvec.From(p.Len(), ranks), nil
}
