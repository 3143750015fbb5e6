// Package containment defines the contract of an in-memory set containment
// index: a collection of cache entries, each representing a set of elements
// drawn from a fixed universe, that answers subset and superset queries.
//
// Three backends implement the Cache interface:
//
//   - bitset/simple - entries fingerprinted as bit vectors under a single
//     permutation of the universe, ordered in one size-augmented red-black
//     tree; queries narrow to a candidate range and filter by the subset
//     bit test.
//
//   - bitset/multi - the high-performance variant: several independent
//     permutations of the same universe, one ordered tree per permutation,
//     all sharing one bucket map. A query planner picks the permutation
//     with the tightest candidate range per query.
//
//   - ubt - an unlimited-branching trie over sorted element paths; no
//     fingerprints, queries descend the tree.
//
// The buffered package wraps any backend for concurrent use: reads proceed
// under a shared lock while adds collect in a buffer that a background
// worker flushes in batches.
//
// Entries are bucketed. Two entries that represent the same element set but
// are distinct values both stay in the index and are both returned by
// queries. Entry identity is the entry's own equality (==); for the stock
// *Item entry that is pointer identity.
//
// Query results are lazy iter.Seq sequences. A raw backend must not be
// mutated between pulls; the buffered wrapper instead requires the caller
// to hold its read lock for the lifetime of the sequence.
package containment
