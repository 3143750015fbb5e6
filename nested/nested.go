// Package nested combines a primary sequence of keys with per-key secondary
// sequences into one flat lazy sequence. It is how the containment indexes
// expand an ordered walk over fingerprints into the entries bucketed under
// each fingerprint without materializing anything.
package nested

import "iter"

// Nest yields, for each key produced by primary, every value of the
// secondary sequence obtained for that key. Empty secondaries are skipped.
// Advancing the result advances primary and secondaries only as far as
// needed.
func Nest[K, V any](primary iter.Seq[K], secondary func(K) iter.Seq[V]) iter.Seq[V] {
	return func(yield func(V) bool) {
		for k := range primary {
			for v := range secondary(k) {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Concat chains sequences one after another.
func Concat[V any](seqs ...iter.Seq[V]) iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, seq := range seqs {
			for v := range seq {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Filter yields the values of seq for which keep returns true.
func Filter[V any](seq iter.Seq[V], keep func(V) bool) iter.Seq[V] {
	return func(yield func(V) bool) {
		for v := range seq {
			if keep(v) && !yield(v) {
				return
			}
		}
	}
}
