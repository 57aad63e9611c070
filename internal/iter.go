package internal

import (
	"iter"
)

// IterSeqConcat concatenates multiple iterators into a single iterator sequence.
func IterSeqConcat[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return
				}
			}
		}
	}
}

// IterSeqBatch groups an iterator into slices of at most size elements.
// The yielded slice is reused; callers must not retain it.
func IterSeqBatch[T any](seq iter.Seq[T], size int) iter.Seq[[]T] {
	size = max(1, size)
	return func(yield func([]T) bool) {
		batch := make([]T, 0, size)
		for val := range seq {
			batch = append(batch, val)
			if len(batch) < size {
				continue
			}
			if !yield(batch) {
				return
			}
			batch = batch[:0]
		}
		if len(batch) > 0 {
			yield(batch)
		}
	}
}
