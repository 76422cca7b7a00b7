package circbuf

import "iter"

// Iteration walks the logical sequence through the same wraparound rule as
// indexed access. Any mutating operation (push, pop, resize, swap, copy
// assignment) invalidates in-flight iteration; the sequences below detect
// this with the buffer's version counter and panic instead of yielding from
// a moved or reused slot.

// All returns an iterator over logical index and value, oldest first.
func (b *RingBuffer[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		version := b.version
		for i := range b.Len() {
			if b.version != version {
				panic("circbuf: buffer modified during iteration")
			}
			if !yield(i, b.data[b.checkedIndex(b.oldest+i)]) {
				return
			}
		}
	}
}

// Values returns an iterator over the values, oldest first.
func (b *RingBuffer[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		version := b.version
		for i := range b.Len() {
			if b.version != version {
				panic("circbuf: buffer modified during iteration")
			}
			if !yield(b.data[b.checkedIndex(b.oldest+i)]) {
				return
			}
		}
	}
}

// Backward returns an iterator over logical index and value, newest first.
func (b *RingBuffer[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		version := b.version
		for i := b.Len() - 1; i >= 0; i-- {
			if b.version != version {
				panic("circbuf: buffer modified during iteration")
			}
			if !yield(i, b.data[b.checkedIndex(b.oldest+i)]) {
				return
			}
		}
	}
}
