// Package circbuf provides a fixed-capacity circular buffer with constant
// time access by logical position, constant time insertion and removal at
// both ends, and explicit resizing. Once the buffer is full, pushing a new
// element overwrites the logically-oldest one.
//
// The package provides two main types:
//   - RingBuffer: the plain, single-goroutine buffer.
//   - Queue: a bounded blocking queue built on top of RingBuffer, safe for
//     concurrent use by multiple producers and consumers.
package circbuf

import "iter"

// RingBuffer is a fixed-capacity circular buffer. The capacity is set at
// construction and only changes through an explicit Resize.
//
// The zero value is a usable buffer with zero capacity and no allocated
// storage.
//
// A RingBuffer is not safe for concurrent use; see Queue for the
// synchronized variant.
type RingBuffer[T any] struct {
	data []T

	// Cursor invariant: oldest is a physical index in [0, cap); write stays
	// in [0, 2*cap) and may exceed cap, meaning the occupied region wrapped.
	// The occupied region is [oldest, write) when write < cap, otherwise
	// [oldest, cap) plus [0, write-cap). Slots outside the occupied region
	// hold the zero value.
	oldest int
	write  int

	// version is bumped by every mutating operation and lets in-flight
	// iteration detect that it got invalidated.
	version uint64

	copier func(T) (T, error)
}

// New returns a buffer with the given capacity. A capacity of zero allocates
// no storage. New panics if capacity is negative.
func New[T any](capacity int, opts ...Option[T]) *RingBuffer[T] {
	if capacity < 0 {
		panic("circbuf: negative capacity")
	}

	var cfg config[T]
	for _, opt := range opts {
		opt(&cfg)
	}

	b := &RingBuffer[T]{copier: cfg.copier}
	if capacity > 0 {
		b.data = make([]T, capacity)
	}

	return b
}

// FromSlice returns a buffer whose size and capacity both equal len(values),
// with the elements copied in order. Construction copies by plain assignment;
// a copier set with WithCopier applies only to later Clone, CopyFrom and
// Resize calls.
func FromSlice[T any](values []T, opts ...Option[T]) *RingBuffer[T] {
	b := New(len(values), opts...)
	copy(b.data, values)
	b.write = len(values)
	return b
}

// Collect returns a buffer with the given capacity filled with at most
// capacity leading elements of seq. The rest of the sequence is not consumed.
// Like FromSlice, construction copies by plain assignment regardless of any
// configured copier.
func Collect[T any](capacity int, seq iter.Seq[T], opts ...Option[T]) *RingBuffer[T] {
	b := New(capacity, opts...)
	b.AppendSeq(seq)
	return b
}

// checkedIndex folds a cursor in [0, 2*cap) back into storage range. Every
// operation routes wraparound through here.
func (b *RingBuffer[T]) checkedIndex(index int) int {
	if index >= len(b.data) {
		return index - len(b.data)
	}
	return index
}

// releaseRange resets the slots spanned by the cursor range [from, to) to the
// zero value so the GC can reclaim whatever the elements referenced.
func (b *RingBuffer[T]) releaseRange(from, to int) {
	var zero T
	for i := from; i != to; i++ {
		b.data[b.checkedIndex(i)] = zero
	}
}

// Len returns the number of elements currently held.
func (b *RingBuffer[T]) Len() int {
	if b.write >= b.oldest {
		return b.write - b.oldest
	}
	return len(b.data) - b.oldest + b.write
}

// Cap returns the total slot count.
func (b *RingBuffer[T]) Cap() int {
	return len(b.data)
}

// IsEmpty reports whether the buffer holds no elements.
func (b *RingBuffer[T]) IsEmpty() bool {
	return b.Len() == 0
}

// IsFull reports whether the next PushBack would overwrite.
func (b *RingBuffer[T]) IsFull() bool {
	return b.Len() == len(b.data)
}

// PushBack appends value at the logical end. If the buffer is full, the
// logically-oldest element is overwritten. It reports whether an overwrite
// occurred. On a zero-capacity buffer the call is a no-op and returns false.
func (b *RingBuffer[T]) PushBack(value T) bool {
	capacity := len(b.data)
	if capacity == 0 {
		return false
	}

	b.version++

	overwrite := b.write >= capacity && b.write-capacity == b.oldest
	slot := b.checkedIndex(b.write)

	if overwrite {
		b.oldest++
		if b.oldest == capacity {
			b.oldest = 0
			b.write = capacity - 1
		}
	}

	b.data[slot] = value
	b.write++

	return overwrite
}

// EmplaceBack appends the element produced by construct, which may fail.
//
// When the buffer is not full and construct fails, the buffer is left exactly
// as before the call. When the buffer is full, the oldest element is evicted
// before construct runs; if construct then fails, the eviction stands: the
// freed slot stays vacant, Len drops by one and the error is returned. The
// buffer remains valid in every case.
func (b *RingBuffer[T]) EmplaceBack(construct func() (T, error)) (bool, error) {
	capacity := len(b.data)
	if capacity == 0 {
		return false, nil
	}

	overwrite := b.write >= capacity && b.write-capacity == b.oldest
	slot := b.checkedIndex(b.write)

	if overwrite {
		b.version++
		b.oldest++
		if b.oldest == capacity {
			b.oldest = 0
			b.write = capacity - 1
		}

		var zero T
		b.data[slot] = zero
	}

	value, err := construct()
	if err != nil {
		return false, err
	}

	b.version++
	b.data[slot] = value
	b.write++

	return overwrite, nil
}

// Append pushes elements from values while free capacity remains. It never
// overwrites existing data and returns the number of elements consumed.
func (b *RingBuffer[T]) Append(values []T) int {
	consumed := 0
	for consumed < len(values) && !b.IsFull() {
		b.PushBack(values[consumed])
		consumed++
	}
	return consumed
}

// AppendSeq pushes elements from seq while free capacity remains, without
// overwriting. It returns the number of elements consumed. Fullness is
// checked before every pull, so a one-shot sequence keeps the elements that
// did not fit.
func (b *RingBuffer[T]) AppendSeq(seq iter.Seq[T]) int {
	if b.IsFull() {
		return 0
	}

	consumed := 0
	for value := range seq {
		b.PushBack(value)
		consumed++
		if b.IsFull() {
			break
		}
	}
	return consumed
}

// AppendFunc pushes up to n constructed elements while free capacity
// remains. If any construct call fails, every element constructed during
// this call is released, the write cursor is restored and the buffer is left
// exactly as before the call.
func (b *RingBuffer[T]) AppendFunc(n int, construct func(i int) (T, error)) (int, error) {
	oldWrite := b.write

	consumed := 0
	for consumed < n && !b.IsFull() {
		value, err := construct(consumed)
		if err != nil {
			b.releaseRange(oldWrite, b.write)
			b.write = oldWrite
			b.version++
			return 0, err
		}

		b.PushBack(value)
		consumed++
	}

	return consumed, nil
}

// PopFront removes and returns the logically-first element. It panics if the
// buffer is empty.
func (b *RingBuffer[T]) PopFront() T {
	if b.IsEmpty() {
		panic("circbuf: PopFront on empty buffer")
	}

	b.version++

	value := b.data[b.oldest]
	var zero T
	b.data[b.oldest] = zero

	b.oldest++
	if b.oldest == len(b.data) {
		b.oldest = 0
		b.write -= len(b.data)
	}

	return value
}

// PopBack removes and returns the logically-last element. It panics if the
// buffer is empty.
func (b *RingBuffer[T]) PopBack() T {
	if b.IsEmpty() {
		panic("circbuf: PopBack on empty buffer")
	}

	b.version++

	slot := b.checkedIndex(b.write - 1)
	value := b.data[slot]
	var zero T
	b.data[slot] = zero
	b.write--

	return value
}

// Front returns the logically-first element. It panics if the buffer is
// empty.
func (b *RingBuffer[T]) Front() T {
	if b.IsEmpty() {
		panic("circbuf: Front on empty buffer")
	}
	return b.data[b.oldest]
}

// Back returns the logically-last element. It panics if the buffer is empty.
func (b *RingBuffer[T]) Back() T {
	if b.IsEmpty() {
		panic("circbuf: Back on empty buffer")
	}
	return b.data[b.checkedIndex(b.write-1)]
}

// At returns the element at logical position i, where 0 addresses the oldest
// element. It panics if i is out of range.
func (b *RingBuffer[T]) At(i int) T {
	if i < 0 || i >= b.Len() {
		panic("circbuf: index out of range")
	}
	return b.data[b.checkedIndex(b.oldest+i)]
}

// Set replaces the element at logical position i. It panics if i is out of
// range.
func (b *RingBuffer[T]) Set(i int, value T) {
	if i < 0 || i >= b.Len() {
		panic("circbuf: index out of range")
	}
	b.version++
	b.data[b.checkedIndex(b.oldest+i)] = value
}

// Resize replaces the storage with a block of the given capacity, keeping
// the oldest min(capacity, Len()) elements at logical positions starting
// from zero. When capacity is smaller than Len(), the most recently pushed
// elements are discarded; that data loss is defined behavior, not an error.
//
// Without a copier the transfer is plain assignment and the returned error
// is always nil. With a copier, a copy failure aborts the resize, the new
// block is abandoned and the buffer is left exactly as before the call.
func (b *RingBuffer[T]) Resize(capacity int) error {
	if capacity < 0 {
		panic("circbuf: negative capacity")
	}

	var next []T
	if capacity > 0 {
		next = make([]T, capacity)
	}

	kept := min(capacity, b.Len())

	if err := b.transfer(next, kept); err != nil {
		return err
	}

	b.data = next
	b.oldest = 0
	b.write = kept
	b.version++

	return nil
}

// transfer copies the first n logical elements into dst[0:n], applying the
// copier when one is configured.
func (b *RingBuffer[T]) transfer(dst []T, n int) error {
	if b.copier == nil {
		for i := range n {
			dst[i] = b.data[b.checkedIndex(b.oldest+i)]
		}
		return nil
	}

	for i := range n {
		value, err := b.copier(b.data[b.checkedIndex(b.oldest+i)])
		if err != nil {
			return err
		}
		dst[i] = value
	}

	return nil
}

// Clone returns an independent buffer with the same capacity, the same
// copier and the same logical sequence starting at position zero. A copier
// failure aborts the clone and returns the error.
func (b *RingBuffer[T]) Clone() (*RingBuffer[T], error) {
	clone := &RingBuffer[T]{copier: b.copier}
	if len(b.data) > 0 {
		clone.data = make([]T, len(b.data))
	}

	size := b.Len()
	if err := b.transfer(clone.data, size); err != nil {
		return nil, err
	}
	clone.write = size

	return clone, nil
}

// CopyFrom replaces the receiver's content with other's logical sequence.
//
// When the receiver's capacity can hold other's elements, the existing
// storage is reused in place; a copier failure mid-copy leaves the receiver
// valid but empty. Otherwise fresh storage of other's capacity is populated
// first and installed only on success, leaving the receiver untouched on
// failure.
func (b *RingBuffer[T]) CopyFrom(other *RingBuffer[T]) error {
	if b == other {
		return nil
	}

	if b.Cap() < other.Len() {
		clone, err := other.Clone()
		if err != nil {
			return err
		}

		b.data = clone.data
		b.oldest = 0
		b.write = clone.write
		b.version++

		return nil
	}

	b.releaseRange(b.oldest, b.write)
	b.oldest = 0
	b.write = 0
	b.version++

	size := other.Len()
	for i := range size {
		value := other.data[other.checkedIndex(other.oldest+i)]

		if b.copier != nil {
			copied, err := b.copier(value)
			if err != nil {
				b.releaseRange(0, i)
				return err
			}
			value = copied
		}

		b.data[i] = value
	}
	b.write = size

	return nil
}

// MoveFrom takes ownership of other's storage and content. Afterwards other
// is in the default state: empty, zero capacity, no allocated storage.
func (b *RingBuffer[T]) MoveFrom(other *RingBuffer[T]) {
	if b == other {
		return
	}

	b.data = other.data
	b.oldest = other.oldest
	b.write = other.write
	b.version++

	other.data = nil
	other.oldest = 0
	other.write = 0
	other.version++
}

// Swap exchanges content, capacity and cursors with other. Copiers stay with
// their buffers.
func (b *RingBuffer[T]) Swap(other *RingBuffer[T]) {
	if b == other {
		return
	}

	b.data, other.data = other.data, b.data
	b.oldest, other.oldest = other.oldest, b.oldest
	b.write, other.write = other.write, b.write
	b.version++
	other.version++
}

// Reset removes all elements, keeping capacity and storage.
func (b *RingBuffer[T]) Reset() {
	b.releaseRange(b.oldest, b.write)
	b.oldest = 0
	b.write = 0
	b.version++
}

// Slice returns the logical sequence, oldest first, as a fresh slice.
func (b *RingBuffer[T]) Slice() []T {
	size := b.Len()
	if size == 0 {
		return nil
	}

	out := make([]T, size)
	for i := range size {
		out[i] = b.data[b.checkedIndex(b.oldest+i)]
	}
	return out
}
