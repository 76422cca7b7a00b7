package circbuf

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/dzhiblavi/circular-buffer/internal"
)

// ErrClosed is returned by queue operations after Close, once no data is
// left to drain.
var ErrClosed = errors.New("circular buffer: queue is closed")

// Queue is a bounded blocking queue over a RingBuffer, safe for concurrent
// use by multiple producers and consumers. All operations on one Queue are
// linearized by its internal mutex; element order is FIFO relative to push
// order.
//
// Pushing on a full queue overwrites the oldest element instead of blocking.
// Popping on an empty queue either blocks (WaitPop, WaitPopN) or fails fast
// (TryPop).
type Queue[T any] struct {
	mu       sync.Mutex
	notEmpty *sync.Cond

	buf    RingBuffer[T]
	closed bool

	// Hot traffic counters read by stats, metrics and telemetry. Padded so
	// producers and consumers do not share a cache line.
	_          cpu.CacheLinePad
	pushes     atomic.Uint64
	_          cpu.CacheLinePad
	pops       atomic.Uint64
	_          cpu.CacheLinePad
	overwrites atomic.Uint64

	tel *internal.Telemetry
}

// NewQueue returns a queue with the given capacity. Options apply to the
// underlying buffer; WithTelemetry additionally registers OpenTelemetry
// instruments for the queue. NewQueue panics if capacity is negative.
func NewQueue[T any](capacity int, opts ...Option[T]) *Queue[T] {
	if capacity < 0 {
		panic("circbuf: negative capacity")
	}

	var cfg config[T]
	for _, opt := range opts {
		opt(&cfg)
	}

	q := &Queue[T]{}
	q.notEmpty = sync.NewCond(&q.mu)
	q.buf.copier = cfg.copier
	if capacity > 0 {
		q.buf.data = make([]T, capacity)
	}

	if cfg.telemetryName != "" {
		q.tel = internal.NewTelemetry("queue", cfg.telemetryName)
		q.initMetrics()
	}

	return q
}

func (q *Queue[T]) initMetrics() {
	q.tel.NewCounter("pushed_items", func() int64 { return int64(q.pushes.Load()) })
	q.tel.NewCounter("popped_items", func() int64 { return int64(q.pops.Load()) })
	q.tel.NewCounter("overwritten_items", func() int64 { return int64(q.overwrites.Load()) })
	q.tel.NewGauge("depth", func() int64 { return int64(q.Len()) })
}

// Push appends value, overwriting the oldest element if the queue is full.
// It reports whether an overwrite occurred and returns ErrClosed after
// Close.
func (q *Queue[T]) Push(value T) (bool, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false, ErrClosed
	}

	overwrote := q.buf.PushBack(value)
	stored := q.buf.Cap() > 0
	q.mu.Unlock()

	if stored {
		q.pushes.Add(1)
		if overwrote {
			q.overwrites.Add(1)
		}
		q.notEmpty.Signal()
	}

	return overwrote, nil
}

// Emplace appends the element produced by construct under the lock, with the
// same guarantees as RingBuffer.EmplaceBack.
func (q *Queue[T]) Emplace(construct func() (T, error)) (bool, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false, ErrClosed
	}

	sizeBefore := q.buf.Len()
	overwrote, err := q.buf.EmplaceBack(construct)
	stored := err == nil && q.buf.Cap() > 0

	// A construct failure on a full buffer still evicts the oldest element.
	evicted := overwrote || q.buf.Len() < sizeBefore
	q.mu.Unlock()

	if evicted {
		q.overwrites.Add(1)
	}
	if err != nil {
		return false, err
	}

	if stored {
		q.pushes.Add(1)
		q.notEmpty.Signal()
	}

	return overwrote, nil
}

// Append pushes elements from values while free capacity remains, without
// overwriting, and returns the number consumed. Waiting poppers are woken
// with a broadcast since more than one element may have arrived.
func (q *Queue[T]) Append(values []T) (int, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0, ErrClosed
	}

	consumed := q.buf.Append(values)
	q.mu.Unlock()

	if consumed > 0 {
		q.pushes.Add(uint64(consumed))
		q.notEmpty.Broadcast()
	}

	return consumed, nil
}

// WaitPop removes and returns the logically-first element, blocking while
// the queue is empty. Spurious wakeups are handled by re-checking the
// non-empty predicate. After Close, remaining elements are drained and then
// ErrClosed is returned.
func (q *Queue[T]) WaitPop() (T, error) {
	q.mu.Lock()

	for q.buf.IsEmpty() {
		if q.closed {
			q.mu.Unlock()
			var zero T
			return zero, ErrClosed
		}
		q.notEmpty.Wait()
	}

	value := q.buf.PopFront()
	q.mu.Unlock()

	q.pops.Add(1)

	return value, nil
}

// TryPop removes and returns the logically-first element if one is present.
// It never blocks.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()

	if q.buf.IsEmpty() {
		q.mu.Unlock()
		var zero T
		return zero, false
	}

	value := q.buf.PopFront()
	q.mu.Unlock()

	q.pops.Add(1)

	return value, true
}

// WaitPopN blocks until the queue is non-empty, then drains up to len(dst)
// elements into dst in FIFO order and returns how many were produced. After
// Close, remaining elements are drained and then ErrClosed is returned.
func (q *Queue[T]) WaitPopN(dst []T) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	q.mu.Lock()

	for q.buf.IsEmpty() {
		if q.closed {
			q.mu.Unlock()
			return 0, ErrClosed
		}
		q.notEmpty.Wait()
	}

	produced := 0
	for produced < len(dst) && !q.buf.IsEmpty() {
		dst[produced] = q.buf.PopFront()
		produced++
	}
	q.mu.Unlock()

	q.pops.Add(uint64(produced))

	return produced, nil
}

// Close marks the queue as closed. Further pushes fail with ErrClosed;
// poppers drain the remaining elements and then receive ErrClosed.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.notEmpty.Broadcast()
}

// Len returns the number of elements currently held.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Len()
}

// Cap returns the total slot count.
func (q *Queue[T]) Cap() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Cap()
}

// Resize changes the queue capacity under the lock, with the semantics of
// RingBuffer.Resize.
func (q *Queue[T]) Resize(capacity int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Resize(capacity)
}

// Snapshot returns the current logical sequence, oldest first. The result
// is a momentary copy; the queue may change right after the call returns.
func (q *Queue[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.Slice()
}

// Lock acquires the internal mutex and returns the underlying buffer for a
// sequence of external operations, such as iteration. Automatic thread
// safety is suspended until the matching Unlock; the caller must not retain
// the buffer past it.
func (q *Queue[T]) Lock() *RingBuffer[T] {
	q.mu.Lock()
	return &q.buf
}

// Unlock releases the mutex acquired by Lock.
func (q *Queue[T]) Unlock() {
	q.mu.Unlock()
}

// Do runs fn on the underlying buffer while holding the lock.
func (q *Queue[T]) Do(fn func(b *RingBuffer[T])) {
	q.mu.Lock()
	defer q.mu.Unlock()
	fn(&q.buf)
}

// lockBoth acquires both queues' mutexes without a fixed address order:
// the second lock is only tried, and on contention the first is dropped and
// the acquisition restarted. Two goroutines copying in opposite directions
// cannot deadlock.
func (q *Queue[T]) lockBoth(other *Queue[T]) {
	for {
		q.mu.Lock()
		if other.mu.TryLock() {
			return
		}
		q.mu.Unlock()
		runtime.Gosched()
	}
}

// CopyFrom replaces the queue's content with other's logical sequence, with
// the guarantees of RingBuffer.CopyFrom. Both queues' locks are held for the
// duration. Self-copy is a no-op.
func (q *Queue[T]) CopyFrom(other *Queue[T]) error {
	if q == other {
		return nil
	}

	q.lockBoth(other)

	if q.closed {
		q.mu.Unlock()
		other.mu.Unlock()
		return ErrClosed
	}

	err := q.buf.CopyFrom(&other.buf)
	nonEmpty := !q.buf.IsEmpty()

	q.mu.Unlock()
	other.mu.Unlock()

	if err == nil && nonEmpty {
		q.notEmpty.Broadcast()
	}

	return err
}

// MoveFrom takes ownership of other's buffer content and storage, leaving
// other empty and unallocated. Both locks are held for the duration;
// self-move is a no-op.
func (q *Queue[T]) MoveFrom(other *Queue[T]) {
	if q == other {
		return
	}

	q.lockBoth(other)
	q.buf.MoveFrom(&other.buf)
	nonEmpty := !q.buf.IsEmpty()
	q.mu.Unlock()
	other.mu.Unlock()

	if nonEmpty {
		q.notEmpty.Broadcast()
	}
}

// Swap exchanges the two queues' buffer contents. Both locks are held for
// the duration; self-swap is a no-op.
func (q *Queue[T]) Swap(other *Queue[T]) {
	if q == other {
		return
	}

	q.lockBoth(other)
	q.buf.Swap(&other.buf)
	q.mu.Unlock()
	other.mu.Unlock()

	q.notEmpty.Broadcast()
	other.notEmpty.Broadcast()
}

// PushedCount returns the total number of elements pushed since creation.
func (q *Queue[T]) PushedCount() uint64 { return q.pushes.Load() }

// PoppedCount returns the total number of elements popped since creation.
func (q *Queue[T]) PoppedCount() uint64 { return q.pops.Load() }

// OverwriteCount returns the total number of elements evicted since
// creation, whether replaced by an overwrite or lost to a failed Emplace on
// a full queue.
func (q *Queue[T]) OverwriteCount() uint64 { return q.overwrites.Load() }
