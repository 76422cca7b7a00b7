package circbuf

import (
	"sync"
	"testing"

	eq "github.com/eapache/queue"
)

const benchCapacity = 2048

func Benchmark_RingBuffer_PushPop(b *testing.B) {
	b.ReportAllocs()

	buf := New[int](benchCapacity)

	for b.Loop() {
		buf.PushBack(1)
		buf.PopFront()
	}
}

func Benchmark_RingBuffer_PushBack_Overwrite(b *testing.B) {
	b.ReportAllocs()

	buf := New[int](benchCapacity)
	for range benchCapacity {
		buf.PushBack(0)
	}

	for b.Loop() {
		buf.PushBack(1)
	}
}

func Benchmark_Queue_PushPop(b *testing.B) {
	b.ReportAllocs()

	q := NewQueue[int](benchCapacity)

	for b.Loop() {
		if _, err := q.Push(1); err != nil {
			b.Fatal(err)
		}
		if _, ok := q.TryPop(); !ok {
			b.Fatal("unexpected empty queue")
		}
	}
}

func Benchmark_Queue_Parallel(b *testing.B) {
	b.ReportAllocs()

	q := NewQueue[int](benchCapacity)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := q.Push(1); err != nil {
				b.Fatal(err)
			}
			q.TryPop()
		}
	})
}

// Baseline: eapache/queue behind a mutex, the closest off-the-shelf
// unbounded FIFO.
func Benchmark_EapacheQueue_PushPop(b *testing.B) {
	b.ReportAllocs()

	var mu sync.Mutex
	q := eq.New()

	for b.Loop() {
		mu.Lock()
		q.Add(1)
		mu.Unlock()

		mu.Lock()
		q.Remove()
		mu.Unlock()
	}
}
