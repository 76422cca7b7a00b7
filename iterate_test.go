package circbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_RingBuffer_All(t *testing.T) {
	assert := assert.New(t)

	b := New[int](3)
	b.Append([]int{1, 2, 3})
	b.PushBack(4) // wrapped: [2, 3, 4]

	var indexes, values []int
	for i, v := range b.All() {
		indexes = append(indexes, i)
		values = append(values, v)
	}

	assert.Equal([]int{0, 1, 2}, indexes)
	assert.Equal([]int{2, 3, 4}, values)
}

func Test_RingBuffer_Values_EarlyBreak(t *testing.T) {
	assert := assert.New(t)

	b := New[int](8)
	b.Append([]int{1, 2, 3, 4, 5})

	var got []int
	for v := range b.Values() {
		got = append(got, v)
		if len(got) == 2 {
			break
		}
	}

	assert.Equal([]int{1, 2}, got)
}

func Test_RingBuffer_Backward(t *testing.T) {
	assert := assert.New(t)

	b := New[int](4)
	b.Append([]int{1, 2, 3})

	var values []int
	for _, v := range b.Backward() {
		values = append(values, v)
	}

	assert.Equal([]int{3, 2, 1}, values)
}

func Test_RingBuffer_Iteration_InvalidatedByMutation(t *testing.T) {
	assert := assert.New(t)

	b := New[int](4)
	b.Append([]int{1, 2, 3})

	assert.Panics(func() {
		for range b.Values() {
			b.PushBack(4)
		}
	})

	assert.Panics(func() {
		for range b.All() {
			b.PopFront()
		}
	})
}

func Test_RingBuffer_Iterate_Empty(t *testing.T) {
	assert := assert.New(t)

	var b RingBuffer[int]
	for range b.Values() {
		assert.Fail("empty buffer must not yield")
	}
}
