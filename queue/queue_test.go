package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueInOutFIFO(t *testing.T) {
	q := New(4)

	q.In(1, 0, []byte("a"))
	q.In(1, 0, []byte("b"))
	q.In(2, 1, []byte("c"))

	item, ok := q.Out()
	require.True(t, ok)
	assert.Equal(t, []byte("a"), item.Data)
	assert.Equal(t, uint64(1), item.FlowID)

	item, ok = q.Out()
	require.True(t, ok)
	assert.Equal(t, []byte("b"), item.Data)

	item, ok = q.Out()
	require.True(t, ok)
	assert.Equal(t, []byte("c"), item.Data)
	assert.Equal(t, uint8(1), item.Direction)
}

func TestQueueOutBlocksUntilIn(t *testing.T) {
	q := New(1)
	done := make(chan Item, 1)

	go func() {
		item, ok := q.Out()
		if ok {
			done <- item
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.In(7, 0, []byte("late"))

	select {
	case item := <-done:
		assert.Equal(t, uint64(7), item.FlowID)
	case <-time.After(time.Second):
		t.Fatal("Out never returned after In")
	}
}

func TestQueueInBlocksWhenFull(t *testing.T) {
	q := New(1)
	q.In(1, 0, []byte("first"))

	unblocked := make(chan struct{})
	go func() {
		q.In(2, 0, []byte("second"))
		close(unblocked)
	}()

	select {
	case <-unblocked:
		t.Fatal("In returned while queue was still full")
	case <-time.After(20 * time.Millisecond):
	}

	_, ok := q.Out()
	require.True(t, ok)

	select {
	case <-unblocked:
	case <-time.After(time.Second):
		t.Fatal("In never unblocked after a slot freed up")
	}
}

func TestQueueCloseUnblocksWaiters(t *testing.T) {
	q := New(1)
	done := make(chan bool, 1)

	go func() {
		_, ok := q.Out()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Out never returned after Close")
	}
}

func TestQueueLen(t *testing.T) {
	q := New(4)
	assert.Equal(t, 0, q.Len())

	q.In(1, 0, []byte("x"))
	q.In(1, 0, []byte("y"))
	assert.Equal(t, 2, q.Len())

	q.Out()
	assert.Equal(t, 1, q.Len())
}
