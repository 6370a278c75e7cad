package queue_test

import (
	"testing"

	"github.com/momentics/corearbiter/api"
	"github.com/momentics/corearbiter/core"
	"github.com/momentics/corearbiter/core/queue"
	"github.com/stretchr/testify/require"
)

func blockedProcess(id int32) *core.Process {
	p := core.NewProcess(id)
	s := core.NewSession(1, id, 0, p)
	p.AddSession(s)
	p.Transition(s, api.Blocked)
	return p
}

func TestFIFOOrderWithinLevel(t *testing.T) {
	pq := queue.New()
	a := core.NewProcess(1)
	b := core.NewProcess(2)
	pq.Push(3, a)
	pq.Push(3, b)

	got, ok := pq.Pop(3)
	require.True(t, ok)
	require.Same(t, a, got)

	got, ok = pq.Pop(3)
	require.True(t, ok)
	require.Same(t, b, got)

	_, ok = pq.Pop(3)
	require.False(t, ok)
}

func TestPushIsIdempotentPerLevel(t *testing.T) {
	pq := queue.New()
	a := core.NewProcess(1)
	pq.Push(2, a)
	pq.Push(2, a)
	require.Equal(t, 1, pq.Len(2))
}

func TestPeekHighestWithBlockedPrefersLowerIndex(t *testing.T) {
	pq := queue.New()
	low := blockedProcess(1)
	high := blockedProcess(2)
	pq.Push(5, low)
	pq.Push(1, high)

	got, prio, ok := pq.PeekHighestWithBlocked()
	require.True(t, ok)
	require.Equal(t, 1, prio)
	require.Same(t, high, got)

	// Peek does not dequeue.
	require.True(t, pq.Has(1, high))
}

func TestPeekHighestWithBlockedSkipsProcessWithNoBlockedSessions(t *testing.T) {
	pq := queue.New()
	idle := core.NewProcess(1) // queued but no blocked sessions
	ready := blockedProcess(2)
	pq.Push(0, idle)
	pq.Push(1, ready)

	got, prio, ok := pq.PeekHighestWithBlocked()
	require.True(t, ok)
	require.Equal(t, 1, prio)
	require.Same(t, ready, got)
}

func TestRemoveDropsSpecificProcessPreservingOrder(t *testing.T) {
	pq := queue.New()
	a := core.NewProcess(1)
	b := core.NewProcess(2)
	c := core.NewProcess(3)
	pq.Push(0, a)
	pq.Push(0, b)
	pq.Push(0, c)

	pq.Remove(0, b)
	require.Equal(t, 2, pq.Len(0))
	require.False(t, pq.Has(0, b))

	got, _ := pq.Pop(0)
	require.Same(t, a, got)
	got, _ = pq.Pop(0)
	require.Same(t, c, got)
}

func TestRemoveAllClearsEveryLevel(t *testing.T) {
	pq := queue.New()
	a := core.NewProcess(1)
	pq.Push(0, a)
	pq.Push(4, a)
	pq.RemoveAll(a)
	require.Equal(t, 0, pq.Len(0))
	require.Equal(t, 0, pq.Len(4))
}

func TestCountAtOrBelow(t *testing.T) {
	pq := queue.New()
	pq.Push(2, core.NewProcess(1))
	pq.Push(4, core.NewProcess(2))
	pq.Push(4, core.NewProcess(3))

	require.Equal(t, 3, pq.CountAtOrBelow(2))
	require.Equal(t, 2, pq.CountAtOrBelow(3))
	require.Equal(t, 0, pq.CountAtOrBelow(7))
}
