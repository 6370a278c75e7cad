package core_test

import (
	"testing"

	"github.com/momentics/corearbiter/api"
	"github.com/momentics/corearbiter/core"
	"github.com/stretchr/testify/require"
)

func TestTransitionUpdatesCoresOwned(t *testing.T) {
	p := core.NewProcess(1)
	s := core.NewSession(10, 1, 5, p)
	p.AddSession(s)
	require.Equal(t, 0, int(p.TotalCoresOwned))

	s.GrantedPriority = 2
	p.Transition(s, api.RunningExclusive)
	require.Equal(t, 1, int(p.TotalCoresOwned))
	require.Contains(t, p.ThreadsByState[api.RunningExclusive], s)
	require.NotContains(t, p.ThreadsByState[api.RunningUnmanaged], s)

	p.Transition(s, api.RunningPreempted)
	require.Equal(t, 0, int(p.TotalCoresOwned))
}

func TestGrantedAtOrAboveCountsFrozenPriority(t *testing.T) {
	p := core.NewProcess(1)

	high := core.NewSession(1, 1, 0, p)
	high.GrantedPriority = 1
	p.AddSession(high)
	p.Transition(high, api.RunningExclusive)

	low := core.NewSession(2, 1, 0, p)
	low.GrantedPriority = 5
	p.AddSession(low)
	p.Transition(low, api.RunningExclusive)

	require.Equal(t, 2, p.GrantedAtOrAbove(1))
	require.Equal(t, 1, p.GrantedAtOrAbove(2))
	require.Equal(t, 1, p.GrantedAtOrAbove(5))
	require.Equal(t, 0, p.GrantedAtOrAbove(6))
}

func TestRemoveSessionDecrementsOwned(t *testing.T) {
	p := core.NewProcess(1)
	s := core.NewSession(1, 1, 0, p)
	s.GrantedPriority = 0
	p.AddSession(s)
	p.Transition(s, api.RunningExclusive)
	require.Equal(t, 1, int(p.TotalCoresOwned))

	p.RemoveSession(s)
	require.Equal(t, 0, int(p.TotalCoresOwned))
	require.Equal(t, 0, p.NumBlocked())
}

func TestPopEarliestBlockedPreservesInsertionOrder(t *testing.T) {
	p := core.NewProcess(1)
	a := core.NewSession(1, 1, 0, p)
	b := core.NewSession(2, 1, 0, p)
	p.AddSession(a)
	p.AddSession(b)
	p.Transition(a, api.Blocked)
	p.Transition(b, api.Blocked)
	require.Equal(t, 2, p.NumBlocked())

	got, ok := p.PopEarliestBlocked()
	require.True(t, ok)
	require.Same(t, a, got)
	require.Equal(t, 1, p.NumBlocked())

	got, ok = p.PopEarliestBlocked()
	require.True(t, ok)
	require.Same(t, b, got)

	_, ok = p.PopEarliestBlocked()
	require.False(t, ok)
}

func TestRemoveSessionWhileBlockedDropsFromOrder(t *testing.T) {
	p := core.NewProcess(1)
	a := core.NewSession(1, 1, 0, p)
	b := core.NewSession(2, 1, 0, p)
	p.AddSession(a)
	p.AddSession(b)
	p.Transition(a, api.Blocked)
	p.Transition(b, api.Blocked)

	p.RemoveSession(a)
	got, ok := p.PopEarliestBlocked()
	require.True(t, ok)
	require.Same(t, b, got)
}
