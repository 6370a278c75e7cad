package allocator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/corearbiter/api"
	"github.com/momentics/corearbiter/core"
	"github.com/momentics/corearbiter/core/allocator"
	"github.com/momentics/corearbiter/core/queue"
)

type fakeCpuset struct {
	moved map[int]int // tid -> core id, unmanagedMarker for unmanaged
}

const unmanagedMarker = -1

func newFakeCpuset() *fakeCpuset {
	return &fakeCpuset{moved: make(map[int]int)}
}

func (f *fakeCpuset) Setup([]int) error { return nil }
func (f *fakeCpuset) Teardown() error   { return nil }

func (f *fakeCpuset) MoveToCore(tid, core int) error {
	f.moved[tid] = core
	return nil
}

func (f *fakeCpuset) MoveToUnmanaged(tid int) error {
	f.moved[tid] = unmanagedMarker
	return nil
}

type fakeNotifier struct{ woken []int }

func (f *fakeNotifier) Wakeup(socket int) error {
	f.woken = append(f.woken, socket)
	return nil
}

type fakeTimers struct {
	nextFD int
	armed  []uint32
}

func (f *fakeTimers) ArmOneShot(timeoutMs uint32) (int, error) {
	f.nextFD++
	f.armed = append(f.armed, timeoutMs)
	return f.nextFD, nil
}
func (f *fakeTimers) Disarm(fd int) error        { return nil }
func (f *fakeTimers) ConsumeExpiry(fd int) error { return nil }

func newTestAllocator(coreIDs []core.CoreID) (*allocator.Allocator, *core.CoreTable, *fakeCpuset, *fakeNotifier, *fakeTimers) {
	table := core.NewCoreTable(coreIDs)
	cs := newFakeCpuset()
	notify := &fakeNotifier{}
	timers := &fakeTimers{}
	a := allocator.New(table, queue.New(), cs, notify, timers, 100)
	return a, table, cs, notify, timers
}

func blockedSession(a *allocator.Allocator, p *core.Process, tid int32, socket int, desired [api.NumPriorities]uint32) *core.Session {
	p.Desired = desired
	s := core.NewSession(tid, p.ID, socket, p)
	p.AddSession(s)
	p.Transition(s, api.Blocked)
	a.RecomputeDemand(p)
	return s
}

func TestScenario1_TwoThreadsBothGetExclusiveCores(t *testing.T) {
	a, table, _, notify, _ := newTestAllocator([]core.CoreID{1, 2})
	p := core.NewProcess(10)

	var desired [api.NumPriorities]uint32
	desired[0] = 2
	s1 := blockedSession(a, p, 1, 101, desired)
	s2 := blockedSession(a, p, 2, 102, desired)

	a.DistributeCores()

	require.Equal(t, api.RunningExclusive, s1.State)
	require.Equal(t, api.RunningExclusive, s2.State)
	require.Equal(t, 0, table.NumIdle())
	require.Contains(t, notify.woken, 101)
	require.Contains(t, notify.woken, 102)
	require.Equal(t, uint64(2), a.CoresGrantedTotal)
}

func TestScenario2_ReleaseRequestedThenGrantedOnBlock(t *testing.T) {
	a, table, _, _, timers := newTestAllocator([]core.CoreID{1})
	procA := core.NewProcess(1)
	procB := core.NewProcess(2)

	var desiredA [api.NumPriorities]uint32
	desiredA[3] = 1
	sa := blockedSession(a, procA, 1, 201, desiredA)
	a.DistributeCores()
	require.Equal(t, api.RunningExclusive, sa.State)
	require.Equal(t, 0, table.NumIdle())

	var desiredB [api.NumPriorities]uint32
	desiredB[0] = 1
	sb := blockedSession(a, procB, 2, 202, desiredB)

	armed := a.DistributeCores()
	require.Len(t, armed, 1)
	require.Len(t, timers.armed, 1)
	require.True(t, sa.Core.ReleasePending)
	require.Equal(t, 1, a.ReleaseRequestsOutstanding())

	require.NoError(t, a.VoluntaryRelease(sa))
	require.Equal(t, api.Blocked, sa.State)

	a.DistributeCores()
	require.Equal(t, api.RunningExclusive, sb.State)
	require.Equal(t, 0, a.ReleaseRequestsOutstanding())
}

func TestScenario3_TimeoutForcesPreemption(t *testing.T) {
	a, _, cs, _, _ := newTestAllocator([]core.CoreID{1})
	procA := core.NewProcess(1)
	procB := core.NewProcess(2)

	var desiredA [api.NumPriorities]uint32
	desiredA[3] = 1
	sa := blockedSession(a, procA, 1, 301, desiredA)
	a.DistributeCores()

	var desiredB [api.NumPriorities]uint32
	desiredB[0] = 1
	blockedSession(a, procB, 2, 302, desiredB)
	a.DistributeCores()

	preempted, err := a.ForcePreempt(procA)
	require.NoError(t, err)
	require.Same(t, sa, preempted)
	require.Equal(t, api.RunningPreempted, sa.State)
	require.Equal(t, unmanagedMarker, cs.moved[1])
	require.Equal(t, uint64(1), a.CoresPreemptedTotal)

	a.DistributeCores()
}

func TestScenario6_ThirdBlockedThreadGrantedWhenDesireExceedsBlocked(t *testing.T) {
	a, table, _, _, _ := newTestAllocator([]core.CoreID{1, 2, 3})
	p := core.NewProcess(1)

	var desired [api.NumPriorities]uint32
	desired[0] = 3
	s1 := blockedSession(a, p, 1, 1, desired)
	s2 := blockedSession(a, p, 2, 2, desired)

	a.DistributeCores()
	require.Equal(t, api.RunningExclusive, s1.State)
	require.Equal(t, api.RunningExclusive, s2.State)
	require.Equal(t, uint32(2), p.TotalCoresOwned)

	s3 := blockedSession(a, p, 3, 3, desired)
	a.DistributeCores()
	require.Equal(t, api.RunningExclusive, s3.State)
	require.Equal(t, 0, table.NumIdle())
}
