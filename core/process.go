// File: core/process.go
// Author: momentics <momentics@gmail.com>
//
// Process: per-process arbiter state, indexed by its shared memory
// region and the set of threads it has registered.

package core

import (
	"github.com/momentics/corearbiter/api"
	"github.com/momentics/corearbiter/shm"
)

// Process tracks one registered application process: its shared memory
// region, its desired core counts per priority, and every session it
// owns, bucketed by current state.
type Process struct {
	ID int32

	// Shm is nil until the process's first thread registers (the
	// region and its fd are created/sent exactly once per process).
	Shm *shm.Region

	// ReleaseCount is the server-private count of cores this process has
	// released, voluntarily or by forced preemption. While Shm's
	// release-request counter exceeds it, the process owes a release.
	ReleaseCount uint64

	// TotalCoresOwned is the number of RunningExclusive sessions this
	// process currently holds, kept in lockstep with CoreTable grants.
	TotalCoresOwned uint32

	// Desired[p] is the most recently requested core count at priority
	// p (CORES_REQUESTED payload), index 0 highest .. NumPriorities-1
	// lowest.
	Desired [api.NumPriorities]uint32

	ThreadsByState map[api.ThreadState]map[*Session]struct{}

	// blockedOrder preserves the order in which sessions entered the
	// Blocked state, so the allocator can grant a core to the
	// longest-waiting blocked thread of a chosen process, per the
	// "insertion order of that session into the BLOCKED set" rule.
	blockedOrder []*Session
}

// NewProcess creates an empty process record with no threads and no
// desired cores at any priority.
func NewProcess(id int32) *Process {
	p := &Process{
		ID:             id,
		ThreadsByState: make(map[api.ThreadState]map[*Session]struct{}, 4),
	}
	for _, s := range []api.ThreadState{api.RunningExclusive, api.RunningUnmanaged, api.RunningPreempted, api.Blocked} {
		p.ThreadsByState[s] = make(map[*Session]struct{})
	}
	return p
}

// AddSession registers s under its current state.
func (p *Process) AddSession(s *Session) {
	p.ThreadsByState[s.State][s] = struct{}{}
	if s.State == api.Blocked {
		p.blockedOrder = append(p.blockedOrder, s)
	}
}

// Transition moves s from its current bucket to newState, updating
// TotalCoresOwned when entering or leaving RunningExclusive and
// blockedOrder when entering or leaving Blocked.
func (p *Process) Transition(s *Session, newState api.ThreadState) {
	delete(p.ThreadsByState[s.State], s)
	if s.State == api.RunningExclusive {
		p.TotalCoresOwned--
	}
	if s.State == api.Blocked {
		p.removeFromBlockedOrder(s)
	}
	s.State = newState
	p.ThreadsByState[newState][s] = struct{}{}
	if newState == api.RunningExclusive {
		p.TotalCoresOwned++
	}
	if newState == api.Blocked {
		p.blockedOrder = append(p.blockedOrder, s)
	}
}

// RemoveSession drops s from the process entirely, e.g. on disconnect.
func (p *Process) RemoveSession(s *Session) {
	delete(p.ThreadsByState[s.State], s)
	if s.State == api.RunningExclusive {
		p.TotalCoresOwned--
	}
	if s.State == api.Blocked {
		p.removeFromBlockedOrder(s)
	}
}

func (p *Process) removeFromBlockedOrder(s *Session) {
	for i, cur := range p.blockedOrder {
		if cur == s {
			p.blockedOrder = append(p.blockedOrder[:i], p.blockedOrder[i+1:]...)
			return
		}
	}
}

// PopEarliestBlocked returns and removes the longest-waiting blocked
// session, or (nil, false) if this process has none. The caller is
// responsible for transitioning the returned session out of Blocked
// (e.g. via Transition) once a core has actually been granted.
func (p *Process) PopEarliestBlocked() (*Session, bool) {
	if len(p.blockedOrder) == 0 {
		return nil, false
	}
	s := p.blockedOrder[0]
	p.blockedOrder = p.blockedOrder[1:]
	delete(p.ThreadsByState[api.Blocked], s)
	return s, true
}

// GrantedAtOrAbove counts this process's RunningExclusive sessions
// whose GrantedPriority is priority or any lower (numerically larger,
// worse) priority level. Used by the allocator to decide whether a
// process already holds enough cores to satisfy its desire at and
// above a given level, per the server's core-counting rule: a session
// granted at priority q continues to count toward satisfying demand at
// every p <= q, even after Desired[] changes.
func (p *Process) GrantedAtOrAbove(priority int) int {
	n := 0
	for s := range p.ThreadsByState[api.RunningExclusive] {
		if s.GrantedPriority >= priority {
			n++
		}
	}
	return n
}

// NumBlocked reports how many of this process's threads are currently
// parked in THREAD_BLOCK.
func (p *Process) NumBlocked() int {
	return len(p.ThreadsByState[api.Blocked])
}
