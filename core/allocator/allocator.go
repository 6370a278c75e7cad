// File: core/allocator/allocator.go
// Author: momentics <momentics@gmail.com>

package allocator

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"

	"github.com/momentics/corearbiter/api"
	"github.com/momentics/corearbiter/core"
	"github.com/momentics/corearbiter/core/preempt"
	"github.com/momentics/corearbiter/core/queue"
	"github.com/momentics/corearbiter/cpuset"
)

// Notifier delivers the single wakeup byte that releases a client
// thread parked in THREAD_BLOCK once its cpuset membership has changed.
type Notifier interface {
	Wakeup(socket int) error
}

// ArmedTimer reports a release timer the allocator armed during a
// DistributeCores pass; the caller registers fd with its event loop and
// remembers which process it belongs to.
type ArmedTimer struct {
	FD        int
	ProcessID int32
}

// Allocator owns the core-granting policy. It never runs concurrently
// with itself: every method is called from the single-threaded event
// loop.
type Allocator struct {
	Table  *core.CoreTable
	Queues *queue.PriorityQueues
	Cpuset cpuset.Controller
	Notify Notifier
	Timers preempt.Manager

	// PreemptionTimeoutMs is the duration a release request is given
	// before the offending thread is forcibly preempted.
	PreemptionTimeoutMs uint32

	// CoresGrantedTotal and CoresPreemptedTotal are monotonic counters
	// the caller (server.runAllocator) snapshots into its metrics sink
	// after every DistributeCores pass.
	CoresGrantedTotal   uint64
	CoresPreemptedTotal uint64
}

// New creates an Allocator wired to the given collaborators.
func New(table *core.CoreTable, queues *queue.PriorityQueues, cs cpuset.Controller, notify Notifier, timers preempt.Manager, preemptionTimeoutMs uint32) *Allocator {
	return &Allocator{
		Table:               table,
		Queues:              queues,
		Cpuset:              cs,
		Notify:              notify,
		Timers:              timers,
		PreemptionTimeoutMs: preemptionTimeoutMs,
	}
}

// ReleaseRequestsOutstanding counts managed cores with a release
// request still pending against their current holder.
func (a *Allocator) ReleaseRequestsOutstanding() int {
	n := 0
	for _, c := range a.Table.Managed {
		if c.ReleasePending {
			n++
		}
	}
	return n
}

// RecomputeDemand re-evaluates p's priority-queue membership at every
// level after a change to its Desired[] table or its ownership counts.
func (a *Allocator) RecomputeDemand(p *core.Process) {
	for priority := 0; priority < api.NumPriorities; priority++ {
		unsatisfied := p.Desired[priority] > uint32(p.GrantedAtOrAbove(priority))
		if unsatisfied {
			a.Queues.Push(priority, p)
		} else {
			a.Queues.Remove(priority, p)
		}
	}
}

// DistributeCores runs both allocation phases and returns any release
// timers newly armed during Phase 2, for the caller to register with
// its event loop.
func (a *Allocator) DistributeCores() []ArmedTimer {
	a.grantIdleCores()
	return a.requestReleases()
}

// grantIdleCores is Phase 1: for each idle managed core, grant it to
// the longest-waiting blocked session of the highest-priority process
// that has one.
func (a *Allocator) grantIdleCores() {
	for {
		idle := a.Table.IdleCores()
		if len(idle) == 0 {
			return
		}
		proc, priority, ok := a.Queues.PeekHighestWithBlocked()
		if !ok {
			return
		}
		session, ok := proc.PopEarliestBlocked()
		if !ok {
			// Demand bookkeeping and the blocked set disagreed; end
			// Phase 1 for this pass rather than spin on this process.
			return
		}
		if err := a.grantCoreTo(proc, session, idle[0], priority); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"process": proc.ID, "thread": session.ThreadID, "core": idle[0].ID,
			}).Error("allocator: failed to grant core")
			continue
		}
		a.RecomputeDemand(proc)
	}
}

// grantCoreTo implements moveThreadToExclusiveCore: migrates the
// thread's cpuset membership, links session and core, transitions
// state, and wakes the client.
func (a *Allocator) grantCoreTo(proc *core.Process, session *core.Session, c *core.Core, priority int) error {
	core.Assert(session.State == api.Blocked, "grantCoreTo: session %d not BLOCKED", session.ThreadID)
	core.Assert(c.ExclusiveThread == nil, "grantCoreTo: core %d not idle", c.ID)

	if err := a.Cpuset.MoveToCore(int(session.ThreadID), int(c.ID)); err != nil {
		return err
	}
	a.Table.Grant(c, session)
	session.Core = c
	session.GrantedPriority = priority
	proc.Transition(session, api.RunningExclusive)
	a.CoresGrantedTotal++

	if err := a.Notify.Wakeup(session.Socket); err != nil {
		logrus.WithError(err).WithField("thread", session.ThreadID).Warn("allocator: wakeup failed")
	}
	return nil
}

// requestReleases is Phase 2: for each core held at priority ph, if any
// other process has unsatisfied demand at a priority strictly better
// than ph, request the holder release its lowest-priority core.
func (a *Allocator) requestReleases() []ArmedTimer {
	var armed []ArmedTimer
	for _, c := range a.Table.Managed {
		if c.ExclusiveThread == nil {
			continue
		}
		h := c.ExclusiveThread.Process
		ph := c.ExclusiveThread.GrantedPriority

		wantsRelease := false
		for level := 0; level < ph; level++ {
			if a.Queues.HasOtherThan(level, h) {
				wantsRelease = true
				break
			}
		}
		if !wantsRelease {
			continue
		}

		victim := a.pickVictimCore(h)
		if victim == nil || victim.ReleasePending {
			continue
		}
		timer, err := a.requestCoreRelease(h, victim)
		if err != nil {
			logrus.WithError(err).WithField("process", h.ID).Error("allocator: failed to arm release timer")
			continue
		}
		armed = append(armed, timer)
	}
	return armed
}

// pickVictimCore returns the core running h's lowest-priority exclusive
// thread (largest GrantedPriority value), ties broken toward the most
// recently granted core.
func (a *Allocator) pickVictimCore(h *core.Process) *core.Core {
	sessions := h.ThreadsByState[api.RunningExclusive]
	if len(sessions) == 0 {
		return nil
	}
	candidates := make([]*core.Session, 0, len(sessions))
	for s := range sessions {
		candidates = append(candidates, s)
	}
	slices.SortFunc(candidates, func(x, y *core.Session) int {
		if x.GrantedPriority != y.GrantedPriority {
			return y.GrantedPriority - x.GrantedPriority // worst priority first
		}
		switch {
		case x.Core.GrantSeq() > y.Core.GrantSeq():
			return -1 // most recent grant first
		case x.Core.GrantSeq() < y.Core.GrantSeq():
			return 1
		default:
			return 0
		}
	})
	return candidates[0].Core
}

// requestCoreRelease increments the process's shared release-request
// counter, marks the victim core as having a pending release, and arms
// a one-shot preemption timer.
func (a *Allocator) requestCoreRelease(h *core.Process, victim *core.Core) (ArmedTimer, error) {
	if h.Shm != nil {
		h.Shm.IncrementReleaseRequestCount()
	}
	victim.ReleasePending = true

	fd, err := a.Timers.ArmOneShot(a.PreemptionTimeoutMs)
	if err != nil {
		victim.ReleasePending = false
		return ArmedTimer{}, err
	}
	return ArmedTimer{FD: fd, ProcessID: h.ID}, nil
}

// VoluntaryRelease implements the THREAD_BLOCK handler's side of a
// release: the calling session must currently be RunningExclusive. It
// moves the thread to the unmanaged cpuset, frees its core, records the
// release against the process's server-private counter, and leaves the
// session Blocked so Phase 1 can grant it a (possibly different) core
// on a later pass.
func (a *Allocator) VoluntaryRelease(session *core.Session) error {
	core.Assert(session.State == api.RunningExclusive, "VoluntaryRelease: session %d not exclusive", session.ThreadID)
	c := session.Core
	proc := session.Process

	if err := a.Cpuset.MoveToUnmanaged(int(session.ThreadID)); err != nil {
		return err
	}
	a.Table.Release(c)
	session.Core = nil
	proc.ReleaseCount++
	proc.Transition(session, api.Blocked)
	a.RecomputeDemand(proc)
	return nil
}

// ForcePreempt implements the preemption-timer expiry path: picks h's
// lowest-priority exclusive session (the "offending thread"), evicts it
// to the unmanaged cpuset, marks threadPreempted in shared memory, and
// records the release. Returns the preempted session, or nil if h no
// longer holds any exclusive core.
func (a *Allocator) ForcePreempt(h *core.Process) (*core.Session, error) {
	victim := a.pickVictimCore(h)
	if victim == nil {
		return nil, nil
	}
	session := victim.ExclusiveThread
	core.Assert(session != nil, "ForcePreempt: victim core %d has no exclusive thread", victim.ID)

	if h.Shm != nil {
		h.Shm.SetThreadPreempted(true)
	}
	if err := a.Cpuset.MoveToUnmanaged(int(session.ThreadID)); err != nil {
		return nil, err
	}
	a.Table.Release(victim)
	session.Core = nil
	h.ReleaseCount++
	h.Transition(session, api.RunningPreempted)
	a.CoresPreemptedTotal++
	a.RecomputeDemand(h)
	return session, nil
}

// ResumeFromPreemption implements a preempted thread's re-entry via
// THREAD_BLOCK: transitions it to Blocked and, if h no longer owes any
// release, clears threadPreempted.
func (a *Allocator) ResumeFromPreemption(session *core.Session) {
	core.Assert(session.State == api.RunningPreempted, "ResumeFromPreemption: session %d not preempted", session.ThreadID)
	proc := session.Process
	proc.Transition(session, api.Blocked)
	if proc.Shm != nil && proc.Shm.ReleaseRequestCount() <= proc.ReleaseCount {
		proc.Shm.SetThreadPreempted(false)
	}
	a.RecomputeDemand(proc)
}

// Disconnect implements cleanupConnection's allocator-facing half: if
// session was RunningExclusive, free its core; always drop it from its
// process and re-evaluate queue membership.
func (a *Allocator) Disconnect(session *core.Session) {
	proc := session.Process
	if session.State == api.RunningExclusive {
		c := session.Core
		if err := a.Cpuset.MoveToUnmanaged(int(session.ThreadID)); err != nil {
			logrus.WithError(err).WithField("thread", session.ThreadID).Warn("allocator: cleanup cpuset move failed")
		}
		a.Table.Release(c)
	}
	proc.RemoveSession(session)
	a.RecomputeDemand(proc)
}
