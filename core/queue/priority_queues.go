// File: core/queue/priority_queues.go
// Author: momentics <momentics@gmail.com>

package queue

import (
	eapache "github.com/eapache/queue"

	"github.com/momentics/corearbiter/api"
	"github.com/momentics/corearbiter/core"
)

// PriorityQueues holds one FIFO per priority level, 0 highest down to
// api.NumPriorities-1 lowest. A process sits in queue p exactly while
// desired[p] > grantedAtOrAbove(p); membership is idempotent (pushing
// an already-queued process at the same level is a no-op), matching
// the "enqueued if not already present, otherwise removed" rule for
// unsatisfied-demand recomputation.
type PriorityQueues struct {
	levels  [api.NumPriorities]*eapache.Queue
	present [api.NumPriorities]map[*core.Process]struct{}
}

// New creates an empty set of priority queues.
func New() *PriorityQueues {
	pq := &PriorityQueues{}
	for i := range pq.levels {
		pq.levels[i] = eapache.New()
		pq.present[i] = make(map[*core.Process]struct{})
	}
	return pq
}

// Push enqueues p at priority if not already present there, preserving
// FIFO order among processes already waiting at the same level.
func (pq *PriorityQueues) Push(priority int, p *core.Process) {
	if _, ok := pq.present[priority][p]; ok {
		return
	}
	pq.present[priority][p] = struct{}{}
	pq.levels[priority].Add(p)
}

// Pop removes and returns the longest-waiting process at priority, or
// (nil, false) if that level is empty.
func (pq *PriorityQueues) Pop(priority int) (*core.Process, bool) {
	q := pq.levels[priority]
	if q.Length() == 0 {
		return nil, false
	}
	p := q.Remove().(*core.Process)
	delete(pq.present[priority], p)
	return p, true
}

// Len reports how many processes are waiting at priority.
func (pq *PriorityQueues) Len(priority int) int {
	return pq.levels[priority].Length()
}

// Has reports whether p is currently queued at priority.
func (pq *PriorityQueues) Has(priority int, p *core.Process) bool {
	_, ok := pq.present[priority][p]
	return ok
}

// PeekHighestWithBlocked scans priority levels from highest (0) to
// lowest for the longest-waiting process that has at least one BLOCKED
// session, per Allocator Phase 1's candidate rule. It neither dequeues
// nor reorders:
// the caller re-evaluates and requeues the process's membership after
// granting, since one grant may not exhaust its demand at this level.
func (pq *PriorityQueues) PeekHighestWithBlocked() (*core.Process, int, bool) {
	for priority := 0; priority < api.NumPriorities; priority++ {
		q := pq.levels[priority]
		n := q.Length()
		for i := 0; i < n; i++ {
			cand := q.Get(i).(*core.Process)
			if cand.NumBlocked() > 0 {
				return cand, priority, true
			}
		}
	}
	return nil, 0, false
}

// Remove drops p from priority's queue if present, used when its
// demand there becomes satisfied or it disconnects entirely. O(n) in
// the queue's length, acceptable given each level holds at most one
// entry per process.
func (pq *PriorityQueues) Remove(priority int, p *core.Process) {
	if _, ok := pq.present[priority][p]; !ok {
		return
	}
	q := pq.levels[priority]
	n := q.Length()
	for i := 0; i < n; i++ {
		cur := q.Remove().(*core.Process)
		if cur == p {
			continue
		}
		q.Add(cur)
	}
	delete(pq.present[priority], p)
}

// HasOtherThan reports whether priority's queue holds any process other
// than exclude. Membership per level is at most one entry per process
// (Push is idempotent), so a length of one can only be exclude itself.
func (pq *PriorityQueues) HasOtherThan(priority int, exclude *core.Process) bool {
	n := pq.levels[priority].Length()
	if n == 0 {
		return false
	}
	if n == 1 {
		return !pq.Has(priority, exclude)
	}
	return true
}

// RemoveAll drops p from every priority level, used on disconnect.
func (pq *PriorityQueues) RemoveAll(p *core.Process) {
	for priority := 0; priority < api.NumPriorities; priority++ {
		pq.Remove(priority, p)
	}
}

// CountAtOrBelow sums queue lengths from priority down to the lowest
// level.
func (pq *PriorityQueues) CountAtOrBelow(priority int) int {
	n := 0
	for p := priority; p < api.NumPriorities; p++ {
		n += pq.Len(p)
	}
	return n
}
