// File: core/registry.go
// Author: momentics <momentics@gmail.com>
//
// ProcessRegistry: the server's sole map from process id to Process,
// and the other half (along with CoreTable) of the arbiter's ownership
// graph — every Session and Core reachable from this package is
// reachable from one of these two roots.

package core

// ProcessRegistry owns every known Process, keyed by its pid as
// reported at THREAD_REGISTER time.
type ProcessRegistry struct {
	byID map[int32]*Process
}

// NewProcessRegistry creates an empty registry.
func NewProcessRegistry() *ProcessRegistry {
	return &ProcessRegistry{byID: make(map[int32]*Process)}
}

// GetOrCreate returns the existing Process for id, creating and storing
// a new one if this is the process's first registered thread.
func (r *ProcessRegistry) GetOrCreate(id int32) *Process {
	if p, ok := r.byID[id]; ok {
		return p
	}
	p := NewProcess(id)
	r.byID[id] = p
	return p
}

// Get returns the Process for id, or nil if none has registered.
func (r *ProcessRegistry) Get(id int32) *Process {
	return r.byID[id]
}

// Remove drops a process from the registry entirely, e.g. once its last
// thread has disconnected.
func (r *ProcessRegistry) Remove(id int32) {
	delete(r.byID, id)
}

// All returns every currently registered process. Used for metrics
// snapshots and debug dumps, not on the allocation hot path.
func (r *ProcessRegistry) All() []*Process {
	out := make([]*Process, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out
}

// Len reports the number of registered processes.
func (r *ProcessRegistry) Len() int {
	return len(r.byID)
}

// TotalBlocked sums NumBlocked across every registered process, for
// COUNT_BLOCKED_THREADS: the number of sessions currently parked in
// THREAD_BLOCK awaiting a core, system-wide, not just at one priority.
func (r *ProcessRegistry) TotalBlocked() int {
	total := 0
	for _, p := range r.byID {
		total += p.NumBlocked()
	}
	return total
}
