// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations, DTOs, and constants.

package api

import "time"

// NumPriorities is the number of distinct priority levels a process may
// request cores at. Index 0 is the highest priority.
const NumPriorities = 8

// ThreadState enumerates the lifecycle state of a registered thread.
type ThreadState int

const (
	// RunningExclusive means the thread is pinned to a managed core.
	RunningExclusive ThreadState = iota
	// RunningUnmanaged means the thread runs on the shared unmanaged core.
	// This is the initial state after registration.
	RunningUnmanaged
	// RunningPreempted means the thread was forcibly evicted from its
	// exclusive core after it failed to release in time.
	RunningPreempted
	// Blocked means the thread asked for a core and is waiting to be granted one.
	Blocked
)

func (s ThreadState) String() string {
	switch s {
	case RunningExclusive:
		return "running_exclusive"
	case RunningUnmanaged:
		return "running_unmanaged"
	case RunningPreempted:
		return "running_preempted"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// ArbiterMetrics provides a standard layout for health/statistics reporting.
type ArbiterMetrics struct {
	NumProcesses     int
	NumThreads       int
	ManagedCores     int
	CoresGranted     int
	ReleasesPending  int
	ThreadsPreempted uint64
	StartedAt        time.Time
}

// ServiceInfo exposes descriptive build- and runtime info for external tools.
type ServiceInfo struct {
	Name      string
	Version   string
	Build     string
	StartedAt time.Time
}
