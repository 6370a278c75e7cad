// File: core/session.go
// Author: momentics <momentics@gmail.com>
//
// Session: per-thread arbiter state, one per registered application
// thread, for its entire lifetime (re-created on re-registration, never
// reused across threads).

package core

import "github.com/momentics/corearbiter/api"

// Session tracks one application thread's registration, desired
// priority, and current placement.
type Session struct {
	ThreadID  int32
	ProcessID int32

	// Socket is the connection fd this thread registered on; used to
	// deliver the wakeup byte that answers THREAD_BLOCK once a core is
	// granted.
	Socket int

	Process *Process

	// Core is non-nil only while State == RunningExclusive.
	Core *Core

	State api.ThreadState

	// GrantedPriority is the priority level this session was granted
	// at, frozen at grant time. Distinct from the process's current
	// Desired[] table, which may change after the grant: ownership
	// counts (GrantedAtOrAbove) are evaluated against this frozen
	// value, not against current desire, so that lowering desire at a
	// higher level while raising it at a lower one cannot retroactively
	// strip a session of a core it already holds.
	GrantedPriority int

	// Blocked is not written by any code in this module; a session
	// parked in THREAD_BLOCK is recorded as State == api.Blocked.
	Blocked bool
}

// NewSession creates a freshly-registered session, unmanaged and
// unblocked, owned by process.
func NewSession(threadID, processID int32, socket int, process *Process) *Session {
	return &Session{
		ThreadID:  threadID,
		ProcessID: processID,
		Socket:    socket,
		Process:   process,
		State:     api.RunningUnmanaged,
	}
}
