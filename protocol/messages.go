// File: protocol/messages.go
// Author: momentics <momentics@gmail.com>
//
// Message kinds and fixed-width payload layouts.

package protocol

import "github.com/momentics/corearbiter/api"

// NumPriorities mirrors api.NumPriorities; kept as a local alias so the
// wire layout is self-describing without importing api for every
// caller that only wants the constant.
const NumPriorities = api.NumPriorities

// MessageKind is the one-byte tag prefixing every client-to-server
// message.
type MessageKind byte

const (
	// ThreadRegister registers a new thread with the arbiter.
	// Payload: ThreadRegisterRequest. Reply: an ancillary shared-memory
	// fd on first registration for a given process.
	ThreadRegister MessageKind = iota + 1

	// CoresRequested updates a process's desired core counts per
	// priority level. Payload: CoresRequestedRequest. No reply; triggers
	// the allocator.
	CoresRequested

	// ThreadBlock marks the calling thread as waiting to be granted a
	// core. No payload, no immediate reply — the thread becomes
	// runnable only once the allocator moves it onto a cpuset and sends
	// the wakeup byte.
	ThreadBlock

	// CountBlockedThreads asks how many threads across all processes are
	// currently BLOCKED. No payload. Reply: uint32 count.
	CountBlockedThreads

	// TotalAvailableCores asks how many managed cores have no
	// exclusive thread right now. No payload. Reply: uint32 count.
	TotalAvailableCores
)

func (k MessageKind) String() string {
	switch k {
	case ThreadRegister:
		return "THREAD_REGISTER"
	case CoresRequested:
		return "CORES_REQUESTED"
	case ThreadBlock:
		return "THREAD_BLOCK"
	case CountBlockedThreads:
		return "COUNT_BLOCKED_THREADS"
	case TotalAvailableCores:
		return "TOTAL_AVAILABLE_CORES"
	default:
		return "UNKNOWN"
	}
}

// ThreadRegisterRequest is the payload of a THREAD_REGISTER message.
type ThreadRegisterRequest struct {
	ProcessID int32
	ThreadID  int32
}

// CoresRequestedRequest is the payload of a CORES_REQUESTED message:
// the number of cores desired at each priority level, index 0 highest.
type CoresRequestedRequest struct {
	Desired [NumPriorities]uint32
}

// WakeupByte is written to a client socket to unblock a thread that is
// parked in a read() once its cpuset membership has changed.
const WakeupByte byte = 1
