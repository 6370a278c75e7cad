// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral event reactor interface for cross-platform IO multiplexing.
// The arbiter's event loop is single-threaded: one EventReactor instance is
// waited on from exactly one goroutine for the lifetime of the server.

package reactor

// EventReactor defines basic reactor operations across OS platforms.
type EventReactor interface {
	// Register adds an FD (epoll) or HANDLE (Windows) for read-readiness
	// notifications. userData is returned verbatim in Event.UserData so
	// the caller can map a ready descriptor back to its owning record
	// without a second lookup keyed by fd.
	Register(fd uintptr, userData uintptr) error

	// Unregister removes a previously registered descriptor. It is safe
	// to call after the descriptor has already been closed by the OS
	// (e.g. a peer that reset the connection); implementations must not
	// fail loudly in that case.
	Unregister(fd uintptr) error

	// Wait blocks until events are available and writes into the output
	// slice. Returns number of events written or an error.
	Wait(events []Event) (n int, err error)

	// Close cleans up resources (handle/epfd).
	Close() error
}

// Event contains event information returned by Wait call.
type Event struct {
	Fd       uintptr // File descriptor or handle.
	UserData uintptr // User-provided data.
}
