// File: core/preempt/manager.go
// Author: momentics <momentics@gmail.com>

package preempt

import "fmt"

// ErrUnsupported is returned by the non-Linux build of Manager; the
// arbiter's preemption path requires timerfd and is Linux-only.
var ErrUnsupported = fmt.Errorf("preempt: not supported on this platform")

// Manager arms and disarms one-shot release timers. Each armed timer is
// identified by a file descriptor suitable for registration with the
// event loop's reactor; readiness on that fd means the timer expired.
type Manager interface {
	// ArmOneShot creates a new timer firing once after timeoutMs
	// milliseconds and returns its descriptor.
	ArmOneShot(timeoutMs uint32) (fd int, err error)

	// Disarm cancels and closes a previously armed timer. Safe to call
	// on a timer that has already fired.
	Disarm(fd int) error

	// ConsumeExpiry drains the expiration count from a fired timer fd,
	// required before the fd can be reused or safely closed by some
	// platforms' readiness semantics.
	ConsumeExpiry(fd int) error
}
