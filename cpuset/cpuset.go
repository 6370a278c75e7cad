// File: cpuset/cpuset.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral cpuset controller contract. Platform-specific
// implementations are located in separate files (cpuset_linux.go,
// cpuset_stub.go) guarded by build tags, following the same
// cross-platform-seam convention as the affinity package this one
// replaces.

package cpuset

import "fmt"

// ErrUnsupported is returned on platforms without cpuset filesystem
// support (anything but Linux).
var ErrUnsupported = fmt.Errorf("cpuset: not supported on this platform")

// DefaultRoot is the conventional mount point of the cpuset cgroup
// hierarchy on a Linux host with the legacy (v1) cpuset controller
// mounted standalone.
const DefaultRoot = "/sys/fs/cgroup/cpuset"

// UnmanagedName is the name of the child cpuset holding every CPU not
// under exclusive arbiter control.
const UnmanagedName = "Unmanaged"

// Controller creates and tears down the arbiter's cpuset hierarchy and
// moves threads between cpusets by writing their IDs into the relevant
// tasks file. One Controller exists per server and is only ever driven
// from the single event-loop goroutine.
type Controller interface {
	// Setup ensures the root arbiter cpuset exists, creates one child
	// cpuset per id in managedCores (each containing exactly that CPU
	// plus the host's memory nodes), creates the Unmanaged cpuset
	// containing every other CPU, moves every task currently in the
	// root cpuset into Unmanaged, and removes stale cpusets left over
	// from a prior run (best effort; non-empty ones are left alone).
	Setup(managedCores []int) error

	// MoveToCore migrates tid onto the exclusive cpuset for core.
	MoveToCore(tid int, core int) error

	// MoveToUnmanaged migrates tid onto the Unmanaged cpuset.
	MoveToUnmanaged(tid int) error

	// Teardown moves every task still under the arbiter's cpusets back
	// into the root cpuset and removes the cpusets this Controller
	// created. Called on graceful shutdown and from the signal handler.
	Teardown() error
}
