// File: core/coretable.go
// Author: momentics <momentics@gmail.com>
//
// CoreTable: static registry of managed and unmanaged cores.

package core

// CoreID identifies a physical CPU, matching what sched_getcpu() would
// report to a thread running there.
type CoreID int

// NoCore marks the (conceptual) absence of a managed core, used as the
// ID of the special unmanaged core entry.
const NoCore CoreID = -1

// Core tracks which session, if any, currently owns it exclusively.
type Core struct {
	ID CoreID

	// ExclusiveThread is the session pinned here, or nil if the core is
	// idle (or this is the Unmanaged core, whose ExclusiveThread is
	// always nil).
	ExclusiveThread *Session

	// grantSeq is the CoreTable-wide grant sequence number at the time
	// ExclusiveThread was last assigned; used to break ties when the
	// allocator picks a release victim ("most-recent grant" rule).
	grantSeq uint64

	// ReleasePending is set while a voluntary release request is
	// outstanding against this core's current holder, so the allocator
	// never arms a second timer for the same core.
	ReleasePending bool
}

// GrantSeq returns the CoreTable-wide sequence number of this core's
// current grant, or 0 if idle.
func (c *Core) GrantSeq() uint64 {
	return c.grantSeq
}

// CoreTable is the arbiter's static registry of cores: created once at
// startup from the configured exclusiveCores set and never resized.
type CoreTable struct {
	Managed   []*Core
	ByID      map[CoreID]*Core
	Unmanaged *Core

	grantCounter uint64
}

// NewCoreTable builds a table with one Core entry per id in
// managedCoreIDs, plus the Unmanaged core.
func NewCoreTable(managedCoreIDs []CoreID) *CoreTable {
	t := &CoreTable{
		ByID:      make(map[CoreID]*Core, len(managedCoreIDs)),
		Unmanaged: &Core{ID: NoCore},
	}
	for _, id := range managedCoreIDs {
		c := &Core{ID: id}
		t.Managed = append(t.Managed, c)
		t.ByID[id] = c
	}
	return t
}

// Grant assigns core exclusively to s, recording the grant's sequence
// number for later victim tie-breaking. Callers (the allocator) are
// responsible for every other side of the session/core link and for
// invariant checking.
func (t *CoreTable) Grant(c *Core, s *Session) {
	t.grantCounter++
	c.ExclusiveThread = s
	c.grantSeq = t.grantCounter
}

// Release clears a core's exclusive ownership.
func (t *CoreTable) Release(c *Core) {
	c.ExclusiveThread = nil
	c.grantSeq = 0
	c.ReleasePending = false
}

// IdleCores returns every managed core with no exclusive thread, in
// registration order.
func (t *CoreTable) IdleCores() []*Core {
	var idle []*Core
	for _, c := range t.Managed {
		if c.ExclusiveThread == nil {
			idle = append(idle, c)
		}
	}
	return idle
}

// NumIdle reports how many managed cores currently have no exclusive
// thread (TOTAL_AVAILABLE_CORES).
func (t *CoreTable) NumIdle() int {
	n := 0
	for _, c := range t.Managed {
		if c.ExclusiveThread == nil {
			n++
		}
	}
	return n
}

// NumOwned reports how many managed cores currently have an exclusive
// thread, i.e. invariant 1 of spec §3's right-hand side.
func (t *CoreTable) NumOwned() int {
	return len(t.Managed) - t.NumIdle()
}
