// Package core holds the arbiter's mutually-referential domain model:
// Core, Session, and Process. The three types are kept in a single
// package deliberately, mirroring how tightly the reference C++
// implementation couples them (ThreadInfo/ProcessInfo/CoreInfo as
// nested structs of one class) — Session points at its Process and,
// when exclusive, at its Core; Core points back at its exclusive
// Session; Process owns the set of its Sessions by state. Go's garbage
// collector resolves these reference cycles directly, so unlike the
// C++ original there is no need for a generation-tagged handle
// indirection: CoreTable and the process registry are the sole owners
// (the only maps these structs are reachable from), and every other
// reference between them is a plain, non-owning pointer.
//
// Author: momentics <momentics@gmail.com>
package core
