// Package server implements the arbiter's single-threaded event loop:
// the socket, shared-memory, and cpuset-backed protocol handlers that
// drive core/allocator's distributeCores pass, adapted from this
// module's teacher's reactor-driven connection handling.
//
// Author: momentics <momentics@gmail.com>
package server
