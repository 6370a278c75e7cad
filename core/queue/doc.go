// Package queue implements the arbiter's eight priority-level FIFO
// queues: one queue per priority, each holding the processes that have
// unsatisfied demand at that level. Backed by
// github.com/eapache/queue, the same ring-buffer FIFO this module's
// teacher depends on for its buffer pool.
//
// Author: momentics <momentics@gmail.com>
package queue
