// Package shm
// Author: momentics <momentics@gmail.com>
//
// Per-process shared-memory release channel: a small mmap'd region,
// one per registered process, carrying two fields writable only by the
// arbiter server and read by the owning process's client library —
// a monotonically increasing release-request counter and a
// "thread was forcibly preempted" flag. There is no locking: the server
// is the sole writer and uses release-ordered atomic stores; readers
// use acquire-ordered loads.
package shm
