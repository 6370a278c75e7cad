// Package cpuset
// Author: momentics <momentics@gmail.com>
//
// Creates and tears down the cpuset hierarchy the arbiter uses to pin and
// evict threads, and is the sole mechanism by which threads migrate
// between cores: writing a thread ID into a cpuset's tasks file moves
// it there atomically. The arbiter never calls a thread-affinity
// syscall directly on client threads.
//
// Platform-specific implementations live in cpuset_linux.go (the real
// mechanism, cpusets being a Linux-only kernel facility) and
// cpuset_stub.go (build-tag guarded fallback for every other OS).
package cpuset
