// Package preempt manages the one-shot timers armed against every
// pending core-release request. Each armed timer fires at most once;
// on expiry the caller (the allocator, driven by the event loop) forces
// the offending thread off its exclusive core.
//
// Author: momentics <momentics@gmail.com>
package preempt
