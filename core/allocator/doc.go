// Package allocator implements distributeCores: the two-phase policy
// that grants idle cores to blocked threads by priority and FIFO order,
// then requests voluntary releases from lower-priority holders when
// higher-priority demand goes unsatisfied.
//
// Author: momentics <momentics@gmail.com>
package allocator
