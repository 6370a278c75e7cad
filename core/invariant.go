// File: core/invariant.go
// Author: momentics <momentics@gmail.com>
//
// Invariant checking: a violation here means the allocator's bookkeeping
// has diverged from reality, which is not a recoverable condition.

package core

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/momentics/corearbiter/api"
)

// Assert logs a fatal diagnostic and terminates the process if cond is
// false. Reserved for conditions the allocator and core table are
// expected to maintain by construction (e.g. a core's ExclusiveThread
// pointing back at a session that does not point back at the core) —
// never for validating untrusted client input, which must be rejected
// with a protocol error instead.
func Assert(cond bool, format string, args ...interface{}) {
	if cond {
		return
	}
	err := api.NewError(api.ErrCodeInvariant, fmt.Sprintf(format, args...))
	logrus.WithField("component", "core").Fatalf("invariant violation: %s", err)
}

// CheckCoreSessionLink verifies that c and its exclusive session agree
// with each other, catching bookkeeping drift before it can corrupt a
// later decision. Only this package's tests call it; the allocator does
// not.
func CheckCoreSessionLink(c *Core) {
	if c.ExclusiveThread == nil {
		return
	}
	Assert(c.ExclusiveThread.Core == c, "core %d exclusive thread does not point back at it", c.ID)
}
