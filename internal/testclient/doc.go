// Package testclient is a minimal driver of the arbiter's wire protocol
// for use by this module's own tests. It is not a product client
// library (the real one is explicitly out of this module's scope) —
// just enough to register a thread, request cores, block, and observe
// the shared-memory release protocol from the test process.
//
// Author: momentics <momentics@gmail.com>
package testclient
