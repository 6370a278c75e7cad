// File: server/errors.go
// Author: momentics <momentics@gmail.com>

package server

import "github.com/momentics/corearbiter/api"

// Protocol-level failures are all instances of api.Error with
// ErrCodeProtocol so callers outside this package (a future admin RPC,
// a test asserting on error codes) can distinguish a malformed client
// message from a transport-level disconnect without string matching.
var (
	errEOF              = api.NewError(api.ErrCodeProtocol, "server: connection closed")
	errUnknownKind      = api.NewError(api.ErrCodeProtocol, "server: unknown message kind")
	errUnregisteredConn = api.NewError(api.ErrCodeProtocol, "server: message on unregistered connection")
)
