// File: server/conn.go
// Author: momentics <momentics@gmail.com>

package server

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/corearbiter/core"
)

// fdConn adapts a raw file descriptor to io.Reader/io.Writer so the
// protocol codec can operate on it directly, without routing through
// Go's runtime netpoller (the event loop is its own poller).
type fdConn int

func (f fdConn) Read(p []byte) (int, error) {
	n, err := unix.Read(int(f), p)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errEOF
	}
	return n, nil
}

func (f fdConn) Write(p []byte) (int, error) {
	return unix.Write(int(f), p)
}

// clientConn tracks one accepted connection from accept onward. A
// socket that has not yet sent THREAD_REGISTER has no session.
type clientConn struct {
	fd      int
	session *core.Session
}
