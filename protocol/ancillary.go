//go:build linux
// +build linux

// File: protocol/ancillary.go
// Author: momentics <momentics@gmail.com>
//
// SCM_RIGHTS file descriptor passing over a Unix-domain socket,
// adapted from this module's teacher's zero-copy transport (which
// drives Sendmsg/Recvmsg via golang.org/x/sys/unix for batched
// buffers) down to the single-fd case the registration handshake needs.

package protocol

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SendFD transmits payloadFD as ancillary data over the raw socket fd
// sockFD, along with a single placeholder data byte (required by
// sendmsg; SCM_RIGHTS cannot be sent with a zero-length message on
// Linux). Operates on a raw descriptor rather than net.UnixConn so it
// composes with the event loop's own epoll-registered sockets instead
// of Go's runtime netpoller.
func SendFD(sockFD int, payloadFD int) error {
	rights := unix.UnixRights(payloadFD)
	return unix.Sendmsg(sockFD, []byte{0}, rights, nil, 0)
}

// ReceiveFD reads one ancillary file descriptor off the raw socket fd
// sockFD. Used by the test client harness; production clients live
// outside this module's scope.
func ReceiveFD(sockFD int) (int, error) {
	buf := make([]byte, 1)
	oob := make([]byte, unix.CmsgSpace(4))
	_, oobn, _, _, err := unix.Recvmsg(sockFD, buf, oob, 0)
	if err != nil {
		return 0, err
	}
	cmsgs, err := unix.ParseSocketControlMessage(oob[:oobn])
	if err != nil {
		return 0, fmt.Errorf("protocol: parse control message: %w", err)
	}
	if len(cmsgs) == 0 {
		return 0, fmt.Errorf("protocol: no ancillary data received")
	}
	fds, err := unix.ParseUnixRights(&cmsgs[0])
	if err != nil {
		return 0, fmt.Errorf("protocol: parse unix rights: %w", err)
	}
	if len(fds) == 0 {
		return 0, fmt.Errorf("protocol: no fd in ancillary data")
	}
	return fds[0], nil
}
