//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation and factory. Used by the
// arbiter event loop to multiplex the listen socket, every connected
// client socket, every armed preemption timerfd, and the termination
// eventfd on a single thread.

package reactor

import (
	"golang.org/x/sys/unix"
)

// linuxReactor is an epoll-based event reactor. The epoll data word
// carries the fd, so each descriptor's userData is kept in udata.
type linuxReactor struct {
	epfd  int
	udata map[int32]uintptr
}

// NewReactor constructs a new platform-specific EventReactor for Linux.
func NewReactor() (EventReactor, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	return &linuxReactor{epfd: epfd, udata: make(map[int32]uintptr)}, nil
}

// Register adds file descriptor to epoll in level-triggered read mode.
// Level-triggered is deliberate: handlers read at most one message per
// wakeup, and a partially-drained socket must stay ready on the next
// iteration of the loop.
func (r *linuxReactor) Register(fd uintptr, udata uintptr) error {
	event := &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(fd),
	}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, int(fd), event); err != nil {
		return err
	}
	r.udata[int32(fd)] = udata
	return nil
}

// Unregister removes fd from epoll. ENOENT/EBADF are swallowed since the
// caller may be cleaning up a descriptor the kernel already dropped.
func (r *linuxReactor) Unregister(fd uintptr) error {
	delete(r.udata, int32(fd))
	err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, int(fd), nil)
	if err == unix.ENOENT || err == unix.EBADF {
		return nil
	}
	return err
}

// Wait waits for epoll events and fills the result into events slice.
func (r *linuxReactor) Wait(events []Event) (int, error) {
	rawEvents := make([]unix.EpollEvent, len(events))
	n, err := unix.EpollWait(r.epfd, rawEvents, -1)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		events[i] = Event{
			Fd:       uintptr(rawEvents[i].Fd),
			UserData: r.udata[rawEvents[i].Fd],
		}
	}
	return n, nil
}

// Close closes the epoll instance.
func (r *linuxReactor) Close() error {
	return unix.Close(r.epfd)
}
