//go:build linux
// +build linux

// File: core/preempt/manager_linux.go
// Author: momentics <momentics@gmail.com>
//
// timerfd-based one-shot timers, grounded on this module's teacher's
// epoll reactor, which already treats arbitrary readable fds uniformly
// (timerfds included) via golang.org/x/sys/unix.

package preempt

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

type linuxManager struct{}

// NewManager returns a Manager backed by Linux timerfds.
func NewManager() Manager {
	return &linuxManager{}
}

func (m *linuxManager) ArmOneShot(timeoutMs uint32) (int, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		return 0, err
	}
	sec := int64(timeoutMs) / 1000
	nsec := (int64(timeoutMs) % 1000) * int64(1e6)
	spec := unix.ItimerSpec{
		Value: unix.Timespec{Sec: sec, Nsec: nsec},
	}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		return 0, err
	}
	return fd, nil
}

func (m *linuxManager) Disarm(fd int) error {
	return unix.Close(fd)
}

func (m *linuxManager) ConsumeExpiry(fd int) error {
	var buf [8]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		return err
	}
	if n == 8 {
		_ = binary.LittleEndian.Uint64(buf[:])
	}
	return nil
}
