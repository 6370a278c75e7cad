//go:build !linux
// +build !linux

// File: core/preempt/manager_stub.go
// Author: momentics <momentics@gmail.com>

package preempt

type stubManager struct{}

// NewManager returns a Manager that always reports ErrUnsupported;
// preemption is a Linux-only feature of this daemon.
func NewManager() Manager {
	return &stubManager{}
}

func (m *stubManager) ArmOneShot(timeoutMs uint32) (int, error) { return 0, ErrUnsupported }
func (m *stubManager) Disarm(fd int) error                      { return ErrUnsupported }
func (m *stubManager) ConsumeExpiry(fd int) error               { return ErrUnsupported }
