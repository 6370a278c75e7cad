//go:build !linux
// +build !linux

// File: cpuset/cpuset_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for platforms without a cpuset filesystem.

package cpuset

// NewController returns a Controller whose every method reports
// ErrUnsupported. Cpusets are a Linux-only kernel facility; the core
// arbiter has no eviction mechanism on other platforms.
func NewController(cpusetRoot string) Controller {
	return stubController{}
}

type stubController struct{}

func (stubController) Setup(managedCores []int) error     { return ErrUnsupported }
func (stubController) MoveToCore(tid int, core int) error { return ErrUnsupported }
func (stubController) MoveToUnmanaged(tid int) error       { return ErrUnsupported }
func (stubController) Teardown() error                     { return ErrUnsupported }
