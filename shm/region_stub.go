//go:build !linux
// +build !linux

// File: shm/region_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for platforms without the mmap/SCM_RIGHTS
// combination this protocol relies on.

package shm

// Create always fails on unsupported platforms.
func Create(pathPrefix string, pid int) (*Region, error) {
	return nil, ErrUnsupported
}

// MapFD always fails on unsupported platforms.
func MapFD(fd int) (*Region, error) {
	return nil, ErrUnsupported
}

// Close is unreachable: no Region can exist without Create/MapFD
// succeeding first, but is provided to satisfy callers compiled on
// every platform.
func (r *Region) Close() error {
	return ErrUnsupported
}

// Unlink mirrors Close's unreachability guarantee.
func (r *Region) Unlink() error {
	return ErrUnsupported
}
