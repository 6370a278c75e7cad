//go:build linux
// +build linux

// File: shm/region_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux shared-memory mapping using the tmpfs-backed /dev/shm namespace
// via golang.org/x/sys/unix, the same syscall layer the rest of this
// module uses for sockets and epoll (no CGO/libnuma dependency needed
// here, unlike a NUMA-local heap allocator).

package shm

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// pathFor builds the conventional shared-memory object name for a
// process: <pathPrefix><pid>, matching the wire contract in the spec.
func pathFor(pathPrefix string, pid int) string {
	return fmt.Sprintf("%s%d", pathPrefix, pid)
}

// Create makes (or truncates) and maps a fresh, zeroed region for pid,
// writable by the server. The backing path is left on disk until
// Unlink is called, mirroring the lifetime of the owning ProcessInfo.
func Create(pathPrefix string, pid int) (*Region, error) {
	path := pathFor(pathPrefix, pid)
	if dir := filepath.Dir(path); dir != "." {
		if err := ensureDir(dir); err != nil {
			return nil, fmt.Errorf("shm: ensure dir %s: %w", dir, err)
		}
	}
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR|unix.O_TRUNC, 0666)
	if err != nil {
		return nil, fmt.Errorf("shm: open %s: %w", path, err)
	}
	if err := unix.Ftruncate(fd, Size); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: ftruncate %s: %w", path, err)
	}
	data, err := unix.Mmap(fd, 0, Size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("shm: mmap %s: %w", path, err)
	}
	for i := range data {
		data[i] = 0
	}
	return newRegion(fd, path, data), nil
}

// MapFD maps an already-open shared-memory descriptor, as received via
// SCM_RIGHTS ancillary data by the client side of the protocol. The
// mapping is read-only: only the server holds a writable mapping.
func MapFD(fd int) (*Region, error) {
	data, err := unix.Mmap(fd, 0, Size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("shm: mmap fd %d: %w", fd, err)
	}
	return newRegion(fd, "", data), nil
}

// Close unmaps the region and closes its file descriptor.
func (r *Region) Close() error {
	if err := unix.Munmap(r.data); err != nil {
		return err
	}
	return unix.Close(r.fd)
}

// Unlink removes the backing file. Server-only; called once the owning
// process's last thread disconnects.
func (r *Region) Unlink() error {
	if r.path == "" {
		return nil
	}
	return unix.Unlink(r.path)
}

func ensureDir(dir string) error {
	err := unix.Mkdir(dir, 0755)
	if err == unix.EEXIST {
		return nil
	}
	return err
}
