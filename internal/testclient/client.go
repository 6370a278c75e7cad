// File: internal/testclient/client.go
// Author: momentics <momentics@gmail.com>

package testclient

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/corearbiter/api"
	"github.com/momentics/corearbiter/protocol"
	"github.com/momentics/corearbiter/shm"
)

// Client drives one thread's worth of arbiter protocol traffic over a
// single connected socket.
type Client struct {
	fd  int
	shm *shm.Region
}

// Dial connects to the arbiter's Unix-domain socket at path.
func Dial(path string) (*Client, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &Client{fd: fd}, nil
}

// Close releases the connection and any mapped shared-memory region.
func (c *Client) Close() error {
	if c.shm != nil {
		c.shm.Close()
	}
	return unix.Close(c.fd)
}

type fdConn int

func (f fdConn) Read(p []byte) (int, error)  { return unix.Read(int(f), p) }
func (f fdConn) Write(p []byte) (int, error) { return unix.Write(int(f), p) }

// Register sends THREAD_REGISTER and maps the returned shared-memory
// region read-only. The server sends that fd only for a process's first
// registered thread; for a later thread of the same process, Register
// blocks waiting for it.
func (c *Client) Register(processID, threadID int32) error {
	req := protocol.ThreadRegisterRequest{ProcessID: processID, ThreadID: threadID}
	if err := protocol.WriteThreadRegister(fdConn(c.fd), req); err != nil {
		return err
	}
	shmFD, err := protocol.ReceiveFD(c.fd)
	if err != nil {
		return err
	}
	region, err := shm.MapFD(shmFD)
	if err != nil {
		return err
	}
	c.shm = region
	return nil
}

// RequestCores sends CORES_REQUESTED with the given desired-count
// vector (index 0 highest priority).
func (c *Client) RequestCores(desired [api.NumPriorities]uint32) error {
	return protocol.WriteCoresRequested(fdConn(c.fd), protocol.CoresRequestedRequest{Desired: desired})
}

// Block sends THREAD_BLOCK and waits for the server's wakeup byte,
// returning once the thread has actually been migrated onto a granted
// core. The server sends no wakeup for a move to the unmanaged cpuset.
func (c *Client) Block() error {
	if err := protocol.WriteBareKind(fdConn(c.fd), protocol.ThreadBlock); err != nil {
		return err
	}
	var buf [1]byte
	_, err := unix.Read(c.fd, buf[:])
	return err
}

// CountBlockedThreads sends COUNT_BLOCKED_THREADS and returns the
// server's reply.
func (c *Client) CountBlockedThreads() (uint32, error) {
	return c.queryUint32(protocol.CountBlockedThreads)
}

// TotalAvailableCores sends TOTAL_AVAILABLE_CORES and returns the
// server's reply.
func (c *Client) TotalAvailableCores() (uint32, error) {
	return c.queryUint32(protocol.TotalAvailableCores)
}

func (c *Client) queryUint32(kind protocol.MessageKind) (uint32, error) {
	if err := protocol.WriteBareKind(fdConn(c.fd), kind); err != nil {
		return 0, err
	}
	var buf [4]byte
	if _, err := unix.Read(c.fd, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

// ReleaseRequestCount reads the server-writable release-request counter
// directly out of the mapped shared-memory region.
func (c *Client) ReleaseRequestCount() uint64 {
	return c.shm.ReleaseRequestCount()
}

// ThreadPreempted reads the server-writable preemption flag directly
// out of the mapped shared-memory region.
func (c *Client) ThreadPreempted() bool {
	return c.shm.ThreadPreempted()
}

// WaitForReleaseRequest polls the shared release-request counter until
// it exceeds lastSeen or the deadline elapses, mirroring how a real
// client thread would notice it owes a release.
func (c *Client) WaitForReleaseRequest(lastSeen uint64, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.shm.ReleaseRequestCount() > lastSeen {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}
