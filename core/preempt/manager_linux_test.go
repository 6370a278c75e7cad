//go:build linux
// +build linux

package preempt_test

import (
	"testing"

	"github.com/momentics/corearbiter/core/preempt"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestArmOneShotFiresAndIsReadable(t *testing.T) {
	m := preempt.NewManager()
	fd, err := m.ArmOneShot(10)
	require.NoError(t, err)
	defer m.Disarm(fd)

	pfds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(pfds, 500)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	require.NoError(t, m.ConsumeExpiry(fd))
}

func TestDisarmClosesDescriptor(t *testing.T) {
	m := preempt.NewManager()
	fd, err := m.ArmOneShot(50000)
	require.NoError(t, err)
	require.NoError(t, m.Disarm(fd))

	// F_GETFD on the already-closed fd must fail.
	_, err = unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	require.Error(t, err)
}
