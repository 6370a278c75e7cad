//go:build linux
// +build linux

package shm

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestCreateAndCounters(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "process-")
	r, err := Create(prefix, 4242)
	require.NoError(t, err)
	defer r.Close()
	defer r.Unlink()

	require.Equal(t, uint64(0), r.ReleaseRequestCount())
	require.False(t, r.ThreadPreempted())

	require.Equal(t, uint64(1), r.IncrementReleaseRequestCount())
	require.Equal(t, uint64(2), r.IncrementReleaseRequestCount())
	require.Equal(t, uint64(2), r.ReleaseRequestCount())

	r.SetThreadPreempted(true)
	require.True(t, r.ThreadPreempted())
	r.SetThreadPreempted(false)
	require.False(t, r.ThreadPreempted())
}

func TestMapFDSharesState(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "process-")
	server, err := Create(prefix, 7)
	require.NoError(t, err)
	defer server.Close()
	defer server.Unlink()

	// A real client maps a distinct, duped fd it received over
	// SCM_RIGHTS; dup here so Close on either Region doesn't double-close
	// the other's descriptor, same as across separate processes.
	dupFD, err := unix.Dup(server.FD())
	require.NoError(t, err)
	client, err := MapFD(dupFD)
	require.NoError(t, err)
	defer client.Close()

	server.IncrementReleaseRequestCount()
	require.Equal(t, uint64(1), client.ReleaseRequestCount())
}
