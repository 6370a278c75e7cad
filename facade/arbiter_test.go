//go:build linux
// +build linux

package facade_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/momentics/corearbiter/core"
	"github.com/momentics/corearbiter/facade"
	"github.com/momentics/corearbiter/server"
)

func newTestArbiter(t *testing.T) *facade.ArbiterServer {
	t.Helper()
	dir := t.TempDir()
	cpusetRoot := filepath.Join(dir, "cpuset")
	require.NoError(t, os.MkdirAll(cpusetRoot, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cpusetRoot, "cpuset.mems"), []byte("0"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(cpusetRoot, "tasks"), []byte(""), 0644))

	arb, err := facade.New(
		server.WithSocketPath(filepath.Join(dir, "arbiter.sock")),
		server.WithSharedMemPathPrefix(filepath.Join(dir, "shm.")),
		server.WithCpusetRoot(cpusetRoot),
		server.WithExclusiveCores(core.CoreID(1)),
		server.WithPreemptionTimeout(200),
	)
	require.NoError(t, err)
	return arb
}

func TestStartRegistersCurrentInstanceAndStopClearsIt(t *testing.T) {
	arb := newTestArbiter(t)
	defer arb.Close()

	done := make(chan error, 1)
	go func() { done <- arb.Start() }()

	// Give the event loop a moment to reach epoll_wait and register
	// itself as the current instance.
	time.Sleep(20 * time.Millisecond)
	require.Same(t, arb, facade.CurrentInstance())

	require.NoError(t, arb.Stop())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}

	require.Nil(t, facade.CurrentInstance())
}

func TestNewPublishesConfigSnapshot(t *testing.T) {
	arb := newTestArbiter(t)
	defer arb.Close()

	cfg := arb.GetControl().GetConfig()
	require.Equal(t, uint32(200), cfg["preemptionTimeoutMs"])
	require.Equal(t, []int{1}, cfg["exclusiveCores"])
}

func TestRefreshMetricsReflectsManagedCores(t *testing.T) {
	arb := newTestArbiter(t)
	defer arb.Close()

	done := make(chan error, 1)
	go func() { done <- arb.Start() }()
	time.Sleep(20 * time.Millisecond)

	arb.RefreshMetrics()
	stats := arb.GetControl().Stats()
	require.Equal(t, 1, stats["managed_cores"])
	require.Equal(t, 1, stats["idle_cores"])

	// Debug probes registered at construction time report live
	// CoreTable/queue occupancy alongside the metrics registry.
	require.Equal(t, 1, stats["debug.cores.managed"])
	require.Equal(t, 1, stats["debug.cores.idle"])
	require.Equal(t, 0, stats["debug.queue.depth_total"])
	require.Equal(t, 0, stats["debug.threads.blocked"])

	require.NoError(t, arb.Stop())
	<-done
}
