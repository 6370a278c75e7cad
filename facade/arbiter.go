// File: facade/arbiter.go
// Author: momentics <momentics@gmail.com>

package facade

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/momentics/corearbiter/adapters"
	"github.com/momentics/corearbiter/api"
	"github.com/momentics/corearbiter/server"
)

// mostRecentInstance is the process-wide pointer the SIGINT/SIGTERM
// handler reaches the running arbiter through. Only one ArbiterServer
// may be running per process; Start overwrites any previous value and
// Stop clears it only if it still points at itself.
var mostRecentInstance atomic.Pointer[ArbiterServer]

// ArbiterServer wraps server.Server with the ambient control surface
// (config/metrics/debug) and process-wide lifecycle management.
type ArbiterServer struct {
	srv     *server.Server
	control api.Control
	started time.Time

	sigCh chan os.Signal
	done  chan struct{}
}

// New constructs the server (acquiring every OS resource it needs) but
// does not install the signal handler or enter the event loop; call
// Start for that.
func New(optFns ...server.Option) (*ArbiterServer, error) {
	control := adapters.NewControlAdapter()

	// The event loop itself is entered by Start, not by server.New, so
	// force ArbitrateImmediately off regardless of caller-supplied
	// options; a caller's WithArbitrateImmediately(true) has no effect.
	opts := append([]server.Option{}, optFns...)
	opts = append(opts, server.WithArbitrateImmediately(false))
	if sink, ok := control.(server.MetricsSink); ok {
		opts = append(opts, server.WithMetricsSink(sink))
	}

	srv, err := server.New(opts...)
	if err != nil {
		return nil, err
	}
	_ = control.SetConfig(srv.GetConfigSnapshot())

	// Mirror the teacher's example daemons' startup-time debug-probe
	// registration (see examples/lowlevel/echo and examples/stest),
	// here reporting CoreTable occupancy and queue depth instead of
	// connection/message counters.
	control.RegisterDebugProbe("cores.managed", func() any { return srv.GetNumManagedCores() })
	control.RegisterDebugProbe("cores.idle", func() any { return srv.GetNumIdleCores() })
	control.RegisterDebugProbe("queue.depth_total", func() any { return srv.GetTotalQueueDepth() })
	control.RegisterDebugProbe("threads.blocked", func() any { return srv.GetTotalBlocked() })
	control.RegisterDebugProbe("processes.registered", func() any { return srv.GetNumRegisteredProcesses() })

	return &ArbiterServer{
		srv:     srv,
		control: control,
		done:    make(chan struct{}),
	}, nil
}

// Start installs the SIGINT/SIGTERM handler, registers this instance as
// mostRecentInstance, and runs the event loop on the calling goroutine
// until a signal arrives or Stop is called from elsewhere. Only one
// ArbiterServer may be started per process at a time.
func (a *ArbiterServer) Start() error {
	a.started = time.Now()
	mostRecentInstance.Store(a)

	a.sigCh = make(chan os.Signal, 1)
	signal.Notify(a.sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-a.sigCh:
			logrus.Info("facade: termination signal received")
			_ = a.Stop()
		case <-a.done:
		}
	}()

	return a.srv.StartArbitration()
}

// Stop removes the signal handler and requests the event loop to exit.
// It releases no OS resources; Close does that (sockets, epoll,
// cpusets).
func (a *ArbiterServer) Stop() error {
	mostRecentInstance.CompareAndSwap(a, nil)
	signal.Stop(a.sigCh)
	close(a.done)
	if err := a.srv.EndArbitration(); err != nil {
		return err
	}
	return nil
}

// Close releases OS resources after the event loop has returned from
// Start. Callers should invoke this once StartArbitration has exited.
func (a *ArbiterServer) Close() error {
	return a.srv.Close()
}

// GetControl exposes the configuration/metrics/debug surface, mirroring
// this module's teacher's facade-level Control accessor.
func (a *ArbiterServer) GetControl() api.Control {
	return a.control
}

// RefreshMetrics snapshots current allocation state into the control
// adapter's metrics registry. Neither the event loop nor the
// corearbiterd launcher calls it; the values change only when a caller
// invokes it.
func (a *ArbiterServer) RefreshMetrics() {
	setter, ok := a.control.(server.MetricsSink)
	if !ok {
		return
	}
	setter.SetMetric("managed_cores", a.srv.GetNumManagedCores())
	setter.SetMetric("idle_cores", a.srv.GetNumIdleCores())
	setter.SetMetric("uptime_seconds", time.Since(a.started).Seconds())
}

// CurrentInstance returns the most recently started ArbiterServer, or
// nil if none is running. Exists for the same reason the reference
// daemon keeps a "most recent instance" global: so out-of-band code
// (a signal handler, a CLI --reload flag) can reach the running
// instance without the caller threading a reference through.
func CurrentInstance() *ArbiterServer {
	return mostRecentInstance.Load()
}
