// File: server/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Allocation counters and occupancy accessors exposed for the control
// package's metrics registry and debug probes, wired in by the facade.

package server

import "github.com/momentics/corearbiter/api"

// MetricsSink receives the counters pushed after every allocator pass.
// Satisfied by adapters.ControlAdapter's SetMetric method; the server
// package doesn't import control/adapters directly so it stays testable
// without either.
type MetricsSink interface {
	SetMetric(key string, value any)
}

// pushMetrics snapshots the allocator's running counters into the
// configured sink. A no-op if none was wired via WithMetricsSink.
func (s *Server) pushMetrics() {
	if s.opts.MetricsSink == nil {
		return
	}
	s.opts.MetricsSink.SetMetric("cores_granted_total", s.alloc.CoresGrantedTotal)
	s.opts.MetricsSink.SetMetric("cores_preempted_total", s.alloc.CoresPreemptedTotal)
	s.opts.MetricsSink.SetMetric("release_requests_outstanding", s.alloc.ReleaseRequestsOutstanding())
}

// GetQueueDepth reports how many processes have unsatisfied demand at
// priority, for CoreTable/queue occupancy debug probes.
func (s *Server) GetQueueDepth(priority int) int {
	return s.queues.Len(priority)
}

// GetTotalQueueDepth sums queue depth across every priority level.
func (s *Server) GetTotalQueueDepth() int {
	n := 0
	for p := 0; p < api.NumPriorities; p++ {
		n += s.queues.Len(p)
	}
	return n
}

// GetTotalBlocked reports the number of sessions parked in THREAD_BLOCK
// across every registered process.
func (s *Server) GetTotalBlocked() int {
	return s.registry.TotalBlocked()
}

// GetNumRegisteredProcesses reports how many processes currently have
// at least one registered session.
func (s *Server) GetNumRegisteredProcesses() int {
	return s.registry.Len()
}

// GetConfigSnapshot reports the arbiter's construction-time options, for
// control.ConfigStore's snapshot surface (api.Control.GetConfig). These
// fields are set once at New and not mutated afterward, so the snapshot
// never goes stale between calls.
func (s *Server) GetConfigSnapshot() map[string]any {
	cores := make([]int, len(s.opts.ExclusiveCores))
	for i, c := range s.opts.ExclusiveCores {
		cores[i] = int(c)
	}
	return map[string]any{
		"socketPath":           s.opts.SocketPath,
		"sharedMemPathPrefix":  s.opts.SharedMemPathPrefix,
		"exclusiveCores":       cores,
		"arbitrateImmediately": s.opts.ArbitrateImmediately,
		"preemptionTimeoutMs":  s.opts.PreemptionTimeoutMs,
	}
}
