// File: server/options.go
// Author: momentics <momentics@gmail.com>

package server

import "github.com/momentics/corearbiter/core"

// Options configures a Server. New starts from the defaults in
// defaultOptions and applies each Option over them in order.
type Options struct {
	SocketPath           string
	SharedMemPathPrefix  string
	CpusetRoot           string
	ExclusiveCores       []core.CoreID
	PreemptionTimeoutMs  uint32
	ArbitrateImmediately bool
	MetricsSink          MetricsSink
}

// Option mutates an Options value.
type Option func(*Options)

// WithSocketPath sets the Unix-domain listen path.
func WithSocketPath(path string) Option {
	return func(o *Options) { o.SocketPath = path }
}

// WithSharedMemPathPrefix sets the filename prefix used to name each
// process's shared-memory region (the pid is appended).
func WithSharedMemPathPrefix(prefix string) Option {
	return func(o *Options) { o.SharedMemPathPrefix = prefix }
}

// WithCpusetRoot overrides the cpuset filesystem's mount point, mainly
// for tests that simulate it under a temp directory.
func WithCpusetRoot(root string) Option {
	return func(o *Options) { o.CpusetRoot = root }
}

// WithExclusiveCores sets the CPU IDs the arbiter manages exclusively;
// every other CPU forms the unmanaged cpuset.
func WithExclusiveCores(cores ...core.CoreID) Option {
	return func(o *Options) { o.ExclusiveCores = cores }
}

// WithPreemptionTimeout sets how many milliseconds a release request is
// given before its thread is forcibly preempted.
func WithPreemptionTimeout(ms uint32) Option {
	return func(o *Options) { o.PreemptionTimeoutMs = ms }
}

// WithArbitrateImmediately controls whether New enters the event
// loop itself (true) or returns for the caller to invoke
// StartArbitration explicitly (false).
func WithArbitrateImmediately(v bool) Option {
	return func(o *Options) { o.ArbitrateImmediately = v }
}

// WithMetricsSink wires a destination for the allocation counters
// pushed after every DistributeCores pass (cores_granted_total,
// cores_preempted_total, release_requests_outstanding). Typically the
// same control.MetricsRegistry-backed adapter the facade exposes as
// api.Control.
func WithMetricsSink(sink MetricsSink) Option {
	return func(o *Options) { o.MetricsSink = sink }
}

func defaultOptions() Options {
	return Options{
		SocketPath:           "/var/run/corearbiter.sock",
		SharedMemPathPrefix:  "/dev/shm/corearbiter.",
		CpusetRoot:           "",
		PreemptionTimeoutMs:  1000,
		ArbitrateImmediately: true,
	}
}
