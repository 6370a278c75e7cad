// File: server/server.go
// Author: momentics <momentics@gmail.com>

package server

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/momentics/corearbiter/core"
	"github.com/momentics/corearbiter/core/allocator"
	"github.com/momentics/corearbiter/core/preempt"
	"github.com/momentics/corearbiter/core/queue"
	"github.com/momentics/corearbiter/cpuset"
	"github.com/momentics/corearbiter/protocol"
	"github.com/momentics/corearbiter/reactor"
	"github.com/momentics/corearbiter/shm"
)

// Server is the arbiter's single-threaded event loop and every piece of
// state it owns exclusively: CoreTable, ProcessRegistry, PriorityQueues,
// the armed-timer table, and every accepted connection.
type Server struct {
	opts Options

	listenFD int
	termFD   int

	reactor reactor.EventReactor
	cpuset  cpuset.Controller
	timers  preempt.Manager

	table    *core.CoreTable
	registry *core.ProcessRegistry
	queues   *queue.PriorityQueues
	alloc    *allocator.Allocator

	clients         map[int]*clientConn
	timerFDToProcID map[int]int32

	log *logrus.Entry
}

// wakeupNotifier adapts a raw socket fd to allocator.Notifier.
type wakeupNotifier struct{}

func (wakeupNotifier) Wakeup(socket int) error {
	return protocol.WriteWakeup(fdConn(socket))
}

// New constructs a Server and performs every startup-time OS resource
// acquisition (listen socket, epoll instance, termination eventfd,
// cpuset hierarchy). A failure here is treated as fatal per this
// daemon's error-handling policy: the server cannot run without these.
func New(optFns ...Option) (*Server, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := unix.Unlink(opts.SocketPath); err != nil && err != unix.ENOENT {
		return nil, fmt.Errorf("server: removing stale socket: %w", err)
	}
	listenFD, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("server: socket: %w", err)
	}
	addr := &unix.SockaddrUnix{Name: opts.SocketPath}
	if err := unix.Bind(listenFD, addr); err != nil {
		return nil, fmt.Errorf("server: bind: %w", err)
	}
	if err := unix.Listen(listenFD, 128); err != nil {
		return nil, fmt.Errorf("server: listen: %w", err)
	}

	termFD, err := unix.Eventfd(0, unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("server: eventfd: %w", err)
	}

	rctr, err := reactor.NewReactor()
	if err != nil {
		return nil, fmt.Errorf("server: reactor: %w", err)
	}

	cs := cpuset.NewController(opts.CpusetRoot)
	managedInts := make([]int, len(opts.ExclusiveCores))
	for i, c := range opts.ExclusiveCores {
		managedInts[i] = int(c)
	}
	if err := cs.Setup(managedInts); err != nil {
		return nil, fmt.Errorf("server: cpuset setup: %w", err)
	}

	s := &Server{
		opts:            opts,
		listenFD:        listenFD,
		termFD:          termFD,
		reactor:         rctr,
		cpuset:          cs,
		timers:          preempt.NewManager(),
		table:           core.NewCoreTable(opts.ExclusiveCores),
		registry:        core.NewProcessRegistry(),
		queues:          queue.New(),
		clients:         make(map[int]*clientConn),
		timerFDToProcID: make(map[int]int32),
		log:             logrus.WithField("component", "server"),
	}
	s.alloc = allocator.New(s.table, s.queues, cs, wakeupNotifier{}, s.timers, opts.PreemptionTimeoutMs)

	if err := s.reactor.Register(uintptr(listenFD), 0); err != nil {
		return nil, fmt.Errorf("server: register listen fd: %w", err)
	}
	if err := s.reactor.Register(uintptr(termFD), 0); err != nil {
		return nil, fmt.Errorf("server: register term fd: %w", err)
	}

	if opts.ArbitrateImmediately {
		if err := s.StartArbitration(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// ensureProcessShm lazily creates and maps a process's shared-memory
// region on its first thread registration.
func (s *Server) ensureProcessShm(p *core.Process) (*shm.Region, error) {
	if p.Shm != nil {
		return p.Shm, nil
	}
	region, err := shm.Create(s.opts.SharedMemPathPrefix, int(p.ID))
	if err != nil {
		return nil, err
	}
	p.Shm = region
	return region, nil
}

// GetNumManagedCores reports the size of the exclusive-core set,
// exposed mainly for tests and debug dumps.
func (s *Server) GetNumManagedCores() int {
	return len(s.table.Managed)
}

// GetNumIdleCores reports TOTAL_AVAILABLE_CORES without a round trip
// through the wire protocol, for in-process callers.
func (s *Server) GetNumIdleCores() int {
	return s.table.NumIdle()
}
