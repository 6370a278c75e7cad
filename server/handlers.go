// File: server/handlers.go
// Author: momentics <momentics@gmail.com>

package server

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/corearbiter/api"
	"github.com/momentics/corearbiter/core"
	"github.com/momentics/corearbiter/protocol"
)

// acceptConnection accepts one pending connection on the listen socket
// and registers it with the reactor as read-ready. The accepted socket
// has no session until it sends THREAD_REGISTER.
func (s *Server) acceptConnection() {
	fd, _, err := unix.Accept(s.listenFD)
	if err != nil {
		if err != unix.EAGAIN {
			s.log.WithError(err).Warn("accept failed")
		}
		return
	}
	if err := s.reactor.Register(uintptr(fd), 0); err != nil {
		s.log.WithError(err).Warn("register accepted conn failed")
		unix.Close(fd)
		return
	}
	s.clients[fd] = &clientConn{fd: fd}
}

// dispatchClient reads one message kind byte off fd and routes to the
// matching handler. A protocol error or disconnect both end in
// cleanupConnection.
func (s *Server) dispatchClient(fd int) {
	conn := s.clients[fd]
	if conn == nil {
		return
	}
	kind, err := protocol.ReadKind(fdConn(fd))
	if err != nil {
		s.log.WithError(api.NewError(api.ErrCodeProtocol, err.Error())).Debug("client disconnected")
		s.cleanupConnection(fd)
		return
	}
	switch kind {
	case protocol.ThreadRegister:
		err = s.handleThreadRegister(conn)
	case protocol.CoresRequested:
		err = s.handleCoresRequested(conn)
	case protocol.ThreadBlock:
		err = s.handleThreadBlock(conn)
	case protocol.CountBlockedThreads:
		err = s.handleCountBlockedThreads(conn)
	case protocol.TotalAvailableCores:
		err = s.handleTotalAvailableCores(conn)
	default:
		err = errUnknownKind
	}
	if err != nil {
		s.log.WithError(err).WithField("kind", kind).Warn("protocol error, closing connection")
		s.cleanupConnection(fd)
		return
	}
	s.runAllocator()
}

func (s *Server) handleThreadRegister(conn *clientConn) error {
	req, err := protocol.ReadThreadRegister(fdConn(conn.fd))
	if err != nil {
		return api.NewError(api.ErrCodeProtocol, err.Error())
	}
	firstSession := s.registry.Get(req.ProcessID) == nil
	proc := s.registry.GetOrCreate(req.ProcessID)
	region, err := s.ensureProcessShm(proc)
	if err != nil {
		return err
	}
	session := core.NewSession(req.ThreadID, req.ProcessID, conn.fd, proc)
	proc.AddSession(session)
	conn.session = session

	if !firstSession {
		return nil
	}
	return protocol.SendFD(conn.fd, region.FD())
}

func (s *Server) handleCoresRequested(conn *clientConn) error {
	if conn.session == nil {
		return errUnregisteredConn
	}
	req, err := protocol.ReadCoresRequested(fdConn(conn.fd))
	if err != nil {
		return api.NewError(api.ErrCodeProtocol, err.Error())
	}
	proc := conn.session.Process
	proc.Desired = req.Desired
	s.alloc.RecomputeDemand(proc)
	return nil
}

func (s *Server) handleThreadBlock(conn *clientConn) error {
	if conn.session == nil {
		return errUnregisteredConn
	}
	session := conn.session
	switch session.State {
	case api.RunningExclusive:
		return s.alloc.VoluntaryRelease(session)
	case api.RunningPreempted:
		s.alloc.ResumeFromPreemption(session)
		return nil
	case api.RunningUnmanaged, api.Blocked:
		proc := session.Process
		proc.Transition(session, api.Blocked)
		s.alloc.RecomputeDemand(proc)
		return nil
	default:
		core.Assert(false, "handleThreadBlock: unreachable state %v", session.State)
		return nil
	}
}

func (s *Server) handleCountBlockedThreads(conn *clientConn) error {
	n := s.registry.TotalBlocked()
	return protocol.WriteUint32(fdConn(conn.fd), uint32(n))
}

func (s *Server) handleTotalAvailableCores(conn *clientConn) error {
	return protocol.WriteUint32(fdConn(conn.fd), uint32(s.table.NumIdle()))
}

// cleanupConnection implements the disconnect path: evicts the
// session's exclusive core if any, drops it from its process, unmaps
// and unlinks the process's shared memory once its last session is
// gone, and deregisters the socket from the reactor.
func (s *Server) cleanupConnection(fd int) {
	conn, ok := s.clients[fd]
	if !ok {
		return
	}
	delete(s.clients, fd)
	if err := s.reactor.Unregister(uintptr(fd)); err != nil {
		s.log.WithError(err).Warn("unregister on cleanup failed")
	}
	unix.Close(fd)

	if conn.session == nil {
		return
	}
	proc := conn.session.Process
	s.alloc.Disconnect(conn.session)

	if processIsEmpty(proc) {
		s.destroyProcess(proc)
	}
	s.runAllocator()
}

// processIsEmpty reports whether a process has zero remaining sessions
// across every state bucket.
func processIsEmpty(p *core.Process) bool {
	for _, state := range []api.ThreadState{api.RunningExclusive, api.RunningUnmanaged, api.RunningPreempted, api.Blocked} {
		if len(p.ThreadsByState[state]) > 0 {
			return false
		}
	}
	return true
}

func (s *Server) destroyProcess(p *core.Process) {
	if p.Shm != nil {
		if err := p.Shm.Close(); err != nil {
			s.log.WithError(err).WithField("process", p.ID).Warn("shm close failed")
		}
		if err := p.Shm.Unlink(); err != nil {
			s.log.WithError(err).WithField("process", p.ID).Warn("shm unlink failed")
		}
	}
	s.queues.RemoveAll(p)
	s.registry.Remove(p.ID)
}

// timeoutThreadPreemption handles a fired preemption timer fd: looks up
// its owning process, force-preempts its lowest-priority exclusive
// thread if a release is still owed, and re-runs the allocator.
func (s *Server) timeoutThreadPreemption(timerFD int) {
	pid, ok := s.timerFDToProcID[timerFD]
	delete(s.timerFDToProcID, timerFD)

	if err := s.reactor.Unregister(uintptr(timerFD)); err != nil {
		s.log.WithError(err).Warn("unregister timer fd failed")
	}
	if err := s.timers.ConsumeExpiry(timerFD); err != nil {
		s.log.WithError(err).Warn("consume timer expiry failed")
	}
	if err := s.timers.Disarm(timerFD); err != nil {
		s.log.WithError(err).Warn("disarm timer failed")
	}
	if !ok {
		return
	}
	proc := s.registry.Get(pid)
	if proc == nil {
		return
	}
	if proc.Shm != nil && proc.Shm.ReleaseRequestCount() <= proc.ReleaseCount {
		return // already honored voluntarily between arm and expiry
	}
	if _, err := s.alloc.ForcePreempt(proc); err != nil {
		s.log.WithError(err).WithField("process", pid).Error("force preempt failed")
	}
	s.runAllocator()
}

// runAllocator invokes distributeCores, registers any newly armed
// release timers with the reactor, and pushes the pass's allocation
// counters to the configured metrics sink, if any.
func (s *Server) runAllocator() {
	for _, armed := range s.alloc.DistributeCores() {
		s.timerFDToProcID[armed.FD] = armed.ProcessID
		if err := s.reactor.Register(uintptr(armed.FD), 0); err != nil {
			s.log.WithError(err).Warn("register timer fd failed")
		}
	}
	s.pushMetrics()
}
