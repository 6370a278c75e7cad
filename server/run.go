// File: server/run.go
// Author: momentics <momentics@gmail.com>

package server

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/corearbiter/reactor"
)

// maxEpollEvents bounds how many ready descriptors are processed per
// wake, matching the reference daemon's fixed-size event buffer.
const maxEpollEvents = 1000

// StartArbitration enters the event loop and blocks until
// EndArbitration is called (from this goroutine or, via the
// termination eventfd, from a signal handler in another goroutine).
func (s *Server) StartArbitration() error {
	s.log.WithField("socket", s.opts.SocketPath).Info("arbiter listening")
	events := make([]reactor.Event, maxEpollEvents)
	for {
		n, err := s.reactor.Wait(events)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			switch {
			case fd == s.listenFD:
				s.acceptConnection()
			case fd == s.termFD:
				s.drainTermFD()
				return nil
			case s.isTimerFD(fd):
				s.timeoutThreadPreemption(fd)
			default:
				s.dispatchClient(fd)
			}
		}
	}
}

func (s *Server) isTimerFD(fd int) bool {
	_, ok := s.timerFDToProcID[fd]
	return ok
}

func (s *Server) drainTermFD() {
	var buf [8]byte
	unix.Read(s.termFD, buf[:])
}

// EndArbitration signals the event loop to exit by writing to the
// termination eventfd; safe to call from any goroutine, including a
// signal handler.
func (s *Server) EndArbitration() error {
	buf := make([]byte, 8)
	buf[0] = 1
	_, err := unix.Write(s.termFD, buf)
	return err
}

// Close releases every OS resource the server holds, restoring cpusets
// to their pre-run state. Call only after StartArbitration has
// returned.
func (s *Server) Close() error {
	for fd := range s.clients {
		unix.Close(fd)
	}
	for fd := range s.timerFDToProcID {
		s.timers.Disarm(fd)
	}
	unix.Close(s.listenFD)
	unix.Close(s.termFD)
	unix.Unlink(s.opts.SocketPath)
	if err := s.reactor.Close(); err != nil {
		s.log.WithError(err).Warn("reactor close failed")
	}
	return s.cpuset.Teardown()
}
