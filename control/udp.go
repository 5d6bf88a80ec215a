// SPDX-License-Identifier: EPL-2.0

package control

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
)

// DefaultUDPAddr is the listen address used when none is configured.
const DefaultUDPAddr = ":12345"

const maxDatagram = 1500

// UDPServer answers text commands sent as single datagrams.
type UDPServer struct {
	conn     net.PacketConn
	commands *Commands
	log      *slog.Logger
	stop     func()

	done      chan struct{}
	started   atomic.Bool
	closeOnce sync.Once
}

// ListenUDP binds addr. onStop runs once when a client sends "stop".
func ListenUDP(addr string, commands *Commands, onStop func(), log *slog.Logger) (*UDPServer, error) {
	if addr == "" {
		addr = DefaultUDPAddr
	}
	if log == nil {
		log = slog.Default()
	}

	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("udp listen %s: %w", addr, err)
	}

	var once sync.Once
	stop := func() {
		if onStop != nil {
			once.Do(onStop)
		}
	}

	return &UDPServer{
		conn:     conn,
		commands: commands,
		log:      log.With("component", "udp"),
		stop:     stop,
		done:     make(chan struct{}),
	}, nil
}

// Addr returns the bound address.
func (s *UDPServer) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Start serves requests on a new goroutine until Close.
func (s *UDPServer) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.log.Info("listening for commands", "addr", s.Addr().String())
	go s.serve()
}

// Close unblocks the read loop and waits for it to exit.
func (s *UDPServer) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
		if s.started.Load() {
			<-s.done
		}
	})

	return err
}

func (s *UDPServer) serve() {
	defer close(s.done)

	buf := make([]byte, maxDatagram)
	for {
		n, from, err := s.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("udp read failed", "error", err)
			continue
		}

		reply, stop := s.commands.Handle(string(buf[:n]))

		if _, err := s.conn.WriteTo([]byte(reply), from); err != nil {
			s.log.Warn("udp reply failed", "to", from.String(), "error", err)
		}

		if stop {
			s.log.Info("stop requested", "from", from.String())
			s.stop()
		}
	}
}
