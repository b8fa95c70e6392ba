// Package tcp implements the one end-to-end wire-protocol transport the
// core ships with: a line-oriented TCP listener. It is structurally
// grounded in the teacher's NUT client (internal/adapters/ups/client.go, a
// bufio.Reader/bufio.Writer pair over net.Conn speaking a line protocol)
// but inverted — here the daemon is the line-protocol server, not a
// client. Every other transport spec.md names (UDS, WebSocket, HTTP) is
// mechanical plumbing over the same CommandHandler and is out of scope;
// this is the one implemented all the way through.
package tcp

import (
	"bufio"
	"context"
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
)

// CommandHandler executes one parsed wire-protocol line and returns its
// formatted response (including trailing newline). Implemented by
// *orchestrator.Orchestrator.
type CommandHandler interface {
	HandleCommand(line string) string
}

// EventSource publishes the latest event value (an orchestrator.Snapshot
// after each tick, or a battery.TapEvent per gesture), not a plain string;
// implemented by *eventbus.Bus via a per-connection subscription.
type EventSource interface {
	Subscribe() (<-chan any, func())
}

// Server accepts line-protocol connections and marshals each command onto
// the handler, consistent with spec.md §5's "transports queue commands" —
// every connection's commands still execute one at a time because
// HandleCommand itself serializes on the orchestrator's lock.
type Server struct {
	addr    string
	handler CommandHandler
	events  EventSource
	log     *logrus.Logger
}

// New constructs a Server bound to addr (e.g. ":8423").
func New(addr string, handler CommandHandler, events EventSource, log *logrus.Logger) *Server {
	return &Server{addr: addr, handler: handler, events: events, log: log}
}

// Serve listens on s.addr until ctx is canceled. It returns when the
// listener is closed.
func (s *Server) Serve(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.WithField("addr", s.addr).Info("tcp wire server listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				s.log.WithError(err).Warn("tcp accept failed")
				continue
			}
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	log := s.log.WithField("remote", conn.RemoteAddr().String())
	log.Debug("tcp client connected")
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)

	if s.events != nil {
		ch, unsubscribe := s.events.Subscribe()
		defer unsubscribe()
		go s.pushEvents(conn, ch, done, log)
	}

	scanner := bufio.NewScanner(conn)
	writer := bufio.NewWriter(conn)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		resp := s.handler.HandleCommand(line)
		if resp == "" {
			continue
		}
		if _, err := writer.WriteString(resp); err != nil {
			log.WithError(err).Warn("tcp write failed")
			return
		}
		if err := writer.Flush(); err != nil {
			log.WithError(err).Warn("tcp flush failed")
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.WithError(err).Debug("tcp read ended")
	}
}

// pushEvents forwards tap/state-change notifications to the connection as
// they arrive, independent of command/response traffic on the same socket.
func (s *Server) pushEvents(conn net.Conn, ch <-chan any, done <-chan struct{}, log *logrus.Entry) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if _, err := conn.Write([]byte(toEventLine(ev))); err != nil {
				log.WithError(err).Debug("tcp event push failed")
				return
			}
		}
	}
}

// toEventLine renders a published event as a single text line. Snapshot
// state-change events are frequent (once per 100ms tick) and have no
// line-protocol representation of their own, so only events with a
// meaningful string form (tap gestures, plain strings) are forwarded;
// status observers should use the WebSocket/HTTP surface instead.
func toEventLine(ev any) string {
	switch v := ev.(type) {
	case string:
		return v + "\n"
	case fmt.Stringer:
		return v.String() + "\n"
	default:
		return ""
	}
}
