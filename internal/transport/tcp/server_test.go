package tcp

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type echoHandler struct{}

func (echoHandler) HandleCommand(line string) string {
	return "echo: " + line + "\n"
}

type noEvents struct{}

func (noEvents) Subscribe() (<-chan any, func()) {
	ch := make(chan any)
	return ch, func() {}
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return log
}

func TestServeRoundTripsCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Serve binds its own listener from addr; reserve a free loopback port
	// first so the client knows where to dial.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	srv := New(addr, echoHandler{}, noEvents{}, newTestLogger())
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx) }()

	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("tcp", addr)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("net.Dial() error = %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("get model\n")); err != nil {
		t.Fatalf("conn.Write() error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString() error = %v", err)
	}
	if reply != "echo: get model\n" {
		t.Fatalf("reply = %q, want %q", reply, "echo: get model\n")
	}

	cancel()
	select {
	case <-serveErr:
	case <-time.After(time.Second):
		t.Fatal("Serve() did not return after context cancellation")
	}
}

func TestToEventLine(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"plain string", "tap: single", "tap: single\n"},
		{"unrecognized type is dropped", 42, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := toEventLine(tc.in); got != tc.want {
				t.Fatalf("toEventLine(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
