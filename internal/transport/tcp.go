// path: internal/transport/tcp.go
// Package transport opens the single stream a session runs over: a TCP
// connection, or a WebSocket made to look like one.
package transport

import (
	"context"
	"fmt"
	"net"
	"time"
)

// DefaultAddr is where the server listens for its peer.
const DefaultAddr = ":5000"

const dialTimeout = 10 * time.Second

// Listen binds addr for peers.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return ln, nil
}

// AcceptOne waits for the first peer on ln and closes ln once it has one,
// or when ctx ends.
func AcceptOne(ctx context.Context, ln net.Listener) (net.Conn, error) {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()
	defer ln.Close()

	conn, err := ln.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, context.Cause(ctx)
		}
		return nil, fmt.Errorf("accept: %w", err)
	}
	return conn, nil
}

// Dial connects to a server at addr.
func Dial(ctx context.Context, addr string) (net.Conn, error) {
	d := net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return conn, nil
}
