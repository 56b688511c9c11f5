// path: internal/transport/ws.go
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSConn turns a WebSocket into a byte stream. Each Write goes out as one
// text message; Read runs across message boundaries so the codec never sees
// framing. Deadlines may be set from any goroutine.
type WSConn struct {
	ws *websocket.Conn
	r  io.Reader

	mu            sync.Mutex
	writeDeadline time.Time
}

// writeChunk bounds how much is written before a new write deadline is
// picked up.
const writeChunk = 4096

func NewWSConn(ws *websocket.Conn) *WSConn {
	return &WSConn{ws: ws}
}

// DialWebSocket connects to a ws:// or wss:// peer endpoint.
func DialWebSocket(ctx context.Context, url string) (*WSConn, error) {
	d := websocket.Dialer{HandshakeTimeout: dialTimeout}
	ws, resp, err := d.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", url, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewWSConn(ws), nil
}

func (c *WSConn) Read(p []byte) (int, error) {
	for {
		if c.r == nil {
			kind, r, err := c.ws.NextReader()
			if err != nil {
				if peerClosed(err) {
					return 0, io.EOF
				}
				return 0, err
			}
			if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
				continue
			}
			c.r = r
		}
		n, err := c.r.Read(p)
		if errors.Is(err, io.EOF) {
			c.r = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (c *WSConn) Write(p []byte) (int, error) {
	if err := c.syncWriteDeadline(); err != nil {
		return 0, err
	}
	w, err := c.ws.NextWriter(websocket.TextMessage)
	if err != nil {
		return 0, err
	}
	n := 0
	for n < len(p) {
		if err := c.syncWriteDeadline(); err != nil {
			_ = w.Close()
			return n, err
		}
		m, err := w.Write(p[n:min(n+writeChunk, len(p))])
		n += m
		if err != nil {
			_ = w.Close()
			return n, err
		}
	}
	if err := w.Close(); err != nil {
		return n, err
	}
	return n, nil
}

// syncWriteDeadline hands the latest write deadline to the websocket. Only
// the writing goroutine touches the websocket's own deadline.
func (c *WSConn) syncWriteDeadline() error {
	c.mu.Lock()
	d := c.writeDeadline
	c.mu.Unlock()
	if !d.IsZero() && !time.Now().Before(d) {
		return os.ErrDeadlineExceeded
	}
	return c.ws.SetWriteDeadline(d)
}

// SetReadDeadline goes straight to the network connection, which allows
// concurrent calls.
func (c *WSConn) SetReadDeadline(t time.Time) error { return c.ws.NetConn().SetReadDeadline(t) }

// SetWriteDeadline records t for the next chunk and also applies it to the
// network connection so a write already blocked in the kernel is cut short.
func (c *WSConn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	c.writeDeadline = t
	c.mu.Unlock()
	return c.ws.NetConn().SetWriteDeadline(t)
}

// Close says goodbye to the peer and drops the connection.
func (c *WSConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.ws.Close()
}

func peerClosed(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
	)
}
