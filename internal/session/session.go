// path: internal/session/session.go
// Package session runs one game over one connection: the opening handshake,
// the server's move authority, the client's move submitter, and the loops
// that sequence them.
package session

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"chesslink/internal/protocol"
)

const (
	DefaultIOTimeout   = 30 * time.Second
	DefaultTurnTimeout = 10 * time.Minute
)

// Conn is the stream a session owns. net.Conn satisfies it.
type Conn interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Options configures a Session. Zero timeouts disable the bound.
type Options struct {
	// IOTimeout bounds writes, the handshake, and waiting for the answer
	// to a proposal.
	IOTimeout time.Duration
	// TurnTimeout bounds waiting for the peer to choose its own move.
	TurnTimeout time.Duration
	Role        string
	Logger      zerolog.Logger
}

// Session owns a connection for its lifetime.
type Session struct {
	ID string

	conn      Conn
	codec     *protocol.Codec
	opts      Options
	log       zerolog.Logger
	closeOnce sync.Once
	closeErr  error
}

func New(conn Conn, opts Options) *Session {
	id := uuid.NewString()
	return &Session{
		ID:    id,
		conn:  conn,
		codec: protocol.NewCodec(conn),
		opts:  opts,
		log:   opts.Logger.With().Str("session", id).Str("role", opts.Role).Logger(),
	}
}

func (s *Session) Logger() *zerolog.Logger { return &s.log }

// Send writes one record, bounded by IOTimeout and ctx.
func (s *Session) Send(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", protocol.ErrConnection, err)
	}
	if err := s.conn.SetWriteDeadline(deadline(s.opts.IOTimeout)); err != nil {
		return fmt.Errorf("%w: set write deadline: %w", protocol.ErrConnection, err)
	}
	stop := context.AfterFunc(ctx, func() { _ = s.conn.SetWriteDeadline(expired) })
	defer stop()

	err := s.codec.WriteRecord(v)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", protocol.ErrConnection, context.Cause(ctx))
	}
	return err
}

// Receive reads exactly one record into v, bounded by timeout and ctx.
func (s *Session) Receive(ctx context.Context, v any, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", protocol.ErrConnection, err)
	}
	if err := s.conn.SetReadDeadline(deadline(timeout)); err != nil {
		return fmt.Errorf("%w: set read deadline: %w", protocol.ErrConnection, err)
	}
	stop := context.AfterFunc(ctx, func() { _ = s.conn.SetReadDeadline(expired) })
	defer stop()

	err := s.codec.ReadRecord(v)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %w", protocol.ErrConnection, context.Cause(ctx))
	}
	return err
}

// Close closes the underlying connection once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

var expired = time.Unix(1, 0)

func deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return time.Now().Add(d)
}
