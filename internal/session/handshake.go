// path: internal/session/handshake.go
package session

import (
	"context"
	"fmt"

	"chesslink/internal/protocol"
)

// Policy decides how the server answers a color request. The request names
// the color the server peer will play. When Pinned is set the server keeps
// ServerColor whatever the client asks for.
type Policy struct {
	ServerColor protocol.Color
	Pinned      bool
}

func (p Policy) assign(requested protocol.Color) protocol.Color {
	if p.Pinned {
		return p.ServerColor
	}
	return requested
}

// Accept runs the server side of the handshake and returns the color the
// server plays. It must be the first exchange on the session.
func Accept(ctx context.Context, s *Session, a *Authority, policy Policy) (protocol.Color, error) {
	var req protocol.HandshakeRequest
	if err := s.Receive(ctx, &req, s.opts.IOTimeout); err != nil {
		return protocol.White, fmt.Errorf("%w: %w", protocol.ErrHandshake, err)
	}
	assigned := policy.assign(req.ServerColor)
	if err := s.Send(ctx, a.Opening(assigned)); err != nil {
		return protocol.White, fmt.Errorf("%w: %w", protocol.ErrHandshake, err)
	}
	s.log.Info().
		Str("requested", req.ServerColor.String()).
		Str("server_color", assigned.String()).
		Msg("handshake accepted")
	return assigned, nil
}

// Open runs the client side of the handshake, asking the server to play
// serverColor. The response's ServerColor is binding.
func Open(ctx context.Context, s *Session, serverColor protocol.Color) (protocol.HandshakeResponse, error) {
	if err := s.Send(ctx, protocol.HandshakeRequest{ServerColor: serverColor}); err != nil {
		return protocol.HandshakeResponse{}, fmt.Errorf("%w: %w", protocol.ErrHandshake, err)
	}
	var resp protocol.HandshakeResponse
	if err := s.Receive(ctx, &resp, s.opts.IOTimeout); err != nil {
		return protocol.HandshakeResponse{}, fmt.Errorf("%w: %w", protocol.ErrHandshake, err)
	}
	s.log.Info().
		Str("server_color", resp.ServerColor.String()).
		Stringer("joever", resp.Joever).
		Msg("handshake complete")
	return resp, nil
}
