// path: internal/session/host.go
package session

import (
	"context"
	"errors"
	"io"

	"chesslink/internal/protocol"
)

// Host runs the server side of a session: handshake, then strict turn
// taking between the local player and the peer.
type Host struct {
	s      *Session
	auth   *Authority
	policy Policy
	local  Player
	color  protocol.Color
}

func NewHost(s *Session, auth *Authority, policy Policy, local Player) *Host {
	return &Host{s: s, auth: auth, policy: policy, local: local}
}

// Color is the color the server plays; valid once the handshake is done.
func (h *Host) Color() protocol.Color { return h.color }

// Run plays the game to its end. After the game is decided it keeps
// answering the peer with Rejected records until the peer hangs up, which
// ends Run without error.
func (h *Host) Run(ctx context.Context) error {
	color, err := Accept(ctx, h.s, h.auth, h.policy)
	if err != nil {
		return err
	}
	h.color = color

	for !h.auth.Joever().Over() {
		if h.auth.PlayerToMove() == h.color {
			err = h.localTurn(ctx)
		} else {
			err = h.peerTurn(ctx)
		}
		if err != nil {
			return err
		}
	}
	h.local.Notify(Event{Kind: EventGameOver, Joever: h.auth.Joever(), View: h.auth})
	h.s.log.Info().Stringer("joever", h.auth.Joever()).Msg("game over")
	return h.drain(ctx)
}

func (h *Host) localTurn(ctx context.Context) error {
	m, err := h.local.NextMove(ctx, h.auth)
	if errors.Is(err, ErrResign) {
		rec, err := h.auth.Resign(h.color)
		if err != nil {
			return err
		}
		return h.s.Send(ctx, rec)
	}
	if err != nil {
		return err
	}

	rec, err := h.auth.Propose(h.color, m)
	if errors.Is(err, protocol.ErrIllegalMove) {
		h.local.Notify(Event{Kind: EventRejected, Move: m, Reason: rec.Rejected.Message, View: h.auth})
		return nil
	}
	if err != nil {
		return err
	}
	h.local.Notify(Event{Kind: EventAccepted, Move: m, Joever: h.auth.Joever(), View: h.auth})
	return h.s.Send(ctx, rec)
}

func (h *Host) peerTurn(ctx context.Context) error {
	req, err := h.receive(ctx)
	if err != nil {
		return err
	}
	rec, verdict := h.answer(req)
	if err := h.s.Send(ctx, rec); err != nil {
		return err
	}
	if verdict != nil {
		return nil
	}
	switch req.Kind {
	case protocol.ClientMove:
		h.local.Notify(Event{Kind: EventOpponentMoved, Move: req.Move, Joever: h.auth.Joever(), View: h.auth})
	case protocol.ClientResign:
		h.local.Notify(Event{Kind: EventOpponentResigned, Joever: h.auth.Joever(), View: h.auth})
	}
	return nil
}

// drain rejects whatever the peer still sends once the game is decided.
func (h *Host) drain(ctx context.Context) error {
	for {
		req, err := h.receive(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		rec, _ := h.answer(req)
		if err := h.s.Send(ctx, rec); err != nil {
			return err
		}
	}
}

func (h *Host) receive(ctx context.Context) (protocol.ClientToServer, error) {
	var req protocol.ClientToServer
	err := h.s.Receive(ctx, &req, h.s.opts.TurnTimeout)
	return req, err
}

// answer produces exactly one record for a peer request.
func (h *Host) answer(req protocol.ClientToServer) (protocol.ServerToClient, error) {
	peer := h.color.Opposite()
	if req.Kind == protocol.ClientResign {
		return h.auth.Resign(peer)
	}
	return h.auth.Propose(peer, req.Move)
}
