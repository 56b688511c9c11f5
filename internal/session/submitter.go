// path: internal/session/submitter.go
package session

import (
	"context"
	"fmt"

	"chesslink/internal/protocol"
)

// Submitter is the client's half of a turn: one proposal, one response. It
// keeps the last state the server published and nothing else.
type Submitter struct {
	s      *Session
	color  protocol.Color
	board  protocol.Board
	moves  []protocol.Move
	joever protocol.Joever
	toMove protocol.Color
}

// NewSubmitter starts from the handshake response. The client plays the
// color the server did not take.
func NewSubmitter(s *Session, hs protocol.HandshakeResponse) *Submitter {
	return &Submitter{
		s:      s,
		color:  hs.ServerColor.Opposite(),
		board:  hs.Board,
		moves:  hs.Moves,
		joever: hs.Joever,
		toMove: moverOf(hs.Board, hs.Moves, protocol.White),
	}
}

// Submit sends m and reads exactly one response. A State updates the cache
// and is returned; a Rejected leaves the cache alone and yields an error
// wrapping protocol.ErrIllegalMove.
func (sub *Submitter) Submit(ctx context.Context, m protocol.Move) (protocol.State, error) {
	if err := sub.s.Send(ctx, protocol.MoveRequest(m)); err != nil {
		return protocol.State{}, err
	}
	var resp protocol.ServerToClient
	if err := sub.s.Receive(ctx, &resp, sub.s.opts.IOTimeout); err != nil {
		return protocol.State{}, err
	}
	switch resp.Kind {
	case protocol.ServerState:
		if err := sub.apply(resp.State); err != nil {
			return protocol.State{}, err
		}
		return resp.State, nil
	case protocol.ServerRejected:
		sub.s.log.Warn().Stringer("move", m).Str("reason", resp.Rejected.Message).Msg("proposal rejected")
		if resp.Rejected.Joever.Over() {
			return protocol.State{}, fmt.Errorf("%w: %w: %s", protocol.ErrIllegalMove, protocol.ErrGameOver, resp.Rejected.Message)
		}
		return protocol.State{}, fmt.Errorf("%w: %s", protocol.ErrIllegalMove, resp.Rejected.Message)
	default:
		return protocol.State{}, fmt.Errorf("%w: %s record answering a move", protocol.ErrProtocol, resp.Kind)
	}
}

// Await reads the one record the server sends after its own move or
// resignation.
func (sub *Submitter) Await(ctx context.Context) (protocol.ServerToClient, error) {
	var rec protocol.ServerToClient
	if err := sub.s.Receive(ctx, &rec, sub.s.opts.TurnTimeout); err != nil {
		return rec, err
	}
	switch rec.Kind {
	case protocol.ServerState:
		if err := sub.apply(rec.State); err != nil {
			return rec, err
		}
	case protocol.ServerResigned:
		if err := sub.resigned(rec.Resigned); err != nil {
			return rec, err
		}
	default:
		return rec, fmt.Errorf("%w: unsolicited %s record", protocol.ErrProtocol, rec.Kind)
	}
	return rec, nil
}

// Resign gives up the game and reads the server's one answer.
func (sub *Submitter) Resign(ctx context.Context) error {
	if err := sub.s.Send(ctx, protocol.ResignRequest()); err != nil {
		return err
	}
	var resp protocol.ServerToClient
	if err := sub.s.Receive(ctx, &resp, sub.s.opts.IOTimeout); err != nil {
		return err
	}
	switch resp.Kind {
	case protocol.ServerResigned:
		return sub.resigned(resp.Resigned)
	case protocol.ServerRejected:
		return fmt.Errorf("%w: %s", protocol.ErrGameOver, resp.Rejected.Message)
	default:
		return fmt.Errorf("%w: %s record answering a resignation", protocol.ErrProtocol, resp.Kind)
	}
}

func (sub *Submitter) Color() protocol.Color { return sub.color }

func (sub *Submitter) Board() protocol.Board { return sub.board }

func (sub *Submitter) Moves() []protocol.Move { return append([]protocol.Move{}, sub.moves...) }

func (sub *Submitter) PlayerToMove() protocol.Color { return sub.toMove }

func (sub *Submitter) Joever() protocol.Joever { return sub.joever }

func (sub *Submitter) apply(st protocol.State) error {
	if err := sub.checkJoever(st.Joever); err != nil {
		return err
	}
	mover := sub.toMove
	if p, ok := st.Board.At(st.MoveMade.To()).Color(); ok {
		mover = p
	}
	sub.board = st.Board
	sub.moves = st.Moves
	sub.joever = st.Joever
	sub.toMove = moverOf(st.Board, st.Moves, mover.Opposite())
	return nil
}

func (sub *Submitter) resigned(r protocol.Resigned) error {
	if !r.Joever.Over() {
		return fmt.Errorf("%w: resignation without an outcome", protocol.ErrProtocol)
	}
	if err := sub.checkJoever(r.Joever); err != nil {
		return err
	}
	sub.board = r.Board
	sub.moves = nil
	sub.joever = r.Joever
	return nil
}

func (sub *Submitter) checkJoever(next protocol.Joever) error {
	if sub.joever.Over() && next != sub.joever {
		return fmt.Errorf("%w: outcome changed from %s to %s", protocol.ErrProtocol, sub.joever, next)
	}
	return nil
}

// moverOf infers the side to move from whose pieces the legal moves start
// on.
func moverOf(b protocol.Board, moves []protocol.Move, fallback protocol.Color) protocol.Color {
	for _, m := range moves {
		if c, ok := b.At(m.From()).Color(); ok {
			return c
		}
	}
	return fallback
}
