// path: internal/session/guest.go
package session

import (
	"context"
	"errors"

	"chesslink/internal/protocol"
)

// Guest runs the client side of a session.
type Guest struct {
	s           *Session
	serverColor protocol.Color
	local       Player
	sub         *Submitter
}

// NewGuest prepares a client that will ask the server to play serverColor.
func NewGuest(s *Session, serverColor protocol.Color, local Player) *Guest {
	return &Guest{s: s, serverColor: serverColor, local: local}
}

// Submitter is available once Run has completed the handshake.
func (g *Guest) Submitter() *Submitter { return g.sub }

// Run plays until the game is decided.
func (g *Guest) Run(ctx context.Context) error {
	hs, err := Open(ctx, g.s, g.serverColor)
	if err != nil {
		return err
	}
	g.sub = NewSubmitter(g.s, hs)

	for !g.sub.Joever().Over() {
		if g.sub.PlayerToMove() == g.sub.Color() {
			err = g.ownTurn(ctx)
		} else {
			err = g.opponentTurn(ctx)
		}
		if err != nil {
			return err
		}
	}
	g.local.Notify(Event{Kind: EventGameOver, Joever: g.sub.Joever(), View: g.sub})
	g.s.log.Info().Stringer("joever", g.sub.Joever()).Msg("game over")
	return nil
}

func (g *Guest) ownTurn(ctx context.Context) error {
	m, err := g.local.NextMove(ctx, g.sub)
	if errors.Is(err, ErrResign) {
		return g.sub.Resign(ctx)
	}
	if err != nil {
		return err
	}

	_, err = g.sub.Submit(ctx, m)
	if errors.Is(err, protocol.ErrIllegalMove) {
		g.local.Notify(Event{Kind: EventRejected, Move: m, Reason: err.Error(), View: g.sub})
		return nil
	}
	if err != nil {
		return err
	}
	g.local.Notify(Event{Kind: EventAccepted, Move: m, Joever: g.sub.Joever(), View: g.sub})
	return nil
}

func (g *Guest) opponentTurn(ctx context.Context) error {
	rec, err := g.sub.Await(ctx)
	if err != nil {
		return err
	}
	if rec.Kind == protocol.ServerResigned {
		g.local.Notify(Event{Kind: EventOpponentResigned, Joever: g.sub.Joever(), View: g.sub})
		return nil
	}
	g.local.Notify(Event{Kind: EventOpponentMoved, Move: rec.State.MoveMade, Joever: g.sub.Joever(), View: g.sub})
	return nil
}
