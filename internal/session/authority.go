// path: internal/session/authority.go
package session

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"chesslink/internal/game"
	"chesslink/internal/protocol"
	"chesslink/internal/translate"
)

// Rules is the chess oracle the authority consults. It never decides
// legality itself.
type Rules interface {
	Apply(p game.Ply) error
	Plies() []game.Ply
	IsCheckmate() bool
	IsDraw() bool
	CurrentPlayer() game.Color
	TileAt(pos game.Pos) (game.Tile, bool)
}

type Phase uint8

const (
	AwaitingMove Phase = iota
	Validating
	GameOver
)

func (p Phase) String() string {
	switch p {
	case AwaitingMove:
		return "awaiting move"
	case Validating:
		return "validating"
	case GameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Authority owns the authoritative game on the server. It must only be
// driven from one goroutine; Snapshot is the one method safe to call from
// others.
type Authority struct {
	rules  Rules
	phase  Phase
	joever protocol.Joever
	board  protocol.Board
	moves  []protocol.Move
	toMove protocol.Color
	last   *protocol.Move
	plies  int
	snap   atomic.Pointer[protocol.Snapshot]
	log    zerolog.Logger
}

func NewAuthority(rules Rules, log zerolog.Logger) *Authority {
	a := &Authority{rules: rules, log: log}
	a.refresh()
	switch {
	case rules.IsCheckmate():
		a.joever = protocol.Winner(a.toMove.Opposite())
	case rules.IsDraw():
		a.joever = protocol.Draw
	}
	if a.joever.Over() {
		a.phase = GameOver
	}
	a.publish()
	return a
}

// Propose validates and applies a move by mover. On acceptance it returns a
// State record. On rejection it returns a Rejected record and an error
// wrapping protocol.ErrIllegalMove; the game is unchanged.
func (a *Authority) Propose(mover protocol.Color, m protocol.Move) (protocol.ServerToClient, error) {
	if a.phase == GameOver {
		return a.reject(m, "game is over", protocol.ErrGameOver)
	}
	if mover != a.toMove {
		return a.reject(m, fmt.Sprintf("%s to move", a.toMove), nil)
	}

	a.phase = Validating
	ply, err := translate.MoveToPly(m)
	if err != nil {
		a.phase = AwaitingMove
		return a.reject(m, err.Error(), nil)
	}
	if err := a.rules.Apply(ply); err != nil {
		a.phase = AwaitingMove
		return a.reject(m, err.Error(), nil)
	}

	a.refresh()
	a.plies++
	applied := m
	a.last = &applied

	outcome := protocol.Ongoing
	switch {
	case a.rules.IsCheckmate():
		outcome = protocol.Winner(mover)
	case a.rules.IsDraw():
		outcome = protocol.Draw
	}
	a.conclude(outcome)
	a.publish()

	a.log.Info().
		Str("mover", mover.String()).
		Stringer("move", m).
		Stringer("joever", a.joever).
		Msg("move accepted")

	return protocol.StateRecord(protocol.State{
		Board:    a.board,
		Moves:    a.Moves(),
		Joever:   a.joever,
		MoveMade: m,
	}), nil
}

// Resign ends the game in favour of loser's opponent and returns the
// Resigned record to publish.
func (a *Authority) Resign(loser protocol.Color) (protocol.ServerToClient, error) {
	if a.phase == GameOver {
		return a.reject(protocol.Move{}, "game is over", protocol.ErrGameOver)
	}
	a.conclude(protocol.Winner(loser.Opposite()))
	a.moves = nil
	a.publish()
	a.log.Info().Str("loser", loser.String()).Msg("resigned")
	return protocol.ResignedRecord(protocol.Resigned{Board: a.board, Joever: a.joever}), nil
}

// Opening builds the handshake response for a connection where the server
// plays serverColor.
func (a *Authority) Opening(serverColor protocol.Color) protocol.HandshakeResponse {
	return protocol.HandshakeResponse{
		ServerColor: serverColor,
		Board:       a.board,
		Moves:       a.Moves(),
		Joever:      a.joever,
	}
}

func (a *Authority) Phase() Phase { return a.phase }

func (a *Authority) Board() protocol.Board { return a.board }

func (a *Authority) PlayerToMove() protocol.Color { return a.toMove }

func (a *Authority) Joever() protocol.Joever { return a.joever }

func (a *Authority) Moves() []protocol.Move { return append([]protocol.Move{}, a.moves...) }

// Snapshot returns a copy of the last published state.
func (a *Authority) Snapshot() protocol.Snapshot {
	snap := *a.snap.Load()
	snap.Moves = append([]protocol.Move{}, snap.Moves...)
	return snap
}

func (a *Authority) reject(m protocol.Move, reason string, cause error) (protocol.ServerToClient, error) {
	a.log.Warn().Stringer("move", m).Str("reason", reason).Msg("move rejected")
	rec := protocol.RejectedRecord(protocol.Rejected{
		Board:   a.board,
		Moves:   a.Moves(),
		Joever:  a.joever,
		Message: reason,
	})
	if cause != nil {
		return rec, fmt.Errorf("%w: %w: %s", protocol.ErrIllegalMove, cause, reason)
	}
	return rec, fmt.Errorf("%w: %s", protocol.ErrIllegalMove, reason)
}

// conclude records a terminal outcome once; joever never changes after.
func (a *Authority) conclude(j protocol.Joever) {
	if !a.joever.Over() && j.Over() {
		a.joever = j
	}
	if a.joever.Over() {
		a.phase = GameOver
	} else {
		a.phase = AwaitingMove
	}
}

func (a *Authority) refresh() {
	a.board = translate.BoardFrom(a.rules)
	mover := a.rules.CurrentPlayer()
	a.toMove = translate.ColorToWire(mover)
	a.moves = translate.MovesFrom(a.rules.Plies(), mover)
}

func (a *Authority) publish() {
	snap := protocol.Snapshot{
		Board:        a.board,
		Moves:        a.Moves(),
		Joever:       a.joever,
		PlayerToMove: a.toMove,
		Plies:        a.plies,
	}
	if a.last != nil {
		last := *a.last
		snap.LastMove = &last
	}
	a.snap.Store(&snap)
}
