// path: internal/session/player.go
package session

import (
	"context"
	"errors"

	"chesslink/internal/protocol"
)

// ErrResign is returned by a Player instead of a move to give up the game.
var ErrResign = errors.New("resign")

// View is the read side a board UI renders from.
type View interface {
	Board() protocol.Board
	Moves() []protocol.Move
	PlayerToMove() protocol.Color
	Joever() protocol.Joever
}

type EventKind uint8

const (
	EventAccepted EventKind = iota
	EventRejected
	EventOpponentMoved
	EventOpponentResigned
	EventGameOver
)

func (k EventKind) String() string {
	switch k {
	case EventAccepted:
		return "accepted"
	case EventRejected:
		return "rejected"
	case EventOpponentMoved:
		return "opponent moved"
	case EventOpponentResigned:
		return "opponent resigned"
	case EventGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// Event tells the local player what happened to the game.
type Event struct {
	Kind   EventKind
	Move   protocol.Move
	Reason string
	Joever protocol.Joever
	View   View
}

// Player is the local side of the board UI: it picks moves and is told
// about outcomes.
type Player interface {
	NextMove(ctx context.Context, v View) (protocol.Move, error)
	Notify(ev Event)
}
