// path: internal/game/engine.go
// Package game adapts a chess rules library to the mailbox addressing the
// rest of the module speaks. It only answers questions about chess; it knows
// nothing about peers or the wire.
package game

import (
	"fmt"

	"github.com/notnil/chess"
)

// Engine holds one game in progress.
type Engine struct {
	g *chess.Game
}

// NewEngine starts a game from the standard initial position.
func NewEngine() *Engine {
	return &Engine{g: chess.NewGame()}
}

// NewEngineFromFEN starts a game from the given FEN string.
func NewEngineFromFEN(fen string) (*Engine, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	return &Engine{g: chess.NewGame(opt)}, nil
}

// Apply plays p for the side to move. A promotion ply without a chosen piece
// promotes to a queen.
func (e *Engine) Apply(p Ply) error {
	from, ok := squareAt(p.Origin)
	if !ok {
		return fmt.Errorf("%w: origin %d", ErrOffBoard, p.Origin)
	}
	to, ok := squareAt(p.Destination)
	if !ok {
		return fmt.Errorf("%w: destination %d", ErrOffBoard, p.Destination)
	}
	if p.Promotion == Pawn || p.Promotion == King {
		return fmt.Errorf("%w: cannot promote to %s", ErrIllegalMove, p.Promotion)
	}
	if e.g.Outcome() != chess.NoOutcome {
		return fmt.Errorf("%w: game already decided", ErrIllegalMove)
	}

	want := promoTypeOf(p.Promotion)
	var match *chess.Move
	for _, m := range e.g.ValidMoves() {
		if m.S1() != from || m.S2() != to {
			continue
		}
		if m.Promo() == want {
			match = m
			break
		}
		if want == chess.NoPieceType && m.Promo() == chess.Queen {
			match = m
		}
	}
	if match == nil {
		return fmt.Errorf("%w: %s", ErrIllegalMove, p)
	}
	if err := e.g.Move(match); err != nil {
		return fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	return nil
}

// Plies lists every legal ply for the side to move.
func (e *Engine) Plies() []Ply {
	valid := e.g.ValidMoves()
	out := make([]Ply, 0, len(valid))
	for _, m := range valid {
		out = append(out, Ply{
			Origin:      indexOf(m.S1()),
			Destination: indexOf(m.S2()),
			Promotion:   pieceTypeOf(m.Promo()),
		})
	}
	return out
}

// IsCheckmate reports whether the side to move has been mated.
func (e *Engine) IsCheckmate() bool {
	return e.g.Method() == chess.Checkmate
}

// IsDraw reports whether the game ended without a winner.
func (e *Engine) IsDraw() bool {
	return e.g.Outcome() == chess.Draw
}

func (e *Engine) CurrentPlayer() Color {
	if e.g.Position().Turn() == chess.Black {
		return Black
	}
	return White
}

// TileAt returns the piece on pos, if any.
func (e *Engine) TileAt(pos Pos) (Tile, bool) {
	if !pos.Valid() {
		return Tile{}, false
	}
	pc := e.g.Position().Board().Piece(chess.Square(pos.Rank*8 + pos.File))
	if pc == chess.NoPiece {
		return Tile{}, false
	}
	t := pieceTypeOf(pc.Type())
	if t == NoPiece {
		return Tile{}, false
	}
	c := White
	if pc.Color() == chess.Black {
		c = Black
	}
	return Tile{Type: t, Color: c}, true
}

// FEN returns the current position.
func (e *Engine) FEN() string { return e.g.Position().String() }

func squareAt(i int) (chess.Square, bool) {
	p, ok := PosOf(i)
	if !ok {
		return chess.A1, false
	}
	return chess.Square(p.Rank*8 + p.File), true
}

func indexOf(sq chess.Square) int {
	return BoardOffset + int(sq.Rank())*RowStride + int(sq.File())
}

func pieceTypeOf(pt chess.PieceType) PieceType {
	switch pt {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	default:
		return NoPiece
	}
}

func promoTypeOf(pt PieceType) chess.PieceType {
	switch pt {
	case Knight:
		return chess.Knight
	case Bishop:
		return chess.Bishop
	case Rook:
		return chess.Rook
	case Queen:
		return chess.Queen
	default:
		return chess.NoPieceType
	}
}
