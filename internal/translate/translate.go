// path: internal/translate/translate.go
// Package translate converts between wire records and the rules engine's
// mailbox addressing and tiles. It is the only place that knows both.
package translate

import (
	"fmt"

	"chesslink/internal/game"
	"chesslink/internal/protocol"
)

// TileSource is the part of the rules engine the board builder reads.
type TileSource interface {
	TileAt(pos game.Pos) (game.Tile, bool)
}

// PositionOf maps a mailbox index to wire coordinates.
func PositionOf(index int) (protocol.Position, error) {
	if index < game.BoardOffset || index >= game.MailboxSize {
		return protocol.Position{}, fmt.Errorf("%w: index %d", game.ErrOffBoard, index)
	}
	p := protocol.Position{
		X: (index - 1) % game.RowStride,
		Y: (index - game.BoardOffset) / game.RowStride,
	}
	if !p.Valid() {
		return protocol.Position{}, fmt.Errorf("%w: index %d is a sentinel", game.ErrOffBoard, index)
	}
	return p, nil
}

// IndexOf maps wire coordinates to a mailbox index.
func IndexOf(p protocol.Position) (int, error) {
	if !p.Valid() {
		return 0, fmt.Errorf("%w: (%d,%d)", game.ErrOffBoard, p.X, p.Y)
	}
	return game.BoardOffset + p.Y*game.RowStride + p.X, nil
}

// ToWire converts an engine origin/destination pair into a wire move
// without promotion.
func ToWire(origin, destination int) (protocol.Move, error) {
	from, err := PositionOf(origin)
	if err != nil {
		return protocol.Move{}, err
	}
	to, err := PositionOf(destination)
	if err != nil {
		return protocol.Move{}, err
	}
	return protocol.NewMove(from, to, protocol.None), nil
}

// ToEngine converts a wire move into an engine origin/destination pair.
func ToEngine(m protocol.Move) (origin, destination int, err error) {
	if origin, err = IndexOf(m.From()); err != nil {
		return 0, 0, err
	}
	if destination, err = IndexOf(m.To()); err != nil {
		return 0, 0, err
	}
	return origin, destination, nil
}

// PlyToMove converts a legal ply of mover into a wire move. The promotion
// piece takes the mover's color.
func PlyToMove(p game.Ply, mover game.Color) (protocol.Move, error) {
	m, err := ToWire(p.Origin, p.Destination)
	if err != nil {
		return protocol.Move{}, err
	}
	if p.Promotion != game.NoPiece {
		m.Promotion = PieceFromTile(game.Tile{Type: p.Promotion, Color: mover})
	}
	return m, nil
}

// MoveToPly converts a wire move into a ply. Only the kind of the promotion
// piece matters to the engine.
func MoveToPly(m protocol.Move) (game.Ply, error) {
	origin, destination, err := ToEngine(m)
	if err != nil {
		return game.Ply{}, err
	}
	tile, _ := TileFromPiece(m.Promotion)
	return game.Ply{Origin: origin, Destination: destination, Promotion: tile.Type}, nil
}

// MovesFrom converts the engine's legal plies for mover. Plies that do not
// map onto the board are dropped.
func MovesFrom(plies []game.Ply, mover game.Color) []protocol.Move {
	out := make([]protocol.Move, 0, len(plies))
	for _, p := range plies {
		m, err := PlyToMove(p, mover)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

// BoardFrom rebuilds the full wire board from the engine.
func BoardFrom(src TileSource) protocol.Board {
	var b protocol.Board
	for y := 0; y < protocol.BoardSize; y++ {
		for x := 0; x < protocol.BoardSize; x++ {
			tile, ok := src.TileAt(game.Pos{Rank: y, File: x})
			if !ok {
				b[y][x] = protocol.None
				continue
			}
			b[y][x] = PieceFromTile(tile)
		}
	}
	return b
}

// ColorToWire and ColorFromWire map between the two color enums.
func ColorToWire(c game.Color) protocol.Color {
	if c == game.Black {
		return protocol.Black
	}
	return protocol.White
}

func ColorFromWire(c protocol.Color) game.Color {
	if c == protocol.Black {
		return game.Black
	}
	return game.White
}
