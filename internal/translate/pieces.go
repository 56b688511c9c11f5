// path: internal/translate/pieces.go
package translate

import (
	"chesslink/internal/game"
	"chesslink/internal/protocol"
)

var (
	whitePieces = map[game.PieceType]protocol.Piece{
		game.Pawn:   protocol.WhitePawn,
		game.Knight: protocol.WhiteKnight,
		game.Bishop: protocol.WhiteBishop,
		game.Rook:   protocol.WhiteRook,
		game.Queen:  protocol.WhiteQueen,
		game.King:   protocol.WhiteKing,
	}
	blackPieces = map[game.PieceType]protocol.Piece{
		game.Pawn:   protocol.BlackPawn,
		game.Knight: protocol.BlackKnight,
		game.Bishop: protocol.BlackBishop,
		game.Rook:   protocol.BlackRook,
		game.Queen:  protocol.BlackQueen,
		game.King:   protocol.BlackKing,
	}
	tiles = func() map[protocol.Piece]game.Tile {
		out := make(map[protocol.Piece]game.Tile, 12)
		for t, p := range whitePieces {
			out[p] = game.Tile{Type: t, Color: game.White}
		}
		for t, p := range blackPieces {
			out[p] = game.Tile{Type: t, Color: game.Black}
		}
		return out
	}()
)

// PieceFromTile maps an engine tile to its wire piece. Tiles outside the
// known set map to None.
func PieceFromTile(t game.Tile) protocol.Piece {
	table := whitePieces
	switch t.Color {
	case game.White:
	case game.Black:
		table = blackPieces
	default:
		return protocol.None
	}
	if p, ok := table[t.Type]; ok {
		return p
	}
	return protocol.None
}

// TileFromPiece maps a wire piece to an engine tile. None and unknown values
// report false.
func TileFromPiece(p protocol.Piece) (game.Tile, bool) {
	t, ok := tiles[p]
	return t, ok
}
