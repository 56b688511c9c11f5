// path: internal/game/types.go
package game

import "fmt"

type Color uint8

const (
	White Color = iota
	Black
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

func (c Color) Index() int { return int(c) }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

type PieceType uint8

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

func (p PieceType) String() string {
	switch p {
	case NoPiece:
		return "-"
	case Pawn:
		return "P"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return fmt.Sprintf("piece(%d)", p)
	}
}

// Tile is the content of an occupied square.
type Tile struct {
	Type  PieceType
	Color Color
}

func (t Tile) String() string { return t.Color.String() + " " + t.Type.String() }

// Pos addresses a playable square by rank and file, both 0..7.
type Pos struct {
	Rank int
	File int
}

func (p Pos) Valid() bool { return p.Rank >= 0 && p.Rank < 8 && p.File >= 0 && p.File < 8 }

func (p Pos) String() string {
	if !p.Valid() {
		return fmt.Sprintf("pos(%d,%d)", p.Rank, p.File)
	}
	return string([]byte{byte('a' + p.File), byte('1' + p.Rank)})
}

// The engine addresses squares on a 10x12 mailbox: two sentinel rows above
// and below the board and two sentinel files to the right of each rank, so
// a1 is index 21 and h8 is index 98.
const (
	BoardOffset = 21
	RowStride   = 10
	MailboxSize = 120
)

// Index returns the mailbox index of p.
func Index(p Pos) (int, bool) {
	if !p.Valid() {
		return 0, false
	}
	return BoardOffset + p.Rank*RowStride + p.File, true
}

// PosOf returns the square at mailbox index i; sentinel squares report false.
func PosOf(i int) (Pos, bool) {
	if i < BoardOffset || i >= MailboxSize {
		return Pos{}, false
	}
	p := Pos{Rank: (i - BoardOffset) / RowStride, File: (i - 1) % RowStride}
	return p, p.Valid()
}

// Ply is one half-move in mailbox addressing.
type Ply struct {
	Origin      int
	Destination int
	Promotion   PieceType
}

func (p Ply) String() string {
	from, _ := PosOf(p.Origin)
	to, _ := PosOf(p.Destination)
	s := from.String() + to.String()
	if p.Promotion != NoPiece {
		s += p.Promotion.String()
	}
	return s
}
