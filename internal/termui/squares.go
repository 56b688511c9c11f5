// path: internal/termui/squares.go
// Package termui is the line-oriented board UI: algebraic input, a text
// board, and a Player that reads moves from a terminal.
package termui

import (
	"errors"
	"fmt"
	"strings"

	"chesslink/internal/protocol"
)

// TileSize is the edge of one square in pixels for graphical front ends.
const TileSize = 64

var ErrBadInput = errors.New("bad input")

// ParseSquare reads an algebraic square such as "e2".
func ParseSquare(s string) (protocol.Position, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 2 {
		return protocol.Position{}, fmt.Errorf("%w: square %q", ErrBadInput, s)
	}
	p := protocol.Position{X: int(s[0] - 'a'), Y: int(s[1] - '1')}
	if s[0] < 'a' || s[1] < '1' || !p.Valid() {
		return protocol.Position{}, fmt.Errorf("%w: square %q", ErrBadInput, s)
	}
	return p, nil
}

// SquareName is the algebraic name of p.
func SquareName(p protocol.Position) string {
	if !p.Valid() {
		return "??"
	}
	return string([]byte{byte('a' + p.X), byte('1' + p.Y)})
}

// MoveName writes m as from-square, to-square and an optional promotion
// letter, e.g. "e7e8q".
func MoveName(m protocol.Move) string {
	s := SquareName(m.From()) + SquareName(m.To())
	if l, ok := promoLetters[m.Promotion]; ok {
		s += string(l)
	}
	return s
}

var promoLetters = map[protocol.Piece]byte{
	protocol.WhiteQueen: 'q', protocol.WhiteRook: 'r', protocol.WhiteBishop: 'b', protocol.WhiteKnight: 'n',
	protocol.BlackQueen: 'q', protocol.BlackRook: 'r', protocol.BlackBishop: 'b', protocol.BlackKnight: 'n',
}

// ParseMove reads "e2e4", "e2 e4", "e2-e4" or "e7e8q". A promotion letter
// becomes a piece of the mover's color.
func ParseMove(s string, mover protocol.Color) (protocol.Move, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.NewReplacer(" ", "", "-", "").Replace(t)
	if len(t) != 4 && len(t) != 5 {
		return protocol.Move{}, fmt.Errorf("%w: move %q", ErrBadInput, s)
	}
	from, err := ParseSquare(t[0:2])
	if err != nil {
		return protocol.Move{}, err
	}
	to, err := ParseSquare(t[2:4])
	if err != nil {
		return protocol.Move{}, err
	}
	promo := protocol.None
	if len(t) == 5 {
		promo, err = promotionPiece(t[4], mover)
		if err != nil {
			return protocol.Move{}, err
		}
	}
	return protocol.NewMove(from, to, promo), nil
}

func promotionPiece(letter byte, mover protocol.Color) (protocol.Piece, error) {
	for p, l := range promoLetters {
		if l != letter {
			continue
		}
		if c, _ := p.Color(); c == mover {
			return p, nil
		}
	}
	return protocol.None, fmt.Errorf("%w: promotion %q", ErrBadInput, letter)
}

// ScreenToSquare maps a pixel inside the board to its square. Rank 0 is
// drawn at the bottom.
func ScreenToSquare(x, y int) (protocol.Position, bool) {
	if x < 0 || y < 0 {
		return protocol.Position{}, false
	}
	p := protocol.Position{X: x / TileSize, Y: protocol.BoardSize - 1 - y/TileSize}
	return p, p.Valid()
}

// SquareToScreen is the top-left pixel of p.
func SquareToScreen(p protocol.Position) (x, y int) {
	return p.X * TileSize, (protocol.BoardSize - 1 - p.Y) * TileSize
}
