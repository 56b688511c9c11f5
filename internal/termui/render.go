// path: internal/termui/render.go
package termui

import (
	"fmt"
	"io"
	"strings"

	"chesslink/internal/protocol"
)

var glyphs = map[protocol.Piece]byte{
	protocol.None:        '.',
	protocol.WhitePawn:   'P',
	protocol.WhiteKnight: 'N',
	protocol.WhiteBishop: 'B',
	protocol.WhiteRook:   'R',
	protocol.WhiteQueen:  'Q',
	protocol.WhiteKing:   'K',
	protocol.BlackPawn:   'p',
	protocol.BlackKnight: 'n',
	protocol.BlackBishop: 'b',
	protocol.BlackRook:   'r',
	protocol.BlackQueen:  'q',
	protocol.BlackKing:   'k',
}

// Render draws b as text from bottom's side of the board.
func Render(w io.Writer, b protocol.Board, bottom protocol.Color) error {
	var sb strings.Builder
	files := "  a b c d e f g h\n"
	if bottom == protocol.Black {
		files = "  h g f e d c b a\n"
	}
	sb.WriteString(files)
	for i := 0; i < protocol.BoardSize; i++ {
		rank := protocol.BoardSize - 1 - i
		if bottom == protocol.Black {
			rank = i
		}
		fmt.Fprintf(&sb, "%d", rank+1)
		for j := 0; j < protocol.BoardSize; j++ {
			file := j
			if bottom == protocol.Black {
				file = protocol.BoardSize - 1 - j
			}
			sb.WriteByte(' ')
			sb.WriteByte(glyph(b[rank][file]))
		}
		fmt.Fprintf(&sb, " %d\n", rank+1)
	}
	sb.WriteString(files)
	_, err := io.WriteString(w, sb.String())
	return err
}

func glyph(p protocol.Piece) byte {
	if g, ok := glyphs[p]; ok {
		return g
	}
	return '?'
}
