// path: internal/protocol/types.go
// Package protocol defines the records exchanged between the two peers and
// the codec that moves them over a byte stream.
package protocol

import "fmt"

// BoardSize is the number of files and ranks on the wire board.
const BoardSize = 8

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

func (c Color) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

func ParseColor(s string) (Color, bool) {
	switch s {
	case "White", "white", "w":
		return White, true
	case "Black", "black", "b":
		return Black, true
	default:
		return White, false
	}
}

func (c Color) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Color) UnmarshalText(text []byte) error {
	switch string(text) {
	case "White":
		*c = White
	case "Black":
		*c = Black
	default:
		return fmt.Errorf("unknown color %q", text)
	}
	return nil
}

// Piece is one of the 13 values a board square can hold.
type Piece uint8

const (
	None Piece = iota
	WhitePawn
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
)

// AllPieces lists every Piece value, None first.
var AllPieces = [...]Piece{
	None,
	WhitePawn, WhiteKnight, WhiteBishop, WhiteRook, WhiteQueen, WhiteKing,
	BlackPawn, BlackKnight, BlackBishop, BlackRook, BlackQueen, BlackKing,
}

var pieceNames = [...]string{
	None:        "None",
	WhitePawn:   "WhitePawn",
	WhiteKnight: "WhiteKnight",
	WhiteBishop: "WhiteBishop",
	WhiteRook:   "WhiteRook",
	WhiteQueen:  "WhiteQueen",
	WhiteKing:   "WhiteKing",
	BlackPawn:   "BlackPawn",
	BlackKnight: "BlackKnight",
	BlackBishop: "BlackBishop",
	BlackRook:   "BlackRook",
	BlackQueen:  "BlackQueen",
	BlackKing:   "BlackKing",
}

func (p Piece) Valid() bool { return int(p) < len(pieceNames) }

func (p Piece) String() string {
	if !p.Valid() {
		return fmt.Sprintf("piece(%d)", uint8(p))
	}
	return pieceNames[p]
}

// Color reports the owner of a non-empty piece.
func (p Piece) Color() (Color, bool) {
	switch {
	case p >= WhitePawn && p <= WhiteKing:
		return White, true
	case p >= BlackPawn && p <= BlackKing:
		return Black, true
	default:
		return White, false
	}
}

func (p Piece) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("unknown piece %d", uint8(p))
	}
	return []byte(pieceNames[p]), nil
}

func (p *Piece) UnmarshalText(text []byte) error {
	for i, name := range pieceNames {
		if name == string(text) {
			*p = Piece(i)
			return nil
		}
	}
	return fmt.Errorf("unknown piece %q", text)
}

// Position is a square in wire coordinates: X is the file, Y the rank.
type Position struct {
	X int
	Y int
}

func (p Position) Valid() bool {
	return p.X >= 0 && p.X < BoardSize && p.Y >= 0 && p.Y < BoardSize
}

// Move is a proposed or applied move in wire coordinates.
type Move struct {
	StartX    int   `json:"start_x"`
	StartY    int   `json:"start_y"`
	EndX      int   `json:"end_x"`
	EndY      int   `json:"end_y"`
	Promotion Piece `json:"promotion"`
}

func NewMove(from, to Position, promotion Piece) Move {
	return Move{StartX: from.X, StartY: from.Y, EndX: to.X, EndY: to.Y, Promotion: promotion}
}

func (m Move) From() Position { return Position{X: m.StartX, Y: m.StartY} }
func (m Move) To() Position   { return Position{X: m.EndX, Y: m.EndY} }

func (m Move) Valid() bool { return m.From().Valid() && m.To().Valid() && m.Promotion.Valid() }

func (m Move) String() string {
	s := fmt.Sprintf("(%d,%d)->(%d,%d)", m.StartX, m.StartY, m.EndX, m.EndY)
	if m.Promotion != None {
		s += "=" + m.Promotion.String()
	}
	return s
}

// UnmarshalJSON requires every field; a missing coordinate is not square 0.
func (m *Move) UnmarshalJSON(b []byte) error {
	var raw struct {
		StartX    *int   `json:"start_x"`
		StartY    *int   `json:"start_y"`
		EndX      *int   `json:"end_x"`
		EndY      *int   `json:"end_y"`
		Promotion *Piece `json:"promotion"`
	}
	if err := strictUnmarshal(b, &raw); err != nil {
		return err
	}
	if raw.StartX == nil || raw.StartY == nil || raw.EndX == nil || raw.EndY == nil || raw.Promotion == nil {
		return fmt.Errorf("incomplete move")
	}
	mv := Move{StartX: *raw.StartX, StartY: *raw.StartY, EndX: *raw.EndX, EndY: *raw.EndY, Promotion: *raw.Promotion}
	if !mv.From().Valid() || !mv.To().Valid() {
		return fmt.Errorf("move %s outside the board", mv)
	}
	*m = mv
	return nil
}

// Board is indexed [rank][file]; every cell holds a Piece, None when empty.
type Board [BoardSize][BoardSize]Piece

func (b *Board) At(p Position) Piece { return b[p.Y][p.X] }

func (b *Board) UnmarshalJSON(data []byte) error {
	var rows [][]Piece
	if err := strictUnmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) != BoardSize {
		return fmt.Errorf("board has %d ranks", len(rows))
	}
	var out Board
	for y, row := range rows {
		if len(row) != BoardSize {
			return fmt.Errorf("board rank %d has %d files", y, len(row))
		}
		copy(out[y][:], row)
	}
	*b = out
	return nil
}

type Joever uint8

const (
	Ongoing Joever = iota
	JoeverWhite
	JoeverBlack
	Draw
)

// Winner converts a color into the outcome where that color won.
func Winner(c Color) Joever {
	if c == White {
		return JoeverWhite
	}
	return JoeverBlack
}

func (j Joever) Over() bool { return j != Ongoing }

func (j Joever) String() string {
	switch j {
	case Ongoing:
		return "Ongoing"
	case JoeverWhite:
		return "White"
	case JoeverBlack:
		return "Black"
	case Draw:
		return "Draw"
	default:
		return fmt.Sprintf("joever(%d)", uint8(j))
	}
}

func (j Joever) MarshalText() ([]byte, error) {
	if j > Draw {
		return nil, fmt.Errorf("unknown joever %d", uint8(j))
	}
	return []byte(j.String()), nil
}

func (j *Joever) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Ongoing":
		*j = Ongoing
	case "White":
		*j = JoeverWhite
	case "Black":
		*j = JoeverBlack
	case "Draw":
		*j = Draw
	default:
		return fmt.Errorf("unknown joever %q", text)
	}
	return nil
}

// HandshakeRequest opens a connection. ServerColor is the color the client
// asks the server peer to play.
type HandshakeRequest struct {
	ServerColor Color `json:"server_color"`
}

func (h *HandshakeRequest) UnmarshalJSON(b []byte) error {
	var raw struct {
		ServerColor *Color `json:"server_color"`
	}
	if err := strictUnmarshal(b, &raw); err != nil {
		return err
	}
	if raw.ServerColor == nil {
		return fmt.Errorf("missing server_color")
	}
	h.ServerColor = *raw.ServerColor
	return nil
}

// HandshakeResponse carries the assigned server color and the starting state.
type HandshakeResponse struct {
	ServerColor Color  `json:"server_color"`
	Board       Board  `json:"board"`
	Moves       []Move `json:"moves"`
	Joever      Joever `json:"joever"`
}

func (h *HandshakeResponse) UnmarshalJSON(b []byte) error {
	var raw struct {
		ServerColor *Color  `json:"server_color"`
		Board       *Board  `json:"board"`
		Moves       []Move  `json:"moves"`
		Joever      *Joever `json:"joever"`
	}
	if err := strictUnmarshal(b, &raw); err != nil {
		return err
	}
	if raw.ServerColor == nil || raw.Board == nil || raw.Joever == nil {
		return fmt.Errorf("incomplete handshake response")
	}
	*h = HandshakeResponse{
		ServerColor: *raw.ServerColor,
		Board:       *raw.Board,
		Moves:       raw.Moves,
		Joever:      *raw.Joever,
	}
	return nil
}

// Snapshot is an immutable copy of the published game state for observers.
type Snapshot struct {
	Board        Board  `json:"board"`
	Moves        []Move `json:"moves"`
	Joever       Joever `json:"joever"`
	PlayerToMove Color  `json:"player_to_move"`
	LastMove     *Move  `json:"last_move,omitempty"`
	Plies        int    `json:"plies"`
}
