package termui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"chesslink/internal/protocol"
	"chesslink/internal/session"
)

func TestParseSquare(t *testing.T) {
	tests := []struct {
		in   string
		want protocol.Position
		ok   bool
	}{
		{"a1", protocol.Position{X: 0, Y: 0}, true},
		{"e2", protocol.Position{X: 4, Y: 1}, true},
		{"H8", protocol.Position{X: 7, Y: 7}, true},
		{"i1", protocol.Position{}, false},
		{"a9", protocol.Position{}, false},
		{"a0", protocol.Position{}, false},
		{"e", protocol.Position{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSquare(tc.in)
			if tc.ok != (err == nil) {
				t.Fatalf("ParseSquare(%q) err = %v", tc.in, err)
			}
			if tc.ok && got != tc.want {
				t.Fatalf("ParseSquare(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
			if !tc.ok && !errors.Is(err, ErrBadInput) {
				t.Fatalf("expected ErrBadInput, got %v", err)
			}
		})
	}
}

func TestSquareNameRoundTrip(t *testing.T) {
	for y := 0; y < protocol.BoardSize; y++ {
		for x := 0; x < protocol.BoardSize; x++ {
			p := protocol.Position{X: x, Y: y}
			back, err := ParseSquare(SquareName(p))
			if err != nil || back != p {
				t.Fatalf("round trip of %+v gave %+v, %v", p, back, err)
			}
		}
	}
}

func TestParseMove(t *testing.T) {
	e2e4 := protocol.NewMove(protocol.Position{X: 4, Y: 1}, protocol.Position{X: 4, Y: 3}, protocol.None)
	for _, in := range []string{"e2e4", "e2 e4", "e2-e4", " E2E4 "} {
		got, err := ParseMove(in, protocol.White)
		if err != nil || got != e2e4 {
			t.Fatalf("ParseMove(%q) = %s, %v", in, got, err)
		}
	}

	got, err := ParseMove("a2a1n", protocol.Black)
	if err != nil {
		t.Fatalf("promotion: %v", err)
	}
	if got.Promotion != protocol.BlackKnight {
		t.Fatalf("expected BlackKnight, got %s", got.Promotion)
	}
	if MoveName(got) != "a2a1n" {
		t.Fatalf("MoveName = %q", MoveName(got))
	}

	for _, bad := range []string{"", "e2", "e2e9", "e7e8k", "e7e8x", "e2e4e5"} {
		if _, err := ParseMove(bad, protocol.White); !errors.Is(err, ErrBadInput) {
			t.Fatalf("ParseMove(%q) err = %v", bad, err)
		}
	}
}

func TestScreenMapping(t *testing.T) {
	p, ok := ScreenToSquare(10, 10)
	if !ok || p != (protocol.Position{X: 0, Y: 7}) {
		t.Fatalf("top-left pixel should be a8, got %+v", p)
	}
	p, ok = ScreenToSquare(8*TileSize-1, 8*TileSize-1)
	if !ok || p != (protocol.Position{X: 7, Y: 0}) {
		t.Fatalf("bottom-right pixel should be h1, got %+v", p)
	}
	if _, ok := ScreenToSquare(8*TileSize, 0); ok {
		t.Fatalf("pixel right of the board should miss")
	}
	if _, ok := ScreenToSquare(-1, 0); ok {
		t.Fatalf("negative pixel should miss")
	}
	for y := 0; y < protocol.BoardSize; y++ {
		for x := 0; x < protocol.BoardSize; x++ {
			sq := protocol.Position{X: x, Y: y}
			px, py := SquareToScreen(sq)
			back, ok := ScreenToSquare(px+TileSize/2, py+TileSize/2)
			if !ok || back != sq {
				t.Fatalf("screen round trip of %+v gave %+v", sq, back)
			}
		}
	}
}

func initialBoard() protocol.Board {
	var b protocol.Board
	back := []protocol.Piece{
		protocol.WhiteRook, protocol.WhiteKnight, protocol.WhiteBishop, protocol.WhiteQueen,
		protocol.WhiteKing, protocol.WhiteBishop, protocol.WhiteKnight, protocol.WhiteRook,
	}
	for x := 0; x < protocol.BoardSize; x++ {
		b[0][x] = back[x]
		b[1][x] = protocol.WhitePawn
		b[6][x] = protocol.BlackPawn
		b[7][x] = back[x] + (protocol.BlackPawn - protocol.WhitePawn)
	}
	return b
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, initialBoard(), protocol.White); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d", len(lines))
	}
	if lines[1] != "8 r n b q k b n r 8" {
		t.Fatalf("unexpected top rank %q", lines[1])
	}
	if lines[8] != "1 R N B Q K B N R 1" {
		t.Fatalf("unexpected bottom rank %q", lines[8])
	}

	buf.Reset()
	_ = Render(&buf, initialBoard(), protocol.Black)
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[1] != "1 R N B K Q B N R 1" {
		t.Fatalf("unexpected flipped top rank %q", lines[1])
	}
}

type fakeView struct {
	board protocol.Board
	moves []protocol.Move
}

func (v fakeView) Board() protocol.Board        { return v.board }
func (v fakeView) Moves() []protocol.Move       { return v.moves }
func (v fakeView) PlayerToMove() protocol.Color { return protocol.White }
func (v fakeView) Joever() protocol.Joever      { return protocol.Ongoing }

func TestPromptSkipsBadInputAndPicksLegalMove(t *testing.T) {
	e2e4 := protocol.NewMove(protocol.Position{X: 4, Y: 1}, protocol.Position{X: 4, Y: 3}, protocol.None)
	view := fakeView{board: initialBoard(), moves: []protocol.Move{e2e4}}

	var out bytes.Buffer
	p := NewPrompt(strings.NewReader("zz\ne2e5\n\ne2e4\n"), &out, protocol.White)
	got, err := p.NextMove(context.Background(), view)
	if err != nil {
		t.Fatalf("next move: %v", err)
	}
	if got != e2e4 {
		t.Fatalf("got %s", got)
	}
	if !strings.Contains(out.String(), "e2e5 is not a legal move") {
		t.Fatalf("expected a complaint about e2e5, got %q", out.String())
	}
}

func TestPromptDefaultsToQueenPromotion(t *testing.T) {
	from, to := protocol.Position{X: 0, Y: 6}, protocol.Position{X: 0, Y: 7}
	view := fakeView{moves: []protocol.Move{
		protocol.NewMove(from, to, protocol.WhiteKnight),
		protocol.NewMove(from, to, protocol.WhiteQueen),
	}}
	p := NewPrompt(strings.NewReader("a7a8\n"), &bytes.Buffer{}, protocol.White)
	got, err := p.NextMove(context.Background(), view)
	if err != nil {
		t.Fatalf("next move: %v", err)
	}
	if got.Promotion != protocol.WhiteQueen {
		t.Fatalf("expected queen promotion, got %s", got.Promotion)
	}
}

func TestPromptResign(t *testing.T) {
	p := NewPrompt(strings.NewReader("Resign\n"), &bytes.Buffer{}, protocol.White)
	if _, err := p.NextMove(context.Background(), fakeView{}); !errors.Is(err, session.ErrResign) {
		t.Fatalf("expected ErrResign, got %v", err)
	}
}

func TestPromptHonoursContext(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := NewPrompt(r, &bytes.Buffer{}, protocol.White)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.NextMove(ctx, fakeView{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestNotifyGameOver(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompt(strings.NewReader(""), &out, protocol.White)
	p.Notify(session.Event{Kind: session.EventGameOver, Joever: protocol.JoeverBlack, View: fakeView{board: initialBoard()}})
	if !strings.Contains(out.String(), "Black wins") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

// blackView is a guest-side view whose handshake settled on Black.
type blackView struct{ fakeView }

func (blackView) Color() protocol.Color { return protocol.Black }

func TestNotifyGameOverDrawsFromHandshakeColor(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompt(strings.NewReader(""), &out, protocol.White)
	p.Notify(session.Event{Kind: session.EventGameOver, Joever: protocol.JoeverWhite, View: blackView{fakeView{board: initialBoard()}}})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) < 2 || lines[1] != "1 R N B K Q B N R 1" {
		t.Fatalf("expected the board drawn from Black, got %q", out.String())
	}
}
