// path: internal/termui/prompt.go
package termui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"chesslink/internal/protocol"
	"chesslink/internal/session"
)

// Prompt is a session.Player that reads moves line by line. Typing "resign"
// gives up the game. color is the side the board is drawn from.
type Prompt struct {
	color protocol.Color
	out   io.Writer
	lines chan string

	startOnce sync.Once
	in        io.Reader
}

func NewPrompt(in io.Reader, out io.Writer, color protocol.Color) *Prompt {
	return &Prompt{color: color, out: out, in: in, lines: make(chan string)}
}

func (p *Prompt) start() {
	p.startOnce.Do(func() {
		go func() {
			defer close(p.lines)
			sc := bufio.NewScanner(p.in)
			for sc.Scan() {
				p.lines <- sc.Text()
			}
		}()
	})
}

// NextMove asks until it gets a move that is in the legal list. It is only
// called on the local side's turn, so the side to move is the prompt's.
func (p *Prompt) NextMove(ctx context.Context, v session.View) (protocol.Move, error) {
	p.start()
	p.color = v.PlayerToMove()
	_ = Render(p.out, v.Board(), p.color)
	legal := v.Moves()
	for {
		fmt.Fprintf(p.out, "%s to move> ", p.color)
		var line string
		select {
		case <-ctx.Done():
			return protocol.Move{}, ctx.Err()
		case l, ok := <-p.lines:
			if !ok {
				return protocol.Move{}, io.ErrUnexpectedEOF
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "resign") {
			return protocol.Move{}, session.ErrResign
		}
		m, err := ParseMove(line, p.color)
		if err != nil {
			fmt.Fprintf(p.out, "%v\n", err)
			continue
		}
		if chosen, ok := pick(legal, m, p.color); ok {
			return chosen, nil
		}
		fmt.Fprintf(p.out, "%s is not a legal move\n", MoveName(m))
	}
}

// pick finds m in the legal list. A move typed without a promotion letter
// matches the queen promotion when one is required.
func pick(legal []protocol.Move, m protocol.Move, mover protocol.Color) (protocol.Move, bool) {
	queen := protocol.WhiteQueen
	if mover == protocol.Black {
		queen = protocol.BlackQueen
	}
	for _, l := range legal {
		if l.From() != m.From() || l.To() != m.To() {
			continue
		}
		if l.Promotion == m.Promotion || (m.Promotion == protocol.None && l.Promotion == queen) {
			return l, true
		}
	}
	return protocol.Move{}, false
}

// sided is a view that knows which color the local player holds.
type sided interface {
	Color() protocol.Color
}

// Notify reports ev. A view that knows the local color overrides the one the
// prompt was built with, since the handshake has the final say.
func (p *Prompt) Notify(ev session.Event) {
	if v, ok := ev.View.(sided); ok {
		p.color = v.Color()
	}
	switch ev.Kind {
	case session.EventAccepted:
		fmt.Fprintf(p.out, "played %s\n", MoveName(ev.Move))
	case session.EventRejected:
		fmt.Fprintf(p.out, "%s rejected: %s\n", MoveName(ev.Move), ev.Reason)
	case session.EventOpponentMoved:
		fmt.Fprintf(p.out, "opponent played %s\n", MoveName(ev.Move))
	case session.EventOpponentResigned:
		fmt.Fprintln(p.out, "opponent resigned")
	case session.EventGameOver:
		_ = Render(p.out, ev.View.Board(), p.color)
		fmt.Fprintln(p.out, outcome(ev.Joever))
	}
}

func outcome(j protocol.Joever) string {
	switch j {
	case protocol.JoeverWhite:
		return "game over: White wins"
	case protocol.JoeverBlack:
		return "game over: Black wins"
	case protocol.Draw:
		return "game over: draw"
	default:
		return "game over"
	}
}
