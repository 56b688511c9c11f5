package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

type rw struct {
	io.Reader
	io.Writer
}

// emptyBoardJSON is an 8x8 board of None squares.
var emptyBoardJSON = "[" + strings.TrimSuffix(strings.Repeat(`["None","None","None","None","None","None","None","None"],`, BoardSize), ",") + "]"

func readerCodec(s string) *Codec {
	return NewCodec(rw{Reader: strings.NewReader(s), Writer: io.Discard})
}

func TestReadRecordConsumesOneRecordPerCall(t *testing.T) {
	c := readerCodec(`{"Move":{"start_x":4,"start_y":1,"end_x":4,"end_y":3,"promotion":"None"}}"Resign"{"Move":{"start_x":0,"start_y":6,"end_x":0,"end_y":5,"promotion":"None"}}`)

	var first, second, third ClientToServer
	if err := c.ReadRecord(&first); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := c.ReadRecord(&second); err != nil {
		t.Fatalf("second record: %v", err)
	}
	if err := c.ReadRecord(&third); err != nil {
		t.Fatalf("third record: %v", err)
	}
	if first.Kind != ClientMove || first.Move != (Move{StartX: 4, StartY: 1, EndX: 4, EndY: 3}) {
		t.Fatalf("unexpected first record %+v", first)
	}
	if second.Kind != ClientResign {
		t.Fatalf("expected resign, got %v", second.Kind)
	}
	if third.Move.From() != (Position{X: 0, Y: 6}) {
		t.Fatalf("unexpected third record %+v", third)
	}

	var extra ClientToServer
	if err := c.ReadRecord(&extra); !errors.Is(err, ErrConnection) {
		t.Fatalf("expected connection error at clean end of stream, got %v", err)
	}
}

func TestReadRecordProtocolErrors(t *testing.T) {
	const move = `{"start_x":4,"start_y":1,"end_x":4,"end_y":3,"promotion":"None"}`
	tests := []struct {
		name   string
		input  string
		server bool
	}{
		{name: "truncated", input: `{"Move":{"start_x":4,"start_y"`},
		{name: "unknown tag", input: `{"Castle":{}}`},
		{name: "unknown unit tag", input: `"Draw"`},
		{name: "two tags", input: `{"Move":{"start_x":0,"start_y":0,"end_x":0,"end_y":1,"promotion":"None"},"Resign":null}`},
		{name: "out of range", input: `{"Move":{"start_x":8,"start_y":0,"end_x":0,"end_y":1,"promotion":"None"}}`},
		{name: "unknown piece", input: `{"Move":{"start_x":0,"start_y":0,"end_x":0,"end_y":1,"promotion":"Archbishop"}}`},
		{name: "unknown field", input: `{"Move":{"start_x":0,"start_y":0,"end_x":0,"end_y":1,"promotion":"None","spin":1}}`},
		{name: "garbage", input: `move e2e4`},
		{name: "empty move", input: `{"Move":{}}`},
		{name: "move without end_y", input: `{"Move":{"start_x":4,"start_y":1,"end_x":4,"promotion":"None"}}`},
		{name: "move without promotion", input: `{"Move":{"start_x":4,"start_y":1,"end_x":4,"end_y":3}}`},
		{name: "empty state", input: `{"State":{}}`, server: true},
		{name: "state without board", input: `{"State":{"moves":[],"joever":"Ongoing","move_made":` + move + `}}`, server: true},
		{name: "state without moves", input: `{"State":{"board":` + emptyBoardJSON + `,"joever":"Ongoing","move_made":` + move + `}}`, server: true},
		{name: "state without joever", input: `{"State":{"board":` + emptyBoardJSON + `,"moves":[],"move_made":` + move + `}}`, server: true},
		{name: "state without move_made", input: `{"State":{"board":` + emptyBoardJSON + `,"moves":[],"joever":"Ongoing"}}`, server: true},
		{name: "state with partial move_made", input: `{"State":{"board":` + emptyBoardJSON + `,"moves":[],"joever":"Ongoing","move_made":{"start_x":4}}}`, server: true},
		{name: "empty rejected", input: `{"Rejected":{}}`, server: true},
		{name: "rejected without message", input: `{"Rejected":{"board":` + emptyBoardJSON + `,"moves":[],"joever":"Ongoing"}}`, server: true},
		{name: "resigned without joever", input: `{"Resigned":{"board":` + emptyBoardJSON + `}}`, server: true},
		{name: "resigned without board", input: `{"Resigned":{"joever":"White"}}`, server: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var rec any = &ClientToServer{}
			if tt.server {
				rec = &ServerToClient{}
			}
			err := readerCodec(tt.input).ReadRecord(rec)
			if !errors.Is(err, ErrProtocol) {
				t.Fatalf("expected protocol error, got %v", err)
			}
		})
	}
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestReadRecordTransportFailureIsConnectionError(t *testing.T) {
	boom := errors.New("reset by peer")
	c := NewCodec(rw{Reader: failingReader{err: boom}, Writer: io.Discard})
	var rec ServerToClient
	err := c.ReadRecord(&rec)
	if !errors.Is(err, ErrConnection) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped connection error, got %v", err)
	}
}

func TestWriteRecordWireShape(t *testing.T) {
	var buf bytes.Buffer
	c := NewCodec(rw{Reader: strings.NewReader(""), Writer: &buf})

	var board Board
	board[0][4] = WhiteKing
	board[7][4] = BlackKing
	mv := Move{StartX: 4, StartY: 1, EndX: 4, EndY: 3, Promotion: None}
	rec := StateRecord(State{Board: board, Moves: []Move{}, Joever: Ongoing, MoveMade: mv})
	if err := c.WriteRecord(rec); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.WriteRecord(MoveRequest(mv)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.WriteRecord(ResignRequest()); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 records, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], `{"State":{"board":[["None","None","None","None","WhiteKing"`) {
		t.Fatalf("unexpected state encoding %s", lines[0])
	}
	if !strings.Contains(lines[0], `"joever":"Ongoing"`) || !strings.Contains(lines[0], `"move_made":{"start_x":4,"start_y":1,"end_x":4,"end_y":3,"promotion":"None"}`) {
		t.Fatalf("state record missing fields: %s", lines[0])
	}
	if lines[1] != `{"Move":{"start_x":4,"start_y":1,"end_x":4,"end_y":3,"promotion":"None"}}` {
		t.Fatalf("unexpected move encoding %s", lines[1])
	}
	if lines[2] != `"Resign"` {
		t.Fatalf("unexpected resign encoding %s", lines[2])
	}

	back := NewCodec(rw{Reader: &buf, Writer: io.Discard})
	var got ServerToClient
	if err := back.ReadRecord(&got); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.Kind != ServerState || got.State.Board != board || got.State.MoveMade != mv {
		t.Fatalf("state did not survive the stream: %+v", got)
	}
}

func TestReadRecordCompleteServerRecords(t *testing.T) {
	inputs := []string{
		`{"Rejected":{"board":` + emptyBoardJSON + `,"moves":[],"joever":"Black","message":"game is over"}}`,
		`{"Resigned":{"board":` + emptyBoardJSON + `,"joever":"White"}}`,
	}
	for _, input := range inputs {
		var rec ServerToClient
		if err := readerCodec(input).ReadRecord(&rec); err != nil {
			t.Fatalf("input %s: %v", input, err)
		}
	}
}

func TestHandshakeRecordsAreStrict(t *testing.T) {
	var req HandshakeRequest
	if err := readerCodec(`{"server_color":"Black"}`).ReadRecord(&req); err != nil {
		t.Fatalf("valid handshake: %v", err)
	}
	if req.ServerColor != Black {
		t.Fatalf("expected Black, got %v", req.ServerColor)
	}

	for _, input := range []string{`{}`, `{"Move":{}}`, `{"server_color":"Purple"}`, `"Resign"`} {
		var bad HandshakeRequest
		if err := readerCodec(input).ReadRecord(&bad); !errors.Is(err, ErrProtocol) {
			t.Fatalf("input %s: expected protocol error, got %v", input, err)
		}
	}

	var resp HandshakeResponse
	if err := readerCodec(`{"server_color":"White","moves":[]}`).ReadRecord(&resp); !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected incomplete handshake response to fail, got %v", err)
	}
}

func TestBoardMustBeFull(t *testing.T) {
	var st ServerToClient
	err := readerCodec(`{"State":{"board":[["None"]],"moves":[],"joever":"Ongoing","move_made":{"start_x":0,"start_y":0,"end_x":0,"end_y":1,"promotion":"None"}}}`).ReadRecord(&st)
	if !errors.Is(err, ErrProtocol) {
		t.Fatalf("expected short board to be rejected, got %v", err)
	}
}
