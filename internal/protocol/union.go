// path: internal/protocol/union.go
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Tagged unions are encoded externally tagged: {"Tag": payload} for
// variants with data and a bare "Tag" string for unit variants.

type ClientKind uint8

const (
	ClientMove ClientKind = iota
	ClientResign
)

func (k ClientKind) String() string {
	switch k {
	case ClientMove:
		return "Move"
	case ClientResign:
		return "Resign"
	default:
		return fmt.Sprintf("client(%d)", uint8(k))
	}
}

// ClientToServer is a turn request sent by the client.
type ClientToServer struct {
	Kind ClientKind
	Move Move
}

func MoveRequest(m Move) ClientToServer { return ClientToServer{Kind: ClientMove, Move: m} }

func ResignRequest() ClientToServer { return ClientToServer{Kind: ClientResign} }

func (c ClientToServer) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case ClientMove:
		return json.Marshal(map[string]Move{"Move": c.Move})
	case ClientResign:
		return json.Marshal("Resign")
	default:
		return nil, fmt.Errorf("unknown client record kind %d", c.Kind)
	}
}

func (c *ClientToServer) UnmarshalJSON(b []byte) error {
	tag, payload, err := splitTag(b)
	if err != nil {
		return err
	}
	switch tag {
	case "Move":
		if payload == nil {
			return fmt.Errorf("Move variant without payload")
		}
		var m Move
		if err := json.Unmarshal(payload, &m); err != nil {
			return err
		}
		*c = MoveRequest(m)
	case "Resign":
		if payload != nil {
			return fmt.Errorf("Resign variant carries no payload")
		}
		*c = ResignRequest()
	default:
		return fmt.Errorf("unknown client record %q", tag)
	}
	return nil
}

type ServerKind uint8

const (
	ServerState ServerKind = iota
	ServerRejected
	ServerResigned
)

func (k ServerKind) String() string {
	switch k {
	case ServerState:
		return "State"
	case ServerRejected:
		return "Rejected"
	case ServerResigned:
		return "Resigned"
	default:
		return fmt.Sprintf("server(%d)", uint8(k))
	}
}

// State is published after every accepted move.
type State struct {
	Board    Board  `json:"board"`
	Moves    []Move `json:"moves"`
	Joever   Joever `json:"joever"`
	MoveMade Move   `json:"move_made"`
}

// Rejected answers a proposal the server declined. Board, moves and joever
// are the unchanged current state.
type Rejected struct {
	Board   Board  `json:"board"`
	Moves   []Move `json:"moves"`
	Joever  Joever `json:"joever"`
	Message string `json:"message"`
}

// Resigned announces that one side gave up.
type Resigned struct {
	Board  Board  `json:"board"`
	Joever Joever `json:"joever"`
}

func (st *State) UnmarshalJSON(b []byte) error {
	var raw struct {
		Board    *Board  `json:"board"`
		Moves    *[]Move `json:"moves"`
		Joever   *Joever `json:"joever"`
		MoveMade *Move   `json:"move_made"`
	}
	if err := strictUnmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Board == nil || raw.Moves == nil || raw.Joever == nil || raw.MoveMade == nil {
		return fmt.Errorf("incomplete State record")
	}
	*st = State{Board: *raw.Board, Moves: *raw.Moves, Joever: *raw.Joever, MoveMade: *raw.MoveMade}
	return nil
}

func (r *Rejected) UnmarshalJSON(b []byte) error {
	var raw struct {
		Board   *Board  `json:"board"`
		Moves   *[]Move `json:"moves"`
		Joever  *Joever `json:"joever"`
		Message *string `json:"message"`
	}
	if err := strictUnmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Board == nil || raw.Moves == nil || raw.Joever == nil || raw.Message == nil {
		return fmt.Errorf("incomplete Rejected record")
	}
	*r = Rejected{Board: *raw.Board, Moves: *raw.Moves, Joever: *raw.Joever, Message: *raw.Message}
	return nil
}

func (r *Resigned) UnmarshalJSON(b []byte) error {
	var raw struct {
		Board  *Board  `json:"board"`
		Joever *Joever `json:"joever"`
	}
	if err := strictUnmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Board == nil || raw.Joever == nil {
		return fmt.Errorf("incomplete Resigned record")
	}
	*r = Resigned{Board: *raw.Board, Joever: *raw.Joever}
	return nil
}

// ServerToClient is a turn response or announcement sent by the server.
// Only the field matching Kind is meaningful.
type ServerToClient struct {
	Kind     ServerKind
	State    State
	Rejected Rejected
	Resigned Resigned
}

func StateRecord(s State) ServerToClient { return ServerToClient{Kind: ServerState, State: s} }

func RejectedRecord(r Rejected) ServerToClient {
	return ServerToClient{Kind: ServerRejected, Rejected: r}
}

func ResignedRecord(r Resigned) ServerToClient {
	return ServerToClient{Kind: ServerResigned, Resigned: r}
}

func (s ServerToClient) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case ServerState:
		return json.Marshal(map[string]State{"State": s.State})
	case ServerRejected:
		return json.Marshal(map[string]Rejected{"Rejected": s.Rejected})
	case ServerResigned:
		return json.Marshal(map[string]Resigned{"Resigned": s.Resigned})
	default:
		return nil, fmt.Errorf("unknown server record kind %d", s.Kind)
	}
}

func (s *ServerToClient) UnmarshalJSON(b []byte) error {
	tag, payload, err := splitTag(b)
	if err != nil {
		return err
	}
	if payload == nil {
		return fmt.Errorf("%s variant without payload", tag)
	}
	switch tag {
	case "State":
		var st State
		if err := strictUnmarshal(payload, &st); err != nil {
			return err
		}
		*s = StateRecord(st)
	case "Rejected":
		var r Rejected
		if err := strictUnmarshal(payload, &r); err != nil {
			return err
		}
		*s = RejectedRecord(r)
	case "Resigned":
		var r Resigned
		if err := strictUnmarshal(payload, &r); err != nil {
			return err
		}
		*s = ResignedRecord(r)
	default:
		return fmt.Errorf("unknown server record %q", tag)
	}
	return nil
}

// splitTag returns the variant tag and, for non-unit variants, its payload.
func splitTag(b []byte) (string, json.RawMessage, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var tag string
		if err := json.Unmarshal(b, &tag); err != nil {
			return "", nil, err
		}
		return tag, nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return "", nil, err
	}
	if len(obj) != 1 {
		return "", nil, fmt.Errorf("tagged record must have exactly one variant, got %d", len(obj))
	}
	for tag, payload := range obj {
		return tag, payload, nil
	}
	return "", nil, nil
}

func strictUnmarshal(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after value")
	}
	return nil
}
