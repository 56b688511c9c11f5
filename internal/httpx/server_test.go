// path: internal/httpx/server_test.go
package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chesslink/internal/game"
	"chesslink/internal/protocol"
	"chesslink/internal/session"
	"chesslink/internal/transport"
)

func TestHandleStateReturnsLatestSnapshot(t *testing.T) {
	auth := session.NewAuthority(game.NewEngine(), zerolog.Nop())
	e2e4 := protocol.NewMove(protocol.Position{X: 4, Y: 1}, protocol.Position{X: 4, Y: 3}, protocol.None)
	if _, err := auth.Propose(protocol.White, e2e4); err != nil {
		t.Fatalf("e2e4: %v", err)
	}

	srv := NewServer(auth, zerolog.Nop())
	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("expected security headers")
	}

	var payload struct {
		State protocol.Snapshot `json:"state"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload.State.Plies != 1 || payload.State.PlayerToMove != protocol.Black {
		t.Fatalf("unexpected snapshot %+v", payload.State)
	}
	if payload.State.LastMove == nil || *payload.State.LastMove != e2e4 {
		t.Fatalf("expected last move e2e4")
	}
	if payload.State.Board.At(e2e4.To()) != protocol.WhitePawn {
		t.Fatalf("expected pawn on e4")
	}
}

func TestHandleStateRejectsPost(t *testing.T) {
	srv := NewServer(session.NewAuthority(game.NewEngine(), zerolog.Nop()), zerolog.Nop())
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/state", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := NewServer(session.NewAuthority(game.NewEngine(), zerolog.Nop()), zerolog.Nop())
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("unexpected healthz %d %q", rr.Code, rr.Body.String())
	}
}

func TestWebSocketAcceptsOnePeer(t *testing.T) {
	srv := NewServer(session.NewAuthority(game.NewEngine(), zerolog.Nop()), zerolog.Nop())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := transport.DialWebSocket(ctx, url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	var peer *transport.WSConn
	select {
	case peer = <-srv.Peers():
	case <-ctx.Done():
		t.Fatalf("no peer handed over")
	}
	defer peer.Close()

	go func() {
		_ = protocol.NewCodec(client).WriteRecord(protocol.HandshakeRequest{ServerColor: protocol.White})
	}()
	var req protocol.HandshakeRequest
	if err := protocol.NewCodec(peer).ReadRecord(&req); err != nil {
		t.Fatalf("read through upgraded peer: %v", err)
	}
	if req.ServerColor != protocol.White {
		t.Fatalf("got %s", req.ServerColor)
	}

	_, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err == nil {
		t.Fatalf("expected the second peer to be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for the second peer, got %v", resp)
	}
}
