// path: internal/httpx/server.go
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/unrolled/secure"

	"chesslink/internal/protocol"
	"chesslink/internal/transport"
)

// SnapshotSource publishes the current game for observers. It must be safe
// to call from any goroutine.
type SnapshotSource interface {
	Snapshot() protocol.Snapshot
}

// Server is the read-only status surface next to a session, and the
// WebSocket door a peer can come in through.
type Server struct {
	source   SnapshotSource
	upgrader websocket.Upgrader
	peers    chan *transport.WSConn
	peerMu   sync.Mutex
	claimed  bool
	log      zerolog.Logger
	srvMu    sync.Mutex
	srv      *http.Server
}

const apiCSP = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"

// NewServer serves snapshots from source.
func NewServer(source SnapshotSource, log zerolog.Logger) *Server {
	return &Server{
		source: source,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
		peers: make(chan *transport.WSConn, 1),
		log:   log,
	}
}

// Peers yields the one peer that upgrades on /ws.
func (s *Server) Peers() <-chan *transport.WSConn { return s.peers }

// Listen starts the HTTP server.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	s.log.Info().Str("addr", addr).Msg("HTTP listening")
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close attempts a graceful shutdown of the HTTP server.
func (s *Server) Close(ctx context.Context) error {
	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Handler is the full route table wrapped in CORS and security headers.
func (s *Server) Handler() http.Handler {
	sec := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ContentSecurityPolicy: apiCSP,
		ReferrerPolicy:        "no-referrer",
	})
	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet},
	})
	return c.Handler(sec.Handler(s.routes()))
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/state", s.withJSON(s.handleState))
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// ---- JSON helpers ----

func (s *Server) withJSON(h func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	writeJSON(w, map[string]string{"error": msg})
}

// ---- API: state ----

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, map[string]any{"state": s.source.Snapshot()})
}

// ---- peer: websocket ----

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.claim() {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("second peer refused")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		writeError(w, http.StatusConflict, "a peer is already connected")
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		s.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		s.release()
		return
	}
	s.log.Info().Str("remote", r.RemoteAddr).Msg("peer connected over websocket")
	s.peers <- transport.NewWSConn(ws)
}

func (s *Server) claim() bool {
	s.peerMu.Lock()
	defer s.peerMu.Unlock()
	if s.claimed {
		return false
	}
	s.claimed = true
	return true
}

func (s *Server) release() {
	s.peerMu.Lock()
	s.claimed = false
	s.peerMu.Unlock()
}
