// path: cmd/server/main.go
// The server hosts one game: it owns the authoritative board, plays one side
// from the terminal, and waits for a single peer over TCP or WebSocket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"chesslink/internal/config"
	"chesslink/internal/game"
	"chesslink/internal/httpx"
	"chesslink/internal/logger"
	"chesslink/internal/session"
	"chesslink/internal/termui"
	"chesslink/internal/transport"
)

func main() {
	cfg, err := config.Load(config.RoleServer, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogPretty); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("server stopped")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	eng := game.NewEngine()
	if cfg.FEN != "" {
		var err error
		if eng, err = game.NewEngineFromFEN(cfg.FEN); err != nil {
			return err
		}
		log.Info().Str("fen", cfg.FEN).Msg("starting from position")
	}
	auth := session.NewAuthority(eng, log.Logger)

	var status *httpx.Server
	if cfg.HTTPAddr != "" {
		status = httpx.NewServer(auth, log.Logger)
		go func() {
			if err := status.Listen(cfg.HTTPAddr); err != nil {
				log.Error().Err(err).Msg("http server")
			}
		}()
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = status.Close(shutdown)
		}()
	}

	conn, err := acceptPeer(ctx, cfg, status)
	if err != nil {
		return err
	}
	s := session.New(conn, session.Options{
		IOTimeout:   cfg.IOTimeout,
		TurnTimeout: cfg.TurnTimeout,
		Role:        config.RoleServer,
		Logger:      log.Logger,
	})
	defer s.Close()

	prompt := termui.NewPrompt(os.Stdin, os.Stdout, cfg.ServerColor)
	policy := session.Policy{ServerColor: cfg.ServerColor, Pinned: cfg.PinColor}
	return session.NewHost(s, auth, policy, prompt).Run(ctx)
}

func acceptPeer(ctx context.Context, cfg config.Config, status *httpx.Server) (session.Conn, error) {
	if cfg.Transport == config.TransportWS {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("waiting for a websocket peer on /ws")
		select {
		case peer := <-status.Peers():
			return peer, nil
		case <-ctx.Done():
			return nil, context.Cause(ctx)
		}
	}

	ln, err := transport.Listen(ctx, cfg.Addr)
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", ln.Addr().String()).Msg("waiting for a peer")
	conn, err := transport.AcceptOne(ctx, ln)
	if err != nil {
		return nil, err
	}
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("peer connected")
	return conn, nil
}
