// path: cmd/client/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"chesslink/internal/config"
	"chesslink/internal/logger"
	"chesslink/internal/session"
	"chesslink/internal/termui"
	"chesslink/internal/transport"
)

func main() {
	cfg, err := config.Load(config.RoleClient, os.Args[1:])
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
		log.Error().Err(err).Msg("client stopped")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	conn, err := dial(ctx, cfg)
	if err != nil {
		return err
	}
	s := session.New(conn, session.Options{
		IOTimeout:   cfg.IOTimeout,
		TurnTimeout: cfg.TurnTimeout,
		Role:        config.RoleClient,
		Logger:      log.Logger,
	})
	defer s.Close()
	log.Info().Str("addr", cfg.Addr).Str("transport", cfg.Transport).Msg("connected")

	// The prompt picks up the agreed color from the guest's view.
	prompt := termui.NewPrompt(os.Stdin, os.Stdout, cfg.ServerColor.Opposite())
	return session.NewGuest(s, cfg.ServerColor, prompt).Run(ctx)
}

func dial(ctx context.Context, cfg config.Config) (session.Conn, error) {
	if cfg.Transport == config.TransportWS {
		ws, err := transport.DialWebSocket(ctx, cfg.Addr)
		if err != nil {
			return nil, err
		}
		return ws, nil
	}
	conn, err := transport.Dial(ctx, cfg.Addr)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
