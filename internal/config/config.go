// path: internal/config/config.go
// Package config reads process settings from flags, falling back to
// CHESSLINK_* environment variables.
package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gobuffalo/envy"

	"chesslink/internal/protocol"
	"chesslink/internal/session"
	"chesslink/internal/transport"
)

const (
	RoleServer = "server"
	RoleClient = "client"

	TransportTCP = "tcp"
	TransportWS  = "ws"

	DefaultHTTPAddr   = ":8080"
	DefaultClientAddr = "localhost:5000"
	DefaultWSURL      = "ws://localhost:8080/ws"
)

type Config struct {
	Role string
	// Addr is the TCP listen address for the server, and the dial target
	// for the client (host:port, or a ws:// URL with the ws transport).
	Addr string
	// HTTPAddr serves the status surface and /ws; empty disables it.
	HTTPAddr    string
	Transport   string
	ServerColor protocol.Color
	PinColor    bool
	FEN         string
	IOTimeout   time.Duration
	TurnTimeout time.Duration
	LogLevel    string
	LogPretty   bool
}

// Load parses args for the given role.
func Load(role string, args []string) (Config, error) {
	cfg := Config{Role: role}
	fs := flag.NewFlagSet(role, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	ioDef, err := envDuration("CHESSLINK_IO_TIMEOUT", session.DefaultIOTimeout)
	if err != nil {
		return cfg, err
	}
	turnDef, err := envDuration("CHESSLINK_TURN_TIMEOUT", session.DefaultTurnTimeout)
	if err != nil {
		return cfg, err
	}
	prettyDef, err := envBool("CHESSLINK_LOG_PRETTY", false)
	if err != nil {
		return cfg, err
	}

	var color string
	switch role {
	case RoleServer:
		pinDef, err := envBool("CHESSLINK_PIN_COLOR", false)
		if err != nil {
			return cfg, err
		}
		fs.StringVar(&cfg.Addr, "addr", envy.Get("CHESSLINK_ADDR", transport.DefaultAddr), "TCP listen address for the peer")
		fs.StringVar(&cfg.HTTPAddr, "http-addr", envy.Get("CHESSLINK_HTTP_ADDR", DefaultHTTPAddr), "status and websocket address (empty disables)")
		fs.StringVar(&color, "server-color", envy.Get("CHESSLINK_SERVER_COLOR", "white"), "color the server plays unless the client asks otherwise")
		fs.BoolVar(&cfg.PinColor, "pin-color", pinDef, "ignore the client's color request")
		fs.StringVar(&cfg.FEN, "fen", envy.Get("CHESSLINK_FEN", ""), "starting position (default: standard)")
	case RoleClient:
		fs.StringVar(&cfg.Addr, "addr", envy.Get("CHESSLINK_ADDR", DefaultClientAddr), "server address or ws:// URL")
		fs.StringVar(&color, "server-color", envy.Get("CHESSLINK_SERVER_COLOR", "white"), "color to ask the server to play")
	default:
		return cfg, fmt.Errorf("unknown role %q", role)
	}
	fs.StringVar(&cfg.Transport, "transport", envy.Get("CHESSLINK_TRANSPORT", TransportTCP), "tcp or ws")
	fs.DurationVar(&cfg.IOTimeout, "io-timeout", ioDef, "bound on handshake, writes and answers (0 disables)")
	fs.DurationVar(&cfg.TurnTimeout, "turn-timeout", turnDef, "bound on waiting for the peer's move (0 disables)")
	fs.StringVar(&cfg.LogLevel, "log-level", envy.Get("CHESSLINK_LOG_LEVEL", "info"), "zerolog level")
	fs.BoolVar(&cfg.LogPretty, "log-pretty", prettyDef, "human readable logs")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	c, ok := protocol.ParseColor(strings.TrimSpace(color))
	if !ok {
		return cfg, fmt.Errorf("invalid server color %q", color)
	}
	cfg.ServerColor = c

	cfg.Transport = strings.ToLower(strings.TrimSpace(cfg.Transport))
	switch cfg.Transport {
	case TransportTCP:
	case TransportWS:
		if role == RoleServer && cfg.HTTPAddr == "" {
			return cfg, fmt.Errorf("ws transport needs -http-addr")
		}
		if role == RoleClient {
			if cfg.Addr == DefaultClientAddr {
				cfg.Addr = DefaultWSURL
			}
			if !strings.HasPrefix(cfg.Addr, "ws://") && !strings.HasPrefix(cfg.Addr, "wss://") {
				return cfg, fmt.Errorf("ws transport needs a ws:// URL, got %q", cfg.Addr)
			}
		}
	default:
		return cfg, fmt.Errorf("invalid transport %q", cfg.Transport)
	}

	if cfg.IOTimeout < 0 || cfg.TurnTimeout < 0 {
		return cfg, fmt.Errorf("timeouts must not be negative")
	}
	return cfg, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(envy.Get(key, ""))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(envy.Get(key, ""))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
