// path: internal/protocol/errors.go
package protocol

import "errors"

var (
	ErrHandshake   = errors.New("handshake failed")
	ErrProtocol    = errors.New("protocol violation")
	ErrIllegalMove = errors.New("illegal move")
	ErrConnection  = errors.New("connection failed")
	ErrGameOver    = errors.New("game over")
)
