// path: internal/game/errors.go
package game

import "errors"

var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrOffBoard        = errors.New("square off board")
	ErrInvalidPosition = errors.New("invalid position")
)
