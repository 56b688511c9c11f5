// path: internal/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets up the global logger on stderr, leaving stdout to the board and
// prompts. level is a zerolog level name; pretty switches to human readable
// console output.
func Init(level string, pretty bool) error {
	return initTo(os.Stderr, level, pretty)
}

func initTo(w io.Writer, level string, pretty bool) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	log.Logger = zerolog.New(w).With().
		Timestamp().
		Caller().
		Logger()
	return nil
}
