// Package logutils builds the process logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Console selects human-readable output on stderr instead of a log file.
const Console = "-"

// New returns a logger at the given level (debug, info, warn, error, fatal).
//
// file selects the destination: a path appends JSON lines to that file,
// Console writes colorized text to stderr and "" writes JSON to stderr.
// Stdout is never used since commands print their results there.
func New(level, file string) (zerolog.Logger, func(), error) {
	closer := func() {}

	if level == "" {
		level = zerolog.LevelInfoValue
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, closer, fmt.Errorf("parse log level: %w", err)
	}

	var writer io.Writer
	switch file {
	case "":
		writer = os.Stderr
	case Console:
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	default:
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}

		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("open log file: %w", err)
		}
		closer = func() { _ = f.Close() }
		writer = f
	}

	return zerolog.New(writer).With().Timestamp().Logger().Level(lvl), closer, nil
}
