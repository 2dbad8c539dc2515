// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// File, when set, receives JSON lines through a rotating writer in
	// addition to stdout.
	File string
	Dev  bool
}

// New returns a logger writing to stdout (console format in development) and
// optionally to a rotated file.
func New(opts Options) zerolog.Logger {
	var stdout io.Writer = os.Stdout
	if opts.Dev {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return build(opts, stdout)
}

func build(opts Options, stdout io.Writer) zerolog.Logger {
	w := stdout
	if opts.File != "" {
		w = zerolog.MultiLevelWriter(stdout, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}
	return zerolog.New(w).Level(ParseLevel(opts.Level)).With().Timestamp().Logger()
}

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
