package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Global logger instance, reconfigured once at startup via Setup.
var log = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Setup configures the global logger. Level is one of zerolog's level
// strings ("debug", "info", ...); pretty switches to the human-readable
// console writer for local development.
func Setup(level string, pretty bool) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	var out zerolog.Logger
	if pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		out = zerolog.New(os.Stderr)
	}
	log = out.Level(lvl).With().Timestamp().Logger()
}

func Logger() zerolog.Logger {
	return log
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
