// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	EnvLogLevel  = "WISH_LOG_LEVEL"
	EnvLogFormat = "WISH_LOG_FORMAT"
)

// Init installs a logger tagged with app as the global zerolog logger.
// Output is a console writer unless WISH_LOG_FORMAT=json.
func Init(app string) zerolog.Logger {
	return initWith(os.Stdout, app)
}

// InitTest installs a logger that only reports warnings and above.
func InitTest() zerolog.Logger {
	logger := zerolog.New(io.Discard).Level(zerolog.WarnLevel)
	log.Logger = logger
	return logger
}

func initWith(out io.Writer, app string) zerolog.Logger {
	var w io.Writer = out
	if !strings.EqualFold(strings.TrimSpace(os.Getenv(EnvLogFormat)), "json") {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	level := zerolog.InfoLevel
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		level = lvl
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

// ParseLevel maps a level name to a zerolog level. The bool is false for
// empty or unknown input.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "off", "disabled", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
