// Package logging configures the process-wide zerolog logger and routes
// third-party library output (logrus, stdlib log) into it so every line
// ends up in one stream with one format.
package logging

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sirupsen/logrus"
)

// init suppresses any logs emitted before Setup runs.
func init() {
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)
}

// logWriter holds the current log destination. Tests swap it out via
// SetLogWriter to capture output.
var logWriter io.Writer = os.Stderr

// SetLogWriter overrides the destination Setup writes to.
func SetLogWriter(w io.Writer) {
	logWriter = w
}

// Setup configures the global logger. Format "json" writes raw zerolog
// JSON; anything else gets the console writer. Caller information is
// attached at debug and below.
func Setup(level, format string, noColor bool) {
	logLevel := parseLevel(level)
	zerolog.SetGlobalLevel(logLevel)

	w := logWriter
	if format != "json" {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    noColor,
		}
	}

	logCtx := zerolog.New(w).With().Timestamp()
	if logLevel <= zerolog.DebugLevel {
		logCtx = logCtx.Caller()
	}

	log.Logger = logCtx.Logger().Level(logLevel)
	zerolog.DefaultContextLogger = &log.Logger

	// Funnel logrus-based dependencies and the standard library logger
	// into zerolog at debug level so nothing writes around us.
	bridged := levelWriter{logger: log.Logger, level: zerolog.DebugLevel}
	logrus.StandardLogger().Out = bridged
	stdlog.SetFlags(0)
	stdlog.SetOutput(bridged)
}

// NewLogger returns a component-tagged child of the global logger.
func NewLogger(component string, level zerolog.Level) zerolog.Logger {
	return log.With().Str("component", component).Logger().Level(level)
}

// NewLoggerWithWriter builds a component-tagged logger writing to w,
// bypassing the global destination. Used by tests to capture output.
func NewLoggerWithWriter(component string, level zerolog.Level, w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().
		Timestamp().
		Str("component", component).
		Logger().Level(level)
}

// parseLevel converts a level string to zerolog.Level, defaulting to
// info on empty input and error on garbage.
func parseLevel(levelStr string) zerolog.Level {
	if levelStr == "" {
		return zerolog.InfoLevel
	}

	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		log.Error().Err(err).
			Str("logLevel", levelStr).
			Msg("Invalid log level provided. Defaulting to error level.")
		return zerolog.ErrorLevel
	}
	return level
}

// levelWriter adapts an io.Writer stream to zerolog events at a fixed
// level, used to bridge libraries that only take a writer.
type levelWriter struct {
	logger zerolog.Logger
	level  zerolog.Level
}

func (w levelWriter) Write(p []byte) (int, error) {
	message := strings.TrimSuffix(string(p), "\n")
	w.logger.WithLevel(w.level).Msg(message)
	return len(p), nil
}
