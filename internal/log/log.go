// Package log wraps zerolog.Logger with the handful of connection-scoped
// fields every component of this broker attaches to its log lines:
// remote_addr, api_key, api_version, and correlation_id.
package log

import (
	"os"

	"github.com/rs/zerolog"
)

// New builds the broker's root logger: human-readable console output at
// the given level, timestamped, writing to stderr.
func New(level zerolog.Level) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// WithConn returns a child logger tagged with a connection's remote
// address, to be attached to every line logged for the lifetime of that
// connection's goroutine.
func WithConn(base zerolog.Logger, remoteAddr string) zerolog.Logger {
	return base.With().Str("remote_addr", remoteAddr).Logger()
}

// WithRequest returns a child logger additionally tagged with the
// request's api_key, api_version, and correlation_id, for the duration
// of handling one request.
func WithRequest(base zerolog.Logger, apiKey int16, apiVersion int16, correlationID int32) zerolog.Logger {
	return base.With().
		Int16("api_key", apiKey).
		Int16("api_version", apiVersion).
		Int32("correlation_id", correlationID).
		Logger()
}
