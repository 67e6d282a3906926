package slogx

import (
	"fmt"
	"log/slog"
	"time"
)

// Error returns a slog.Attr representing the provided error.
// The attribute key is "error" and the value is the error's message.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Stringer creates a slog.Attr with the provided key and the string
// representation of the given fmt.Stringer value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// Millis renders a duration as integer milliseconds, the unit used for
// latency fields everywhere in this module.
func Millis(key string, d time.Duration) slog.Attr {
	return slog.Int64(key, d.Milliseconds())
}

// KeyLoggerName is the attribute key used to tag log records with the
// component that emitted them.
const KeyLoggerName = "logger"

// LoggerName returns an attribute carrying the component name under
// KeyLoggerName.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}
