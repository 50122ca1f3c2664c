package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is stamped on every log line.
const ServiceName = "walletstore"

// New returns a JSON logger on stdout, or a console logger when pretty is set.
// Unknown levels fall back to info.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return build(level, w).Caller().Logger()
}

// NewWithWriter is New without caller info, writing JSON to w.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return build(level, w).Logger()
}

func build(level string, w io.Writer) zerolog.Context {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", ServiceName)
}

// Component returns a child logger tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// ParseLevel accepts zerolog level names case-insensitively, plus "warning".
func ParseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return zerolog.WarnLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// MaskKey hides the middle of a phone-number key segment so wallet keys can
// be logged: "ws:wallets:254712345678" becomes "ws:wallets:2547****5678".
// Keys whose last segment is not a digit string of length 9 or more are
// returned unchanged.
func MaskKey(key string) string {
	i := strings.LastIndexByte(key, ':')
	head, tail := key[:i+1], key[i+1:]
	if len(tail) < 9 || strings.Trim(tail, "0123456789") != "" {
		return key
	}
	return head + tail[:4] + strings.Repeat("*", len(tail)-8) + tail[len(tail)-4:]
}
