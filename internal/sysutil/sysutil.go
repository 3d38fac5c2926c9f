// Package sysutil holds process-level helpers shared by the entrypoint and
// configuration: global log setup and lenient parsing of env flags.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var levels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
	"panic":   zerolog.PanicLevel,
}

// SetLogLevel sets the global zerolog level by name, ignoring case and
// surrounding space. Unknown names select info.
func SetLogLevel(lvl string) {
	l, ok := levels[strings.ToLower(strings.TrimSpace(lvl))]
	if !ok {
		l = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(l)
}

// SetupLogger points the global logger at w (stderr when nil). With pretty
// set, output goes through a human-readable ConsoleWriter instead of JSON.
func SetupLogger(w io.Writer, pretty bool) {
	if w == nil {
		w = os.Stderr
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// flagWords maps the accepted env flag spellings to their value.
var flagWords = map[string]bool{
	"1": true, "true": true, "yes": true, "y": true, "on": true,
	"0": false, "false": false, "no": false, "n": false, "off": false,
}

func flag(v string) (val, known bool) {
	val, known = flagWords[strings.ToLower(strings.TrimSpace(v))]
	return val, known
}

// IsTruthy reports whether v is one of 1, true, yes, y, on (any case).
func IsTruthy(v string) bool {
	val, known := flag(v)
	return known && val
}

// IsFalsy reports whether v is one of 0, false, no, n, off (any case).
func IsFalsy(v string) bool {
	val, known := flag(v)
	return known && !val
}

// FirstNonEmpty returns the first value that is not blank, unmodified.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
