package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
)

// Logger builds a logfmt logger at lvl. Any ctx key/value pairs are attached
// to every record.
func Logger(w io.Writer, lvl slog.Level, ctx ...any) log.Logger {
	l := log.NewLogger(log.LogfmtHandlerWithLevel(w, lvl))
	if len(ctx) > 0 {
		l = l.With(ctx...)
	}
	return l
}

// ParseLogLevel maps a level name, as used in flags and config files, to a log level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "", "info":
		return log.LevelInfo, nil
	case "warn":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	case "crit":
		return log.LevelCrit, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// LoggingWriter turns the output of handlers running inside the VM into log
// records, so program output and VM progress share one stream.
type LoggingWriter struct {
	Name string
	Log  log.Logger
}

// printable reports whether b is valid UTF-8 with no control characters
// other than newlines and tabs.
func printable(b []byte) bool {
	if !utf8.Valid(b) {
		return false
	}
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && r != '\n' && r != '\t' {
			return false
		}
	}
	return true
}

func (lw *LoggingWriter) Write(b []byte) (int, error) {
	if printable(b) {
		lw.Log.Info(lw.Name, "text", strings.TrimSuffix(string(b), "\n"))
	} else {
		lw.Log.Info(lw.Name, "data", hexutil.Bytes(b))
	}
	return len(b), nil
}

// HexU32 formats ip and opcode attributes as fixed-width hex when a record is
// actually written.
type HexU32 uint32

func (v HexU32) String() string {
	return fmt.Sprintf("0x%08x", uint32(v))
}

func (v HexU32) LogValue() slog.Value {
	return slog.StringValue(v.String())
}
