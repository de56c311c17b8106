package oauth2client

import (
	"fmt"
	"log"
	"strings"

	"github.com/go-logr/logr"
	"github.com/rs/zerolog"
)

// Logger is the logging capability used across the toolkit.
// Implementations must not panic and must not block; logging never influences control flow.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// PrintfLogger is satisfied by *log.Logger and most Printf-style loggers.
type PrintfLogger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// NopLogger returns a Logger that discards everything.
func NopLogger() Logger {
	return nopLogger{}
}

// OrNop returns logger, or a no-op Logger when logger is nil.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return nopLogger{}
	}
	return logger
}

type printfLogger struct {
	out PrintfLogger
}

// NewPrintfLogger adapts a Printf-style logger such as log.Default().
func NewPrintfLogger(out PrintfLogger) Logger {
	if out == nil {
		return nopLogger{}
	}
	return &printfLogger{out: out}
}

func (l *printfLogger) Debug(msg string, kv ...any) { l.print("DEBUG", msg, kv) }
func (l *printfLogger) Info(msg string, kv ...any)  { l.print("INFO", msg, kv) }
func (l *printfLogger) Warn(msg string, kv ...any)  { l.print("WARN", msg, kv) }
func (l *printfLogger) Error(msg string, kv ...any) { l.print("ERROR", msg, kv) }

func (l *printfLogger) print(level, msg string, kv []any) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			fmt.Fprintf(&b, " %v", kv[i])
		}
	}
	l.out.Printf("%s", b.String())
}

type logrLogger struct {
	log logr.Logger
}

// NewLogrLogger adapts a logr.Logger. Debug maps to V(1).
func NewLogrLogger(l logr.Logger) Logger {
	if l.GetSink() == nil {
		return nopLogger{}
	}
	return &logrLogger{log: l}
}

func (l *logrLogger) Debug(msg string, kv ...any) { l.log.V(1).Info(msg, kv...) }
func (l *logrLogger) Info(msg string, kv ...any)  { l.log.Info(msg, kv...) }
func (l *logrLogger) Warn(msg string, kv ...any)  { l.log.Info(msg, append(kv, "level", "warn")...) }
func (l *logrLogger) Error(msg string, kv ...any) { l.log.Error(nil, msg, kv...) }

type zerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger adapts a zerolog.Logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLogger{log: l}
}

func (l *zerologLogger) Debug(msg string, kv ...any) { l.log.Debug().Fields(kv).Msg(msg) }
func (l *zerologLogger) Info(msg string, kv ...any)  { l.log.Info().Fields(kv).Msg(msg) }
func (l *zerologLogger) Warn(msg string, kv ...any)  { l.log.Warn().Fields(kv).Msg(msg) }
func (l *zerologLogger) Error(msg string, kv ...any) { l.log.Error().Fields(kv).Msg(msg) }

// defaultLogger is what WithLoggingEnabled installs.
func defaultLogger() Logger {
	return NewPrintfLogger(log.Default())
}
